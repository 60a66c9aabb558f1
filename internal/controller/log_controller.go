package controller

import (
	"fmt"
	"strconv"
	"time"

	"loghive-be/internal/dto"
	"loghive-be/internal/entity"
	"loghive-be/internal/pkg/apperror"
	"loghive-be/internal/pkg/serverutils"
	"loghive-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILogController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type logController struct {
	logService service.ILogService
}

func NewLogController(logService service.ILogService) ILogController {
	return &logController{
		logService: logService,
	}
}

func (c *logController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/logs/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Ingest)
	h.Get("", c.List)
	h.Get("search", c.Search)
	h.Get("stats", c.Stats)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *logController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestLogRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.logService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Log record created", res))
}

func (c *logController) Show(ctx *fiber.Ctx) error {
	id, err := parseId(ctx)
	if err != nil {
		return err
	}

	res, err := c.logService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Log record", res))
}

func (c *logController) List(ctx *fiber.Ctx) error {
	filter, err := parseFilter(ctx, true)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "10"))

	req := dto.ListLogsRequest{
		Filter:    *filter,
		Page:      page,
		Limit:     limit,
		SortBy:    ctx.Query("sort_by", "timestamp"),
		SortOrder: ctx.Query("sort_order", "desc"),
	}

	res, err := c.logService.List(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Log records", res))
}

func (c *logController) Search(ctx *fiber.Ctx) error {
	filter, err := parseFilter(ctx, false)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "10"))

	req := dto.SearchLogsRequest{
		Query:     ctx.Query("q", ""),
		Filter:    *filter,
		Page:      page,
		Limit:     limit,
		SortBy:    ctx.Query("sort_by", "timestamp"),
		SortOrder: ctx.Query("sort_order", "desc"),
	}

	res, err := c.logService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *logController) Stats(ctx *fiber.Ctx) error {
	startDate, err := parseTimeParam(ctx.Query("start_date", ""), false)
	if err != nil {
		return err
	}
	endDate, err := parseTimeParam(ctx.Query("end_date", ""), true)
	if err != nil {
		return err
	}

	req := dto.LogStatsRequest{
		Source:      ctx.Query("source", ""),
		StartDate:   startDate,
		EndDate:     endDate,
		Granularity: ctx.Query("granularity", "day"),
	}

	res, err := c.logService.Stats(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Log statistics", res))
}

func (c *logController) Update(ctx *fiber.Ctx) error {
	id, err := parseId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateLogRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.logService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Log record updated", res))
}

func (c *logController) Delete(ctx *fiber.Ctx) error {
	id, err := parseId(ctx)
	if err != nil {
		return err
	}

	if err := c.logService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Log record deleted", nil))
}

func parseId(ctx *fiber.Ctx) (uint64, error) {
	idParam := ctx.Params("id")
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return 0, apperror.Validation(fmt.Sprintf("invalid log record id: %s", idParam))
	}
	return id, nil
}

func parseFilter(ctx *fiber.Ctx, withUser bool) (*dto.LogFilter, error) {
	level := ctx.Query("level", "")
	switch level {
	case "", entity.LevelError, entity.LevelWarn, entity.LevelInfo, entity.LevelDebug:
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown level: %s", level))
	}

	startDate, err := parseTimeParam(ctx.Query("start_date", ""), false)
	if err != nil {
		return nil, err
	}
	endDate, err := parseTimeParam(ctx.Query("end_date", ""), true)
	if err != nil {
		return nil, err
	}

	filter := dto.LogFilter{
		Level:     level,
		Source:    ctx.Query("source", ""),
		StartDate: startDate,
		EndDate:   endDate,
	}
	if withUser {
		filter.UserId = ctx.Query("user_id", "")
	}
	return &filter, nil
}

// parseTimeParam accepts RFC3339 or a plain date. A date-only upper bound is
// widened to the end of that day so both range ends stay inclusive.
func parseTimeParam(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("invalid date: %s", value))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
