package serverutils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"loghive-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentLogger struct{}

func (silentLogger) Debug(string, string, map[string]interface{}) {}
func (silentLogger) Info(string, string, map[string]interface{})  {}
func (silentLogger) Warn(string, string, map[string]interface{})  {}
func (silentLogger) Error(string, string, map[string]interface{}) {}
func (silentLogger) Sync() error                                  { return nil }

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(silentLogger{}))
	app.Get("/boom", handler)
	return app
}

func doRequest(t *testing.T, app *fiber.App) (*http.Response, ErrorEnvelope) {
	t.Helper()
	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)

	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return res, body
}

func TestValidationErrorMapsTo400(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return apperror.Validation("unknown level: fatal")
	})

	res, body := doRequest(t, app)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "unknown level: fatal", body.Message)
}

func TestNoOpUpdateMapsTo400(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return apperror.NoOpUpdate("update contains no mutable fields")
	})

	res, _ := doRequest(t, app)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestNotFoundMapsTo404(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return apperror.NotFound("log record 9 not found")
	})

	res, _ := doRequest(t, app)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDecodeFaultMapsTo500(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return apperror.Decode("malformed stored metadata for log record 9", errors.New("unexpected end of JSON input"))
	})

	res, body := doRequest(t, app)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	// Internal cause stays out of the response body.
	assert.NotContains(t, body.Message, "JSON input")
}

func TestStorageFaultMapsTo503(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return apperror.Storage(errors.New("dial tcp: connection refused"))
	})

	res, _ := doRequest(t, app)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestUnclassifiedErrorMapsTo500WithReference(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return errors.New("something unexpected")
	})

	res, body := doRequest(t, app)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, body.Message, "ref ")
	assert.NotContains(t, body.Message, "something unexpected")
}
