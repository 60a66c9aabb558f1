package bootstrap

import (
	"log"
	"time"

	"loghive-be/internal/config"
	"loghive-be/internal/controller"
	"loghive-be/internal/pkg/logger"
	"loghive-be/internal/pkg/mailer"
	"loghive-be/internal/repository/implementation"
	"loghive-be/internal/service"
	pktNats "loghive-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	LogController    controller.ILogController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	AlertConsumerService service.IAlertConsumerService
	RetentionService     service.IRetentionService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Alert mail only when SMTP and a recipient are configured
	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" && cfg.Alert.Recipient != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.Alert.Recipient,
		)
	}

	// NATS is optional; alerting degrades to logs when it is absent
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Repositories & Services
	logRepo := implementation.NewLogRecordRepository(db, sysLogger)

	publisherService := service.NewPublisherService(cfg.Alert.TopicName, pubSub)
	alertConsumerService := service.NewAlertConsumerService(
		pubSub,
		cfg.Alert.TopicName,
		emailService,
		natsPub,
		sysLogger,
	)

	logService := service.NewLogService(logRepo, publisherService, sysLogger)

	retentionService := service.NewRetentionService(
		logRepo,
		cfg.Retention.Days,
		time.Duration(cfg.Retention.SweepIntervalMinutes)*time.Minute,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		LogController:        controller.NewLogController(logService),
		HealthController:     controller.NewHealthController(db),
		AlertConsumerService: alertConsumerService,
		RetentionService:     retentionService,
		Logger:               sysLogger,
	}
}
