package service

import (
	"context"
	"encoding/json"
	"time"

	"loghive-be/internal/dto"
	"loghive-be/internal/pkg/logger"
	"loghive-be/internal/pkg/mailer"
	"loghive-be/pkg/events"
	pktNats "loghive-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/patrickmn/go-cache"
)

// dedupeWindow suppresses repeat alerts for the same source; an error storm
// from one component becomes one notification per window.
const dedupeWindow = 5 * time.Minute

type IAlertConsumerService interface {
	Consume(ctx context.Context) error
}

type alertConsumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	emailService mailer.IEmailService
	natsPub      *pktNats.Publisher
	recentAlerts *cache.Cache
	logger       logger.ILogger
}

func NewAlertConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	natsPublisher *pktNats.Publisher,
	log logger.ILogger,
) IAlertConsumerService {
	return &alertConsumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		emailService: emailService,
		natsPub:      natsPublisher,
		recentAlerts: cache.New(dedupeWindow, 2*dedupeWindow),
		logger:       log,
	}
}

func (cs *alertConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *alertConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var alert dto.LogAlertMessage
	if err := json.Unmarshal(msg.Payload, &alert); err != nil {
		cs.logger.Error("alert_consumer", "failed to unmarshal alert message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if _, alreadyAlerted := cs.recentAlerts.Get(alert.Source); alreadyAlerted {
		msg.Ack()
		return
	}
	cs.recentAlerts.Set(alert.Source, struct{}{}, cache.DefaultExpiration)

	if cs.emailService != nil {
		if err := cs.emailService.SendLogAlert(alert.Source, alert.Message, alert.Timestamp); err != nil {
			cs.logger.Warn("alert_consumer", "failed to send alert mail", map[string]interface{}{
				"source": alert.Source,
				"error":  err.Error(),
			})
		}
	}

	if cs.natsPub != nil {
		evt := events.BaseEvent{
			Type: "LOG_ALERT",
			Data: map[string]interface{}{
				"record_id": alert.RecordId,
				"source":    alert.Source,
				"message":   alert.Message,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.natsPub.Publish(ctx, evt); err != nil {
			cs.logger.Warn("alert_consumer", "failed to publish LOG_ALERT event", map[string]interface{}{
				"source": alert.Source,
				"error":  err.Error(),
			})
		}
	}

	msg.Ack()
}
