package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go-clinic-scheduling/internal/domain/event"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// EventChannel is the Redis channel the notification collaborator subscribes to.
const EventChannel = "appointments:events"

type redisEventPublisher struct {
	client *redis.Client
	log    *logrus.Logger
}

// NewRedisEventPublisher publishes appointment events as JSON on a Redis
// pub/sub channel. Delivery to patients (WhatsApp/SMS rendering) is the
// subscriber's concern.
func NewRedisEventPublisher(client *redis.Client, log *logrus.Logger) event.Publisher {
	return &redisEventPublisher{
		client: client,
		log:    log,
	}
}

func (p *redisEventPublisher) Publish(ctx context.Context, evt event.AppointmentEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal appointment event: %w", err)
	}

	if err := p.client.Publish(ctx, EventChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish appointment event: %w", err)
	}

	p.log.Debugf("Published event %s for appointment %s", evt.Type, evt.AppointmentID)
	return nil
}
