package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/drivelead/drivelead-api/internal/application/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher implementación RabbitMQ del puerto de eventos del motor.
// Los mensajes van persistentes al exchange topic configurado.
type Publisher struct {
	mq *RabbitMQ
}

// NewPublisher construye el publicador sobre una conexión ya establecida.
func NewPublisher(mq *RabbitMQ) *Publisher {
	return &Publisher{mq: mq}
}

// PublishLeadAssigned publica el evento de asignación confirmada.
func (p *Publisher) PublishLeadAssigned(ctx context.Context, ev ports.LeadAssignedEvent) error {
	return p.publish(ctx, KeyLeadAssigned, ev)
}

// PublishLeadsMerged publica el evento de fusión de duplicados.
func (p *Publisher) PublishLeadsMerged(ctx context.Context, ev ports.LeadsMergedEvent) error {
	return p.publish(ctx, KeyLeadsMerged, ev)
}

func (p *Publisher) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", key, err)
	}
	err = p.mq.Ch.PublishWithContext(ctx,
		p.mq.exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publicar %s: %w", key, err)
	}
	return nil
}
