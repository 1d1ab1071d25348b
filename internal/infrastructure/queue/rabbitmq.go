package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys de los eventos del motor.
const (
	KeyLeadAssigned = "lead.assigned"
	KeyLeadsMerged  = "leads.merged"
)

// RabbitMQ conexión y canal compartidos para publicar eventos.
type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel

	exchange string
}

// NewRabbitMQ conecta al broker y declara el exchange de eventos (topic,
// durable). Los consumidores (comunicación, auditoría) declaran sus colas y
// bindings por su lado.
func NewRabbitMQ(url, exchange string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar a RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declarar exchange %s: %w", exchange, err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch, exchange: exchange}, nil
}

// Close cierra canal y conexión.
func (r *RabbitMQ) Close() {
	if r.Ch != nil {
		_ = r.Ch.Close()
	}
	if r.Conn != nil {
		_ = r.Conn.Close()
	}
}
