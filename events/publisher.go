// SPDX-License-Identifier: GPL-3.0-only

// Package events publishes access events to RabbitMQ for whatever
// analytics pipeline sits downstream. Publishing is best-effort: a
// broker outage degrades reporting, never access control.
package events

import (
	"blockboard-server/commons"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "blockboard.events"

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher connects to the broker named by AMQP_URL. An unset URL
// returns a nil publisher, on which every method is a no-op.
func NewPublisher() (*Publisher, error) {
	amqpURL := commons.GetEnv("AMQP_URL")
	if amqpURL == "" {
		commons.Logger.Info("AMQP_URL not set, event publishing disabled")
		return nil, nil
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := channel.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	commons.Logger.Infof("Event publisher connected, exchange %s", exchangeName)
	return &Publisher{conn: conn, channel: channel}, nil
}

// Publish emits one event, routing key = kind. Errors are logged and
// swallowed.
func (p *Publisher) Publish(kind Kind, propertyID, subjectID uint) {
	if p == nil {
		return
	}
	event := Event{
		EID:        uuid.New(),
		Kind:       kind,
		PropertyID: propertyID,
		SubjectID:  subjectID,
		OccurredAt: time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		commons.Logger.Errorf("Failed to marshal event %s: %v", kind, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = p.channel.PublishWithContext(ctx, exchangeName, string(kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		commons.Logger.Errorf("Failed to publish event %s: %v", kind, err)
	}
}

// Close tears down the channel and connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.channel.Close()
	p.conn.Close()
}
