package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/leadflow/internal/entity"
)

// LeadIngestedPayload is published once per lead created by an import.
type LeadIngestedPayload struct {
	LeadID         string    `json:"lead_id"`
	ClientName     string    `json:"client_name"`
	ContactNumber  string    `json:"contact_number"`
	Email          string    `json:"email,omitempty"`
	Source         string    `json:"source"`
	Platform       string    `json:"platform,omitempty"`
	AssignedUserID string    `json:"assigned_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewLeadIngestedPayload(l *entity.Lead) LeadIngestedPayload {
	return LeadIngestedPayload{
		LeadID:         l.ID,
		ClientName:     l.ClientName,
		ContactNumber:  l.ContactNumber,
		Email:          l.Email,
		Source:         l.Source,
		Platform:       l.Platform,
		AssignedUserID: l.AssignedUserID,
		CreatedAt:      l.CreatedAt,
	}
}

// channelPublisher is the part of *amqp.Channel the producer uses.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch channelPublisher
}

func NewProducer(ch channelPublisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadIngested(ctx context.Context, lead *entity.Lead) error {
	body, err := json.Marshal(NewLeadIngestedPayload(lead))
	if err != nil {
		return fmt.Errorf("encode lead payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    lead.ID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead %s: %w", lead.ID, err)
	}
	return nil
}
