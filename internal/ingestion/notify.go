package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
)

// Notifier is told about every batch of freshly inserted leads.
type Notifier interface {
	NotifyNewLeads(ctx context.Context, leads []*entity.Lead)
}

// LeadPublisher forwards inserted leads to out-of-process consumers.
type LeadPublisher interface {
	PublishLeadIngested(ctx context.Context, lead *entity.Lead) error
}

// FanOut writes one in-app notification per sales user per new lead and
// optionally publishes each lead to the message broker.
type FanOut struct {
	users         entity.UserRepositoryInterface
	notifications entity.NotificationRepositoryInterface
	publisher     LeadPublisher
	logger        logrus.FieldLogger
}

func NewFanOut(
	users entity.UserRepositoryInterface,
	notifications entity.NotificationRepositoryInterface,
	publisher LeadPublisher,
	logger logrus.FieldLogger,
) *FanOut {
	return &FanOut{
		users:         users,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// NotifyNewLeads never returns an error; failures are logged and the rest of
// the batch is still delivered.
func (f *FanOut) NotifyNewLeads(ctx context.Context, leads []*entity.Lead) {
	if len(leads) == 0 {
		return
	}

	users, err := f.users.List(ctx)
	if err != nil {
		f.logger.WithError(err).Error("fan-out: could not list users")
		return
	}

	sent := 0
	for _, u := range users {
		if !u.IsSales() {
			continue
		}
		for _, l := range leads {
			n := &entity.Notification{
				ID:        uuid.New().String(),
				UserID:    u.ID,
				Type:      entity.NotificationNewLead,
				Title:     "New Lead Received",
				Message:   NewLeadMessage(l),
				LeadID:    l.ID,
				CreatedAt: time.Now().UTC(),
			}
			if err := f.notifications.Create(ctx, n); err != nil {
				f.logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "lead_id": l.ID}).
					Warn("fan-out: notification not stored")
				continue
			}
			sent++
		}
	}

	if f.publisher != nil {
		for _, l := range leads {
			if err := f.publisher.PublishLeadIngested(ctx, l); err != nil {
				f.logger.WithError(err).WithField("lead_id", l.ID).Warn("fan-out: lead event not published")
			}
		}
	}

	f.logger.WithFields(logrus.Fields{"leads": len(leads), "notifications": sent}).Info("fan-out complete")
}

func NewLeadMessage(l *entity.Lead) string {
	origin := l.Platform
	if origin == "" {
		origin = l.Source
	}
	if origin == "" {
		origin = "Google Sheet"
	}
	return fmt.Sprintf("New lead from %s – %s", origin, l.ClientName)
}
