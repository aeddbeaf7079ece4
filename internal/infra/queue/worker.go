package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
)

// AlertSender delivers a new-lead alert to the assigned user over one channel.
type AlertSender interface {
	Name() string
	SendNewLeadAlert(ctx context.Context, to *entity.User, lead LeadIngestedPayload) error
}

// AlertRecorder counts delivery attempts per channel.
type AlertRecorder interface {
	RecordAlert(channel string, err error)
}

type Worker struct {
	Channel *amqp.Channel
	Users   entity.UserRepositoryInterface
	Senders []AlertSender
	Metrics AlertRecorder
	Logger  logrus.FieldLogger
}

func NewWorker(ch *amqp.Channel, users entity.UserRepositoryInterface, logger logrus.FieldLogger, senders ...AlertSender) *Worker {
	return &Worker{
		Channel: ch,
		Users:   users,
		Senders: senders,
		Logger:  logger.WithField("component", "lead_alert_worker"),
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.WithField("queue", queueName).Info("lead alert worker waiting for messages")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.Handle(ctx, d.Body); err != nil {
				w.Logger.WithError(err).Warn("lead alert rejected")
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

// Handle processes one message body. A malformed body or an alert no sender
// could deliver is an error; the caller dead-letters it.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var payload LeadIngestedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	log := w.Logger.WithFields(logrus.Fields{"lead_id": payload.LeadID, "user_id": payload.AssignedUserID})

	user, err := w.Users.FindByID(ctx, payload.AssignedUserID)
	if errors.Is(err, entity.ErrNotFound) {
		log.Warn("assigned user not found, alert dropped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user %s: %w", payload.AssignedUserID, err)
	}

	delivered := 0
	var errs []error
	for _, s := range w.Senders {
		err := s.SendNewLeadAlert(ctx, user, payload)
		if w.Metrics != nil {
			w.Metrics.RecordAlert(s.Name(), err)
		}
		if err != nil {
			log.WithError(err).WithField("channel", s.Name()).Warn("alert not delivered")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		delivered++
	}
	if delivered == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}

	log.WithField("channels", delivered).Info("lead alert delivered")
	return nil
}
