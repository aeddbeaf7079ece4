package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/memory"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

type MockSender struct {
	mock.Mock
	name string
}

func (m *MockSender) Name() string { return m.name }

func (m *MockSender) SendNewLeadAlert(ctx context.Context, to *entity.User, lead LeadIngestedPayload) error {
	args := m.Called(ctx, to, lead)
	return args.Error(0)
}

func TestPublishLeadIngested(t *testing.T) {
	ch := new(MockChannel)
	var published amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, false, false, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(5).(amqp.Publishing) }).
		Return(nil)

	lead := &entity.Lead{ID: "lead-1", ClientName: "Asha Rao", ContactNumber: "5550100", AssignedUserID: "agent-1", Source: "Google Sheet"}
	require.NoError(t, NewProducer(ch).PublishLeadIngested(context.Background(), lead))

	ch.AssertExpectations(t)
	assert.Equal(t, "lead-1", published.MessageId)
	assert.Equal(t, uint8(amqp.Persistent), published.DeliveryMode)

	var payload LeadIngestedPayload
	require.NoError(t, json.Unmarshal(published.Body, &payload))
	assert.Equal(t, "agent-1", payload.AssignedUserID)
	assert.Equal(t, "Asha Rao", payload.ClientName)
}

func TestPublishLeadIngestedWrapsBrokerError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(amqp.ErrClosed)

	err := NewProducer(ch).PublishLeadIngested(context.Background(), &entity.Lead{ID: "lead-1"})

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func newTestWorker(senders ...AlertSender) *Worker {
	logger, _ := logtest.NewNullLogger()
	return NewWorker(nil, memory.NewUserRepository(memory.SeedUsers()...), logger, senders...)
}

func body(t *testing.T, p LeadIngestedPayload) []byte {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return b
}

func TestWorkerAlertsAssignedUser(t *testing.T) {
	email := &MockSender{name: "email"}
	whats := &MockSender{name: "whatsapp"}
	payload := LeadIngestedPayload{LeadID: "lead-1", ClientName: "Asha Rao", AssignedUserID: "agent-1", CreatedAt: time.Now().UTC()}

	userIs := mock.MatchedBy(func(u *entity.User) bool { return u.ID == "agent-1" })
	email.On("SendNewLeadAlert", mock.Anything, userIs, mock.Anything).Return(nil)
	whats.On("SendNewLeadAlert", mock.Anything, userIs, mock.Anything).Return(errors.New("template not approved"))

	w := newTestWorker(email, whats)
	rec := &alertCounts{}
	w.Metrics = rec
	err := w.Handle(context.Background(), body(t, payload))

	require.NoError(t, err)
	email.AssertExpectations(t)
	whats.AssertExpectations(t)
	assert.Equal(t, map[string]int{"email/sent": 1, "whatsapp/failed": 1}, rec.counts)
}

type alertCounts struct {
	counts map[string]int
}

func (a *alertCounts) RecordAlert(channel string, err error) {
	if a.counts == nil {
		a.counts = map[string]int{}
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	a.counts[channel+"/"+result]++
}

func TestWorkerFailsWhenNoChannelDelivers(t *testing.T) {
	email := &MockSender{name: "email"}
	email.On("SendNewLeadAlert", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := newTestWorker(email).Handle(context.Background(), body(t, LeadIngestedPayload{LeadID: "lead-1", AssignedUserID: "agent-1"}))

	assert.ErrorContains(t, err, "smtp down")
}

func TestWorkerDropsUnknownUserAndRejectsGarbage(t *testing.T) {
	email := &MockSender{name: "email"}
	w := newTestWorker(email)

	assert.NoError(t, w.Handle(context.Background(), body(t, LeadIngestedPayload{LeadID: "lead-1", AssignedUserID: "ghost"})))
	assert.Error(t, w.Handle(context.Background(), []byte("{not json")))
	email.AssertNotCalled(t, "SendNewLeadAlert", mock.Anything, mock.Anything, mock.Anything)
}
