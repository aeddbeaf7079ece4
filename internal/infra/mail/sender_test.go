package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadflow/internal/infra/queue"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

type MockTemplateClient struct {
	mock.Mock
}

func (m *MockTemplateClient) SendTemplate(ctx context.Context, input whatsapp.SendMessageInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

var agent = &entity.User{ID: "agent-1", Name: "Priya", Email: "priya@example.com", Phone: "+1 (555) 010-0100", Role: entity.RoleAgent}

var payload = queue.LeadIngestedPayload{
	LeadID:        "lead-1",
	ClientName:    "Asha Rao",
	ContactNumber: "5550199",
	Platform:      "fb",
	CreatedAt:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
}

func TestEmailSenderRendersAlert(t *testing.T) {
	d := &captureDialer{}
	s := &EmailSender{From: "alerts@leadflow.local", dialer: d}

	require.NoError(t, s.SendNewLeadAlert(context.Background(), agent, payload))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"priya@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"New lead: Asha Rao"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Priya")
	assert.Contains(t, buf.String(), "5550199")
}

func TestEmailSenderErrors(t *testing.T) {
	s := &EmailSender{From: "alerts@leadflow.local", dialer: &captureDialer{err: errors.New("535 auth failed")}}

	assert.ErrorContains(t, s.SendNewLeadAlert(context.Background(), agent, payload), "535 auth failed")
	assert.Error(t, s.SendNewLeadAlert(context.Background(), &entity.User{ID: "x"}, payload))
}

func TestWhatsAppSenderUsesTemplate(t *testing.T) {
	client := new(MockTemplateClient)
	client.On("SendTemplate", mock.Anything, whatsapp.SendMessageInput{
		PhoneNumber:  "15550100100",
		TemplateName: "new_lead_alert",
		Parameters:   []string{"Priya", "Asha Rao", "5550199"},
	}).Return(nil)

	err := NewWhatsAppSender(client, "new_lead_alert").SendNewLeadAlert(context.Background(), agent, payload)

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestWhatsAppSenderNeedsPhone(t *testing.T) {
	client := new(MockTemplateClient)
	err := NewWhatsAppSender(client, "t").SendNewLeadAlert(context.Background(), &entity.User{ID: "u"}, payload)

	assert.Error(t, err)
	client.AssertNotCalled(t, "SendTemplate", mock.Anything, mock.Anything)
}
