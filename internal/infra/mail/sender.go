package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/queue"
)

//go:embed templates/*.html
var templates embed.FS

var newLeadTemplate = template.Must(template.ParseFS(templates, "templates/new_lead.html"))

type NewLeadEmailData struct {
	AgentName     string
	ClientName    string
	ContactNumber string
	Email         string
	Origin        string
	ReceivedAt    string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	dialer dialer
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		From:   from,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) Name() string { return "email" }

func (s *EmailSender) SendNewLeadAlert(_ context.Context, to *entity.User, lead queue.LeadIngestedPayload) error {
	if to.Email == "" {
		return fmt.Errorf("user %s has no email", to.ID)
	}

	origin := lead.Platform
	if origin == "" {
		origin = lead.Source
	}
	data := NewLeadEmailData{
		AgentName:     to.Name,
		ClientName:    lead.ClientName,
		ContactNumber: lead.ContactNumber,
		Email:         lead.Email,
		Origin:        origin,
		ReceivedAt:    lead.CreatedAt.Format(time.RFC1123),
	}

	var body bytes.Buffer
	if err := newLeadTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render new lead email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to.Email)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %s", lead.ClientName))
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp: %w", err)
	}
	return nil
}
