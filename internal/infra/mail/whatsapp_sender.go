package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/leadflow/internal/contact"
	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadflow/internal/infra/queue"
)

type templateClient interface {
	SendTemplate(ctx context.Context, input whatsapp.SendMessageInput) error
}

// WhatsAppSender alerts the assigned user with a template message whose body
// takes the user's name, the lead's name and the lead's phone.
type WhatsAppSender struct {
	client   templateClient
	template string
}

func NewWhatsAppSender(client templateClient, templateName string) *WhatsAppSender {
	return &WhatsAppSender{client: client, template: templateName}
}

func (s *WhatsAppSender) Name() string { return "whatsapp" }

func (s *WhatsAppSender) SendNewLeadAlert(ctx context.Context, to *entity.User, lead queue.LeadIngestedPayload) error {
	phone := strings.TrimPrefix(contact.NormalizePhone(to.Phone), "+")
	if phone == "" {
		return fmt.Errorf("user %s has no phone", to.ID)
	}

	return s.client.SendTemplate(ctx, whatsapp.SendMessageInput{
		PhoneNumber:  phone,
		TemplateName: s.template,
		Parameters:   []string{to.Name, lead.ClientName, lead.ContactNumber},
	})
}
