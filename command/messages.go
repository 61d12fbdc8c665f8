package command

import (
	"strings"

	"github.com/goliatone/go-crm-messaging/dispatch"
)

const (
	TypeSendMessage          = "messaging.command.message.send"
	TypeEditMessage          = "messaging.command.message.edit"
	TypeDeleteMessage        = "messaging.command.message.delete"
	TypeMarkLeadMessagesRead = "messaging.command.lead.mark_messages_read"
)

type SendMessageMessage struct {
	Input dispatch.SendInput
}

func (SendMessageMessage) Type() string { return TypeSendMessage }

func (m SendMessageMessage) Validate() error {
	if strings.TrimSpace(m.Input.ClientID) == "" {
		return commandValidationError("client_id", "client id is required")
	}
	if strings.TrimSpace(m.Input.Body) == "" &&
		strings.TrimSpace(m.Input.ContentURI) == "" &&
		m.Input.Template == nil {
		return commandValidationError("body", "one of body, content uri, or template is required")
	}
	return nil
}

type EditMessageMessage struct {
	CommunicationID string
	Input           dispatch.EditInput
}

func (EditMessageMessage) Type() string { return TypeEditMessage }

func (m EditMessageMessage) Validate() error {
	if strings.TrimSpace(m.CommunicationID) == "" {
		return commandValidationError("communication_id", "communication id is required")
	}
	if strings.TrimSpace(m.Input.Text) == "" && strings.TrimSpace(m.Input.ContentURI) == "" {
		return commandValidationError("text", "either text or content uri is required")
	}
	return nil
}

type DeleteMessageMessage struct {
	CommunicationID string
}

func (DeleteMessageMessage) Type() string { return TypeDeleteMessage }

func (m DeleteMessageMessage) Validate() error {
	if strings.TrimSpace(m.CommunicationID) == "" {
		return commandValidationError("communication_id", "communication id is required")
	}
	return nil
}

type MarkLeadMessagesReadMessage struct {
	LeadID string
}

func (MarkLeadMessagesReadMessage) Type() string { return TypeMarkLeadMessagesRead }

func (m MarkLeadMessagesReadMessage) Validate() error {
	if strings.TrimSpace(m.LeadID) == "" {
		return commandValidationError("lead_id", "lead id is required")
	}
	return nil
}
