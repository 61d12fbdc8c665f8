package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-crm-messaging/dispatch"
)

// MessagingService is the mutation surface the commands delegate to. The
// root messaging.Service satisfies it.
type MessagingService interface {
	SendMessage(ctx context.Context, in dispatch.SendInput) (dispatch.SendResult, error)
	EditMessage(ctx context.Context, communicationID string, in dispatch.EditInput) (dispatch.SendResult, error)
	DeleteMessage(ctx context.Context, communicationID string) (dispatch.SendResult, error)
	MarkLeadMessagesRead(ctx context.Context, leadID string) error
}

type SendMessageCommand struct {
	service MessagingService
}

func NewSendMessageCommand(service MessagingService) *SendMessageCommand {
	return &SendMessageCommand{service: service}
}

func (c *SendMessageCommand) Execute(ctx context.Context, msg SendMessageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: messaging service is required")
	}
	out, err := c.service.SendMessage(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type EditMessageCommand struct {
	service MessagingService
}

func NewEditMessageCommand(service MessagingService) *EditMessageCommand {
	return &EditMessageCommand{service: service}
}

func (c *EditMessageCommand) Execute(ctx context.Context, msg EditMessageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: messaging service is required")
	}
	out, err := c.service.EditMessage(ctx, msg.CommunicationID, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteMessageCommand struct {
	service MessagingService
}

func NewDeleteMessageCommand(service MessagingService) *DeleteMessageCommand {
	return &DeleteMessageCommand{service: service}
}

func (c *DeleteMessageCommand) Execute(ctx context.Context, msg DeleteMessageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: messaging service is required")
	}
	out, err := c.service.DeleteMessage(ctx, msg.CommunicationID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type MarkLeadMessagesReadCommand struct {
	service MessagingService
}

func NewMarkLeadMessagesReadCommand(service MessagingService) *MarkLeadMessagesReadCommand {
	return &MarkLeadMessagesReadCommand{service: service}
}

func (c *MarkLeadMessagesReadCommand) Execute(ctx context.Context, msg MarkLeadMessagesReadMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: messaging service is required")
	}
	return c.service.MarkLeadMessagesRead(ctx, msg.LeadID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
