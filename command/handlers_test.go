package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/dispatch"
	goerrors "github.com/goliatone/go-errors"
)

type stubMessagingService struct {
	sendFn     func(ctx context.Context, in dispatch.SendInput) (dispatch.SendResult, error)
	editFn     func(ctx context.Context, communicationID string, in dispatch.EditInput) (dispatch.SendResult, error)
	deleteFn   func(ctx context.Context, communicationID string) (dispatch.SendResult, error)
	markReadFn func(ctx context.Context, leadID string) error
}

func (s stubMessagingService) SendMessage(ctx context.Context, in dispatch.SendInput) (dispatch.SendResult, error) {
	return s.sendFn(ctx, in)
}

func (s stubMessagingService) EditMessage(ctx context.Context, communicationID string, in dispatch.EditInput) (dispatch.SendResult, error) {
	return s.editFn(ctx, communicationID, in)
}

func (s stubMessagingService) DeleteMessage(ctx context.Context, communicationID string) (dispatch.SendResult, error) {
	return s.deleteFn(ctx, communicationID)
}

func (s stubMessagingService) MarkLeadMessagesRead(ctx context.Context, leadID string) error {
	return s.markReadFn(ctx, leadID)
}

func TestSendMessageCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := dispatch.SendResult{
		Success:       true,
		Communication: core.Communication{ID: "comm-1", Status: core.MessageStatusSent},
	}
	called := false

	svc := stubMessagingService{
		sendFn: func(_ context.Context, in dispatch.SendInput) (dispatch.SendResult, error) {
			called = true
			if in.ClientID != "client-1" {
				t.Fatalf("expected client-1, got %q", in.ClientID)
			}
			return expected, nil
		},
	}

	cmd := NewSendMessageCommand(svc)
	collector := gocmd.NewResult[dispatch.SendResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, SendMessageMessage{Input: dispatch.SendInput{
		ClientID: "client-1",
		Body:     "hello",
	}})
	if err != nil {
		t.Fatalf("execute send: %v", err)
	}
	if !called {
		t.Fatalf("expected service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if !result.Success || result.Communication.ID != "comm-1" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("edit", func(t *testing.T) {
		called := false
		svc := stubMessagingService{
			editFn: func(_ context.Context, communicationID string, in dispatch.EditInput) (dispatch.SendResult, error) {
				called = true
				if communicationID != "comm-1" || in.Text != "fixed" {
					t.Fatalf("unexpected edit payload: %q %q", communicationID, in.Text)
				}
				return dispatch.SendResult{Success: true}, nil
			},
		}
		cmd := NewEditMessageCommand(svc)
		err := cmd.Execute(context.Background(), EditMessageMessage{
			CommunicationID: "comm-1",
			Input:           dispatch.EditInput{Text: "fixed"},
		})
		if err != nil {
			t.Fatalf("execute edit: %v", err)
		}
		if !called {
			t.Fatalf("expected edit invocation")
		}
	})

	t.Run("delete", func(t *testing.T) {
		called := false
		svc := stubMessagingService{
			deleteFn: func(_ context.Context, communicationID string) (dispatch.SendResult, error) {
				called = true
				if communicationID != "comm-2" {
					t.Fatalf("unexpected delete payload: %q", communicationID)
				}
				return dispatch.SendResult{Success: true}, nil
			},
		}
		cmd := NewDeleteMessageCommand(svc)
		if err := cmd.Execute(context.Background(), DeleteMessageMessage{CommunicationID: "comm-2"}); err != nil {
			t.Fatalf("execute delete: %v", err)
		}
		if !called {
			t.Fatalf("expected delete invocation")
		}
	})

	t.Run("mark read", func(t *testing.T) {
		called := false
		svc := stubMessagingService{
			markReadFn: func(_ context.Context, leadID string) error {
				called = true
				if leadID != "lead-1" {
					t.Fatalf("unexpected lead id: %q", leadID)
				}
				return nil
			},
		}
		cmd := NewMarkLeadMessagesReadCommand(svc)
		if err := cmd.Execute(context.Background(), MarkLeadMessagesReadMessage{LeadID: "lead-1"}); err != nil {
			t.Fatalf("execute mark read: %v", err)
		}
		if !called {
			t.Fatalf("expected mark read invocation")
		}
	})
}

func TestSendMessageMessage_ValidateReturnsRichError(t *testing.T) {
	err := (SendMessageMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.MessagingErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.MessagingErrorBadInput, rich.TextCode)
	}
}

func TestMessageValidation(t *testing.T) {
	if err := (SendMessageMessage{Input: dispatch.SendInput{ClientID: "c1", Body: "x"}}).Validate(); err != nil {
		t.Fatalf("expected valid send message, got %v", err)
	}
	if err := (SendMessageMessage{Input: dispatch.SendInput{ClientID: "c1"}}).Validate(); err == nil {
		t.Fatalf("expected error for contentless send")
	}
	if err := (EditMessageMessage{CommunicationID: "comm-1"}).Validate(); err == nil {
		t.Fatalf("expected error for contentless edit")
	}
	if err := (EditMessageMessage{Input: dispatch.EditInput{Text: "x"}}).Validate(); err == nil {
		t.Fatalf("expected error for missing communication id")
	}
	if err := (DeleteMessageMessage{}).Validate(); err == nil {
		t.Fatalf("expected error for missing communication id")
	}
	if err := (MarkLeadMessagesReadMessage{}).Validate(); err == nil {
		t.Fatalf("expected error for missing lead id")
	}
}

func TestSendMessageCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *SendMessageCommand
	err := cmd.Execute(context.Background(), SendMessageMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}
