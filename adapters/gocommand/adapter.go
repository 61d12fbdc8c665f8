// Package gocommand mounts the messaging commands and queries onto a
// go-command registry and the process-wide dispatcher so hosts can drive
// the module through their own command bus.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	messagingcommand "github.com/goliatone/go-crm-messaging/command"
	"github.com/goliatone/go-crm-messaging/core"
	messagingquery "github.com/goliatone/go-crm-messaging/query"
)

// ValidateMessageContract enforces the Type() plus optional Validate()
// contract before a message reaches the dispatcher.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// Mount tracks the registry and dispatcher subscriptions for one messaging
// installation so the host can tear them down together.
type Mount struct {
	registry      *command.Registry
	subscriptions []commanddispatcher.Subscription
}

func NewMount(registry *command.Registry) *Mount {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &Mount{registry: registry}
}

func (m *Mount) Registry() *command.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// MountCommands registers and subscribes the four messaging command handlers
// against the given service.
func (m *Mount) MountCommands(service messagingcommand.MessagingService, runnerOpts ...runner.Option) error {
	if m == nil || m.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if service == nil {
		return fmt.Errorf("gocommand: messaging service is required")
	}
	if err := attachCommand(m, messagingcommand.NewSendMessageCommand(service), runnerOpts...); err != nil {
		return err
	}
	if err := attachCommand(m, messagingcommand.NewEditMessageCommand(service), runnerOpts...); err != nil {
		return err
	}
	if err := attachCommand(m, messagingcommand.NewDeleteMessageCommand(service), runnerOpts...); err != nil {
		return err
	}
	return attachCommand(m, messagingcommand.NewMarkLeadMessagesReadCommand(service), runnerOpts...)
}

// MountQueries registers and subscribes the transcript and lookup queries.
// The client store backs the phone lookup; the reader backs the rest.
func (m *Mount) MountQueries(reader messagingquery.HistoryReader, clients core.ClientStore, runnerOpts ...runner.Option) error {
	if m == nil || m.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if reader == nil {
		return fmt.Errorf("gocommand: history reader is required")
	}
	if clients == nil {
		return fmt.Errorf("gocommand: client store is required")
	}
	if err := attachQuery(m, messagingquery.NewConversationQuery(reader), runnerOpts...); err != nil {
		return err
	}
	if err := attachQuery(m, messagingquery.NewLeadHistoryQuery(reader), runnerOpts...); err != nil {
		return err
	}
	if err := attachQuery(m, messagingquery.NewUnreadLeadsQuery(reader), runnerOpts...); err != nil {
		return err
	}
	return attachQuery(m, messagingquery.NewClientByPhoneQuery(clients), runnerOpts...)
}

func (m *Mount) AddResolver(key string, resolver command.Resolver) error {
	if m == nil || m.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return m.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (m *Mount) HasResolver(key string) bool {
	if m == nil || m.registry == nil {
		return false
	}
	return m.registry.HasResolver(strings.TrimSpace(key))
}

func (m *Mount) Initialize() error {
	if m == nil || m.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return m.registry.Initialize()
}

// Unmount releases every dispatcher subscription taken by this mount.
func (m *Mount) Unmount() {
	if m == nil {
		return
	}
	for _, subscription := range m.subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
	m.subscriptions = nil
}

func attachCommand[T any](m *Mount, cmd command.Commander[T], runnerOpts ...runner.Option) error {
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := m.registry.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return err
	}
	m.subscriptions = append(m.subscriptions, subscription)
	return nil
}

func attachQuery[T any, R any](m *Mount, qry command.Querier[T, R], runnerOpts ...runner.Option) error {
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := m.registry.RegisterCommand(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return err
	}
	m.subscriptions = append(m.subscriptions, subscription)
	return nil
}

// Dispatch routes a command message through the process-wide dispatcher.
func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

// Query routes a query message through the process-wide dispatcher.
func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}
