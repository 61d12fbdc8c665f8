package messaging

import (
	"fmt"

	messagingcommand "github.com/goliatone/go-crm-messaging/command"
	"github.com/goliatone/go-crm-messaging/core"
	messagingquery "github.com/goliatone/go-crm-messaging/query"
)

var _ messagingcommand.MessagingService = (*Service)(nil)

type Commands struct {
	SendMessage          *messagingcommand.SendMessageCommand
	EditMessage          *messagingcommand.EditMessageCommand
	DeleteMessage        *messagingcommand.DeleteMessageCommand
	MarkLeadMessagesRead *messagingcommand.MarkLeadMessagesReadCommand
}

type Queries struct {
	Conversation  *messagingquery.ConversationQuery
	LeadHistory   *messagingquery.LeadHistoryQuery
	UnreadLeads   *messagingquery.UnreadLeadsQuery
	ClientByPhone *messagingquery.ClientByPhoneQuery
}

// Facade packages the service's mutations and reads as go-command messages
// so callers can mount them on a router or bus without touching the service
// directly.
type Facade struct {
	service  *Service
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	historyReader messagingquery.HistoryReader
	clientStore   core.ClientStore
}

func WithFacadeHistoryReader(reader messagingquery.HistoryReader) FacadeOption {
	return func(options *facadeOptions) {
		options.historyReader = reader
	}
}

func WithFacadeClientStore(store core.ClientStore) FacadeOption {
	return func(options *facadeOptions) {
		options.clientStore = store
	}
}

func NewFacade(service *Service, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("messaging: service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	history := cfg.historyReader
	if history == nil {
		history = service.history
	}
	clients := cfg.clientStore
	if clients == nil && service.stores != nil {
		clients = service.stores.Clients()
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SendMessage:          messagingcommand.NewSendMessageCommand(service),
		EditMessage:          messagingcommand.NewEditMessageCommand(service),
		DeleteMessage:        messagingcommand.NewDeleteMessageCommand(service),
		MarkLeadMessagesRead: messagingcommand.NewMarkLeadMessagesReadCommand(service),
	}
	facade.queries = Queries{
		Conversation:  messagingquery.NewConversationQuery(history),
		LeadHistory:   messagingquery.NewLeadHistoryQuery(history),
		UnreadLeads:   messagingquery.NewUnreadLeadsQuery(history),
		ClientByPhone: messagingquery.NewClientByPhoneQuery(clients),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() *Service {
	if f == nil {
		return nil
	}
	return f.service
}
