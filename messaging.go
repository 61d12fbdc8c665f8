package messaging

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/dispatch"
	"github.com/goliatone/go-crm-messaging/identity"
	"github.com/goliatone/go-crm-messaging/inbound"
	"github.com/goliatone/go-crm-messaging/query"
	sqlstore "github.com/goliatone/go-crm-messaging/store/sql"
	"github.com/goliatone/go-crm-messaging/wazzup"
	"github.com/goliatone/go-crm-messaging/webhooks"
	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
)

type Config = core.Config

type Option func(*serviceBuilder)

type serviceBuilder struct {
	logger            core.Logger
	loggerProvider    core.LoggerProvider
	stores            core.Stores
	history           query.HistoryReader
	gateway           dispatch.Gateway
	persistenceClient *persistence.Client
	configProvider    core.ConfigProvider
	optionsResolver   core.OptionsResolver
	httpClient        wazzup.HTTPDoer
	runtimeConfig     core.Config
}

func WithLogger(logger core.Logger) Option {
	return func(b *serviceBuilder) { b.logger = logger }
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *serviceBuilder) { b.loggerProvider = provider }
}

func WithStores(stores core.Stores) Option {
	return func(b *serviceBuilder) { b.stores = stores }
}

func WithHistoryReader(reader query.HistoryReader) Option {
	return func(b *serviceBuilder) { b.history = reader }
}

func WithGateway(gateway dispatch.Gateway) Option {
	return func(b *serviceBuilder) { b.gateway = gateway }
}

// WithPersistenceClient builds the SQL store factory from an initialized
// persistence client. Ignored when WithStores is supplied.
func WithPersistenceClient(client *persistence.Client) Option {
	return func(b *serviceBuilder) { b.persistenceClient = client }
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(b *serviceBuilder) { b.configProvider = provider }
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(b *serviceBuilder) { b.optionsResolver = resolver }
}

// WithHTTPClient overrides the gateway's HTTP transport. Ignored when
// WithGateway is supplied.
func WithHTTPClient(client wazzup.HTTPDoer) Option {
	return func(b *serviceBuilder) { b.httpClient = client }
}

// Service wires the engine together: stores, provider gateway, identity
// resolution, outbound dispatch, and webhook processing behind one surface.
type Service struct {
	config         core.Config
	logger         core.Logger
	loggerProvider core.LoggerProvider
	stores         core.Stores
	history        query.HistoryReader
	gateway        dispatch.Gateway
	resolver       *identity.Resolver
	dispatcher     *dispatch.Dispatcher
	processor      *webhooks.Processor
	channels       *dispatch.ChannelManager
	webhookHandler *inbound.WebhookHandler
}

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := serviceBuilder{runtimeConfig: cfg}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("crm-messaging", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("crm-messaging"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.configProvider == nil {
		builder.configProvider = core.NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = core.GoOptionsResolver{}
	}

	defaults := core.DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, core.MapError(err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, core.MapError(err)
	}

	stores := builder.stores
	if stores == nil && builder.persistenceClient != nil {
		factory, buildErr := sqlstore.NewRepositoryFactoryFromPersistence(builder.persistenceClient)
		if buildErr != nil {
			return nil, core.MapError(buildErr)
		}
		stores = factory
	}
	if stores == nil {
		return nil, fmt.Errorf("messaging: stores are required, supply WithStores or WithPersistenceClient")
	}

	history := builder.history
	if history == nil {
		if reader, ok := stores.(interface{ History() *sqlstore.HistoryStore }); ok {
			history = reader.History()
		}
	}

	gateway := builder.gateway
	if gateway == nil {
		gateway = wazzup.New(wazzup.Config{
			BaseURL:          finalConfig.Gateway.BaseURL,
			APIKey:           finalConfig.Gateway.APIKey,
			DefaultChannelID: finalConfig.Gateway.ChannelID,
			Timeout:          time.Duration(finalConfig.Gateway.TimeoutSeconds) * time.Second,
			HTTPClient:       builder.httpClient,
		})
	}

	resolver, err := identity.NewResolver(identity.Config{
		Clients: stores.Clients(),
		Leads:   stores.Leads(),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{
		Stores:  stores,
		Gateway: gateway,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	processor, err := webhooks.NewProcessor(webhooks.Config{
		Stores:   stores,
		Resolver: resolver,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	channels, err := dispatch.NewChannelManager(gateway, logger)
	if err != nil {
		return nil, err
	}
	webhookHandler, err := inbound.NewWebhookHandler(inbound.Config{
		Processor: processor,
		Secret:    finalConfig.Webhook.Secret,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		config:         finalConfig,
		logger:         logger,
		loggerProvider: provider,
		stores:         stores,
		history:        history,
		gateway:        gateway,
		resolver:       resolver,
		dispatcher:     dispatcher,
		processor:      processor,
		channels:       channels,
		webhookHandler: webhookHandler,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Stores() core.Stores {
	if s == nil {
		return nil
	}
	return s.stores
}

func (s *Service) Logger() core.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

// SendMessage dispatches an outbound message through the gateway.
func (s *Service) SendMessage(ctx context.Context, in dispatch.SendInput) (dispatch.SendResult, error) {
	if s == nil || s.dispatcher == nil {
		return dispatch.SendResult{}, fmt.Errorf("messaging: service is not configured")
	}
	return s.dispatcher.Send(ctx, in)
}

// EditMessage edits a previously sent message and mirrors the change locally.
func (s *Service) EditMessage(ctx context.Context, communicationID string, in dispatch.EditInput) (dispatch.SendResult, error) {
	if s == nil || s.dispatcher == nil {
		return dispatch.SendResult{}, fmt.Errorf("messaging: service is not configured")
	}
	return s.dispatcher.EditSent(ctx, communicationID, in)
}

// DeleteMessage deletes a previously sent message and tombstones the record.
func (s *Service) DeleteMessage(ctx context.Context, communicationID string) (dispatch.SendResult, error) {
	if s == nil || s.dispatcher == nil {
		return dispatch.SendResult{}, fmt.Errorf("messaging: service is not configured")
	}
	return s.dispatcher.DeleteSent(ctx, communicationID)
}

// MarkLeadMessagesRead resets a lead's unread counter.
func (s *Service) MarkLeadMessagesRead(ctx context.Context, leadID string) error {
	if s == nil || s.stores == nil {
		return fmt.Errorf("messaging: service is not configured")
	}
	return s.stores.Leads().MarkMessagesRead(ctx, leadID)
}

// ProcessWebhook applies a decoded provider payload.
func (s *Service) ProcessWebhook(ctx context.Context, payload webhooks.Payload) (webhooks.Outcome, error) {
	if s == nil || s.processor == nil {
		return webhooks.Outcome{}, fmt.Errorf("messaging: service is not configured")
	}
	return s.processor.Process(ctx, payload)
}

// WebhookHandler returns the http.Handler to mount at the provider's
// callback URL.
func (s *Service) WebhookHandler() http.Handler {
	if s == nil {
		return nil
	}
	return s.webhookHandler
}

func (s *Service) Channels(ctx context.Context) ([]dispatch.Channel, error) {
	if s == nil || s.channels == nil {
		return nil, fmt.Errorf("messaging: service is not configured")
	}
	return s.channels.Channels(ctx)
}

func (s *Service) ActiveWhatsAppChannels(ctx context.Context) ([]dispatch.Channel, error) {
	if s == nil || s.channels == nil {
		return nil, fmt.Errorf("messaging: service is not configured")
	}
	return s.channels.ActiveWhatsApp(ctx)
}

func (s *Service) DefaultChannel(ctx context.Context) (dispatch.Channel, error) {
	if s == nil || s.channels == nil {
		return dispatch.Channel{}, fmt.Errorf("messaging: service is not configured")
	}
	return s.channels.DefaultChannel(ctx)
}

// Conversation returns a client's message transcript in chronological order.
func (s *Service) Conversation(ctx context.Context, clientID string, includeDeleted bool) ([]core.Communication, error) {
	if s == nil || s.history == nil {
		return nil, fmt.Errorf("messaging: history reader is not configured")
	}
	return s.history.Conversation(ctx, clientID, includeDeleted)
}

// LeadHistory returns the messages attached to one lead.
func (s *Service) LeadHistory(ctx context.Context, leadID string) ([]core.Communication, error) {
	if s == nil || s.history == nil {
		return nil, fmt.Errorf("messaging: history reader is not configured")
	}
	return s.history.LeadHistory(ctx, leadID)
}

// UnreadLeads returns active leads with unread inbound messages, most
// recently messaged first.
func (s *Service) UnreadLeads(ctx context.Context) ([]core.Lead, error) {
	if s == nil || s.history == nil {
		return nil, fmt.Errorf("messaging: history reader is not configured")
	}
	return s.history.UnreadLeads(ctx)
}
