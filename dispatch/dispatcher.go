package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/phone"
	"github.com/goliatone/go-crm-messaging/wazzup"
)

// MediaPlaceholderBody is stored when an outbound message carries media
// instead of text.
const MediaPlaceholderBody = "[Media]"

// DeletedBody replaces the body of an outbound message deleted through the
// gateway.
const DeletedBody = "[Deleted]"

// Gateway is the provider surface the dispatcher talks to. *wazzup.Client
// satisfies it; tests substitute fakes.
type Gateway interface {
	SendMessage(ctx context.Context, in wazzup.SendMessageInput) wazzup.Result
	EditMessage(ctx context.Context, messageID string, in wazzup.EditMessageInput) wazzup.Result
	DeleteMessage(ctx context.Context, messageID string) wazzup.Result
	ListChannels(ctx context.Context) wazzup.ChannelsResult
}

var _ Gateway = (*wazzup.Client)(nil)

type Config struct {
	Stores  core.Stores
	Gateway Gateway
	Logger  core.Logger
}

// Dispatcher sends outbound messages through the gateway with a local
// Communication record as the source of truth. The record is written before
// the gateway call so a crash between the two leaves a visible pending row
// instead of an untracked send.
type Dispatcher struct {
	stores  core.Stores
	gateway Gateway
	logger  core.Logger
	now     func() time.Time
}

func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Stores == nil {
		return nil, fmt.Errorf("dispatch: stores are required")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("dispatch: gateway is required")
	}
	return &Dispatcher{
		stores:  cfg.Stores,
		gateway: cfg.Gateway,
		logger:  cfg.Logger,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// SendInput describes one outbound message. Exactly one of Body, ContentURI,
// or Template must produce content.
type SendInput struct {
	ClientID string
	// Body is the literal message text. Ignored when ContentURI is set.
	Body string
	// ContentURI references media to deliver instead of text.
	ContentURI string
	// Template, when set, renders the message body. The client resolved for
	// ClientID is injected into the render context automatically.
	Template *Template
	Context  TemplateContext
	// ChannelID overrides the gateway's default channel.
	ChannelID string
	// RefMessageID makes the send a reply to an earlier message.
	RefMessageID string
}

// SendResult reports the outcome of a dispatch. Communication is populated
// whenever a record was written, including for failed sends.
type SendResult struct {
	Success       bool
	Communication core.Communication
	Error         string
	ErrorCode     string
}

// Send renders the message, writes a pending Communication, and calls the
// gateway. Gateway failures come back in the result with the record marked
// as errored; the returned error covers only invalid input and store
// failures.
func (d *Dispatcher) Send(ctx context.Context, in SendInput) (SendResult, error) {
	if d == nil || d.stores == nil {
		return SendResult{}, fmt.Errorf("dispatch: dispatcher is not configured")
	}

	client, err := d.stores.Clients().Get(ctx, in.ClientID)
	if err != nil {
		return SendResult{}, fmt.Errorf("dispatch: resolve client: %w", err)
	}

	body := d.renderBody(in, client)
	contentURI := strings.TrimSpace(in.ContentURI)
	if body == "" && contentURI == "" {
		return SendResult{}, fmt.Errorf("dispatch: either body or content uri is required")
	}

	storedBody := body
	if storedBody == "" {
		storedBody = MediaPlaceholderBody
	}

	communication, err := d.stores.Communications().Create(ctx, core.CreateCommunicationInput{
		ClientID:  client.ID,
		LeadID:    d.activeLeadID(ctx, client.ID),
		Channel:   core.ChannelWhatsApp,
		Direction: core.DirectionOutbound,
		Body:      storedBody,
		MediaURL:  contentURI,
		Status:    core.MessageStatusPending,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("dispatch: create communication: %w", err)
	}

	// The token lets the provider drop a duplicate retry of the same record.
	token := fmt.Sprintf("crm_%s_%d", communication.ID, d.now().Unix())

	result := d.gateway.SendMessage(ctx, wazzup.SendMessageInput{
		ChannelID:    in.ChannelID,
		ChatID:       phone.GatewayChatID(client.Phone),
		Text:         body,
		ContentURI:   contentURI,
		RefMessageID: in.RefMessageID,
		CRMMessageID: token,
	})
	if !result.Success {
		d.logError("outbound send failed",
			"communication_id", communication.ID,
			"client_id", client.ID,
			"error", result.Error,
			"error_code", result.ErrorCode,
		)
		failed, markErr := d.stores.Communications().MarkFailed(ctx, communication.ID, result.Error)
		if markErr != nil {
			return SendResult{}, fmt.Errorf("dispatch: mark failed: %w", markErr)
		}
		return SendResult{
			Communication: failed,
			Error:         result.Error,
			ErrorCode:     result.ErrorCode,
		}, nil
	}

	sent, err := d.stores.Communications().MarkSent(ctx, communication.ID, result.MessageID(), d.now())
	if err != nil {
		return SendResult{}, fmt.Errorf("dispatch: mark sent: %w", err)
	}
	return SendResult{Success: true, Communication: sent}, nil
}

// EditInput describes a correction to an already sent message.
type EditInput struct {
	Text       string
	ContentURI string
	// CRMUserID attributes the edit to a CRM user in the provider's chat UI.
	CRMUserID string
}

// EditSent edits a previously sent message on the provider side and mirrors
// the new body locally. Messages that never reached the provider have no
// external id and cannot be edited.
func (d *Dispatcher) EditSent(ctx context.Context, communicationID string, in EditInput) (SendResult, error) {
	if d == nil || d.stores == nil {
		return SendResult{}, fmt.Errorf("dispatch: dispatcher is not configured")
	}

	communication, err := d.stores.Communications().Get(ctx, communicationID)
	if err != nil {
		return SendResult{}, fmt.Errorf("dispatch: resolve communication: %w", err)
	}
	if strings.TrimSpace(communication.ExternalMessageID) == "" {
		return SendResult{
			Communication: communication,
			Error:         "communication has no external message id",
		}, nil
	}

	result := d.gateway.EditMessage(ctx, communication.ExternalMessageID, wazzup.EditMessageInput{
		Text:       in.Text,
		ContentURI: in.ContentURI,
		CRMUserID:  in.CRMUserID,
	})
	if !result.Success {
		d.logError("outbound edit failed",
			"communication_id", communication.ID,
			"external_message_id", communication.ExternalMessageID,
			"error", result.Error,
			"error_code", result.ErrorCode,
		)
		return SendResult{
			Communication: communication,
			Error:         result.Error,
			ErrorCode:     result.ErrorCode,
		}, nil
	}

	body := strings.TrimSpace(in.Text)
	if body == "" {
		body = MediaPlaceholderBody
	}
	updated, err := d.stores.Communications().UpdateBody(ctx, communication.ID, body)
	if err != nil {
		return SendResult{}, fmt.Errorf("dispatch: update body: %w", err)
	}
	return SendResult{Success: true, Communication: updated}, nil
}

// DeleteSent deletes a previously sent message on the provider side and
// tombstones the local record.
func (d *Dispatcher) DeleteSent(ctx context.Context, communicationID string) (SendResult, error) {
	if d == nil || d.stores == nil {
		return SendResult{}, fmt.Errorf("dispatch: dispatcher is not configured")
	}

	communication, err := d.stores.Communications().Get(ctx, communicationID)
	if err != nil {
		return SendResult{}, fmt.Errorf("dispatch: resolve communication: %w", err)
	}
	if strings.TrimSpace(communication.ExternalMessageID) == "" {
		return SendResult{
			Communication: communication,
			Error:         "communication has no external message id",
		}, nil
	}

	result := d.gateway.DeleteMessage(ctx, communication.ExternalMessageID)
	if !result.Success {
		d.logError("outbound delete failed",
			"communication_id", communication.ID,
			"external_message_id", communication.ExternalMessageID,
			"error", result.Error,
			"error_code", result.ErrorCode,
		)
		return SendResult{
			Communication: communication,
			Error:         result.Error,
			ErrorCode:     result.ErrorCode,
		}, nil
	}

	tombstoned, err := d.stores.Communications().Tombstone(ctx, communication.ID, DeletedBody, d.now())
	if err != nil {
		return SendResult{}, fmt.Errorf("dispatch: tombstone: %w", err)
	}
	return SendResult{Success: true, Communication: tombstoned}, nil
}

func (d *Dispatcher) renderBody(in SendInput, client core.Client) string {
	if strings.TrimSpace(in.ContentURI) != "" {
		return ""
	}
	if in.Template != nil {
		tc := in.Context
		if tc.Client == nil {
			tc.Client = &client
		}
		return strings.TrimSpace(in.Template.Render(tc))
	}
	return strings.TrimSpace(in.Body)
}

func (d *Dispatcher) activeLeadID(ctx context.Context, clientID string) *string {
	lead, err := d.stores.Leads().LatestActive(ctx, clientID)
	if err != nil {
		return nil
	}
	return &lead.ID
}

func (d *Dispatcher) logError(msg string, args ...any) {
	if d.logger == nil {
		return
	}
	d.logger.Error(msg, args...)
}
