// Package webhooks turns gateway webhook payloads into CRM state. The
// processor fans a delivery out to per-section handlers; individual event
// failures are recorded in the section results and never abort the rest of
// the payload.
package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/identity"
	"github.com/goliatone/go-crm-messaging/phone"
)

// MediaPlaceholderBody substitutes for the body of a message that carries
// only media.
const MediaPlaceholderBody = "[Media]"

type EventStatus string

const (
	EventProcessed EventStatus = "processed"
	EventCreated   EventStatus = "created"
	EventUpdated   EventStatus = "updated"
	EventDeleted   EventStatus = "deleted"
	EventSkipped   EventStatus = "skipped"
	EventNotFound  EventStatus = "not_found"
	EventFailed    EventStatus = "failed"
)

type EventResult struct {
	MessageID       string
	Status          EventStatus
	Reason          string
	Error           string
	CommunicationID string
	LeadID          string
	NewStatus       string
}

type SectionResult struct {
	Type    string
	Count   int
	Handled bool
	Reason  string
	Events  []EventResult
}

type Outcome struct {
	Success  bool
	Test     bool
	Sections []SectionResult
}

type Config struct {
	Stores   core.Stores
	Resolver *identity.Resolver
	Logger   core.Logger
}

type Processor struct {
	stores   core.Stores
	resolver *identity.Resolver
	logger   core.Logger
	now      func() time.Time
}

func NewProcessor(cfg Config) (*Processor, error) {
	if cfg.Stores == nil {
		return nil, fmt.Errorf("webhooks: stores are required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("webhooks: identity resolver is required")
	}
	return &Processor{
		stores:   cfg.Stores,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Process routes every section of the payload. A test ping acknowledges
// immediately. The returned error only signals processor misconfiguration;
// event-level problems live in the outcome.
func (p *Processor) Process(ctx context.Context, payload Payload) (Outcome, error) {
	if p == nil || p.stores == nil || p.resolver == nil {
		return Outcome{}, fmt.Errorf("webhooks: processor is not configured")
	}
	if payload.Test {
		return Outcome{Success: true, Test: true}, nil
	}

	outcome := Outcome{Success: true}

	if len(payload.Messages) > 0 {
		section := SectionResult{Type: "messages", Handled: true}
		for _, event := range payload.Messages {
			result := p.processMessage(ctx, event)
			if result.Status == EventFailed {
				outcome.Success = false
			}
			section.Events = append(section.Events, result)
		}
		section.Count = len(section.Events)
		outcome.Sections = append(outcome.Sections, section)
	}

	if len(payload.Statuses) > 0 {
		section := SectionResult{Type: "statuses", Handled: true}
		for _, event := range payload.Statuses {
			result := p.processStatus(ctx, event)
			if result.Status == EventFailed {
				outcome.Success = false
			}
			section.Events = append(section.Events, result)
		}
		section.Count = len(section.Events)
		outcome.Sections = append(outcome.Sections, section)
	}

	if len(payload.CreateContact) > 0 {
		p.logInfo("create contact webhook received", "payload_keys", mapKeys(payload.CreateContact))
		outcome.Sections = append(outcome.Sections, SectionResult{
			Type:   "create_contact",
			Reason: "contact provisioning is not implemented",
		})
	}

	if len(payload.CreateDeal) > 0 {
		p.logInfo("create deal webhook received", "payload_keys", mapKeys(payload.CreateDeal))
		outcome.Sections = append(outcome.Sections, SectionResult{
			Type:   "create_deal",
			Reason: "deal provisioning is not implemented",
		})
	}

	return outcome, nil
}

// processMessage dispatches one messages[] event. Deletion wins over edit,
// which wins over the echo/new distinction, so a single redelivered event
// cannot be double-applied as two kinds.
func (p *Processor) processMessage(ctx context.Context, event MessageEvent) EventResult {
	switch {
	case event.IsDeleted:
		return p.handleDeleted(ctx, event)
	case event.IsEdited:
		return p.handleEdited(ctx, event)
	case event.IsEcho:
		return p.handleEcho(ctx, event)
	default:
		return p.handleInbound(ctx, event)
	}
}

func (p *Processor) handleInbound(ctx context.Context, event MessageEvent) EventResult {
	body := strings.TrimSpace(event.Text)
	if body == "" && strings.TrimSpace(event.ContentURI) != "" {
		body = MediaPlaceholderBody
	}
	if body == "" {
		return p.failEvent(event.MessageID, fmt.Errorf("webhooks: message has neither text nor content"), event)
	}
	if strings.TrimSpace(event.ChatID) == "" {
		return p.failEvent(event.MessageID, fmt.Errorf("webhooks: message has no chat id"), event)
	}

	result, err := p.recordInbound(ctx, event, body)
	if err != nil && core.IsConflict(err) {
		// A concurrent delivery raced us on the client phone or the message
		// id; one retry sees whatever the winner committed.
		result, err = p.recordInbound(ctx, event, body)
	}
	if err != nil {
		return p.failEvent(event.MessageID, err, event)
	}
	return result
}

func (p *Processor) recordInbound(ctx context.Context, event MessageEvent, body string) (EventResult, error) {
	var result EventResult
	err := p.stores.RunInTx(ctx, func(ctx context.Context, tx core.Stores) error {
		messageID := strings.TrimSpace(event.MessageID)
		if messageID != "" {
			if existing, err := tx.Communications().GetByExternalID(ctx, messageID); err == nil {
				result = EventResult{
					MessageID:       messageID,
					Status:          EventSkipped,
					Reason:          "message already recorded",
					CommunicationID: existing.ID,
				}
				return nil
			} else if !core.IsNotFound(err) {
				return err
			}
		}

		resolver := p.resolver.WithStores(tx)
		client, err := resolver.ResolveClient(ctx, event.ChatID, event.SenderName())
		if err != nil {
			return err
		}
		lead, err := resolver.ResolveActiveLead(ctx, client.Client.ID)
		if err != nil {
			return err
		}

		eventAt := ParseEventTime(event.DateTime)
		communication, err := tx.Communications().Create(ctx, core.CreateCommunicationInput{
			ClientID:          client.Client.ID,
			LeadID:            &lead.Lead.ID,
			Channel:           core.ChannelWhatsApp,
			Direction:         core.DirectionInbound,
			Body:              body,
			MediaURL:          strings.TrimSpace(event.ContentURI),
			MediaType:         MediaTypeForMessage(event.Type),
			ExternalMessageID: messageID,
			Status:            core.MessageStatusInbound,
			SentAt:            eventAt,
		})
		if err != nil {
			return err
		}

		touchAt := p.now()
		if eventAt != nil {
			touchAt = *eventAt
		}
		if _, err := tx.Leads().TouchInbound(ctx, lead.Lead.ID, touchAt); err != nil {
			return err
		}
		if err := tx.Leads().MarkContacted(ctx, lead.Lead.ID); err != nil {
			return err
		}

		result = EventResult{
			MessageID:       messageID,
			Status:          EventProcessed,
			CommunicationID: communication.ID,
			LeadID:          lead.Lead.ID,
		}
		return nil
	})
	if err != nil {
		return EventResult{}, err
	}
	return result, nil
}

// handleEcho records an outbound message sent from the phone or the provider
// UI rather than through the dispatcher. Sends that already went through the
// dispatcher match on message id and only pick up status and timing.
func (p *Processor) handleEcho(ctx context.Context, event MessageEvent) EventResult {
	normalized := phone.Normalize(event.ChatID)
	client, err := p.stores.Clients().GetByPhone(ctx, normalized)
	if err != nil {
		if core.IsNotFound(err) {
			p.logWarn("echo message for unknown client", "phone", normalized, "message_id", event.MessageID)
			return EventResult{
				MessageID: event.MessageID,
				Status:    EventSkipped,
				Reason:    "unknown client",
			}
		}
		return p.failEvent(event.MessageID, err, event)
	}

	status := strings.TrimSpace(event.Status)
	if status == "" {
		status = core.MessageStatusSent
	}
	eventAt := ParseEventTime(event.DateTime)

	if existing, err := p.stores.Communications().GetByExternalID(ctx, event.MessageID); err == nil {
		updated, updateErr := p.stores.Communications().UpdateStatus(ctx, event.MessageID, status, eventAt, "")
		if updateErr != nil {
			return p.failEvent(event.MessageID, updateErr, event)
		}
		p.logInfo("echo message matched existing communication", "communication_id", existing.ID)
		return EventResult{
			MessageID:       event.MessageID,
			Status:          EventUpdated,
			CommunicationID: updated.ID,
		}
	} else if !core.IsNotFound(err) {
		return p.failEvent(event.MessageID, err, event)
	}

	body := strings.TrimSpace(event.Text)
	if body == "" {
		body = MediaPlaceholderBody
	}

	var leadID *string
	if lead, err := p.stores.Leads().LatestActive(ctx, client.ID); err == nil {
		leadID = &lead.ID
	} else if !core.IsNotFound(err) {
		return p.failEvent(event.MessageID, err, event)
	}

	communication, err := p.stores.Communications().Create(ctx, core.CreateCommunicationInput{
		ClientID:          client.ID,
		LeadID:            leadID,
		Channel:           core.ChannelWhatsApp,
		Direction:         core.DirectionOutbound,
		Body:              body,
		MediaURL:          strings.TrimSpace(event.ContentURI),
		MediaType:         MediaTypeForMessage(event.Type),
		ExternalMessageID: strings.TrimSpace(event.MessageID),
		Status:            status,
		SentAt:            eventAt,
	})
	if err != nil {
		if core.IsConflict(err) {
			// Redelivered echo lost the insert race against itself.
			return EventResult{
				MessageID: event.MessageID,
				Status:    EventSkipped,
				Reason:    "message already recorded",
			}
		}
		return p.failEvent(event.MessageID, err, event)
	}
	return EventResult{
		MessageID:       event.MessageID,
		Status:          EventCreated,
		CommunicationID: communication.ID,
	}
}

func (p *Processor) handleEdited(ctx context.Context, event MessageEvent) EventResult {
	communication, err := p.stores.Communications().GetByExternalID(ctx, event.MessageID)
	if err != nil {
		if core.IsNotFound(err) {
			p.logWarn("edited message not found", "message_id", event.MessageID)
			return EventResult{MessageID: event.MessageID, Status: EventNotFound}
		}
		return p.failEvent(event.MessageID, err, event)
	}

	newText := event.Text
	if strings.TrimSpace(newText) == "" {
		newText = communication.Body
	}
	updated, err := p.stores.Communications().UpdateBody(ctx, communication.ID, newText)
	if err != nil {
		return p.failEvent(event.MessageID, err, event)
	}
	p.logInfo("message edited", "message_id", event.MessageID, "old_text", event.OldText(), "new_text", newText)
	return EventResult{
		MessageID:       event.MessageID,
		Status:          EventUpdated,
		CommunicationID: updated.ID,
	}
}

func (p *Processor) handleDeleted(ctx context.Context, event MessageEvent) EventResult {
	communication, err := p.stores.Communications().GetByExternalID(ctx, event.MessageID)
	if err != nil {
		if core.IsNotFound(err) {
			p.logWarn("deleted message not found", "message_id", event.MessageID)
			return EventResult{MessageID: event.MessageID, Status: EventNotFound}
		}
		return p.failEvent(event.MessageID, err, event)
	}

	body := event.OldText()
	if strings.TrimSpace(body) == "" {
		body = communication.Body
	}
	tombstoned, err := p.stores.Communications().Tombstone(ctx, communication.ID, body, p.now())
	if err != nil {
		return p.failEvent(event.MessageID, err, event)
	}
	p.logInfo("message deleted", "message_id", event.MessageID)
	return EventResult{
		MessageID:       event.MessageID,
		Status:          EventDeleted,
		CommunicationID: tombstoned.ID,
	}
}

// processStatus reconciles one provider delivery report. A report for a
// message the CRM never sent is tolerated as not_found.
func (p *Processor) processStatus(ctx context.Context, event StatusEvent) EventResult {
	status := strings.TrimSpace(event.Status)
	errorMessage := ""
	if status == core.MessageStatusError && event.Error != nil {
		errorMessage = fmt.Sprintf("%s: %s", event.Error.Code, event.Error.Description)
	}

	updated, err := p.stores.Communications().UpdateStatus(
		ctx,
		event.MessageID,
		status,
		ParseEventTime(event.Timestamp),
		errorMessage,
	)
	if err != nil {
		if core.IsNotFound(err) {
			p.logWarn("communication not found for status update", "message_id", event.MessageID)
			return EventResult{MessageID: event.MessageID, Status: EventNotFound}
		}
		p.logError("status handling failed",
			"message_id", event.MessageID,
			"event", compactJSON(event),
			"error", err.Error(),
		)
		return EventResult{MessageID: event.MessageID, Status: EventFailed, Error: err.Error()}
	}
	p.logInfo("status updated", "message_id", event.MessageID, "status", status)
	return EventResult{
		MessageID:       event.MessageID,
		Status:          EventUpdated,
		CommunicationID: updated.ID,
		NewStatus:       status,
	}
}

func (p *Processor) failEvent(messageID string, err error, event MessageEvent) EventResult {
	p.logError("message handling failed",
		"message_id", messageID,
		"chat_id", event.ChatID,
		"event", compactJSON(event),
		"error", err.Error(),
	)
	return EventResult{MessageID: messageID, Status: EventFailed, Error: err.Error()}
}

// compactJSON renders an event for failure logs so the raw payload is
// recoverable from them.
func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(raw)
}

func (p *Processor) logInfo(message string, args ...any) {
	if p == nil || p.logger == nil {
		return
	}
	p.logger.Info(message, args...)
}

func (p *Processor) logWarn(message string, args ...any) {
	if p == nil || p.logger == nil {
		return
	}
	p.logger.Warn(message, args...)
}

func (p *Processor) logError(message string, args ...any) {
	if p == nil || p.logger == nil {
		return
	}
	p.logger.Error(message, args...)
}

func mapKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	return keys
}
