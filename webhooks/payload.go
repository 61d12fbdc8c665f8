package webhooks

import (
	"strings"
	"time"
)

// Payload is the top-level webhook body the gateway posts. Any combination of
// sections may be present in one delivery.
type Payload struct {
	Test          bool           `json:"test,omitempty"`
	Messages      []MessageEvent `json:"messages,omitempty"`
	Statuses      []StatusEvent  `json:"statuses,omitempty"`
	CreateContact map[string]any `json:"createContact,omitempty"`
	CreateDeal    map[string]any `json:"createDeal,omitempty"`
}

// MessageEvent is one entry of the messages[] section. The isDeleted and
// isEdited flags take priority over the echo/new distinction.
type MessageEvent struct {
	MessageID  string       `json:"messageId"`
	ChannelID  string       `json:"channelId,omitempty"`
	ChatType   string       `json:"chatType,omitempty"`
	ChatID     string       `json:"chatId"`
	DateTime   string       `json:"dateTime,omitempty"`
	Type       string       `json:"type,omitempty"`
	Status     string       `json:"status,omitempty"`
	Text       string       `json:"text,omitempty"`
	ContentURI string       `json:"contentUri,omitempty"`
	IsEcho     bool         `json:"isEcho,omitempty"`
	IsEdited   bool         `json:"isEdited,omitempty"`
	IsDeleted  bool         `json:"isDeleted,omitempty"`
	Contact    *ContactInfo `json:"contact,omitempty"`
	OldInfo    *OldInfo     `json:"oldInfo,omitempty"`
}

type ContactInfo struct {
	Name      string `json:"name,omitempty"`
	AvatarURI string `json:"avatarUri,omitempty"`
}

type OldInfo struct {
	OldText string `json:"oldText,omitempty"`
}

// StatusEvent is one entry of the statuses[] section, keyed by the provider
// message id assigned at send time.
type StatusEvent struct {
	MessageID string       `json:"messageId"`
	Status    string       `json:"status"`
	Timestamp string       `json:"timestamp,omitempty"`
	Error     *StatusError `json:"error,omitempty"`
}

type StatusError struct {
	Code        string `json:"error,omitempty"`
	Description string `json:"description,omitempty"`
}

// SenderName returns the contact display name carried by the event, if any.
func (e MessageEvent) SenderName() string {
	if e.Contact == nil {
		return ""
	}
	return strings.TrimSpace(e.Contact.Name)
}

// OldText returns the pre-edit or pre-delete text the provider attached.
func (e MessageEvent) OldText() string {
	if e.OldInfo == nil {
		return ""
	}
	return e.OldInfo.OldText
}

// MediaTypeForMessage maps the provider message type onto the stored media
// type. Plain text and unknown types map to none.
func MediaTypeForMessage(messageType string) string {
	switch strings.TrimSpace(strings.ToLower(messageType)) {
	case "image", "video", "audio", "document", "vcard", "geo":
		return strings.TrimSpace(strings.ToLower(messageType))
	default:
		return ""
	}
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseEventTime parses the provider's timestamp strings. Unparseable or
// empty values yield nil rather than an error; callers fall back to their
// own clock.
func ParseEventTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range eventTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}
