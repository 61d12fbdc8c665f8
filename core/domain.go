package core

import (
	"strings"
	"time"
)

const DefaultClientName = "WhatsApp Contact"

const DefaultLanguage = "en"

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

// IsActive reports whether a lead in this status still represents an open
// sales opportunity. Inbound resolution only ever targets active leads.
func (s LeadStatus) IsActive() bool {
	return s != LeadStatusWon && s != LeadStatusLost
}

type LeadSource string

const (
	LeadSourceWhatsApp LeadSource = "whatsapp"
	LeadSourceWebsite  LeadSource = "website"
	LeadSourceManual   LeadSource = "manual"
	LeadSourceImport   LeadSource = "import"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
	ChannelPhone    Channel = "phone"
	ChannelSMS      Channel = "sms"
)

// Message lifecycle statuses. The provider reports sent/delivered/read/error
// through status webhooks; pending only ever exists locally between the
// optimistic write and the gateway response.
const (
	MessageStatusPending   = "pending"
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusError     = "error"
	MessageStatusInbound   = "inbound"
)

// Client is a real-world contact, unique on its normalized phone number.
type Client struct {
	ID                string
	Name              string
	Phone             string
	Email             string
	PreferredLanguage string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Lead is one sales opportunity belonging to a client. A client accumulates
// leads over time but at most one active lead receives new inbound messages.
type Lead struct {
	ID             string
	ClientID       string
	Status         LeadStatus
	Source         LeadSource
	UnreadMessages int
	LastMessageAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Communication is one exchanged message. ExternalMessageID is the
// provider-assigned identifier used to correlate webhook events back to the
// record; it is unique once set.
type Communication struct {
	ID                string
	ClientID          string
	LeadID            *string
	BookingID         *string
	Channel           Channel
	Direction         Direction
	Subject           string
	Body              string
	MediaURL          string
	MediaType         string
	ExternalMessageID string
	Status            string
	ErrorMessage      string
	SentAt            *time.Time
	DeletedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Deleted reports whether the communication has been tombstoned.
func (c Communication) Deleted() bool {
	return c.DeletedAt != nil
}

func (c Communication) HasMedia() bool {
	return strings.TrimSpace(c.MediaURL) != ""
}

type CreateClientInput struct {
	Name              string
	Phone             string
	Email             string
	PreferredLanguage string
	Notes             string
}

type CreateLeadInput struct {
	ClientID string
	Status   LeadStatus
	Source   LeadSource
}

type CreateCommunicationInput struct {
	ClientID          string
	LeadID            *string
	BookingID         *string
	Channel           Channel
	Direction         Direction
	Subject           string
	Body              string
	MediaURL          string
	MediaType         string
	ExternalMessageID string
	Status            string
	SentAt            *time.Time
}
