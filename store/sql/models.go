package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type clientRecord struct {
	bun.BaseModel `bun:"table:crm_clients,alias:cc"`

	ID                string    `bun:"id,pk"`
	Name              string    `bun:"name,notnull"`
	Phone             string    `bun:"phone,notnull"`
	Email             string    `bun:"email"`
	PreferredLanguage string    `bun:"preferred_language,notnull"`
	Notes             string    `bun:"notes"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type leadRecord struct {
	bun.BaseModel `bun:"table:crm_leads,alias:cl"`

	ID             string     `bun:"id,pk"`
	ClientID       string     `bun:"client_id,notnull"`
	Status         string     `bun:"status,notnull"`
	Source         string     `bun:"source,notnull"`
	UnreadMessages int        `bun:"unread_messages,notnull"`
	LastMessageAt  *time.Time `bun:"last_message_at,nullzero"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type communicationRecord struct {
	bun.BaseModel `bun:"table:crm_communications,alias:cm"`

	ID                string     `bun:"id,pk"`
	ClientID          string     `bun:"client_id,notnull"`
	LeadID            *string    `bun:"lead_id"`
	BookingID         *string    `bun:"booking_id"`
	Channel           string     `bun:"channel,notnull"`
	Direction         string     `bun:"direction,notnull"`
	Subject           string     `bun:"subject"`
	Body              string     `bun:"body"`
	MediaURL          string     `bun:"media_url"`
	MediaType         string     `bun:"media_type"`
	ExternalMessageID string     `bun:"external_message_id"`
	Status            string     `bun:"status,notnull"`
	ErrorMessage      string     `bun:"error_message"`
	SentAt            *time.Time `bun:"sent_at,nullzero"`
	DeletedAt         *time.Time `bun:"deleted_at,nullzero"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
