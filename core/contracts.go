package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type ClientStore interface {
	Create(ctx context.Context, in CreateClientInput) (Client, error)
	Get(ctx context.Context, id string) (Client, error)
	GetByPhone(ctx context.Context, phone string) (Client, error)
}

type LeadStore interface {
	Create(ctx context.Context, in CreateLeadInput) (Lead, error)
	Get(ctx context.Context, id string) (Lead, error)
	// LatestActive returns the most recently updated lead for the client
	// whose status is neither won nor lost.
	LatestActive(ctx context.Context, clientID string) (Lead, error)
	// TouchInbound increments the unread counter and refreshes the
	// last-message timestamp.
	TouchInbound(ctx context.Context, leadID string, at time.Time) (Lead, error)
	// MarkContacted transitions a lead from new to contacted. Any other
	// current status is left untouched.
	MarkContacted(ctx context.Context, leadID string) error
	MarkMessagesRead(ctx context.Context, leadID string) error
}

type CommunicationStore interface {
	Create(ctx context.Context, in CreateCommunicationInput) (Communication, error)
	Get(ctx context.Context, id string) (Communication, error)
	GetByExternalID(ctx context.Context, externalID string) (Communication, error)
	// MarkSent records a successful gateway dispatch: status, external id
	// assignment, and the sent timestamp.
	MarkSent(ctx context.Context, id string, externalID string, at time.Time) (Communication, error)
	MarkFailed(ctx context.Context, id string, errorMessage string) (Communication, error)
	// UpdateStatus applies a provider-reported delivery status keyed by the
	// external message id. sentAt is only applied when the record has no
	// sent timestamp yet; errorMessage is only persisted for error statuses.
	UpdateStatus(ctx context.Context, externalID string, status string, sentAt *time.Time, errorMessage string) (Communication, error)
	UpdateBody(ctx context.Context, id string, body string) (Communication, error)
	// Tombstone soft-deletes the record, restoring the given body as the
	// visible remnant of the message.
	Tombstone(ctx context.Context, id string, body string, at time.Time) (Communication, error)
}

// Stores bundles the persistence surface the engine needs. RunInTx yields a
// view of the same stores bound to a single database transaction so the
// inbound pipeline can make its multi-table writes all or nothing.
type Stores interface {
	Clients() ClientStore
	Leads() LeadStore
	Communications() CommunicationStore
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}
