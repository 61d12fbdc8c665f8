package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-crm-messaging/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// HistoryStore serves the read side of the conversation log: ordered message
// history per client or lead, and the unread-lead worklist. It always runs
// against the root database handle, never inside a transaction.
type HistoryStore struct {
	communications repository.Repository[*communicationRecord]
	leads          repository.Repository[*leadRecord]
}

func NewHistoryStore(db *bun.DB) (*HistoryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	communicationRepo := repository.NewRepository[*communicationRecord](db, communicationHandlers())
	if validator, ok := communicationRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid communication repository wiring: %w", err)
		}
	}
	leadRepo := repository.NewRepository[*leadRecord](db, leadHandlers())
	if validator, ok := leadRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid lead repository wiring: %w", err)
		}
	}
	return &HistoryStore{
		communications: communicationRepo,
		leads:          leadRepo,
	}, nil
}

// Conversation returns a client's messages oldest first. Tombstoned entries
// are included by default since their restored body is part of the visible
// thread.
func (s *HistoryStore) Conversation(ctx context.Context, clientID string, includeDeleted bool) ([]core.Communication, error) {
	if s == nil || s.communications == nil {
		return nil, fmt.Errorf("sqlstore: history store is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("sqlstore: client id is required")
	}

	criteria := []repository.SelectCriteria{
		repository.SelectBy("client_id", "=", clientID),
		repository.OrderBy("created_at ASC"),
	}
	if !includeDeleted {
		criteria = append(criteria, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.deleted_at IS NULL")
		}))
	}

	records, _, err := s.communications.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]core.Communication, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// LeadHistory returns the messages attributed to one lead, oldest first.
func (s *HistoryStore) LeadHistory(ctx context.Context, leadID string) ([]core.Communication, error) {
	if s == nil || s.communications == nil {
		return nil, fmt.Errorf("sqlstore: history store is not configured")
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return nil, fmt.Errorf("sqlstore: lead id is required")
	}
	records, _, err := s.communications.List(ctx,
		repository.SelectBy("lead_id", "=", leadID),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Communication, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// UnreadLeads returns active leads with pending unread messages, most
// recently touched first.
func (s *HistoryStore) UnreadLeads(ctx context.Context) ([]core.Lead, error) {
	if s == nil || s.leads == nil {
		return nil, fmt.Errorf("sqlstore: history store is not configured")
	}
	records, _, err := s.leads.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.unread_messages > 0").
				Where("?TableAlias.status NOT IN (?)", bun.In([]string{
					string(core.LeadStatusWon),
					string(core.LeadStatusLost),
				}))
		}),
		repository.OrderBy("last_message_at DESC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Lead, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
