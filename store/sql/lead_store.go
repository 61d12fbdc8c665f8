package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type LeadStore struct {
	db bun.IDB
}

func NewLeadStore(db bun.IDB) (*LeadStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &LeadStore{db: db}, nil
}

func (s *LeadStore) Create(ctx context.Context, in core.CreateLeadInput) (core.Lead, error) {
	if s == nil || s.db == nil {
		return core.Lead{}, fmt.Errorf("sqlstore: lead store is not configured")
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return core.Lead{}, fmt.Errorf("sqlstore: lead client id is required")
	}
	status := in.Status
	if strings.TrimSpace(string(status)) == "" {
		status = core.LeadStatusNew
	}
	source := in.Source
	if strings.TrimSpace(string(source)) == "" {
		source = core.LeadSourceWhatsApp
	}

	now := time.Now().UTC()
	record := &leadRecord{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Status:    string(status),
		Source:    string(source),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return core.Lead{}, err
	}
	return record.toDomain(), nil
}

func (s *LeadStore) Get(ctx context.Context, id string) (core.Lead, error) {
	if s == nil || s.db == nil {
		return core.Lead{}, fmt.Errorf("sqlstore: lead store is not configured")
	}
	record := &leadRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Lead{}, fmt.Errorf("sqlstore: %w: id %q", core.ErrLeadNotFound, id)
		}
		return core.Lead{}, err
	}
	return record.toDomain(), nil
}

func (s *LeadStore) LatestActive(ctx context.Context, clientID string) (core.Lead, error) {
	if s == nil || s.db == nil {
		return core.Lead{}, fmt.Errorf("sqlstore: lead store is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return core.Lead{}, fmt.Errorf("sqlstore: lead client id is required")
	}
	record := &leadRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.client_id = ?", clientID).
		Where("?TableAlias.status NOT IN (?)", bun.In([]string{
			string(core.LeadStatusWon),
			string(core.LeadStatusLost),
		})).
		OrderExpr("?TableAlias.updated_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Lead{}, fmt.Errorf("sqlstore: %w: no active lead for client %q", core.ErrLeadNotFound, clientID)
		}
		return core.Lead{}, err
	}
	return record.toDomain(), nil
}

func (s *LeadStore) TouchInbound(ctx context.Context, leadID string, at time.Time) (core.Lead, error) {
	if s == nil || s.db == nil {
		return core.Lead{}, fmt.Errorf("sqlstore: lead store is not configured")
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return core.Lead{}, fmt.Errorf("sqlstore: lead id is required")
	}
	now := time.Now().UTC()
	result, err := s.db.NewUpdate().
		Model((*leadRecord)(nil)).
		Set("unread_messages = unread_messages + 1").
		Set("last_message_at = ?", at.UTC()).
		Set("updated_at = ?", now).
		Where("id = ?", leadID).
		Exec(ctx)
	if err != nil {
		return core.Lead{}, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.Lead{}, fmt.Errorf("sqlstore: %w: id %q", core.ErrLeadNotFound, leadID)
	}
	return s.Get(ctx, leadID)
}

func (s *LeadStore) MarkContacted(ctx context.Context, leadID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: lead store is not configured")
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return fmt.Errorf("sqlstore: lead id is required")
	}
	now := time.Now().UTC()
	_, err := s.db.NewUpdate().
		Model((*leadRecord)(nil)).
		Set("status = ?", string(core.LeadStatusContacted)).
		Set("updated_at = ?", now).
		Where("id = ?", leadID).
		Where("status = ?", string(core.LeadStatusNew)).
		Exec(ctx)
	return err
}

func (s *LeadStore) MarkMessagesRead(ctx context.Context, leadID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: lead store is not configured")
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return fmt.Errorf("sqlstore: lead id is required")
	}
	now := time.Now().UTC()
	result, err := s.db.NewUpdate().
		Model((*leadRecord)(nil)).
		Set("unread_messages = 0").
		Set("updated_at = ?", now).
		Where("id = ?", leadID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("sqlstore: %w: id %q", core.ErrLeadNotFound, leadID)
	}
	return nil
}

var _ core.LeadStore = (*LeadStore)(nil)
