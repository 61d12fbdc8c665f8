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

type CommunicationStore struct {
	db bun.IDB
}

func NewCommunicationStore(db bun.IDB) (*CommunicationStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &CommunicationStore{db: db}, nil
}

func (s *CommunicationStore) Create(ctx context.Context, in core.CreateCommunicationInput) (core.Communication, error) {
	if s == nil || s.db == nil {
		return core.Communication{}, fmt.Errorf("sqlstore: communication store is not configured")
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return core.Communication{}, fmt.Errorf("sqlstore: communication client id is required")
	}
	channel := in.Channel
	if strings.TrimSpace(string(channel)) == "" {
		channel = core.ChannelWhatsApp
	}
	direction := in.Direction
	if strings.TrimSpace(string(direction)) == "" {
		direction = core.DirectionOutbound
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = core.MessageStatusPending
	}

	now := time.Now().UTC()
	record := &communicationRecord{
		ID:                uuid.NewString(),
		ClientID:          clientID,
		LeadID:            cloneString(in.LeadID),
		BookingID:         cloneString(in.BookingID),
		Channel:           string(channel),
		Direction:         string(direction),
		Subject:           strings.TrimSpace(in.Subject),
		Body:              in.Body,
		MediaURL:          strings.TrimSpace(in.MediaURL),
		MediaType:         strings.TrimSpace(in.MediaType),
		ExternalMessageID: strings.TrimSpace(in.ExternalMessageID),
		Status:            status,
		SentAt:            cloneTime(in.SentAt),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return core.Communication{}, conflictError(err, fmt.Sprintf(
				"communication with external id %q already exists", record.ExternalMessageID))
		}
		return core.Communication{}, err
	}
	return record.toDomain(), nil
}

func (s *CommunicationStore) Get(ctx context.Context, id string) (core.Communication, error) {
	if s == nil || s.db == nil {
		return core.Communication{}, fmt.Errorf("sqlstore: communication store is not configured")
	}
	record := &communicationRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Communication{}, fmt.Errorf("sqlstore: %w: id %q", core.ErrCommunicationNotFound, id)
		}
		return core.Communication{}, err
	}
	return record.toDomain(), nil
}

func (s *CommunicationStore) GetByExternalID(ctx context.Context, externalID string) (core.Communication, error) {
	if s == nil || s.db == nil {
		return core.Communication{}, fmt.Errorf("sqlstore: communication store is not configured")
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return core.Communication{}, fmt.Errorf("sqlstore: external message id is required")
	}
	record := &communicationRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.external_message_id = ?", externalID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Communication{}, fmt.Errorf(
				"sqlstore: %w: external id %q", core.ErrCommunicationNotFound, externalID)
		}
		return core.Communication{}, err
	}
	return record.toDomain(), nil
}

func (s *CommunicationStore) MarkSent(ctx context.Context, id string, externalID string, at time.Time) (core.Communication, error) {
	if s == nil || s.db == nil {
		return core.Communication{}, fmt.Errorf("sqlstore: communication store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Communication{}, fmt.Errorf("sqlstore: communication id is required")
	}
	now := time.Now().UTC()
	result, err := s.db.NewUpdate().
		Model((*communicationRecord)(nil)).
		Set("status = ?", core.MessageStatusSent).
		Set("external_message_id = ?", strings.TrimSpace(externalID)).
		Set("sent_at = ?", at.UTC()).
		Set("error_message = ''").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Communication{}, conflictError(err, fmt.Sprintf(
				"communication with external id %q already exists", externalID))
		}
		return core.Communication{}, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.Communication{}, fmt.Errorf("sqlstore: %w: id %q", core.ErrCommunicationNotFound, id)
	}
	return s.Get(ctx, id)
}

func (s *CommunicationStore) MarkFailed(ctx context.Context, id string, errorMessage string) (core.Communication, error) {
	if s == nil || s.db == nil {
		return core.Communication{}, fmt.Errorf("sqlstore: communication store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Communication{}, fmt.Errorf("sqlstore: communication id is required")
	}
	now := time.Now().UTC()
	result, err := s.db.NewUpdate().
		Model((*communicationRecord)(nil)).
		Set("status = ?", core.MessageStatusError).
		Set("error_message = ?", strings.TrimSpace(errorMessage)).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.Communication{}, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.Communication{}, fmt.Errorf("sqlstore: %w: id %q", core.ErrCommunicationNotFound, id)
	}
	return s.Get(ctx, id)
}

func (s *CommunicationStore) UpdateStatus(ctx context.Context, externalID string, status string, sentAt *time.Time, errorMessage string) (core.Communication, error) {
	if s == nil || s.db == nil {
		return core.Communication{}, fmt.Errorf("sqlstore: communication store is not configured")
	}
	current, err := s.GetByExternalID(ctx, externalID)
	if err != nil {
		return core.Communication{}, err
	}

	now := time.Now().UTC()
	query := s.db.NewUpdate().
		Model((*communicationRecord)(nil)).
		Set("status = ?", strings.TrimSpace(status)).
		Set("updated_at = ?", now).
		Where("id = ?", current.ID)
	if sentAt != nil && current.SentAt == nil {
		query = query.Set("sent_at = ?", sentAt.UTC())
	}
	if strings.TrimSpace(errorMessage) != "" {
		query = query.Set("error_message = ?", strings.TrimSpace(errorMessage))
	}
	if _, err := query.Exec(ctx); err != nil {
		return core.Communication{}, err
	}
	return s.Get(ctx, current.ID)
}

func (s *CommunicationStore) UpdateBody(ctx context.Context, id string, body string) (core.Communication, error) {
	if s == nil || s.db == nil {
		return core.Communication{}, fmt.Errorf("sqlstore: communication store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Communication{}, fmt.Errorf("sqlstore: communication id is required")
	}
	now := time.Now().UTC()
	result, err := s.db.NewUpdate().
		Model((*communicationRecord)(nil)).
		Set("body = ?", body).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.Communication{}, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.Communication{}, fmt.Errorf("sqlstore: %w: id %q", core.ErrCommunicationNotFound, id)
	}
	return s.Get(ctx, id)
}

func (s *CommunicationStore) Tombstone(ctx context.Context, id string, body string, at time.Time) (core.Communication, error) {
	if s == nil || s.db == nil {
		return core.Communication{}, fmt.Errorf("sqlstore: communication store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Communication{}, fmt.Errorf("sqlstore: communication id is required")
	}
	now := time.Now().UTC()
	result, err := s.db.NewUpdate().
		Model((*communicationRecord)(nil)).
		Set("body = ?", body).
		Set("deleted_at = ?", at.UTC()).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.Communication{}, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.Communication{}, fmt.Errorf("sqlstore: %w: id %q", core.ErrCommunicationNotFound, id)
	}
	return s.Get(ctx, id)
}

var _ core.CommunicationStore = (*CommunicationStore)(nil)
