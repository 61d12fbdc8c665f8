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

type ClientStore struct {
	db bun.IDB
}

func NewClientStore(db bun.IDB) (*ClientStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &ClientStore{db: db}, nil
}

func (s *ClientStore) Create(ctx context.Context, in core.CreateClientInput) (core.Client, error) {
	if s == nil || s.db == nil {
		return core.Client{}, fmt.Errorf("sqlstore: client store is not configured")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return core.Client{}, fmt.Errorf("sqlstore: client phone is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = core.DefaultClientName
	}
	language := strings.TrimSpace(in.PreferredLanguage)
	if language == "" {
		language = core.DefaultLanguage
	}

	now := time.Now().UTC()
	record := &clientRecord{
		ID:                uuid.NewString(),
		Name:              name,
		Phone:             phone,
		Email:             strings.TrimSpace(in.Email),
		PreferredLanguage: language,
		Notes:             strings.TrimSpace(in.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return core.Client{}, conflictError(err, fmt.Sprintf("client with phone %q already exists", phone))
		}
		return core.Client{}, err
	}
	return record.toDomain(), nil
}

func (s *ClientStore) Get(ctx context.Context, id string) (core.Client, error) {
	if s == nil || s.db == nil {
		return core.Client{}, fmt.Errorf("sqlstore: client store is not configured")
	}
	record := &clientRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Client{}, fmt.Errorf("sqlstore: %w: id %q", core.ErrClientNotFound, id)
		}
		return core.Client{}, err
	}
	return record.toDomain(), nil
}

func (s *ClientStore) GetByPhone(ctx context.Context, phone string) (core.Client, error) {
	if s == nil || s.db == nil {
		return core.Client{}, fmt.Errorf("sqlstore: client store is not configured")
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return core.Client{}, fmt.Errorf("sqlstore: client phone is required")
	}
	record := &clientRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.phone = ?", phone).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Client{}, fmt.Errorf("sqlstore: %w: phone %q", core.ErrClientNotFound, phone)
		}
		return core.Client{}, err
	}
	return record.toDomain(), nil
}

var _ core.ClientStore = (*ClientStore)(nil)
