package sqlstore

import (
	"context"
	"fmt"

	"github.com/goliatone/go-crm-messaging/core"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// RepositoryFactory wires the SQL stores over one bun handle and implements
// core.Stores. RunInTx hands callers the same stores rebound to a single
// transaction so multi-table work commits or rolls back as a unit.
type RepositoryFactory struct {
	db *bun.DB

	clientStore        *ClientStore
	leadStore          *LeadStore
	communicationStore *CommunicationStore
	historyStore       *HistoryStore
}

func NewRepositoryFactory(db *bun.DB) (*RepositoryFactory, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	factory := &RepositoryFactory{db: db}
	if err := factory.initStores(); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	if client == nil {
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	}
	db := client.DB()
	if db == nil {
		return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
	}
	return NewRepositoryFactory(db)
}

func (f *RepositoryFactory) initStores() error {
	clientStore, err := NewClientStore(f.db)
	if err != nil {
		return err
	}
	leadStore, err := NewLeadStore(f.db)
	if err != nil {
		return err
	}
	communicationStore, err := NewCommunicationStore(f.db)
	if err != nil {
		return err
	}
	historyStore, err := NewHistoryStore(f.db)
	if err != nil {
		return err
	}
	f.clientStore = clientStore
	f.leadStore = leadStore
	f.communicationStore = communicationStore
	f.historyStore = historyStore
	return nil
}

func (f *RepositoryFactory) Clients() core.ClientStore {
	if f == nil {
		return nil
	}
	return f.clientStore
}

func (f *RepositoryFactory) Leads() core.LeadStore {
	if f == nil {
		return nil
	}
	return f.leadStore
}

func (f *RepositoryFactory) Communications() core.CommunicationStore {
	if f == nil {
		return nil
	}
	return f.communicationStore
}

func (f *RepositoryFactory) History() *HistoryStore {
	if f == nil {
		return nil
	}
	return f.historyStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) RunInTx(ctx context.Context, fn func(ctx context.Context, tx core.Stores) error) error {
	if f == nil || f.db == nil {
		return fmt.Errorf("sqlstore: repository factory is not configured")
	}
	if fn == nil {
		return fmt.Errorf("sqlstore: transaction callback is required")
	}
	return f.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &txStores{
			clients:        &ClientStore{db: tx},
			leads:          &LeadStore{db: tx},
			communications: &CommunicationStore{db: tx},
		})
	})
}

// txStores is the transaction-bound view RunInTx yields. Nested transactions
// are not supported; RunInTx inside the callback fails fast.
type txStores struct {
	clients        *ClientStore
	leads          *LeadStore
	communications *CommunicationStore
}

func (s *txStores) Clients() core.ClientStore {
	if s == nil {
		return nil
	}
	return s.clients
}

func (s *txStores) Leads() core.LeadStore {
	if s == nil {
		return nil
	}
	return s.leads
}

func (s *txStores) Communications() core.CommunicationStore {
	if s == nil {
		return nil
	}
	return s.communications
}

func (s *txStores) RunInTx(context.Context, func(ctx context.Context, tx core.Stores) error) error {
	return fmt.Errorf("sqlstore: nested transactions are not supported")
}

var _ core.Stores = (*RepositoryFactory)(nil)
var _ core.Stores = (*txStores)(nil)
