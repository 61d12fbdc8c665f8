// Package identity maps gateway senders onto CRM records. Every webhook event
// arrives keyed by phone number; the resolver turns that into a client row and
// an active lead, creating either on first contact.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/phone"
)

type Config struct {
	Clients core.ClientStore
	Leads   core.LeadStore
	Logger  core.Logger
}

type Resolver struct {
	clients core.ClientStore
	leads   core.LeadStore
	logger  core.Logger
}

func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Clients == nil {
		return nil, fmt.Errorf("identity: client store is required")
	}
	if cfg.Leads == nil {
		return nil, fmt.Errorf("identity: lead store is required")
	}
	return &Resolver{
		clients: cfg.Clients,
		leads:   cfg.Leads,
		logger:  cfg.Logger,
	}, nil
}

// WithStores returns a resolver bound to a different store set, typically the
// transaction-bound view inside an inbound pipeline.
func (r *Resolver) WithStores(stores core.Stores) *Resolver {
	if r == nil || stores == nil {
		return r
	}
	return &Resolver{
		clients: stores.Clients(),
		leads:   stores.Leads(),
		logger:  r.logger,
	}
}

type ResolvedClient struct {
	Client  core.Client
	Created bool
}

// ResolveClient finds the client owning the given phone, creating one when no
// record exists. Raw gateway chat ids are accepted; the phone is normalized
// before lookup. A concurrent insert of the same phone loses the unique index
// race and recovers by re-reading the winner's row.
func (r *Resolver) ResolveClient(ctx context.Context, rawPhone string, name string) (ResolvedClient, error) {
	if r == nil || r.clients == nil {
		return ResolvedClient{}, fmt.Errorf("identity: resolver is not configured")
	}
	normalized := phone.Normalize(rawPhone)
	if normalized == "" {
		return ResolvedClient{}, fmt.Errorf("identity: phone %q is empty after normalization", rawPhone)
	}

	existing, err := r.clients.GetByPhone(ctx, normalized)
	if err == nil {
		return ResolvedClient{Client: existing}, nil
	}
	if !core.IsNotFound(err) {
		return ResolvedClient{}, err
	}

	created, createErr := r.clients.Create(ctx, core.CreateClientInput{
		Name:  strings.TrimSpace(name),
		Phone: normalized,
	})
	if createErr == nil {
		return ResolvedClient{Client: created, Created: true}, nil
	}
	if !core.IsConflict(createErr) {
		return ResolvedClient{}, createErr
	}

	// Lost the insert race; the winner's row must exist now. Postgres
	// aborts the surrounding transaction on the failed insert, so the
	// refetch can itself fail there. Keep the conflict in the chain so
	// the caller retries in a fresh transaction and reads the winner.
	winner, refetchErr := r.clients.GetByPhone(ctx, normalized)
	if refetchErr != nil {
		return ResolvedClient{}, fmt.Errorf(
			"identity: refetch after phone conflict for %q: %v: %w", normalized, refetchErr, createErr)
	}
	return ResolvedClient{Client: winner}, nil
}

type ResolvedLead struct {
	Lead    core.Lead
	Created bool
}

// ResolveActiveLead returns the client's most recent open lead, creating a
// fresh whatsapp-sourced lead when every existing one is won or lost.
func (r *Resolver) ResolveActiveLead(ctx context.Context, clientID string) (ResolvedLead, error) {
	if r == nil || r.leads == nil {
		return ResolvedLead{}, fmt.Errorf("identity: resolver is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ResolvedLead{}, fmt.Errorf("identity: client id is required")
	}

	existing, err := r.leads.LatestActive(ctx, clientID)
	if err == nil {
		return ResolvedLead{Lead: existing}, nil
	}
	if !core.IsNotFound(err) {
		return ResolvedLead{}, err
	}

	created, createErr := r.leads.Create(ctx, core.CreateLeadInput{
		ClientID: clientID,
		Status:   core.LeadStatusNew,
		Source:   core.LeadSourceWhatsApp,
	})
	if createErr != nil {
		return ResolvedLead{}, createErr
	}
	if r.logger != nil {
		r.logger.Info("created lead for client", "client_id", clientID, "lead_id", created.ID)
	}
	return ResolvedLead{Lead: created, Created: true}, nil
}
