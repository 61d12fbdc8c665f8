package query

import (
	"context"

	"github.com/goliatone/go-crm-messaging/core"
)

// HistoryReader serves conversation transcripts and inbox views. The SQL
// history store satisfies it.
type HistoryReader interface {
	Conversation(ctx context.Context, clientID string, includeDeleted bool) ([]core.Communication, error)
	LeadHistory(ctx context.Context, leadID string) ([]core.Communication, error)
	UnreadLeads(ctx context.Context) ([]core.Lead, error)
}

type ConversationQuery struct {
	reader HistoryReader
}

func NewConversationQuery(reader HistoryReader) *ConversationQuery {
	return &ConversationQuery{reader: reader}
}

func (q *ConversationQuery) Query(ctx context.Context, msg ConversationMessage) ([]core.Communication, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: history reader is required")
	}
	return q.reader.Conversation(ctx, msg.ClientID, msg.IncludeDeleted)
}

type LeadHistoryQuery struct {
	reader HistoryReader
}

func NewLeadHistoryQuery(reader HistoryReader) *LeadHistoryQuery {
	return &LeadHistoryQuery{reader: reader}
}

func (q *LeadHistoryQuery) Query(ctx context.Context, msg LeadHistoryMessage) ([]core.Communication, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: history reader is required")
	}
	return q.reader.LeadHistory(ctx, msg.LeadID)
}

type UnreadLeadsQuery struct {
	reader HistoryReader
}

func NewUnreadLeadsQuery(reader HistoryReader) *UnreadLeadsQuery {
	return &UnreadLeadsQuery{reader: reader}
}

func (q *UnreadLeadsQuery) Query(ctx context.Context, msg UnreadLeadsMessage) ([]core.Lead, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: history reader is required")
	}
	return q.reader.UnreadLeads(ctx)
}

type ClientByPhoneQuery struct {
	clients core.ClientStore
}

func NewClientByPhoneQuery(clients core.ClientStore) *ClientByPhoneQuery {
	return &ClientByPhoneQuery{clients: clients}
}

func (q *ClientByPhoneQuery) Query(ctx context.Context, msg ClientByPhoneMessage) (core.Client, error) {
	if q == nil || q.clients == nil {
		return core.Client{}, queryDependencyError("query: client store is required")
	}
	return q.clients.GetByPhone(ctx, msg.Phone)
}
