package query

import "strings"

const (
	TypeConversation  = "messaging.query.conversation"
	TypeLeadHistory   = "messaging.query.lead_history"
	TypeUnreadLeads   = "messaging.query.unread_leads"
	TypeClientByPhone = "messaging.query.client_by_phone"
)

type ConversationMessage struct {
	ClientID string
	// IncludeDeleted keeps tombstoned messages in the transcript.
	IncludeDeleted bool
}

func (ConversationMessage) Type() string { return TypeConversation }

func (m ConversationMessage) Validate() error {
	if strings.TrimSpace(m.ClientID) == "" {
		return queryValidationError("client_id", "client id is required")
	}
	return nil
}

type LeadHistoryMessage struct {
	LeadID string
}

func (LeadHistoryMessage) Type() string { return TypeLeadHistory }

func (m LeadHistoryMessage) Validate() error {
	if strings.TrimSpace(m.LeadID) == "" {
		return queryValidationError("lead_id", "lead id is required")
	}
	return nil
}

type UnreadLeadsMessage struct{}

func (UnreadLeadsMessage) Type() string { return TypeUnreadLeads }

func (UnreadLeadsMessage) Validate() error { return nil }

type ClientByPhoneMessage struct {
	Phone string
}

func (ClientByPhoneMessage) Type() string { return TypeClientByPhone }

func (m ClientByPhoneMessage) Validate() error {
	if strings.TrimSpace(m.Phone) == "" {
		return queryValidationError("phone", "phone is required")
	}
	return nil
}
