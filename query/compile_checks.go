package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-crm-messaging/core"
)

var (
	_ gocmd.Querier[ConversationMessage, []core.Communication] = (*ConversationQuery)(nil)
	_ gocmd.Querier[LeadHistoryMessage, []core.Communication]  = (*LeadHistoryQuery)(nil)
	_ gocmd.Querier[UnreadLeadsMessage, []core.Lead]           = (*UnreadLeadsQuery)(nil)
	_ gocmd.Querier[ClientByPhoneMessage, core.Client]         = (*ClientByPhoneQuery)(nil)
)
