package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SendMessageMessage]          = (*SendMessageCommand)(nil)
	_ gocmd.Commander[EditMessageMessage]          = (*EditMessageCommand)(nil)
	_ gocmd.Commander[DeleteMessageMessage]        = (*DeleteMessageCommand)(nil)
	_ gocmd.Commander[MarkLeadMessagesReadMessage] = (*MarkLeadMessagesReadCommand)(nil)
)
