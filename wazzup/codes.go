package wazzup

// Error codes documented by the wazzup24 API, mapped to human-readable
// messages. Codes missing from this table fall back to the description the
// provider sent, then to "unknown error".
var errorMessages = map[string]string{
	"BALANCE_IS_EMPTY":                                "WABA subscription balance has run out of funds",
	"MESSAGE_WRONG_CONTENT_TYPE":                      "Invalid content type",
	"MESSAGE_ONLY_TEXT_OR_CONTENT":                    "Message can contain text or content, not both",
	"MESSAGE_NOTHING_TO_SEND":                         "No message text was found",
	"MESSAGE_TEXT_TOO_LONG":                           "Message text exceeds maximum length",
	"MESSAGES_TOO_LONG_INSTAGRAM":                     "Instagram message text exceeds 10,000 characters",
	"MESSAGES_TOO_LONG_TELEGRAM":                      "Telegram message text exceeds 4096 characters",
	"MESSAGES_TOO_LONG_WABA":                          "WABA message text is too long",
	"MESSAGES_CONTENT_CAN_NOT_BE_BLANK":               "File content cannot be empty",
	"MESSAGES_CONTENT_SIZE_EXCEEDED":                  "Content exceeds 10 MB limit",
	"MESSAGES_TEXT_CAN_NOT_BE_BLANK":                  "Text message cannot be empty",
	"CHANNEL_NOT_FOUND":                               "Channel not found in integration",
	"CHANNEL_BLOCKED":                                 "Channel is turned off",
	"CHANNEL_WAPI_REJECTED":                           "WABA channel is blocked",
	"MESSAGE_DOWNLOAD_CONTENT_ERROR":                  "Failed to download content from link",
	"MESSAGES_NOT_TEXT_FIRST":                         "Cannot write first on Inbox tariff",
	"MESSAGES_IS_SPAM":                                "Message rated as spam",
	"VALIDATION_ERROR":                                "Parameter validation error",
	"CHANNEL_NO_MONEY":                                "Channel is not paid",
	"MESSAGE_CHANNEL_UNAVAILABLE":                     "Channel is not available",
	"MESSAGES_ABNORMAL_SEND":                          "Chat type does not match contact source",
	"MESSAGES_INVALID_CONTACT_TYPE":                   "Chat type mismatch",
	"MESSAGES_CAN_NOT_ADD":                            "Unexpected server error",
	"REPEATED_CRM_MESSAGE_ID":                         "Message with same crmMessageId already sent",
	"INVALID_MESSAGE_DATA":                            "Message data is invalid",
	"WRONG_TRANSPORT":                                 "Transport type mismatch",
	"MESSAGES_EDITING_TIME_EXPIRED":                   "Message editing time expired",
	"MESSAGES_CONTAIN_BUTTONS":                        "Message contains buttons and cannot be edited",
	"CHANNEL_INVALID_TRANSPORT_FOR_EDITING":           "Channel does not support editing",
	"CHANNEL_INVALID_TRANSPORT_FOR_CONTENT_EDITING":   "Channel does not support content editing",
	"CHAT_NO_ACCESS":                                  "No access to chat",
	"MESSAGES_NOT_FOUND":                              "Message not found",
	"CHANNEL_LIMIT_EXCEEDED":                          "Active dialogue limit exceeded",
	"MESSAGES_DELETION_TIME_EXPIRED":                  "Message deletion time expired",
	"CHANNEL_INVALID_TRANSPORT_FOR_DELETION":          "Channel does not support deletion",
	"TEMPLATE_REJECTED":                               "Meta has restricted the template",
	"BAD_CONTACT":                                     "Number may not be on WhatsApp or uses old version",
}

// ErrorMessage returns the human-readable message for a provider error code
// and whether the code is known.
func ErrorMessage(code string) (string, bool) {
	message, ok := errorMessages[code]
	return message, ok
}
