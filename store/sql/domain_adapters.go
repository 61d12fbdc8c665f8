package sqlstore

import (
	"time"

	"github.com/goliatone/go-crm-messaging/core"
)

func (r *clientRecord) toDomain() core.Client {
	if r == nil {
		return core.Client{}
	}
	return core.Client{
		ID:                r.ID,
		Name:              r.Name,
		Phone:             r.Phone,
		Email:             r.Email,
		PreferredLanguage: r.PreferredLanguage,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (r *leadRecord) toDomain() core.Lead {
	if r == nil {
		return core.Lead{}
	}
	return core.Lead{
		ID:             r.ID,
		ClientID:       r.ClientID,
		Status:         core.LeadStatus(r.Status),
		Source:         core.LeadSource(r.Source),
		UnreadMessages: r.UnreadMessages,
		LastMessageAt:  cloneTime(r.LastMessageAt),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r *communicationRecord) toDomain() core.Communication {
	if r == nil {
		return core.Communication{}
	}
	return core.Communication{
		ID:                r.ID,
		ClientID:          r.ClientID,
		LeadID:            cloneString(r.LeadID),
		BookingID:         cloneString(r.BookingID),
		Channel:           core.Channel(r.Channel),
		Direction:         core.Direction(r.Direction),
		Subject:           r.Subject,
		Body:              r.Body,
		MediaURL:          r.MediaURL,
		MediaType:         r.MediaType,
		ExternalMessageID: r.ExternalMessageID,
		Status:            r.Status,
		ErrorMessage:      r.ErrorMessage,
		SentAt:            cloneTime(r.SentAt),
		DeletedAt:         cloneTime(r.DeletedAt),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func cloneTime(input *time.Time) *time.Time {
	if input == nil {
		return nil
	}
	value := *input
	return &value
}

func cloneString(input *string) *string {
	if input == nil {
		return nil
	}
	value := *input
	return &value
}
