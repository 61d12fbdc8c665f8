package dispatch

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-crm-messaging/core"
)

// Template is a reusable outbound message body with literal {{placeholder}}
// markers. Placeholders without a value in the render context are left
// untouched so a misconfigured template stays visible instead of silently
// losing text.
type Template struct {
	Name     string
	Category string
	Content  string
}

// TourInfo carries the tour attributes templates can reference. Tours live
// outside this engine; callers copy the fields they want rendered.
type TourInfo struct {
	Name         string
	Price        string
	DurationDays int
}

// BookingInfo carries the booking attributes templates can reference.
type BookingInfo struct {
	Reference     string
	Total         string
	DepartureDate *time.Time
}

// TemplateContext supplies values for template placeholders. Every field is
// optional; only placeholders backed by a present field are substituted.
type TemplateContext struct {
	Client  *core.Client
	Lead    *core.Lead
	Tour    *TourInfo
	Booking *BookingInfo
}

// Render substitutes the known placeholders from tc into the template
// content. Substitution is literal string replacement, not an expression
// language.
func (t Template) Render(tc TemplateContext) string {
	result := t.Content

	if tc.Client != nil {
		result = strings.ReplaceAll(result, "{{name}}", tc.Client.Name)
		result = strings.ReplaceAll(result, "{{client_name}}", tc.Client.Name)
	}
	if tc.Lead != nil {
		result = strings.ReplaceAll(result, "{{lead_id}}", tc.Lead.ID)
	}
	if tc.Tour != nil {
		result = strings.ReplaceAll(result, "{{tour_name}}", tc.Tour.Name)
		result = strings.ReplaceAll(result, "{{tour_price}}", tc.Tour.Price)
		result = strings.ReplaceAll(result, "{{tour_duration}}", strconv.Itoa(tc.Tour.DurationDays)+" days")
	}
	if tc.Booking != nil {
		result = strings.ReplaceAll(result, "{{booking_reference}}", tc.Booking.Reference)
		result = strings.ReplaceAll(result, "{{booking_total}}", tc.Booking.Total)
		if tc.Booking.DepartureDate != nil {
			result = strings.ReplaceAll(result, "{{departure_date}}", tc.Booking.DepartureDate.Format("02.01.2006"))
		}
	}

	return result
}
