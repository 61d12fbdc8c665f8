package dispatch_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/dispatch"
)

func TestTemplateRender_AllPlaceholders(t *testing.T) {
	departure := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	template := dispatch.Template{
		Content: "Hi {{name}}! {{tour_name}} ({{tour_duration}}) costs {{tour_price}}. " +
			"Booking {{booking_reference}} totals {{booking_total}}, departing {{departure_date}}. " +
			"Lead: {{lead_id}}.",
	}

	got := template.Render(dispatch.TemplateContext{
		Client:  &core.Client{Name: "Jane"},
		Lead:    &core.Lead{ID: "lead-1"},
		Tour:    &dispatch.TourInfo{Name: "Altai Loop", Price: "1500.0", DurationDays: 7},
		Booking: &dispatch.BookingInfo{Reference: "BK-42", Total: "3000.0", DepartureDate: &departure},
	})

	want := "Hi Jane! Altai Loop (7 days) costs 1500.0. " +
		"Booking BK-42 totals 3000.0, departing 15.06.2026. " +
		"Lead: lead-1."
	if got != want {
		t.Fatalf("render mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestTemplateRender_UnmatchedPlaceholdersKept(t *testing.T) {
	template := dispatch.Template{Content: "Hi {{name}}, tour {{tour_name}} at {{tour_price}}"}

	got := template.Render(dispatch.TemplateContext{
		Client: &core.Client{Name: "Jane"},
	})

	want := "Hi Jane, tour {{tour_name}} at {{tour_price}}"
	if got != want {
		t.Fatalf("render mismatch: got %q, want %q", got, want)
	}
}

func TestTemplateRender_ClientNameVariants(t *testing.T) {
	template := dispatch.Template{Content: "{{name}} / {{client_name}}"}
	got := template.Render(dispatch.TemplateContext{Client: &core.Client{Name: "Jane"}})
	if got != "Jane / Jane" {
		t.Fatalf("expected both client placeholders substituted, got %q", got)
	}
}
