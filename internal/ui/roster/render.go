package roster

import (
	"fmt"
	"html"
	"strings"

	"github.com/Its-donkey/signup-board/internal/ui/state"
)

const (
	// LoadingMessage fills the roster before the first load resolves.
	LoadingMessage = "Loading activities..."
	// SelectPrompt is the empty-valued first option of the activity select.
	SelectPrompt = "-- Select an activity --"
)

// CardID is the DOM id of the card at index.
func CardID(index int) string {
	return fmt.Sprintf("activity-card-%d", index)
}

// RenderRoster renders the contents of the roster container.
func RenderRoster(s state.ViewState) string {
	switch s.Phase {
	case state.LoadFailed:
		return "<p>" + html.EscapeString(s.FailureMessage) + "</p>"
	case state.Loaded:
	default:
		return "<p>" + LoadingMessage + "</p>"
	}

	var builder strings.Builder
	for _, card := range s.Cards {
		builder.WriteString(`<div class="activity-card" id="` + CardID(card.Index) + `">`)
		builder.WriteString("<h4>" + html.EscapeString(card.Name) + "</h4>")
		builder.WriteString("<p>" + html.EscapeString(card.Description) + "</p>")
		builder.WriteString("<p><strong>Schedule:</strong> " + html.EscapeString(card.Schedule) + "</p>")
		fmt.Fprintf(&builder, "<p><strong>Availability:</strong> %d spots left</p>", card.SpotsLeft)
		builder.WriteString(`<div class="participants">`)
		builder.WriteString(RenderParticipants(card))
		builder.WriteString("</div>")
		builder.WriteString("</div>")
	}
	return builder.String()
}

// RenderParticipants renders the inside of one card's participants section.
func RenderParticipants(card state.Card) string {
	var builder strings.Builder
	builder.WriteString(`<div class="participants-title">Participants</div>`)
	if len(card.Participants) == 0 {
		builder.WriteString(`<p class="info">` + state.NoParticipantsText + `</p>`)
		return builder.String()
	}
	builder.WriteString(`<ul class="participants-list">`)
	for _, p := range card.Participants {
		remove := Action{Kind: ActionUnregister, Activity: card.Name, Email: p}
		builder.WriteString(`<li class="participant-item">`)
		builder.WriteString(html.EscapeString(p))
		builder.WriteString(`<span class="delete-icon" title="Remove participant" role="button" ` + remove.Attributes() + `>✖</span>`)
		builder.WriteString("</li>")
	}
	builder.WriteString("</ul>")
	return builder.String()
}

// RenderOptions renders the activity select's options. A failed or pending
// load leaves the select empty.
func RenderOptions(s state.ViewState) string {
	if s.Phase != state.Loaded {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(`<option value="">` + html.EscapeString(SelectPrompt) + `</option>`)
	for _, card := range s.Cards {
		name := html.EscapeString(card.Name)
		builder.WriteString(`<option value="` + name + `">` + name + `</option>`)
	}
	return builder.String()
}

// BannerClass is the class attribute of the message element.
func BannerClass(b state.Banner) string {
	class := string(b.Kind)
	if !b.Visible {
		if class == "" {
			return "hidden"
		}
		class += " hidden"
	}
	return class
}
