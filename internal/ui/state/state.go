package state

import (
	"github.com/Its-donkey/signup-board/internal/ui/model"
)

// Phase is the load result the board view is showing.
type Phase int

const (
	// NotLoaded is the state before the first load resolves.
	NotLoaded Phase = iota
	// Loaded means Cards mirrors the last successful fetch plus confirmed edits.
	Loaded
	// LoadFailed means the roster shows FailureMessage and nothing else.
	LoadFailed
)

// NoParticipantsText is shown in place of an empty participant list.
const NoParticipantsText = "No participants yet. Be the first!"

// Card is one rendered activity.
type Card struct {
	// Index is the card's position at the last full render; it keys DOM ids.
	Index       int
	Name        string
	Description string
	Schedule    string
	// SpotsLeft is captured at full render time and is not re-derived after edits.
	SpotsLeft    int
	Participants []string
}

// HasParticipant reports whether email has a row on the card.
func (c Card) HasParticipant(email string) bool {
	for _, p := range c.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// BannerKind selects the banner styling.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the transient message area above the signup form.
type Banner struct {
	Kind    BannerKind
	Text    string
	Visible bool
}

// ViewState is everything the board renders from.
type ViewState struct {
	Phase          Phase
	Cards          []Card
	FailureMessage string
	Banner         Banner
}

// NewLoaded builds a Loaded state from a fetched collection.
func NewLoaded(activities model.Activities) ViewState {
	cards := make([]Card, 0, len(activities))
	for i, a := range activities {
		participants := make([]string, len(a.Participants))
		copy(participants, a.Participants)
		cards = append(cards, Card{
			Index:        i,
			Name:         a.Name,
			Description:  a.Description,
			Schedule:     a.Schedule,
			SpotsLeft:    a.SpotsLeft(),
			Participants: participants,
		})
	}
	return ViewState{Phase: Loaded, Cards: cards}
}

// NewLoadFailed builds the error placeholder state.
func NewLoadFailed(message string) ViewState {
	return ViewState{Phase: LoadFailed, FailureMessage: message}
}

// Card returns a pointer to the card for the named activity.
func (s *ViewState) Card(name string) *Card {
	for i := range s.Cards {
		if s.Cards[i].Name == name {
			return &s.Cards[i]
		}
	}
	return nil
}

// AppendParticipant adds a row for email to the named card. It reports false
// when no such card exists.
func (s *ViewState) AppendParticipant(activity, email string) bool {
	card := s.Card(activity)
	if card == nil {
		return false
	}
	card.Participants = append(card.Participants, email)
	return true
}

// RemoveParticipant drops the first row for email from the named card. It
// reports false when the card or the row is missing.
func (s *ViewState) RemoveParticipant(activity, email string) bool {
	card := s.Card(activity)
	if card == nil {
		return false
	}
	for i, p := range card.Participants {
		if p == email {
			card.Participants = append(card.Participants[:i], card.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares no slices with s.
func (s ViewState) Clone() ViewState {
	out := s
	if s.Cards != nil {
		out.Cards = make([]Card, len(s.Cards))
		for i, c := range s.Cards {
			c.Participants = append([]string(nil), c.Participants...)
			out.Cards[i] = c
		}
	}
	return out
}
