//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/signup-board/internal/ui/roster"
	"github.com/Its-donkey/signup-board/internal/ui/state"
)

// applyChange repaints the part of the page a view change touched.
func applyChange(change roster.Change) {
	switch change.Kind {
	case roster.ChangeRoster:
		renderRoster(change.State)
	case roster.ChangeCard:
		renderCard(change.State, change.Activity)
	case roster.ChangeBanner:
		renderBanner(change.State.Banner)
	case roster.ChangeFormReset:
		if signupForm.Truthy() {
			signupForm.Call("reset")
		}
	}
}

func renderRoster(s state.ViewState) {
	if !rosterList.Truthy() {
		return
	}
	rosterList.Set("innerHTML", roster.RenderRoster(s))
	if activitySelect.Truthy() {
		activitySelect.Set("innerHTML", roster.RenderOptions(s))
	}
}

// renderCard swaps only the participants section of one card.
func renderCard(s state.ViewState, activity string) {
	card := s.Card(activity)
	if card == nil {
		return
	}
	el := Document.Call("getElementById", roster.CardID(card.Index))
	if !el.Truthy() {
		return
	}
	section := el.Call("querySelector", ".participants")
	if !section.Truthy() {
		return
	}
	section.Set("innerHTML", roster.RenderParticipants(*card))
}

func renderBanner(b state.Banner) {
	if !messageDiv.Truthy() {
		return
	}
	messageDiv.Set("textContent", b.Text)
	messageDiv.Set("className", roster.BannerClass(b))
}

// consoleWriter forwards structured log lines to the browser console.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	console := js.Global().Get("console")
	if console.Truthy() {
		console.Call("log", string(p))
	}
	return len(p), nil
}
