//go:build js && wasm

package wasm

import (
	"context"
	"syscall/js"

	"github.com/Its-donkey/signup-board/internal/ui/activities"
	"github.com/Its-donkey/signup-board/internal/ui/roster"
	"github.com/Its-donkey/signup-board/logging"
)

// RunApp binds the activity board to the page and blocks until the page unloads.
func RunApp() {
	done := make(chan struct{})
	window := js.Global()
	Document = window.Get("document")

	if !bindElements() {
		window.Get("console").Call("error", "activity board elements missing")
		return
	}

	logger := logging.New("board-ui", logging.INFO, consoleWriter{})
	board = roster.New(roster.Options{
		// Same-origin relative URLs; the UI server proxies /activities.
		API:      &activities.Client{},
		Logger:   logger,
		OnChange: applyChange,
	})
	bindEvents(done)

	go board.Load(context.Background())
	<-done
}
