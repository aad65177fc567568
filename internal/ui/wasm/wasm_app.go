//go:build js && wasm

package wasm

import (
	"context"
	"strings"
	"sync"
	"syscall/js"

	"github.com/Its-donkey/signup-board/internal/ui/roster"
)

// Element ids of the board page shell.
const (
	rosterListID  = "activities-list"
	selectID      = "activity"
	signupFormID  = "signup-form"
	emailInputID  = "email"
	messageID     = "message"
	actionElement = "[data-action]"
)

var (
	// Document references the global browser document for DOM interactions.
	Document       js.Value
	rosterList     js.Value
	activitySelect js.Value
	signupForm     js.Value
	messageDiv     js.Value
	// handlers stores bound js.Func callbacks so they can be released later.
	handlers []boundHandler
	board    *roster.View
)

func bindElements() bool {
	rosterList = Document.Call("getElementById", rosterListID)
	activitySelect = Document.Call("getElementById", selectID)
	signupForm = Document.Call("getElementById", signupFormID)
	messageDiv = Document.Call("getElementById", messageID)
	return rosterList.Truthy() && activitySelect.Truthy() && signupForm.Truthy() && messageDiv.Truthy()
}

// boundHandler remembers where a callback was attached so it can be removed.
type boundHandler struct {
	node  js.Value
	event string
	fn    js.Func
}

func (h boundHandler) release() {
	h.node.Call("removeEventListener", h.event, h.fn)
	h.fn.Release()
}

func addHandler(node js.Value, event string, handler func(js.Value, []js.Value) any) {
	if !node.Truthy() {
		return
	}
	fn := js.FuncOf(handler)
	node.Call("addEventListener", event, fn)
	handlers = append(handlers, boundHandler{node: node, event: event, fn: fn})
}

// releaseHandlers detaches and frees every bound callback.
func releaseHandlers() {
	for _, h := range handlers {
		h.release()
	}
	handlers = nil
}

// bindEvents wires the page. done is closed when the page is being unloaded.
func bindEvents(done chan<- struct{}) {
	releaseHandlers()

	var once sync.Once
	addHandler(js.Global(), "pagehide", func(this js.Value, args []js.Value) any {
		// A page kept in the back/forward cache comes back and needs its handlers.
		if len(args) > 0 && args[0].Get("persisted").Truthy() {
			return nil
		}
		once.Do(func() {
			releaseHandlers()
			close(done)
		})
		return nil
	})

	addHandler(signupForm, "submit", func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			args[0].Call("preventDefault")
		}
		email := inputValue(emailInputID)
		activity := inputValue(selectID)
		go board.Register(context.Background(), activity, email)
		return nil
	})

	// One delegated listener serves every participant row, present and future.
	addHandler(rosterList, "click", func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		target := args[0].Get("target")
		if !target.Truthy() || target.Get("closest").Type() != js.TypeFunction {
			return nil
		}
		control := target.Call("closest", actionElement)
		if !control.Truthy() {
			return nil
		}
		action, ok := roster.ActionFromAttributes(func(name string) string {
			value := control.Call("getAttribute", name)
			if value.Type() != js.TypeString {
				return ""
			}
			return value.String()
		})
		if !ok {
			return nil
		}
		args[0].Call("preventDefault")
		go func() {
			outcome := board.Dispatch(context.Background(), action)
			if !outcome.OK && action.Kind == roster.ActionUnregister {
				alert(outcome.Message)
			}
		}()
		return nil
	})
}

func inputValue(id string) string {
	el := Document.Call("getElementById", id)
	if !el.Truthy() {
		return ""
	}
	return el.Get("value").String()
}

func alert(message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	js.Global().Call("alert", message)
}
