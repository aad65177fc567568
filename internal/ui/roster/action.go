package roster

import (
	"html"
	"strings"
)

// ActionKind names a board operation a control can trigger.
type ActionKind string

const (
	ActionRegister   ActionKind = "register"
	ActionUnregister ActionKind = "unregister"
)

// Data attribute names carried by action controls in the rendered markup.
const (
	AttrAction   = "data-action"
	AttrActivity = "data-activity"
	AttrEmail    = "data-email"
)

// Action is a board operation keyed by activity and email. Rendered controls
// carry it as data attributes so one delegated handler serves every row.
type Action struct {
	Kind     ActionKind
	Activity string
	Email    string
}

// Attributes renders the action as escaped HTML data attributes.
func (a Action) Attributes() string {
	var b strings.Builder
	b.WriteString(AttrAction + `="` + html.EscapeString(string(a.Kind)) + `"`)
	b.WriteString(` ` + AttrActivity + `="` + html.EscapeString(a.Activity) + `"`)
	b.WriteString(` ` + AttrEmail + `="` + html.EscapeString(a.Email) + `"`)
	return b.String()
}

// ActionFromAttributes rebuilds an Action from an element's data attributes.
// get returns "" for a missing attribute.
func ActionFromAttributes(get func(name string) string) (Action, bool) {
	kind := ActionKind(get(AttrAction))
	switch kind {
	case ActionRegister, ActionUnregister:
	default:
		return Action{}, false
	}
	a := Action{
		Kind:     kind,
		Activity: get(AttrActivity),
		Email:    get(AttrEmail),
	}
	if a.Activity == "" || a.Email == "" {
		return Action{}, false
	}
	return a, true
}
