// Package roster drives the activity board: it loads the activity collection,
// keeps a view state in sync with confirmed signups and removals, and renders
// that state for the browser and terminal front-ends.
package roster

import (
	"context"
	"time"

	"github.com/Its-donkey/signup-board/internal/ui/activities"
	"github.com/Its-donkey/signup-board/internal/ui/model"
	"github.com/Its-donkey/signup-board/internal/ui/state"
)

// User-facing messages.
const (
	LoadFailedMessage         = "Failed to load activities. Please try again later."
	SignupFallbackMessage     = "An error occurred"
	SignupFailedMessage       = "Failed to sign up. Please try again."
	UnregisterFallbackMessage = "Failed to unregister participant"
	UnregisterFailedMessage   = "Failed to unregister participant. Please try again."
	UnparsableResponseMessage = "Server error: Could not parse response"
)

// DefaultBannerDuration is how long a signup banner stays visible.
const DefaultBannerDuration = 5 * time.Second

const logCategory = "roster"

// API is the subset of the activities client the view needs.
type API interface {
	ListActivities(ctx context.Context) (model.Activities, error)
	Signup(ctx context.Context, activity, email string) (string, error)
	Unregister(ctx context.Context, activity, email string) (string, error)
}

// Logger receives failures; *logging.Logger satisfies it.
type Logger interface {
	Info(category, message string, fields map[string]any)
	Error(category, message string, err error, fields map[string]any)
}

// ChangeKind says which part of the board needs repainting.
type ChangeKind int

const (
	// ChangeRoster means the whole roster and the select options changed.
	ChangeRoster ChangeKind = iota
	// ChangeCard means one card's participant section changed.
	ChangeCard
	// ChangeBanner means the banner text, kind or visibility changed.
	ChangeBanner
	// ChangeFormReset asks the surface to clear the signup form.
	ChangeFormReset
)

// Change is delivered to the OnChange hook after the state is updated.
type Change struct {
	Kind     ChangeKind
	Activity string
	State    state.ViewState
}

// Options configures a View.
type Options struct {
	API    API
	Logger Logger
	// BannerDuration defaults to DefaultBannerDuration.
	BannerDuration time.Duration
	// AfterFunc schedules the banner hide; defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
	// OnChange is called outside the state lock after every change.
	OnChange func(Change)
}

// Outcome reports the result of a mutating action.
type Outcome struct {
	OK bool
	// Message is the banner text for signups and the alert text for failed removals.
	Message string
}

// View is the board view-model.
type View struct {
	api            API
	logger         Logger
	cache          *state.RosterCache
	bannerDuration time.Duration
	afterFunc      func(time.Duration, func())
	onChange       func(Change)
}

// New constructs a View in the NotLoaded phase.
func New(opts Options) *View {
	v := &View{
		api:            opts.API,
		logger:         opts.Logger,
		cache:          state.NewRosterCache(),
		bannerDuration: opts.BannerDuration,
		afterFunc:      opts.AfterFunc,
		onChange:       opts.OnChange,
	}
	if v.bannerDuration <= 0 {
		v.bannerDuration = DefaultBannerDuration
	}
	if v.afterFunc == nil {
		v.afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return v
}

// State returns a snapshot of the current view state.
func (v *View) State() state.ViewState {
	return v.cache.Snapshot()
}

// Load fetches the activity collection and rebuilds the board from scratch.
func (v *View) Load(ctx context.Context) {
	list, err := v.api.ListActivities(ctx)
	if err != nil {
		v.logError("failed to load activities", err, nil)
		v.cache.Replace(state.NewLoadFailed(LoadFailedMessage))
		v.notify(ChangeRoster, "")
		return
	}
	v.cache.Replace(state.NewLoaded(list))
	v.notify(ChangeRoster, "")
}

// Register signs email up for activity. On success the activity's card gains a
// row for email; the spots-left figure is left as rendered.
func (v *View) Register(ctx context.Context, activity, email string) Outcome {
	fields := map[string]any{"activity": activity, "email": email}
	message, err := v.api.Signup(ctx, activity, email)
	if err != nil {
		apiErr, ok := activities.AsError(err)
		if !ok || apiErr.Kind != activities.KindStatus {
			// Transport and parse failures leave the banner up until the next signup.
			v.logError("error signing up", err, fields)
			v.setBanner(state.BannerError, SignupFailedMessage)
			return Outcome{Message: SignupFailedMessage}
		}
		text := apiErr.Detail
		if text == "" {
			text = SignupFallbackMessage
		}
		v.showBanner(state.BannerError, text)
		return Outcome{Message: text}
	}

	patched := false
	v.cache.Update(func(s *state.ViewState) {
		if s.Phase == state.Loaded {
			patched = s.AppendParticipant(activity, email)
		}
	})
	v.notify(ChangeFormReset, activity)
	if patched {
		v.notify(ChangeCard, activity)
	} else {
		v.logInfo("signup confirmed for an activity with no card", fields)
	}
	v.showBanner(state.BannerSuccess, message)
	return Outcome{OK: true, Message: message}
}

// Unregister removes email from activity. On success the row is dropped, and
// the placeholder replaces the list when it was the last row.
func (v *View) Unregister(ctx context.Context, activity, email string) Outcome {
	fields := map[string]any{"activity": activity, "email": email}
	message, err := v.api.Unregister(ctx, activity, email)
	if err != nil {
		alert := unregisterAlert(err)
		if apiErr, ok := activities.AsError(err); !ok || apiErr.Kind != activities.KindStatus {
			v.logError("error unregistering participant", err, fields)
		}
		return Outcome{Message: alert}
	}

	removed := false
	v.cache.Update(func(s *state.ViewState) {
		if s.Phase == state.Loaded {
			removed = s.RemoveParticipant(activity, email)
		}
	})
	if removed {
		v.notify(ChangeCard, activity)
	}
	return Outcome{OK: true, Message: message}
}

// Dispatch runs the operation named by a.
func (v *View) Dispatch(ctx context.Context, a Action) Outcome {
	switch a.Kind {
	case ActionRegister:
		return v.Register(ctx, a.Activity, a.Email)
	case ActionUnregister:
		return v.Unregister(ctx, a.Activity, a.Email)
	default:
		return Outcome{Message: "unknown action " + string(a.Kind)}
	}
}

func unregisterAlert(err error) string {
	apiErr, ok := activities.AsError(err)
	if !ok {
		return UnregisterFailedMessage
	}
	switch apiErr.Kind {
	case activities.KindStatus:
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return UnregisterFallbackMessage
	case activities.KindDecode:
		return UnparsableResponseMessage
	default:
		return UnregisterFailedMessage
	}
}

// showBanner displays a message and schedules its hide. Hides are neither
// cancelled nor coalesced: an earlier timer can hide a later message.
func (v *View) showBanner(kind state.BannerKind, text string) {
	v.setBanner(kind, text)
	v.afterFunc(v.bannerDuration, v.hideBanner)
}

func (v *View) setBanner(kind state.BannerKind, text string) {
	v.cache.Update(func(s *state.ViewState) {
		s.Banner = state.Banner{Kind: kind, Text: text, Visible: true}
	})
	v.notify(ChangeBanner, "")
}

func (v *View) hideBanner() {
	v.cache.Update(func(s *state.ViewState) {
		s.Banner.Visible = false
	})
	v.notify(ChangeBanner, "")
}

func (v *View) notify(kind ChangeKind, activity string) {
	if v.onChange == nil {
		return
	}
	v.onChange(Change{Kind: kind, Activity: activity, State: v.cache.Snapshot()})
}

func (v *View) logError(message string, err error, fields map[string]any) {
	if v.logger == nil {
		return
	}
	v.logger.Error(logCategory, message, err, fields)
}

func (v *View) logInfo(message string, fields map[string]any) {
	if v.logger == nil {
		return
	}
	v.logger.Info(logCategory, message, fields)
}
