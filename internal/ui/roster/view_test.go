package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Its-donkey/signup-board/internal/ui/activities"
	"github.com/Its-donkey/signup-board/internal/ui/model"
	"github.com/Its-donkey/signup-board/internal/ui/state"
)

type stubAPI struct {
	list          model.Activities
	listErr       error
	signupMsg     string
	signupErr     error
	unregisterMsg string
	unregisterErr error
}

func (s *stubAPI) ListActivities(context.Context) (model.Activities, error) {
	return s.list, s.listErr
}

func (s *stubAPI) Signup(_ context.Context, activity, email string) (string, error) {
	if s.signupErr != nil {
		return "", s.signupErr
	}
	if s.signupMsg != "" {
		return s.signupMsg, nil
	}
	return "Signed up " + email + " for " + activity, nil
}

func (s *stubAPI) Unregister(_ context.Context, activity, email string) (string, error) {
	if s.unregisterErr != nil {
		return "", s.unregisterErr
	}
	if s.unregisterMsg != "" {
		return s.unregisterMsg, nil
	}
	return "Unregistered " + email + " from " + activity, nil
}

type captureLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (c *captureLogger) Info(_, message string, _ map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos = append(c.infos, message)
}

func (c *captureLogger) Error(_, message string, _ error, _ map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, message)
}

// fakeTimers records scheduled hides so tests fire them explicitly.
type fakeTimers struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, fn)
	f.delays = append(f.delays, d)
}

func (f *fakeTimers) fire(i int) {
	f.mu.Lock()
	fn := f.pending[i]
	f.mu.Unlock()
	fn()
}

func (f *fakeTimers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func boardActivities() model.Activities {
	return model.Activities{
		{Name: "Chess Club", ActivityDetails: model.ActivityDetails{Description: "Learn strategies", Schedule: "Fridays, 3:30 PM - 5:00 PM", MaxParticipants: 12, Participants: []string{"michael@mergington.edu", "daniel@mergington.edu"}}},
		{Name: "Programming Class", ActivityDetails: model.ActivityDetails{Description: "Learn programming", Schedule: "Tuesdays", MaxParticipants: 20, Participants: []string{"emma@mergington.edu"}}},
	}
}

type harness struct {
	view    *View
	api     *stubAPI
	logger  *captureLogger
	timers  *fakeTimers
	changes []Change
}

func newHarness(api *stubAPI) *harness {
	h := &harness{api: api, logger: &captureLogger{}, timers: &fakeTimers{}}
	h.view = New(Options{
		API:       api,
		Logger:    h.logger,
		AfterFunc: h.timers.AfterFunc,
		OnChange:  func(c Change) { h.changes = append(h.changes, c) },
	})
	return h
}

func (h *harness) card(name string) *state.Card {
	s := h.view.State()
	return s.Card(name)
}

func (h *harness) kinds() []ChangeKind {
	out := make([]ChangeKind, 0, len(h.changes))
	for _, c := range h.changes {
		out = append(out, c.Kind)
	}
	return out
}

func TestLoadSuccessBuildsCards(t *testing.T) {
	h := newHarness(&stubAPI{list: boardActivities()})
	if h.view.State().Phase != state.NotLoaded {
		t.Fatalf("expected NotLoaded before load")
	}
	h.view.Load(context.Background())

	s := h.view.State()
	if s.Phase != state.Loaded || len(s.Cards) != 2 {
		t.Fatalf("expected two loaded cards, got %+v", s)
	}
	if s.Cards[0].SpotsLeft != 10 {
		t.Fatalf("expected 10 spots left, got %d", s.Cards[0].SpotsLeft)
	}
	if len(h.changes) != 1 || h.changes[0].Kind != ChangeRoster {
		t.Fatalf("expected one roster change, got %v", h.kinds())
	}
}

func TestLoadFailureShowsMessage(t *testing.T) {
	h := newHarness(&stubAPI{listErr: &activities.Error{Kind: activities.KindTransport, Op: "list activities", Err: errors.New("dial")}})
	h.view.Load(context.Background())

	s := h.view.State()
	if s.Phase != state.LoadFailed || s.FailureMessage != LoadFailedMessage {
		t.Fatalf("expected load failure state, got %+v", s)
	}
	if len(h.logger.errors) != 1 {
		t.Fatalf("expected failure to be logged, got %v", h.logger.errors)
	}
	if RenderOptions(s) != "" {
		t.Fatalf("expected empty select after failed load")
	}
}

func TestReloadReplacesEditsWithServerState(t *testing.T) {
	api := &stubAPI{list: boardActivities()}
	h := newHarness(api)
	h.view.Load(context.Background())
	h.view.Register(context.Background(), "Chess Club", "new@mergington.edu")

	h.view.Load(context.Background())
	if got := h.card("Chess Club").Participants; len(got) != 2 {
		t.Fatalf("expected reload to show server roster, got %v", got)
	}
}

func TestRegisterPatchesCardAndKeepsSpotsLeft(t *testing.T) {
	h := newHarness(&stubAPI{list: boardActivities()})
	h.view.Load(context.Background())
	h.changes = nil

	out := h.view.Register(context.Background(), "Chess Club", "new@mergington.edu")
	if !out.OK || out.Message != "Signed up new@mergington.edu for Chess Club" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	s := h.view.State()
	card := s.Card("Chess Club")
	want := []string{"michael@mergington.edu", "daniel@mergington.edu", "new@mergington.edu"}
	if len(card.Participants) != 3 || card.Participants[2] != want[2] {
		t.Fatalf("expected %v, got %v", want, card.Participants)
	}
	if card.SpotsLeft != 10 {
		t.Fatalf("expected spots left to stay 10, got %d", card.SpotsLeft)
	}
	if other := s.Card("Programming Class"); len(other.Participants) != 1 {
		t.Fatalf("expected other card untouched, got %v", other.Participants)
	}
	if s.Banner.Kind != state.BannerSuccess || !s.Banner.Visible || s.Banner.Text != out.Message {
		t.Fatalf("unexpected banner %+v", s.Banner)
	}

	kinds := h.kinds()
	want2 := []ChangeKind{ChangeFormReset, ChangeCard, ChangeBanner}
	if len(kinds) != len(want2) {
		t.Fatalf("expected changes %v, got %v", want2, kinds)
	}
	for i := range want2 {
		if kinds[i] != want2[i] {
			t.Fatalf("expected changes %v, got %v", want2, kinds)
		}
	}
	if h.changes[1].Activity != "Chess Club" {
		t.Fatalf("expected card change for Chess Club, got %q", h.changes[1].Activity)
	}
	if h.timers.count() != 1 || h.timers.delays[0] != DefaultBannerDuration {
		t.Fatalf("expected one hide after %s, got %v", DefaultBannerDuration, h.timers.delays)
	}

	h.timers.fire(0)
	if h.view.State().Banner.Visible {
		t.Fatalf("expected banner hidden after timer")
	}
}

func TestRegisterFirstParticipantReplacesPlaceholder(t *testing.T) {
	list := model.Activities{{Name: "Art Club", ActivityDetails: model.ActivityDetails{MaxParticipants: 3, Participants: []string{}}}}
	h := newHarness(&stubAPI{list: list})
	h.view.Load(context.Background())

	h.view.Register(context.Background(), "Art Club", "first@mergington.edu")
	html := RenderParticipants(*h.card("Art Club"))
	doc := parseHTML(t, html)
	if doc.Find("p.info").Length() != 0 {
		t.Fatalf("expected placeholder removed, got %s", html)
	}
	if got := doc.Find("li.participant-item").Length(); got != 1 {
		t.Fatalf("expected one row, got %d", got)
	}
}

func TestRegisterStatusErrorShowsDetail(t *testing.T) {
	h := newHarness(&stubAPI{
		list:      boardActivities(),
		signupErr: &activities.Error{Kind: activities.KindStatus, Op: "signup", Status: 400, Detail: "Student is already signed up"},
	})
	h.view.Load(context.Background())

	out := h.view.Register(context.Background(), "Chess Club", "michael@mergington.edu")
	if out.OK || out.Message != "Student is already signed up" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	s := h.view.State()
	if s.Banner.Kind != state.BannerError || s.Banner.Text != "Student is already signed up" {
		t.Fatalf("unexpected banner %+v", s.Banner)
	}
	if len(s.Card("Chess Club").Participants) != 2 {
		t.Fatalf("expected roster unchanged after failed signup")
	}
	if h.timers.count() != 1 {
		t.Fatalf("expected hide to be scheduled")
	}
}

func TestRegisterStatusErrorWithoutDetailUsesFallback(t *testing.T) {
	h := newHarness(&stubAPI{signupErr: &activities.Error{Kind: activities.KindStatus, Status: 500}})
	out := h.view.Register(context.Background(), "Chess Club", "a@x")
	if out.Message != SignupFallbackMessage {
		t.Fatalf("expected fallback, got %q", out.Message)
	}
}

func TestRegisterTransportErrorLeavesBannerUp(t *testing.T) {
	h := newHarness(&stubAPI{signupErr: &activities.Error{Kind: activities.KindTransport, Err: errors.New("offline")}})
	out := h.view.Register(context.Background(), "Chess Club", "a@x")
	if out.Message != SignupFailedMessage {
		t.Fatalf("expected %q, got %q", SignupFailedMessage, out.Message)
	}
	s := h.view.State()
	if !s.Banner.Visible || s.Banner.Kind != state.BannerError {
		t.Fatalf("expected visible error banner, got %+v", s.Banner)
	}
	if h.timers.count() != 0 {
		t.Fatalf("expected no hide to be scheduled")
	}
	if len(h.logger.errors) != 1 {
		t.Fatalf("expected failure logged, got %v", h.logger.errors)
	}
}

func TestRegisterBeforeLoadOnlyShowsBanner(t *testing.T) {
	h := newHarness(&stubAPI{})
	out := h.view.Register(context.Background(), "Chess Club", "a@x")
	if !out.OK {
		t.Fatalf("expected success, got %+v", out)
	}
	if h.view.State().Phase != state.NotLoaded {
		t.Fatalf("expected phase unchanged")
	}
	if len(h.logger.infos) != 1 {
		t.Fatalf("expected missing card to be logged, got %v", h.logger.infos)
	}
}

func TestEarlierHideTimerHidesLaterBanner(t *testing.T) {
	h := newHarness(&stubAPI{list: boardActivities()})
	h.view.Load(context.Background())

	h.view.Register(context.Background(), "Chess Club", "one@mergington.edu")
	h.view.Register(context.Background(), "Chess Club", "two@mergington.edu")
	if h.timers.count() != 2 {
		t.Fatalf("expected two hides, got %d", h.timers.count())
	}
	h.timers.fire(0)
	if h.view.State().Banner.Visible {
		t.Fatalf("expected first timer to hide the second banner")
	}
}

func TestUnregisterLastRowRestoresPlaceholder(t *testing.T) {
	h := newHarness(&stubAPI{list: boardActivities()})
	h.view.Load(context.Background())
	h.changes = nil

	out := h.view.Unregister(context.Background(), "Programming Class", "emma@mergington.edu")
	if !out.OK {
		t.Fatalf("expected success, got %+v", out)
	}
	card := h.card("Programming Class")
	if len(card.Participants) != 0 {
		t.Fatalf("expected empty roster, got %v", card.Participants)
	}
	if card.SpotsLeft != 19 {
		t.Fatalf("expected spots left unchanged at 19, got %d", card.SpotsLeft)
	}
	doc := parseHTML(t, RenderParticipants(*card))
	if doc.Find("p.info").Text() != state.NoParticipantsText {
		t.Fatalf("expected placeholder, got %q", doc.Find("p.info").Text())
	}
	if len(h.changes) != 1 || h.changes[0].Kind != ChangeCard {
		t.Fatalf("expected a single card change, got %v", h.kinds())
	}
	if h.view.State().Banner.Visible {
		t.Fatalf("expected unregister to leave the banner alone")
	}
}

func TestUnregisterMissingRowIsNoop(t *testing.T) {
	h := newHarness(&stubAPI{list: boardActivities()})
	h.view.Load(context.Background())
	h.changes = nil

	out := h.view.Unregister(context.Background(), "Chess Club", "ghost@mergington.edu")
	if !out.OK {
		t.Fatalf("expected success, got %+v", out)
	}
	if len(h.changes) != 0 {
		t.Fatalf("expected no changes, got %v", h.kinds())
	}
}

func TestUnregisterFailureAlerts(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
		logs int
	}{
		{name: "detail", err: &activities.Error{Kind: activities.KindStatus, Detail: "Student is not signed up"}, want: "Student is not signed up"},
		{name: "no detail", err: &activities.Error{Kind: activities.KindStatus}, want: UnregisterFallbackMessage},
		{name: "decode", err: &activities.Error{Kind: activities.KindDecode, Err: errors.New("bad")}, want: UnparsableResponseMessage, logs: 1},
		{name: "transport", err: &activities.Error{Kind: activities.KindTransport, Err: errors.New("offline")}, want: UnregisterFailedMessage, logs: 1},
		{name: "plain", err: errors.New("other"), want: UnregisterFailedMessage, logs: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(&stubAPI{list: boardActivities(), unregisterErr: tc.err})
			h.view.Load(context.Background())

			out := h.view.Unregister(context.Background(), "Chess Club", "michael@mergington.edu")
			if out.OK || out.Message != tc.want {
				t.Fatalf("expected alert %q, got %+v", tc.want, out)
			}
			if len(h.card("Chess Club").Participants) != 2 {
				t.Fatalf("expected roster unchanged")
			}
			if len(h.logger.errors) != tc.logs {
				t.Fatalf("expected %d logged errors, got %v", tc.logs, h.logger.errors)
			}
		})
	}
}

func TestDispatchRoutesByKind(t *testing.T) {
	h := newHarness(&stubAPI{list: boardActivities()})
	h.view.Load(context.Background())

	out := h.view.Dispatch(context.Background(), Action{Kind: ActionUnregister, Activity: "Chess Club", Email: "daniel@mergington.edu"})
	if !out.OK {
		t.Fatalf("expected unregister via dispatch, got %+v", out)
	}
	if h.card("Chess Club").HasParticipant("daniel@mergington.edu") {
		t.Fatalf("expected daniel removed")
	}
	out = h.view.Dispatch(context.Background(), Action{Kind: "explode"})
	if out.OK {
		t.Fatalf("expected unknown action to fail")
	}
}
