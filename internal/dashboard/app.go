// Package dashboard is the chat dashboard controller. A single loop
// goroutine owns all state; backend calls run in their own goroutines and
// hand their results back to the loop, so no state is shared.
package dashboard

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/umar/nexttalk-dash/internal/chat"
	"github.com/umar/nexttalk-dash/internal/models"
)

const DefaultScrollDelay = 100 * time.Millisecond

// Backend is the subset of the chat API the dashboard calls.
type Backend interface {
	Rooms(ctx context.Context) ([]models.Room, error)
	Messages(ctx context.Context, roomID string) ([]models.Message, error)
	SendMessage(ctx context.Context, roomID, content string) (*models.Message, error)
	AddReaction(ctx context.Context, messageID, emoji string) error
	MarkRead(ctx context.Context, roomID string) error
	Summary(ctx context.Context, roomID string) (*models.Summary, error)
}

type Options struct {
	PollInterval time.Duration
	SplashDelay  time.Duration
	ScrollDelay  time.Duration
	Location     *time.Location
	Logger       *slog.Logger
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.ScrollDelay <= 0 {
		o.ScrollDelay = DefaultScrollDelay
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type KeyCode int

const (
	KeyOther KeyCode = iota
	KeyEnter
)

type Key struct {
	Code  KeyCode
	Shift bool
}

type App struct {
	backend Backend
	view    View
	opts    Options
	log     *slog.Logger

	events chan func()
	done   chan struct{}
	ctx    context.Context

	// Everything below is owned by the loop goroutine.
	state       State
	bubbles     map[string]*MessageBubble
	summary     ChatSummary
	poller      *Poller
	splash      *SplashScreen
	scrollTimer *time.Timer
	roomCtx     context.Context
	roomCancel  context.CancelFunc
	msgGen      uint64
	roomsGen    uint64
}

func NewApp(backend Backend, view View, session Session, opts Options) *App {
	opts = opts.withDefaults()
	return &App{
		backend: backend,
		view:    view,
		opts:    opts,
		log:     opts.Logger.With("component", "dashboard"),
		events:  make(chan func(), 256),
		done:    make(chan struct{}),
		state: State{
			Phase:    PhaseSplash,
			Session:  session,
			Visible:  true,
			Statuses: make(map[Op]Status),
		},
		bubbles:    make(map[string]*MessageBubble),
		poller:     NewPoller(opts.PollInterval),
		splash:     NewSplashScreen(opts.SplashDelay),
		roomCtx:    context.Background(),
		roomCancel: func() {},
	}
}

// Run shows the splash screen, then the main dashboard, until ctx ends.
// Every timer and in-flight request is released before Run returns.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.ctx = ctx
	a.roomCtx, a.roomCancel = context.WithCancel(ctx)

	defer close(a.done)
	defer a.shutdown()

	a.render()
	a.splash.Start(func() { a.post(a.enterMain) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-a.events:
			fn()
		}
	}
}

func (a *App) shutdown() {
	a.splash.Stop()
	a.poller.Stop()
	a.roomCancel()
	if a.scrollTimer != nil {
		a.scrollTimer.Stop()
	}
}

// post queues fn for the loop. It reports false once the loop has ended.
func (a *App) post(fn func()) bool {
	select {
	case <-a.done:
		return false
	default:
	}
	select {
	case a.events <- fn:
		return true
	case <-a.done:
		return false
	}
}

// Done is closed when Run has returned.
func (a *App) Done() <-chan struct{} { return a.done }

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() State {
	reply := make(chan State, 1)
	if !a.post(func() { reply <- a.snapshot() }) {
		return State{}
	}
	select {
	case s := <-reply:
		return s
	case <-a.done:
		return State{}
	}
}

// ActivePollers is the number of running poll tasks.
func (a *App) ActivePollers() int { return a.poller.Active() }

func (a *App) SetDraft(text string) {
	a.post(func() {
		a.state.Draft = text
		a.render()
	})
}

// HandleKey reports whether the key was consumed. Enter without Shift sends
// the draft; Shift+Enter is left to the input for a line break.
func (a *App) HandleKey(k Key) bool {
	if k.Code != KeyEnter || k.Shift {
		return false
	}
	a.Send()
	return true
}

func (a *App) Send() { a.post(a.send) }

func (a *App) SelectRoom(roomID string) {
	a.post(func() { a.selectRoom(roomID) })
}

func (a *App) React(messageID, emoji string) {
	a.post(func() { a.react(messageID, emoji) })
}

func (a *App) ToggleReactionPicker(messageID string, target Rect) {
	a.post(func() {
		b, ok := a.bubbles[messageID]
		if !ok {
			return
		}
		b.ToggleReactionPicker(target)
		a.render()
	})
}

// PickReaction selects a glyph from the open picker of a message.
func (a *App) PickReaction(messageID, emoji string) {
	a.post(func() {
		b, ok := a.bubbles[messageID]
		if !ok || !b.PickerOpen() {
			return
		}
		if b.Picker().Select(emoji) {
			a.render()
		}
	})
}

func (a *App) ClosePicker(messageID string) {
	a.post(func() {
		if b, ok := a.bubbles[messageID]; ok {
			b.ClosePicker()
			a.render()
		}
	})
}

func (a *App) OpenSummary() { a.post(a.openSummary) }

func (a *App) CloseSummary() {
	a.post(func() {
		a.summary.Close()
		a.render()
	})
}

// SetVisible pauses polling while the dashboard is hidden. Becoming visible
// again refreshes the current room at once.
func (a *App) SetVisible(visible bool) {
	a.post(func() {
		if a.state.Visible == visible {
			return
		}
		a.state.Visible = visible
		if !visible {
			a.poller.Suspend()
			return
		}
		if a.poller.Resume() {
			a.fetchMessages(nil)
		}
		a.render()
	})
}

// Refresh refetches the room list and the current room.
func (a *App) Refresh() {
	a.post(func() {
		a.fetchRooms()
		a.fetchMessages(nil)
	})
}

// Notify reacts to a live event by refetching what it touched.
func (a *App) Notify(msg chat.WSMessage) {
	a.post(func() {
		if a.state.Phase != PhaseMain {
			return
		}
		switch msg.Type {
		case chat.TypeMessageNew:
			if chat.RoomOf(msg) == a.state.CurrentRoomID {
				a.fetchMessages(nil)
			}
			a.fetchRooms()
		case chat.TypeReactionNew:
			if chat.RoomOf(msg) == a.state.CurrentRoomID {
				a.fetchMessages(nil)
			}
		case chat.TypeUnreadUpdate:
			a.fetchRooms()
		}
	})
}

func (a *App) enterMain() {
	a.state.Phase = PhaseMain
	a.render()
	a.fetchRooms()
}

// async runs call off the loop and applies the result on it. Results that
// arrive after the loop has stopped are dropped.
func async[T any](a *App, ctx context.Context, call func(context.Context) (T, error), apply func(T, error)) {
	go func() {
		v, err := call(ctx)
		a.post(func() { apply(v, err) })
	}()
}

func (a *App) record(op Op, err error) {
	a.state.Statuses[op] = Status{Op: op, Err: err, At: a.opts.Now()}
	if err != nil {
		a.log.Warn("request failed", "op", string(op), "error", err)
	}
}

func (a *App) fetchRooms() {
	a.roomsGen++
	gen := a.roomsGen
	async(a, a.ctx, a.backend.Rooms, func(rooms []models.Room, err error) {
		if gen != a.roomsGen {
			return
		}
		a.record(OpFetchRooms, err)
		if err != nil {
			a.render()
			return
		}
		a.state.Rooms = rooms
		if a.state.CurrentRoomID == "" && len(rooms) > 0 {
			a.setCurrentRoom(rooms[0].ID)
			a.fetchMessages(nil)
		}
		a.render()
	})
}

// setCurrentRoom switches rooms: in-flight fetches for the old room are
// cancelled and the poll task is replaced. It reports whether the room
// changed.
func (a *App) setCurrentRoom(roomID string) bool {
	if roomID == a.state.CurrentRoomID {
		return false
	}
	a.roomCancel()
	a.roomCtx, a.roomCancel = context.WithCancel(a.ctx)
	a.state.CurrentRoomID = roomID
	a.state.Messages = nil
	clear(a.bubbles)
	a.poller.Start(func(ctx context.Context) {
		a.postTick(ctx)
	})
	return true
}

func (a *App) postTick(ctx context.Context) {
	select {
	case a.events <- func() { a.fetchMessages(nil) }:
	case <-ctx.Done():
	case <-a.done:
	}
}

// fetchMessages loads the current room. Only the latest issued fetch may
// update the list; then runs after that fetch lands, whatever its outcome.
func (a *App) fetchMessages(then func()) {
	roomID := a.state.CurrentRoomID
	if roomID == "" {
		return
	}
	a.msgGen++
	gen := a.msgGen
	ctx := a.roomCtx
	fetch := func(ctx context.Context) ([]models.Message, error) {
		return a.backend.Messages(ctx, roomID)
	}
	async(a, ctx, fetch, func(messages []models.Message, err error) {
		if ctx.Err() != nil {
			return
		}
		if gen == a.msgGen && roomID == a.state.CurrentRoomID {
			a.record(OpFetchMessages, err)
			if err == nil {
				a.applyMessages(messages)
				a.scheduleScroll()
			}
			a.render()
		}
		if then != nil {
			then()
		}
	})
}

func (a *App) applyMessages(messages []models.Message) {
	a.state.Messages = messages
	keep := make(map[string]bool, len(messages))
	for _, m := range messages {
		keep[m.ID] = true
		if b, ok := a.bubbles[m.ID]; ok {
			b.update(m)
			continue
		}
		a.bubbles[m.ID] = NewMessageBubble(m, a.state.Session, a.react)
	}
	maps.DeleteFunc(a.bubbles, func(id string, _ *MessageBubble) bool { return !keep[id] })
}

func (a *App) scheduleScroll() {
	if a.scrollTimer != nil {
		a.scrollTimer.Stop()
	}
	a.scrollTimer = time.AfterFunc(a.opts.ScrollDelay, func() {
		a.post(func() {
			if a.view != nil {
				a.view.ScrollToEnd()
			}
		})
	})
}

func (a *App) selectRoom(roomID string) {
	if roomID == "" {
		return
	}
	a.setCurrentRoom(roomID)
	a.render()
	a.fetchMessages(func() {
		a.markRead(roomID)
	})
}

func (a *App) markRead(roomID string) {
	mark := func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.backend.MarkRead(ctx, roomID)
	}
	async(a, a.ctx, mark, func(_ struct{}, err error) {
		a.record(OpMarkRead, err)
		a.fetchRooms()
	})
}

func (a *App) send() {
	content := a.state.Draft
	roomID := a.state.CurrentRoomID
	if strings.TrimSpace(content) == "" || roomID == "" {
		return
	}
	sendMsg := func(ctx context.Context) (*models.Message, error) {
		return a.backend.SendMessage(ctx, roomID, content)
	}
	async(a, a.ctx, sendMsg, func(_ *models.Message, err error) {
		a.record(OpSendMessage, err)
		a.state.Draft = ""
		a.render()
		a.fetchMessages(nil)
	})
}

func (a *App) react(messageID, emoji string) {
	if messageID == "" || emoji == "" {
		return
	}
	addReaction := func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.backend.AddReaction(ctx, messageID, emoji)
	}
	async(a, a.ctx, addReaction, func(_ struct{}, err error) {
		a.record(OpAddReaction, err)
		a.fetchMessages(nil)
	})
}

func (a *App) openSummary() {
	roomID := a.state.CurrentRoomID
	gen, ok := a.summary.Open(roomID)
	a.render()
	if !ok {
		return
	}
	fetch := func(ctx context.Context) (*models.Summary, error) {
		return a.backend.Summary(ctx, roomID)
	}
	async(a, a.ctx, fetch, func(s *models.Summary, err error) {
		if !a.summary.Resolve(gen, s, err) {
			return
		}
		a.record(OpFetchSummary, err)
		a.render()
	})
}

func (a *App) snapshot() State {
	s := a.state
	s.Rooms = slices.Clone(a.state.Rooms)
	s.Messages = slices.Clone(a.state.Messages)
	s.Statuses = maps.Clone(a.state.Statuses)
	s.Summary = a.summary.View()
	s.Bubbles = lo.FilterMap(a.state.Messages, func(m models.Message, _ int) (BubbleView, bool) {
		b, ok := a.bubbles[m.ID]
		if !ok {
			return BubbleView{}, false
		}
		return b.View(a.opts.Location), true
	})
	return s
}

func (a *App) render() {
	if a.view != nil {
		a.view.Render(a.snapshot())
	}
}
