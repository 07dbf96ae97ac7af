package dashboard

import (
	"time"

	"github.com/umar/nexttalk-dash/internal/models"
)

type Phase int

const (
	PhaseSplash Phase = iota
	PhaseMain
)

// Op names a backend call whose outcome is tracked in State.Statuses.
type Op string

const (
	OpFetchRooms    Op = "fetch_rooms"
	OpFetchMessages Op = "fetch_messages"
	OpSendMessage   Op = "send_message"
	OpAddReaction   Op = "add_reaction"
	OpMarkRead      Op = "mark_read"
	OpFetchSummary  Op = "fetch_summary"
)

// Status is the outcome of the latest call of one kind.
type Status struct {
	Op  Op
	Err error
	At  time.Time
}

func (s Status) OK() bool { return s.Err == nil }

// State is an immutable copy of everything the view needs to draw.
type State struct {
	Phase         Phase
	Session       Session
	Visible       bool
	Rooms         []models.Room
	CurrentRoomID string
	Messages      []models.Message
	Bubbles       []BubbleView
	Draft         string
	Summary       SummaryView
	Statuses      map[Op]Status
}

func (s State) CurrentRoom() (models.Room, bool) {
	for _, r := range s.Rooms {
		if r.ID == s.CurrentRoomID {
			return r, true
		}
	}
	return models.Room{}, false
}

// LastError is the most recent failed call, if any.
func (s State) LastError() (Status, bool) {
	var last Status
	found := false
	for _, st := range s.Statuses {
		if st.Err != nil && (!found || st.At.After(last.At)) {
			last, found = st, true
		}
	}
	return last, found
}

// View draws state. Both methods are called from the dashboard loop only.
type View interface {
	Render(State)
	ScrollToEnd()
}
