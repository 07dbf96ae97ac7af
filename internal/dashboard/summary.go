package dashboard

import "github.com/umar/nexttalk-dash/internal/models"

type SummaryPhase int

const (
	SummaryClosed SummaryPhase = iota
	SummaryLoading
	SummaryLoaded
	SummaryEmpty
)

func (p SummaryPhase) String() string {
	switch p {
	case SummaryLoading:
		return "loading"
	case SummaryLoaded:
		return "loaded"
	case SummaryEmpty:
		return "empty"
	default:
		return "closed"
	}
}

type SummaryView struct {
	Phase   SummaryPhase
	RoomID  string
	Summary *models.Summary
}

func (v SummaryView) Open() bool { return v.Phase != SummaryClosed }

// ChatSummary is the summary dialog state machine. Each open issues a new
// generation; a response is applied only if it belongs to the generation
// that is still loading.
type ChatSummary struct {
	phase   SummaryPhase
	roomID  string
	summary *models.Summary
	gen     uint64
}

// Open moves the dialog to loading and returns the generation to fetch
// for. With no room there is nothing to fetch and ok is false.
func (s *ChatSummary) Open(roomID string) (gen uint64, ok bool) {
	s.gen++
	s.roomID = roomID
	s.summary = nil
	if roomID == "" {
		s.phase = SummaryEmpty
		return s.gen, false
	}
	s.phase = SummaryLoading
	return s.gen, true
}

// Resolve applies a fetch result. It reports whether the result was used.
func (s *ChatSummary) Resolve(gen uint64, summary *models.Summary, err error) bool {
	if gen != s.gen || s.phase != SummaryLoading {
		return false
	}
	if err != nil || summary == nil {
		s.phase = SummaryEmpty
		return true
	}
	s.summary = summary
	s.phase = SummaryLoaded
	return true
}

func (s *ChatSummary) Close() {
	s.gen++
	s.phase = SummaryClosed
	s.roomID = ""
	s.summary = nil
}

func (s *ChatSummary) View() SummaryView {
	return SummaryView{Phase: s.phase, RoomID: s.roomID, Summary: s.summary}
}
