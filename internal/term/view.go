// Package term renders the dashboard in a terminal and turns input lines
// into dashboard actions.
package term

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/umar/nexttalk-dash/internal/dashboard"
)

const (
	DefaultHeight = 20
	// lineHeight is the pixel height given to one message row when a
	// picker anchor is derived from a row number.
	lineHeight    = 24
	clearScreen   = "\033[H\033[2J"
)

var (
	styleTitle  = color.New(color.FgCyan, color.OpBold)
	styleOwn    = color.New(color.FgGreen)
	styleSender = color.New(color.FgYellow, color.OpBold)
	styleMuted  = color.New(color.FgGray)
	styleError  = color.New(color.FgRed)
	styleBadge  = color.New(color.BgRed, color.FgWhite)
	styleDialog = color.New(color.BgBlack, color.FgCyan)
)

// Terminal is a dashboard.View drawing full frames onto out.
type Terminal struct {
	out     io.Writer
	height  int
	colours bool

	mu       sync.Mutex
	last     dashboard.State
	rendered bool
	// first is the index of the top visible message. It only moves on
	// ScrollToEnd or a room change.
	first   int
	roomID  string
	scrolls int
}

func New(out io.Writer, height int, colours bool) *Terminal {
	if height <= 0 {
		height = DefaultHeight
	}
	return &Terminal{out: out, height: height, colours: colours}
}

func (t *Terminal) Render(s dashboard.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.CurrentRoomID != t.roomID {
		t.roomID = s.CurrentRoomID
		t.first = 0
	}
	t.last = s
	t.rendered = true
	t.draw()
}

// ScrollToEnd pins the message list to its newest message.
func (t *Terminal) ScrollToEnd() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.first = max(0, len(t.last.Bubbles)-t.height)
	t.scrolls++
	if t.rendered {
		t.draw()
	}
}

// Scrolls counts ScrollToEnd calls.
func (t *Terminal) Scrolls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scrolls
}

// RoomID maps a 1-based row of the room table to its room.
func (t *Terminal) RoomID(n int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 1 || n > len(t.last.Rooms) {
		return "", false
	}
	return t.last.Rooms[n-1].ID, true
}

// MessageID maps a 1-based message number to its message.
func (t *Terminal) MessageID(n int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 1 || n > len(t.last.Bubbles) {
		return "", false
	}
	return t.last.Bubbles[n-1].MessageID, true
}

// OpenPicker is the message whose reaction picker is showing, if any.
func (t *Terminal) OpenPicker() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := lo.Find(t.last.Bubbles, func(b dashboard.BubbleView) bool { return b.PickerOpen })
	return b.MessageID, ok
}

func (t *Terminal) SummaryOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last.Summary.Open()
}

// Print writes a line below the current frame.
func (t *Terminal) Print(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *Terminal) paint(style color.Style, s string) string {
	if !t.colours {
		return s
	}
	return style.Render(s)
}

func (t *Terminal) draw() {
	var buf bytes.Buffer
	buf.WriteString(clearScreen)
	s := t.last

	if s.Phase == dashboard.PhaseSplash {
		t.drawSplash(&buf)
		_, _ = t.out.Write(buf.Bytes())
		return
	}

	fmt.Fprintln(&buf, t.paint(styleTitle, "NextTalk")+"  "+t.paint(styleMuted, "signed in as "+s.Session.Username))
	if !s.Visible {
		fmt.Fprintln(&buf, t.paint(styleMuted, "(hidden, polling paused)"))
	}
	buf.WriteString("\n")
	t.drawRooms(&buf, s)
	buf.WriteString("\n")
	t.drawMessages(&buf, s)
	t.drawPicker(&buf, s)
	t.drawSummary(&buf, s)
	if st, ok := s.LastError(); ok {
		fmt.Fprintln(&buf, t.paint(styleError, fmt.Sprintf("! %s: %v", st.Op, st.Err)))
	}
	fmt.Fprintf(&buf, "> %s", strings.ReplaceAll(s.Draft, "\n", "\n  "))
	_, _ = t.out.Write(buf.Bytes())
}

func (t *Terminal) drawSplash(buf *bytes.Buffer) {
	buf.WriteString("\n\n")
	fmt.Fprintln(buf, "        "+t.paint(styleTitle, "N E X T T A L K"))
	fmt.Fprintln(buf, "        "+t.paint(styleMuted, "conversations, summarised"))
	buf.WriteString("\n")
}

func (t *Terminal) drawRooms(buf *bytes.Buffer, s dashboard.State) {
	if len(s.Rooms) == 0 {
		fmt.Fprintln(buf, t.paint(styleMuted, "no rooms"))
		return
	}
	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"#", "Room", "Unread"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for i, r := range s.Rooms {
		marker := " "
		if r.ID == s.CurrentRoomID {
			marker = "*"
		}
		badge := ""
		if r.UnreadCount > 0 {
			badge = t.paint(styleBadge, " "+strconv.Itoa(r.UnreadCount)+" ")
		}
		table.Append([]string{marker + strconv.Itoa(i+1), r.Name, badge})
	}
	table.Render()
}

func (t *Terminal) drawMessages(buf *bytes.Buffer, s dashboard.State) {
	room, ok := s.CurrentRoom()
	if !ok {
		fmt.Fprintln(buf, t.paint(styleMuted, "select a room"))
		return
	}
	fmt.Fprintln(buf, t.paint(styleTitle, room.Name)+"  "+t.paint(styleMuted, room.Description))

	bubbles := s.Bubbles
	first := min(t.first, max(0, len(bubbles)-t.height))
	for i := first; i < len(bubbles) && i < first+t.height; i++ {
		b := bubbles[i]
		num := t.paint(styleMuted, fmt.Sprintf("[%d] %s", i+1, b.Time))
		content := strings.ReplaceAll(b.Content, "\n", "\n      ")
		if b.Own {
			fmt.Fprintf(buf, "%s %s\n", num, t.paint(styleOwn, content))
		} else {
			fmt.Fprintf(buf, "%s %s %s\n", num, t.paint(styleSender, b.Sender+":"), content)
		}
		if len(b.Reactions) > 0 {
			fmt.Fprintln(buf, "      "+strings.Join(lo.Map(b.Reactions, func(r string, _ int) string {
				return "[" + r + "]"
			}), " "))
		}
	}
}

func (t *Terminal) drawPicker(buf *bytes.Buffer, s dashboard.State) {
	for _, b := range s.Bubbles {
		if !b.PickerOpen {
			continue
		}
		choices := lo.Map(dashboard.EmojiCatalog, func(e string, i int) string {
			return fmt.Sprintf("%d %s", i+1, e)
		})
		fmt.Fprintf(buf, "%s %s\n", t.paint(styleMuted, "react:"), strings.Join(choices, "  "))
	}
}

func (t *Terminal) drawSummary(buf *bytes.Buffer, s dashboard.State) {
	v := s.Summary
	if !v.Open() {
		return
	}
	buf.WriteString("\n")
	fmt.Fprintln(buf, t.paint(styleDialog, " Chat Summary "))
	switch v.Phase {
	case dashboard.SummaryLoading:
		fmt.Fprintln(buf, "  generating summary...")
	case dashboard.SummaryLoaded:
		for _, p := range v.Summary.SummaryPoints {
			fmt.Fprintln(buf, "  • "+p)
		}
		fmt.Fprintln(buf, t.paint(styleMuted, fmt.Sprintf("  %d messages · %s", v.Summary.MessageCount, v.Summary.TimeRange)))
	default:
		fmt.Fprintln(buf, "  no summary available")
	}
	fmt.Fprintln(buf, t.paint(styleMuted, "  /close to dismiss"))
}
