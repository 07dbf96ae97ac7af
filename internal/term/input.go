package term

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/umar/nexttalk-dash/internal/dashboard"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
	errQuit           = errors.New("quit")
)

const helpText = `commands:
  <text>        set the draft and send it (end a line with \ to continue it)
  /room <n>     switch to room n
  /react <n>    toggle the reaction picker on message n
  /pick <n>     react with emoji n of the open picker
  /summary      open the room summary
  /close        close the summary, or the open picker
  /hide /show   pause or resume polling
  /refresh      refetch rooms and messages
  /help         this text
  /quit         leave`

// Controller is the part of the dashboard the input drives.
type Controller interface {
	SetDraft(text string)
	HandleKey(k dashboard.Key) bool
	SelectRoom(roomID string)
	ToggleReactionPicker(messageID string, target dashboard.Rect)
	PickReaction(messageID, emoji string)
	ClosePicker(messageID string)
	OpenSummary()
	CloseSummary()
	SetVisible(visible bool)
	Refresh()
}

type Command struct {
	Name string
	Arg  int
	Text string
}

// ParseLine turns one input line into a command. Lines that do not start
// with a slash are draft text.
func ParseLine(line string) (Command, error) {
	if !strings.HasPrefix(line, "/") {
		return Command{Name: "send", Text: line}, nil
	}
	fields := strings.Fields(line)
	name := strings.TrimPrefix(fields[0], "/")
	switch name {
	case "room", "react", "pick":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("/%s needs a number: %w", name, ErrBadArgument)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return Command{}, fmt.Errorf("/%s %q: %w", name, fields[1], ErrBadArgument)
		}
		return Command{Name: name, Arg: n}, nil
	case "summary", "close", "hide", "show", "refresh", "help", "quit":
		return Command{Name: name}, nil
	default:
		return Command{}, fmt.Errorf("%q: %w", fields[0], ErrUnknownCommand)
	}
}

// Input reads lines and drives the dashboard. A trailing backslash keeps
// the draft open for another line, like Shift+Enter.
type Input struct {
	term    *Terminal
	control Controller
	pending []string
}

func NewInput(t *Terminal, c Controller) *Input {
	return &Input{term: t, control: c}
}

// Run reads until EOF, /quit or ctx ends.
func (in *Input) Run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			err := in.Handle(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				in.term.Print("%v", err)
			}
		}
	}
}

func (in *Input) Handle(line string) error {
	if len(in.pending) > 0 || !strings.HasPrefix(line, "/") {
		return in.draft(line)
	}
	cmd, err := ParseLine(line)
	if err != nil {
		return err
	}
	return in.exec(cmd)
}

func (in *Input) draft(line string) error {
	if cont, ok := strings.CutSuffix(line, `\`); ok {
		in.pending = append(in.pending, cont)
		in.control.SetDraft(strings.Join(in.pending, "\n"))
		in.control.HandleKey(dashboard.Key{Code: dashboard.KeyEnter, Shift: true})
		return nil
	}
	text := strings.Join(append(in.pending, line), "\n")
	in.pending = nil
	in.control.SetDraft(text)
	in.control.HandleKey(dashboard.Key{Code: dashboard.KeyEnter})
	return nil
}

func (in *Input) exec(cmd Command) error {
	switch cmd.Name {
	case "room":
		id, ok := in.term.RoomID(cmd.Arg)
		if !ok {
			return fmt.Errorf("no room %d: %w", cmd.Arg, ErrBadArgument)
		}
		in.control.SelectRoom(id)
	case "react":
		id, ok := in.term.MessageID(cmd.Arg)
		if !ok {
			return fmt.Errorf("no message %d: %w", cmd.Arg, ErrBadArgument)
		}
		in.control.ToggleReactionPicker(id, dashboard.Rect{
			Y:      float64(cmd.Arg * lineHeight),
			Width:  1,
			Height: lineHeight,
		})
	case "pick":
		id, ok := in.term.OpenPicker()
		if !ok {
			return fmt.Errorf("no picker open: %w", ErrBadArgument)
		}
		if cmd.Arg > len(dashboard.EmojiCatalog) {
			return fmt.Errorf("no emoji %d: %w", cmd.Arg, ErrBadArgument)
		}
		in.control.PickReaction(id, dashboard.EmojiCatalog[cmd.Arg-1])
	case "summary":
		in.control.OpenSummary()
	case "close":
		if in.term.SummaryOpen() {
			in.control.CloseSummary()
		} else if id, ok := in.term.OpenPicker(); ok {
			in.control.ClosePicker(id)
		}
	case "hide":
		in.control.SetVisible(false)
	case "show":
		in.control.SetVisible(true)
	case "refresh":
		in.control.Refresh()
	case "help":
		in.term.Print("%s", helpText)
	case "quit":
		return errQuit
	}
	return nil
}
