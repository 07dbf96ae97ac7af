package term

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umar/nexttalk-dash/internal/dashboard"
)

type recorder struct {
	calls []string
}

func (r *recorder) SetDraft(text string) { r.calls = append(r.calls, "draft:"+text) }

func (r *recorder) HandleKey(k dashboard.Key) bool {
	r.calls = append(r.calls, fmt.Sprintf("key:shift=%v", k.Shift))
	return !k.Shift
}

func (r *recorder) SelectRoom(roomID string) { r.calls = append(r.calls, "room:"+roomID) }

func (r *recorder) ToggleReactionPicker(messageID string, _ dashboard.Rect) {
	r.calls = append(r.calls, "toggle:"+messageID)
}

func (r *recorder) PickReaction(messageID, emoji string) {
	r.calls = append(r.calls, "pick:"+messageID+":"+emoji)
}

func (r *recorder) ClosePicker(messageID string) { r.calls = append(r.calls, "closepicker:"+messageID) }

func (r *recorder) OpenSummary() { r.calls = append(r.calls, "summary") }

func (r *recorder) CloseSummary() { r.calls = append(r.calls, "closesummary") }

func (r *recorder) SetVisible(visible bool) { r.calls = append(r.calls, fmt.Sprintf("visible:%v", visible)) }

func (r *recorder) Refresh() { r.calls = append(r.calls, "refresh") }

func TestParseLine(t *testing.T) {
	t.Run("should treat plain text as a draft", func(t *testing.T) {
		cmd, err := ParseLine("hello /room 1")
		require.NoError(t, err)
		require.Equal(t, Command{Name: "send", Text: "hello /room 1"}, cmd)
	})

	t.Run("should parse numbered commands", func(t *testing.T) {
		cmd, err := ParseLine("/room 2")
		require.NoError(t, err)
		require.Equal(t, Command{Name: "room", Arg: 2}, cmd)
	})

	t.Run("should reject bad arguments", func(t *testing.T) {
		for _, line := range []string{"/room", "/room x", "/pick 0", "/react 1 2"} {
			_, err := ParseLine(line)
			require.ErrorIs(t, err, ErrBadArgument, line)
		}
	})

	t.Run("should reject unknown commands", func(t *testing.T) {
		_, err := ParseLine("/dance")
		require.ErrorIs(t, err, ErrUnknownCommand)
	})
}

func TestInput_Handle(t *testing.T) {
	setup := func() (*Input, *recorder) {
		term := New(&bytes.Buffer{}, 10, false)
		term.Render(mainState())
		rec := &recorder{}
		return NewInput(term, rec), rec
	}

	t.Run("should send a line with Enter", func(t *testing.T) {
		in, rec := setup()
		require.NoError(t, in.Handle("hi"))
		require.Equal(t, []string{"draft:hi", "key:shift=false"}, rec.calls)
	})

	t.Run("should continue a draft across lines", func(t *testing.T) {
		in, rec := setup()
		require.NoError(t, in.Handle(`first\`))
		require.NoError(t, in.Handle("/second"))
		require.Equal(t, []string{
			"draft:first", "key:shift=true",
			"draft:first\n/second", "key:shift=false",
		}, rec.calls)
	})

	t.Run("should map rows to rooms and messages", func(t *testing.T) {
		req := require.New(t)
		in, rec := setup()

		req.NoError(in.Handle("/room 2"))
		req.NoError(in.Handle("/react 1"))
		req.NoError(in.Handle("/pick 8"))
		req.NoError(in.Handle("/summary"))
		req.NoError(in.Handle("/hide"))
		req.NoError(in.Handle("/show"))

		req.Equal([]string{
			"room:r2", "toggle:m1", "pick:m2:🚀", "summary", "visible:false", "visible:true",
		}, rec.calls)
	})

	t.Run("should report rows that do not exist", func(t *testing.T) {
		in, _ := setup()
		require.ErrorIs(t, in.Handle("/room 9"), ErrBadArgument)
		require.ErrorIs(t, in.Handle("/pick 9"), ErrBadArgument)
	})

	t.Run("should close the open picker when no summary shows", func(t *testing.T) {
		in, rec := setup()
		require.NoError(t, in.Handle("/close"))
		require.Equal(t, []string{"closepicker:m2"}, rec.calls)
	})
}

func TestInput_Run_Stops_On_Quit(t *testing.T) {
	req := require.New(t)
	term := New(&bytes.Buffer{}, 10, false)
	term.Render(mainState())
	rec := &recorder{}

	err := NewInput(term, rec).Run(context.Background(), strings.NewReader("hi\n/quit\nnever\n"))

	req.NoError(err)
	req.Equal([]string{"draft:hi", "key:shift=false"}, rec.calls)
}
