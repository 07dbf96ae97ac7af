package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umar/nexttalk-dash/internal/models"
)

func TestChatSummary(t *testing.T) {
	digest := &models.Summary{SummaryPoints: []string{"one"}, MessageCount: 4, TimeRange: "Last 24 hours"}

	t.Run("should load the summary of the opened room", func(t *testing.T) {
		req := require.New(t)
		var s ChatSummary

		gen, ok := s.Open("r1")
		req.True(ok)
		req.Equal(SummaryLoading, s.View().Phase)

		req.True(s.Resolve(gen, digest, nil))
		v := s.View()
		req.Equal(SummaryLoaded, v.Phase)
		req.Equal("r1", v.RoomID)
		req.Equal(digest, v.Summary)
	})

	t.Run("should show empty on failure", func(t *testing.T) {
		req := require.New(t)
		var s ChatSummary

		gen, _ := s.Open("r1")
		req.True(s.Resolve(gen, nil, errors.New("down")))

		req.Equal(SummaryEmpty, s.View().Phase)
		req.Nil(s.View().Summary)
	})

	t.Run("should ignore a response from an earlier open", func(t *testing.T) {
		req := require.New(t)
		var s ChatSummary

		stale, _ := s.Open("r1")
		s.Close()
		_, _ = s.Open("r2")

		req.False(s.Resolve(stale, digest, nil))
		req.Equal(SummaryLoading, s.View().Phase)
		req.Equal("r2", s.View().RoomID)
	})

	t.Run("should ignore a response after close", func(t *testing.T) {
		req := require.New(t)
		var s ChatSummary

		gen, _ := s.Open("r1")
		s.Close()

		req.False(s.Resolve(gen, digest, nil))
		req.False(s.View().Open())
	})

	t.Run("should be empty without a room", func(t *testing.T) {
		req := require.New(t)
		var s ChatSummary

		_, ok := s.Open("")

		req.False(ok)
		req.Equal(SummaryEmpty, s.View().Phase)
		req.Equal("empty", s.View().Phase.String())
	})
}
