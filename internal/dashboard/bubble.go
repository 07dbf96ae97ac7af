package dashboard

import (
	"time"

	"github.com/samber/lo"
	"github.com/umar/nexttalk-dash/internal/models"
)

// MessageBubble is the view model of one message. The picker flag and its
// anchor are the only state it owns.
type MessageBubble struct {
	message    models.Message
	session    Session
	onReact    func(messageID, emoji string)
	pickerOpen bool
	anchor     Point
}

type BubbleView struct {
	MessageID      string
	Own            bool
	Sender         string
	Content        string
	Time           string
	Reactions      []string
	PickerOpen     bool
	PickerPosition Point
}

func NewMessageBubble(msg models.Message, session Session, onReact func(messageID, emoji string)) *MessageBubble {
	return &MessageBubble{message: msg, session: session, onReact: onReact}
}

func (b *MessageBubble) Message() models.Message { return b.message }

func (b *MessageBubble) update(msg models.Message) { b.message = msg }

func (b *MessageBubble) ShowSender() bool {
	return !b.session.IsOwn(b.message.SenderID)
}

// Timestamp formats the creation time as local hour:minute.
func (b *MessageBubble) Timestamp(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return b.message.Timestamp.In(loc).Format("15:04")
}

func (b *MessageBubble) ReactionBadges() []string {
	return lo.Map(b.message.Reactions, func(r models.Reaction, _ int) string {
		return r.Emoji + " " + r.Username
	})
}

// ToggleReactionPicker opens the picker anchored at the clicked element, or
// closes it when already open.
func (b *MessageBubble) ToggleReactionPicker(target Rect) {
	if b.pickerOpen {
		b.pickerOpen = false
		return
	}
	b.anchor = Point{X: target.X, Y: target.Y}
	b.pickerOpen = true
}

func (b *MessageBubble) PickerOpen() bool { return b.pickerOpen }

func (b *MessageBubble) Picker() EmojiPicker {
	return EmojiPicker{
		Anchor: b.anchor,
		OnSelect: func(emoji string) {
			if b.onReact != nil {
				b.onReact(b.message.ID, emoji)
			}
		},
		OnClose: b.ClosePicker,
	}
}

func (b *MessageBubble) ClosePicker() { b.pickerOpen = false }

func (b *MessageBubble) View(loc *time.Location) BubbleView {
	v := BubbleView{
		MessageID:  b.message.ID,
		Own:        !b.ShowSender(),
		Content:    b.message.Content,
		Time:       b.Timestamp(loc),
		Reactions:  b.ReactionBadges(),
		PickerOpen: b.pickerOpen,
	}
	if b.ShowSender() {
		v.Sender = b.message.SenderName
	}
	if b.pickerOpen {
		v.PickerPosition = b.Picker().Position()
	}
	return v
}
