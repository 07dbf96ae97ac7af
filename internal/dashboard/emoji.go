package dashboard

import "github.com/samber/lo"

// PickerOffset is how far above its anchor the picker panel sits.
const PickerOffset = 60

var EmojiCatalog = []string{"👍", "❤️", "😂", "😮", "😢", "🎉", "🔥", "🚀"}

type Point struct {
	X, Y float64
}

// Rect is the bounding box of the element that opened the picker.
type Rect struct {
	X, Y, Width, Height float64
}

// EmojiPicker is the reaction panel. It holds no state of its own.
type EmojiPicker struct {
	Anchor   Point
	OnSelect func(emoji string)
	OnClose  func()
}

func (p EmojiPicker) Position() Point {
	return Point{X: p.Anchor.X, Y: p.Anchor.Y - PickerOffset}
}

func (p EmojiPicker) Choices() []string {
	return append([]string(nil), EmojiCatalog...)
}

// Select reports the glyph and then closes the panel. It returns true when
// the selection was consumed, so it must not reach elements underneath.
func (p EmojiPicker) Select(emoji string) bool {
	if !lo.Contains(EmojiCatalog, emoji) {
		return false
	}
	if p.OnSelect != nil {
		p.OnSelect(emoji)
	}
	if p.OnClose != nil {
		p.OnClose()
	}
	return true
}

// SelectIndex selects the i-th catalog glyph, 0-based.
func (p EmojiPicker) SelectIndex(i int) bool {
	if i < 0 || i >= len(EmojiCatalog) {
		return false
	}
	return p.Select(EmojiCatalog[i])
}
