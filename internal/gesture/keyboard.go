package gesture

// Key is a navigation key reported by the host.
type Key string

const (
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
	KeySpace     Key = "Space"
	KeyPageUp    Key = "PageUp"
	KeyPageDown  Key = "PageDown"
	KeyHome      Key = "Home"
	KeyEnd       Key = "End"
)

// KeyScrollFraction is how much of the viewport a relative key scroll moves.
const KeyScrollFraction = 0.85

// ScrollKind distinguishes relative scrolls from absolute jumps.
type ScrollKind int

const (
	ScrollNone ScrollKind = iota
	// ScrollBy scrolls by Delta layout units (negative = up), smoothly.
	ScrollBy
	// ScrollToStart jumps to the top of the scroll container.
	ScrollToStart
	// ScrollToEnd jumps to the bottom of the scroll container.
	ScrollToEnd
)

// ScrollCommand is the viewport action a key maps to.
type ScrollCommand struct {
	Kind  ScrollKind
	Delta float64
}

// MapKey translates a navigation key into a scroll command for a viewport of
// the given height. Unknown keys map to ScrollNone.
func MapKey(key Key, viewportHeight float64) ScrollCommand {
	step := viewportHeight * KeyScrollFraction
	switch key {
	case KeyArrowDown, KeySpace, KeyPageDown:
		return ScrollCommand{Kind: ScrollBy, Delta: step}
	case KeyArrowUp, KeyPageUp:
		return ScrollCommand{Kind: ScrollBy, Delta: -step}
	case KeyHome:
		return ScrollCommand{Kind: ScrollToStart}
	case KeyEnd:
		return ScrollCommand{Kind: ScrollToEnd}
	}
	return ScrollCommand{Kind: ScrollNone}
}
