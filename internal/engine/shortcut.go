package engine

import "github.com/starford/warpboard/internal/dom"

// Shortcut values for the direction select.
const (
	DirectionAbove = "above"
	DirectionBelow = "below"
)

// applyShortcut sets the direction select from a key press.
func applyShortcut(sel *dom.Element, key string) {
	switch key {
	case "a":
		sel.SetValue(DirectionAbove)
	case "b":
		sel.SetValue(DirectionBelow)
	}
}
