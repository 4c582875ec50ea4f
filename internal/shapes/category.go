package shapes

import (
	"fmt"
	"strings"
)

// TopLevelCategory is the coarse category a stat model assigns to an ink blob.
type TopLevelCategory int

const (
	TopLevelUnknown TopLevelCategory = iota
	VLine
	Round
	HLine
	Composite
)

var topLevelNames = map[TopLevelCategory]string{
	TopLevelUnknown: "unknown",
	VLine:           "vertical line",
	Round:           "round",
	HLine:           "horizontal line",
	Composite:       "composite",
}

func (c TopLevelCategory) String() string {
	if name, ok := topLevelNames[c]; ok {
		return name
	}
	return "unknown"
}

// Training key codes of the coarse categories. A coarse model trained on
// projected labels returns these instead of the enum values.
const (
	keyVLine     = 108
	keyRound     = 100
	keyHLine     = 99
	keyComposite = 109
)

// TopLevelFromCode converts a coarse classifier prediction into a
// TopLevelCategory. Both enum values and projected training key codes are
// accepted; anything else is TopLevelUnknown.
func TopLevelFromCode(code int) TopLevelCategory {
	switch code {
	case int(VLine), keyVLine:
		return VLine
	case int(Round), keyRound:
		return Round
	case int(HLine), keyHLine:
		return HLine
	case int(Composite), keyComposite:
		return Composite
	}
	return TopLevelUnknown
}

// Category is the fine-grained vocabulary used for beliefs and for the
// optional second classifier. Lower values win belief ties.
type Category int

const (
	Undefined Category = iota
	Bar
	NoteHead
	Note
	Vertical
	Dot
	Connector
	Flat
	Sharp
	Natural
	ViolinClef
	BassClef
	EighthBreak
	QuarterBreak
	BarBreak
	Character
	Complex
	Piece
	Speck
)

type categoryInfo struct {
	name     string
	key      int
	topLevel TopLevelCategory
}

// The key is the ASCII code of the labelling key the category was trained with.
var categories = map[Category]categoryInfo{
	Undefined:    {"undefined", 0, TopLevelUnknown},
	Bar:          {"bar line", 0, VLine},
	NoteHead:     {"note head", 'h', Round},
	Note:         {"note", 'n', Composite},
	Vertical:     {"vertical line", 'l', VLine},
	Dot:          {"dot", 'd', Round},
	Connector:    {"connector piece", 'c', HLine},
	Flat:         {"flat", 'f', Composite},
	Sharp:        {"sharp", 's', Composite},
	Natural:      {"undo accidental", 'u', Composite},
	ViolinClef:   {"violin clef", 'g', Composite},
	BassClef:     {"bass clef", 'i', Composite},
	EighthBreak:  {"eighth break", 'e', Composite},
	QuarterBreak: {"quarter break", 'x', Composite},
	BarBreak:     {"2-4 beats break", 'b', Composite},
	Character:    {"character", 'a', Composite},
	Complex:      {"complex", 'm', Composite},
	Piece:        {"piece", 'p', Round},
	Speck:        {"speck", 'k', Round},
}

var categoriesByKey = func() map[int]Category {
	m := make(map[int]Category, len(categories))
	for c, info := range categories {
		if info.key != 0 {
			m[info.key] = c
		}
	}
	return m
}()

func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return "Unknown Category"
}

// Key returns the training key code of c, or 0 if c has none.
func (c Category) Key() int {
	return categories[c].key
}

// TopLevel projects a fine category onto the coarse vocabulary.
func (c Category) TopLevel() TopLevelCategory {
	if info, ok := categories[c]; ok {
		return info.topLevel
	}
	return TopLevelUnknown
}

// CategoryFromCode converts a fine classifier prediction into a Category.
// Training key codes take precedence over enum values; unknown codes map to
// Undefined.
func CategoryFromCode(code int) Category {
	if c, ok := categoriesByKey[code]; ok {
		return c
	}
	if _, ok := categories[Category(code)]; ok {
		return Category(code)
	}
	return Undefined
}

// ParseCategory accepts a category name such as "note head" or its one letter
// training key such as "h". Case is ignored.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 {
		if c, ok := categoriesByKey[int(s[0])]; ok {
			return c, nil
		}
	}
	for c, info := range categories {
		if info.name == s {
			return c, nil
		}
	}
	return Undefined, fmt.Errorf("unknown category %q", s)
}
