package shapes

import (
	"image"
	"testing"
)

func TestMaybeAddNeighbour(t *testing.T) {
	base := image.Rect(10, 10, 20, 30)

	tests := []struct {
		name  string
		other image.Rectangle
		want  Neighbourhood
	}{
		{"contained", image.Rect(12, 12, 18, 20), AROUND},
		{"overlapping", image.Rect(15, 25, 30, 40), INTERSECT},
		{"east nested", image.Rect(21, 12, 25, 28), E},
		{"east straddling", image.Rect(21, 5, 25, 35), E},
		{"north east", image.Rect(20, 2, 24, 11), NE},
		{"south east", image.Rect(22, 29, 26, 40), SE},
		{"north", image.Rect(12, 0, 16, 9), N},
		{"south", image.Rect(14, 31, 18, 40), S},
		{"far away", image.Rect(50, 50, 60, 60), NoNeighbourhood},
		{"too far east", image.Rect(25, 12, 30, 28), NoNeighbourhood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShape(0, base)
			o := NewShape(1, tt.other)

			got := s.MaybeAddNeighbour(o, 2)
			if got != tt.want {
				t.Fatalf("MaybeAddNeighbour() = %v, want %v", got, tt.want)
			}
			if tt.want == NoNeighbourhood {
				if s.NumberOfNeighbours() != 0 || o.NumberOfNeighbours() != 0 {
					t.Errorf("expected no neighbours, got %d and %d", s.NumberOfNeighbours(), o.NumberOfNeighbours())
				}
				return
			}
			if !s.HasNeighbour(tt.want, 1) {
				t.Errorf("shape 0 is missing %v neighbour", tt.want)
			}
			if !o.HasNeighbour(tt.want.Opposite(), 0) {
				t.Errorf("shape 1 is missing %v neighbour", tt.want.Opposite())
			}
			if s.NumberOfNeighbours() != 1 || o.NumberOfNeighbours() != 1 {
				t.Errorf("expected exactly one relation, got %d and %d", s.NumberOfNeighbours(), o.NumberOfNeighbours())
			}
		})
	}
}

func TestContainmentRecordsInAndAround(t *testing.T) {
	outer := NewShape(0, image.Rect(0, 0, 40, 40))
	inner := NewShape(1, image.Rect(0, 5, 10, 15))

	if got := outer.MaybeAddNeighbour(inner, 2); got != AROUND {
		t.Fatalf("expected AROUND, got %v", got)
	}
	if !outer.HasNeighbour(AROUND, 1) {
		t.Error("outer shape should record the inner one as AROUND")
	}
	if !inner.HasNeighbour(IN, 0) {
		t.Error("inner shape should record the outer one as IN")
	}
}

func TestOpposite(t *testing.T) {
	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("%v: opposite is not an involution", d)
		}
	}
	if INTERSECT.Opposite() != INTERSECT {
		t.Error("INTERSECT should be its own opposite")
	}
	if IN.Opposite() != AROUND {
		t.Error("IN should be opposite AROUND")
	}
}

func TestUpdateBeliefRoundTrip(t *testing.T) {
	s := NewShape(0, image.Rect(0, 0, 5, 5))
	s.UpdateBelief(Dot, 3)
	before := s.CategoryConfidence(Dot)

	s.UpdateBelief(Dot, 7)
	s.UpdateBelief(Dot, -7)

	if got := s.CategoryConfidence(Dot); got != before {
		t.Errorf("confidence = %d, want %d", got, before)
	}
	if got := s.CategoryConfidence(Sharp); got != 0 {
		t.Errorf("unscored category confidence = %d, want 0", got)
	}
}

func TestMostLikelyCategory(t *testing.T) {
	tests := []struct {
		name    string
		beliefs map[Category]int
		want    Category
	}{
		{"no beliefs", nil, Undefined},
		{"only negative", map[Category]int{Bar: -10}, Undefined},
		{"single", map[Category]int{Speck: 2}, Speck},
		{"highest wins", map[Category]int{Piece: 1, Speck: 2, NoteHead: 1}, Speck},
		{"tie goes to lowest", map[Category]int{Speck: 2, Piece: 2, NoteHead: 2}, NoteHead},
		{"zero ignored", map[Category]int{Bar: 0, Dot: 1}, Dot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShape(0, image.Rect(0, 0, 5, 5))
			for c, v := range tt.beliefs {
				s.UpdateBelief(c, v)
			}
			if got := s.MostLikelyCategory(); got != tt.want {
				t.Errorf("MostLikelyCategory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffectiveCategory(t *testing.T) {
	s := NewShape(0, image.Rect(0, 0, 5, 5))
	s.UpdateBelief(Speck, 2)
	if got := s.EffectiveCategory(); got != Speck {
		t.Errorf("without fine category: got %v, want %v", got, Speck)
	}
	s.SetCategory(NoteHead)
	if got := s.EffectiveCategory(); got != NoteHead {
		t.Errorf("with fine category: got %v, want %v", got, NoteHead)
	}
}

func TestCategoryCodes(t *testing.T) {
	tests := []struct {
		code int
		want Category
	}{
		{'h', NoteHead},
		{'l', Vertical},
		{'k', Speck},
		{int(Sharp), Sharp},
		{int(Undefined), Undefined},
		{999, Undefined},
		{-1, Undefined},
	}
	for _, tt := range tests {
		if got := CategoryFromCode(tt.code); got != tt.want {
			t.Errorf("CategoryFromCode(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}

	topLevels := []struct {
		code int
		want TopLevelCategory
	}{
		{108, VLine},
		{100, Round},
		{99, HLine},
		{109, Composite},
		{int(Round), Round},
		{42, TopLevelUnknown},
		{0, TopLevelUnknown},
	}
	for _, tt := range topLevels {
		if got := TopLevelFromCode(tt.code); got != tt.want {
			t.Errorf("TopLevelFromCode(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestCategoryTopLevel(t *testing.T) {
	tests := map[Category]TopLevelCategory{
		Sharp:     Composite,
		NoteHead:  Round,
		Connector: HLine,
		Vertical:  VLine,
		Undefined: TopLevelUnknown,
	}
	for c, want := range tests {
		if got := c.TopLevel(); got != want {
			t.Errorf("%v.TopLevel() = %v, want %v", c, got, want)
		}
	}
	if NoteHead.Key() != 'h' {
		t.Errorf("NoteHead.Key() = %d, want %d", NoteHead.Key(), 'h')
	}
	if Category(99).String() != "Unknown Category" {
		t.Errorf("unexpected name for out of range category: %q", Category(99).String())
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"note head", NoteHead, false},
		{"  Violin Clef ", ViolinClef, false},
		{"h", NoteHead, false},
		{"K", Speck, false},
		{"2-4 beats break", BarBreak, false},
		{"z", Undefined, true},
		{"trumpet", Undefined, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
