package shapes

import "fmt"

// Config holds the pixel and score thresholds of a line scan. A Finder copies
// it at construction; nothing changes it afterwards.
type Config struct {
	// SmallDistance is the edge gap, in pixels, within which two shapes are
	// neighbours.
	SmallDistance int `yaml:"small_distance"`

	// VoiceExtraHeight is how much taller than the staff a connector must be
	// to count towards a voice position.
	VoiceExtraHeight int `yaml:"voice_extra_height"`
	// LineStartWindow is the x below which the first composite or vertical
	// line may open the line.
	LineStartWindow int `yaml:"line_start_window"`
	// ConnectorAspect is the minimum height/width of a composite connector.
	ConnectorAspect int `yaml:"connector_aspect"`
	// BarAspect is the minimum height/width of a composite bar line in a
	// single voice line.
	BarAspect float64 `yaml:"bar_aspect"`
	// StaffHeightSlack is how much shorter than the staff a bar line may be.
	StaffHeightSlack int `yaml:"staff_height_slack"`
	// StaffEdgeSlack is the allowed distance of a bar line's ends from the
	// outer staff lines.
	StaffEdgeSlack int `yaml:"staff_edge_slack"`
	// MinBarDistance is the smallest gap between two retained bar lines.
	MinBarDistance int `yaml:"min_bar_distance"`
	// BarBelief is added to the bar score of an accepted bar line and taken
	// away again when it is pruned.
	BarBelief int `yaml:"bar_belief"`

	// StartOfLineWidth is the width of the start of line furniture window,
	// measured from the inner box's left edge.
	StartOfLineWidth int `yaml:"start_of_line_width"`
	// NoteHeadArea is the smallest area of a note head.
	NoteHeadArea int `yaml:"note_head_area"`
	// NoteDotArea is the largest area of a dot absorbed into a note.
	NoteDotArea int `yaml:"note_dot_area"`
}

// DefaultConfig returns the thresholds tuned on printed sheet music scanned
// at about 150 dpi.
func DefaultConfig() Config {
	return Config{
		SmallDistance:    2,
		VoiceExtraHeight: 20,
		LineStartWindow:  30,
		ConnectorAspect:  3,
		BarAspect:        3.5,
		StaffHeightSlack: 6,
		StaffEdgeSlack:   5,
		MinBarDistance:   40,
		BarBelief:        10,
		StartOfLineWidth: 100,
		NoteHeadArea:     50,
		NoteDotArea:      12,
	}
}

// Validate checks that every threshold is usable.
func (c Config) Validate() error {
	if c.SmallDistance < 0 {
		return fmt.Errorf("small_distance must be >= 0, got %d", c.SmallDistance)
	}
	if c.ConnectorAspect <= 0 {
		return fmt.Errorf("connector_aspect must be > 0, got %d", c.ConnectorAspect)
	}
	if c.BarAspect <= 0 {
		return fmt.Errorf("bar_aspect must be > 0, got %g", c.BarAspect)
	}
	if c.MinBarDistance < 0 {
		return fmt.Errorf("min_bar_distance must be >= 0, got %d", c.MinBarDistance)
	}
	if c.StartOfLineWidth <= 0 {
		return fmt.Errorf("start_of_line_width must be > 0, got %d", c.StartOfLineWidth)
	}
	if c.BarBelief <= 0 {
		return fmt.Errorf("bar_belief must be > 0, got %d", c.BarBelief)
	}
	return nil
}
