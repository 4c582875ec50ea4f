package sheet

import "fmt"

// Config controls page segmentation.
type Config struct {
	// VerticalPadding and HorizontalPadding extend a line's inner box to its
	// bounding box.
	VerticalPadding   int `yaml:"vertical_padding"`
	HorizontalPadding int `yaml:"horizontal_padding"`

	// HorizontalSizeFudge divides the page width to get the shortest stroke
	// that counts as a staff line.
	HorizontalSizeFudge int `yaml:"horizontal_size_fudge"`
	// MergeHeight is the height of the window that joins the five lines of
	// a staff into one block.
	MergeHeight int `yaml:"merge_height"`
	// OutlineBlur is the Gaussian radius applied to the joined blocks. 0
	// disables it.
	OutlineBlur float64 `yaml:"outline_blur"`

	// Outlines outside these limits are not sheet lines. A MaxOutlineArea of
	// 0 means no upper limit.
	MinOutlineArea   int `yaml:"min_outline_area"`
	MaxOutlineArea   int `yaml:"max_outline_area"`
	MinOutlineHeight int `yaml:"min_outline_height"`

	// MinVerticalLength is the shortest vertical stroke used to group lines.
	MinVerticalLength int `yaml:"min_vertical_length"`
	// Voices fixes the number of lines per group. 0 groups by the vertical
	// strokes that cross consecutive lines.
	Voices int `yaml:"voices"`

	// StaffMinFraction is the smallest ink fraction of a staff line row.
	StaffMinFraction float64 `yaml:"staff_min_fraction"`
	// Threshold is the gray level below which a pixel is ink; 0 uses Otsu's
	// method.
	Threshold uint8 `yaml:"threshold"`

	// Deskew levels each line's viewport by the average slope of its staff
	// line segments. MaxSkewAngle bounds the slopes searched and
	// MinSkewAngle is the smallest one corrected, both in degrees;
	// MinSegmentLength is the shortest staff line segment.
	Deskew           bool    `yaml:"deskew"`
	MaxSkewAngle     float64 `yaml:"max_skew_angle"`
	MinSkewAngle     float64 `yaml:"min_skew_angle"`
	MinSegmentLength int     `yaml:"min_segment_length"`

	// A line with fewer staff lines than MinStaffLines, or whose first and
	// last staff lines are less than MinStaffHeight apart, is not a staff.
	MinStaffLines  int `yaml:"min_staff_lines"`
	MinStaffHeight int `yaml:"min_staff_height"`
}

// DefaultConfig returns settings for A4 pages scanned at about 150 dpi.
func DefaultConfig() Config {
	return Config{
		VerticalPadding:     20,
		HorizontalPadding:   10,
		HorizontalSizeFudge: 30,
		MergeHeight:         15,
		OutlineBlur:         1,
		MinOutlineArea:      20000,
		MinOutlineHeight:    24,
		MinVerticalLength:   60,
		StaffMinFraction:    0.5,
		Deskew:              true,
		MaxSkewAngle:        10,
		MinSkewAngle:        0.2,
		MinSegmentLength:    23,
		MinStaffLines:       4,
		MinStaffHeight:      25,
	}
}

// Validate checks the settings for values that would break segmentation.
func (c Config) Validate() error {
	if c.VerticalPadding < 0 || c.HorizontalPadding < 0 {
		return fmt.Errorf("paddings must be >= 0, got %d and %d", c.VerticalPadding, c.HorizontalPadding)
	}
	if c.HorizontalSizeFudge <= 0 {
		return fmt.Errorf("horizontal_size_fudge must be > 0, got %d", c.HorizontalSizeFudge)
	}
	if c.MergeHeight <= 0 {
		return fmt.Errorf("merge_height must be > 0, got %d", c.MergeHeight)
	}
	if c.MaxOutlineArea != 0 && c.MaxOutlineArea < c.MinOutlineArea {
		return fmt.Errorf("max_outline_area %d is below min_outline_area %d", c.MaxOutlineArea, c.MinOutlineArea)
	}
	if c.Voices < 0 {
		return fmt.Errorf("voices must be >= 0, got %d", c.Voices)
	}
	if c.StaffMinFraction <= 0 || c.StaffMinFraction > 1 {
		return fmt.Errorf("staff_min_fraction must be in (0, 1], got %g", c.StaffMinFraction)
	}
	if c.MaxSkewAngle < 0 || c.MaxSkewAngle >= 45 {
		return fmt.Errorf("max_skew_angle must be in [0, 45), got %g", c.MaxSkewAngle)
	}
	if c.MinSkewAngle < 0 || c.MinSkewAngle > c.MaxSkewAngle {
		return fmt.Errorf("min_skew_angle must be in [0, max_skew_angle], got %g", c.MinSkewAngle)
	}
	if c.Deskew && c.MinSegmentLength <= 0 {
		return fmt.Errorf("min_segment_length must be > 0, got %d", c.MinSegmentLength)
	}
	if c.MinStaffLines < 0 || c.MinStaffHeight < 0 {
		return fmt.Errorf("min_staff_lines and min_staff_height must be >= 0, got %d and %d", c.MinStaffLines, c.MinStaffHeight)
	}
	return nil
}
