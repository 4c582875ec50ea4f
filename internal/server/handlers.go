package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/sheetmusic-mcp/internal/imaging"
	"github.com/ironsheep/sheetmusic-mcp/internal/shapes"
	"github.com/ironsheep/sheetmusic-mcp/internal/sheet"
)

// Box is a rectangle in JSON results. (X1, Y1) is inclusive, (X2, Y2)
// exclusive.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func boxOf(r image.Rectangle) Box {
	return Box{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// decodeArgs unmarshals args into v and checks that a path was given.
func decodeArgs(args json.RawMessage, v any, path *string) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if *path == "" {
		return errors.New("path is required")
	}
	return nil
}

// === Page Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

// LineInfo describes one sheet line in page coordinates. Staff rows are
// relative to the bounding box, like every scan result.
type LineInfo struct {
	Index       int   `json:"index"`
	Group       int   `json:"group"`
	InnerBox    Box   `json:"inner_box"`
	BoundingBox Box   `json:"bounding_box"`
	StaffTop    int   `json:"staff_top"`
	StaffBottom int   `json:"staff_bottom"`
	StaffLines  []int `json:"staff_lines"`

	// Slope is the measured skew of the staff, in rows per column.
	Slope float64 `json:"slope"`
}

// FindLinesResult is the result of music_find_lines.
type FindLinesResult struct {
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Left   int               `json:"left"`
	Right  int               `json:"right"`
	Lines  []LineInfo        `json:"lines"`
	Groups []sheet.LineGroup `json:"groups"`

	// Rejected are outlines that held no staff, such as text or frames.
	Rejected []Box `json:"rejected,omitempty"`
}

func (s *Server) handleFindLines(_ context.Context, args json.RawMessage) (any, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	sh, err := s.page(a.Path)
	if err != nil {
		return nil, err
	}

	res := &FindLinesResult{
		Width:  sh.Bounds.Dx(),
		Height: sh.Bounds.Dy(),
		Left:   sh.Left,
		Right:  sh.Right,
		Lines:  make([]LineInfo, 0, len(sh.Lines)),
		Groups: sh.Groups,
	}
	for _, l := range sh.Lines {
		top, bottom := l.StaffCoordinates()
		res.Lines = append(res.Lines, LineInfo{
			Index:       l.Index,
			Group:       sh.GroupOf(l.Index),
			InnerBox:    boxOf(l.PageInnerBox()),
			BoundingBox: boxOf(l.BoundingBox()),
			StaffTop:    top,
			StaffBottom: bottom,
			StaffLines:  l.Staff().Lines,
			Slope:       l.Slope(),
		})
	}
	for _, r := range sh.Rejected {
		res.Rejected = append(res.Rejected, boxOf(r))
	}
	return res, nil
}

// === Scan Handlers ===

type lineArgs struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// CompositeInfo summarises one composite.
type CompositeInfo struct {
	Type    string `json:"type"`
	Box     Box    `json:"box"`
	Members int    `json:"members"`
}

// ScanLineResult is the result of music_scan_line.
type ScanLineResult struct {
	Line          int              `json:"line"`
	VoicePosition int              `json:"voice_position"`
	BarPositions  []int            `json:"bar_positions"`
	Composites    []CompositeInfo  `json:"composites"`
	LineStart     shapes.LineStart `json:"line_start"`
	Shapes        int              `json:"shapes"`
}

func summarise(index int, f *shapes.Finder) ScanLineResult {
	res := ScanLineResult{
		Line:          index,
		VoicePosition: f.VoicePosition(),
		BarPositions:  f.BarPositions(),
		Composites:    make([]CompositeInfo, 0, len(f.Composites())),
		LineStart:     f.LineStart(),
		Shapes:        len(f.Shapes()),
	}
	for _, c := range f.Composites() {
		res.Composites = append(res.Composites, CompositeInfo{
			Type:    c.Type().String(),
			Box:     boxOf(c.Rect()),
			Members: len(c.Shapes()),
		})
	}
	return res
}

func (s *Server) handleScanLine(_ context.Context, args json.RawMessage) (any, error) {
	var a lineArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	_, f, err := s.scanLine(a.Path, a.Line)
	if err != nil {
		return nil, err
	}
	return summarise(a.Line, f), nil
}

// ScanPageResult is the result of music_scan_page.
type ScanPageResult struct {
	Lines []ScanLineResult `json:"lines"`
}

func (s *Server) handleScanPage(ctx context.Context, args json.RawMessage) (any, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	sh, err := s.page(a.Path)
	if err != nil {
		return nil, err
	}
	results, err := sheet.ScanAll(ctx, sh, s.newFinder, s.coarse, s.fineClassifier())
	if err != nil {
		return nil, err
	}

	res := &ScanPageResult{Lines: make([]ScanLineResult, 0, len(results))}
	for _, r := range results {
		res.Lines = append(res.Lines, summarise(r.Line.Index, r.Finder))
	}
	return res, nil
}

type barAtArgs struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	X    int    `json:"x"`
}

// ShapeInfo describes one shape.
type ShapeInfo struct {
	ID         int    `json:"id"`
	Box        Box    `json:"box"`
	TopLevel   string `json:"top_level"`
	Category   string `json:"category"`
	Effective  string `json:"effective_category"`
	Neighbours int    `json:"neighbours"`
}

func shapeInfo(sh *shapes.Shape) *ShapeInfo {
	return &ShapeInfo{
		ID:         sh.ID(),
		Box:        boxOf(sh.Rect()),
		TopLevel:   sh.TopLevel().String(),
		Category:   sh.Category().String(),
		Effective:  sh.EffectiveCategory().String(),
		Neighbours: sh.NumberOfNeighbours(),
	}
}

// BarAtResult is the result of music_bar_at.
type BarAtResult struct {
	Line         int        `json:"line"`
	X            int        `json:"x"`
	Found        bool       `json:"found"`
	Shape        *ShapeInfo `json:"shape,omitempty"`
	BarPositions []int      `json:"bar_positions"`
}

func (s *Server) handleBarAt(_ context.Context, args json.RawMessage) (any, error) {
	var a barAtArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	l, err := s.line(a.Path, a.Line)
	if err != nil {
		return nil, err
	}
	f := s.newFinder()
	if err := f.InitLineScan(l, s.coarse, s.fineClassifier()); err != nil {
		return nil, err
	}

	res := &BarAtResult{Line: a.Line, X: a.X, BarPositions: f.BarPositions()}
	if bar := f.BarAt(a.X); bar != nil {
		res.Found = true
		res.Shape = shapeInfo(bar)
	}
	return res, nil
}

// === Rendering ===

type renderArgs struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Labels *bool  `json:"labels"`
}

// RenderResult describes the PNG returned by music_render_line.
type RenderResult struct {
	Line       int `json:"line"`
	Width      int `json:"width"`
	Height     int `json:"height"`
	Composites int `json:"composites"`
}

func (s *Server) handleRenderLine(_ context.Context, args json.RawMessage) (any, error) {
	var a renderArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	l, f, err := s.scanLine(a.Path, a.Line)
	if err != nil {
		return nil, err
	}

	overlay := imaging.Overlay{
		Inner:      l.InnerBox(),
		StaffLines: l.Staff().Lines,
		Labels:     a.Labels == nil || *a.Labels,
	}
	for _, c := range f.Composites() {
		overlay.Boxes = append(overlay.Boxes, imaging.Box{Rect: c.Rect(), Type: c.Type()})
	}
	enc, err := imaging.EncodePNG(imaging.RenderOverlay(l.ViewPort(), overlay))
	if err != nil {
		return nil, err
	}
	return &imageResult{
		Meta: &RenderResult{
			Line:       a.Line,
			Width:      enc.Width,
			Height:     enc.Height,
			Composites: len(overlay.Boxes),
		},
		Image: enc,
	}, nil
}

// === Classifier Training ===

type labelArgs struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Category string `json:"category"`
}

// LabelResult is the result of music_label_shape.
type LabelResult struct {
	Category string    `json:"category"`
	Shape    ShapeInfo `json:"shape"`
	Samples  int       `json:"samples"`
	// Active reports whether scans now use the fine classifier.
	Active bool `json:"active"`
}

func (s *Server) handleLabelShape(_ context.Context, args json.RawMessage) (any, error) {
	var a labelArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	cat, err := shapes.ParseCategory(a.Category)
	if err != nil {
		return nil, err
	}
	if cat == shapes.Undefined {
		return nil, errors.New("cannot label a shape as undefined")
	}

	l, err := s.line(a.Path, a.Line)
	if err != nil {
		return nil, err
	}
	f := s.newFinder()
	if err := f.InitLineScan(l, s.coarse, nil); err != nil {
		return nil, err
	}
	sh := f.ShapeAt(image.Pt(a.X, a.Y))
	if sh == nil {
		return nil, fmt.Errorf("no shape at (%d, %d) on line %d", a.X, a.Y, a.Line)
	}

	viewport := l.ViewPort()
	sample, err := imaging.Crop(viewport, sh.Rect().Add(viewport.Bounds().Min), 1.0)
	if err != nil {
		return nil, err
	}
	s.fine.Add(sample, sh.Rect().Min, int(cat))
	s.logger.Debug("labelled sample", "category", cat.String(), "samples", s.fine.Len())

	return &LabelResult{
		Category: cat.String(),
		Shape:    *shapeInfo(sh),
		Samples:  s.fine.Len(),
		Active:   s.fine.Len() >= s.fine.K(),
	}, nil
}

// === OCR ===

type readTextArgs struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Language string `json:"language"`
}

// TextInfo is the text found in one composite.
type TextInfo struct {
	Box        Box     `json:"box"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ReadTextResult is the result of music_read_text.
type ReadTextResult struct {
	Line     int        `json:"line"`
	Regions  int        `json:"regions"`
	Language string     `json:"language"`
	Texts    []TextInfo `json:"texts"`
}

func (s *Server) handleReadText(_ context.Context, args json.RawMessage) (any, error) {
	var a readTextArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	l, f, err := s.scanLine(a.Path, a.Line)
	if err != nil {
		return nil, err
	}

	var rects []image.Rectangle
	for _, c := range f.Composites() {
		if c.Type() == shapes.Other || c.Type() == shapes.OutOfLine {
			rects = append(rects, c.Rect())
		}
	}

	scanner := *s.scanner
	if a.Language != "" {
		scanner.Language = a.Language
	}
	texts, err := scanner.ReadComposites(l.ViewPort(), rects)
	if err != nil {
		return nil, err
	}

	res := &ReadTextResult{
		Line:     a.Line,
		Regions:  len(rects),
		Language: scanner.Language,
		Texts:    make([]TextInfo, 0, len(texts)),
	}
	for _, t := range texts {
		res.Texts = append(res.Texts, TextInfo{Box: boxOf(t.Rect), Text: t.Text, Confidence: t.Confidence})
	}
	return res, nil
}
