package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/sheetmusic-mcp/internal/classify"
	"github.com/ironsheep/sheetmusic-mcp/internal/config"
	"github.com/ironsheep/sheetmusic-mcp/internal/detection"
	"github.com/ironsheep/sheetmusic-mcp/internal/imaging"
	"github.com/ironsheep/sheetmusic-mcp/internal/ocr"
	"github.com/ironsheep/sheetmusic-mcp/internal/shapes"
	"github.com/ironsheep/sheetmusic-mcp/internal/sheet"
)

// Name is the server name reported to MCP clients.
const Name = "sheetmusic-mcp"

// Server exposes the sheet music scanner as MCP tools.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	cache   *imaging.ImageCache
	scanner *ocr.Scanner

	extractor detection.Extractor
	coarse    shapes.Classifier
	fine      *classify.KNN

	mu     sync.Mutex
	sheets map[string]*sheet.Sheet

	mcp *mcp.Server
}

// New creates a server and registers its tools. A nil cfg uses
// config.DefaultConfig, a nil logger slog.Default.
func New(cfg *config.Config, version string, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		cache:     imaging.NewImageCache(),
		scanner:   &ocr.Scanner{Language: cfg.OCR.Language, TessdataPrefix: cfg.OCR.TessdataPrefix},
		extractor: detection.NewExtractor(cfg.Contours),
		coarse:    cfg.Classifier.Heuristic,
		fine:      classify.NewKNN(cfg.Classifier.K, cfg.Classifier.SampleSize),
		sheets:    make(map[string]*sheet.Sheet),
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server, for running it on other transports.
func (s *Server) MCP() *mcp.Server { return s.mcp }

// Run serves MCP over stdin and stdout until the client disconnects or ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio", "contour_backend", detection.Backend)
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// page returns the segmented page at path. Pages are segmented once.
func (s *Server) page(path string) (*sheet.Sheet, error) {
	s.mu.Lock()
	cached, ok := s.sheets[path]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	// Lines keep their own viewports, so the page itself is not needed
	// once it has been segmented.
	defer s.cache.Evict(path)

	sh, err := sheet.Analyse(img, s.cfg.Sheet)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("page segmented", "path", path, "lines", len(sh.Lines),
		"groups", len(sh.Groups), "rejected", len(sh.Rejected))

	s.mu.Lock()
	if s.cfg.MaxPages > 0 && len(s.sheets) >= s.cfg.MaxPages {
		s.logger.Debug("dropping segmented pages", "pages", len(s.sheets))
		clear(s.sheets)
	}
	s.sheets[path] = sh
	s.mu.Unlock()
	return sh, nil
}

// line returns line index of the page at path.
func (s *Server) line(path string, index int) (*sheet.SheetLine, error) {
	sh, err := s.page(path)
	if err != nil {
		return nil, err
	}
	return sh.Line(index)
}

func (s *Server) newFinder() *shapes.Finder {
	return shapes.New(s.cfg.Scan, s.extractor, s.logger)
}

// fineClassifier returns the k-NN model once it holds enough samples to vote.
func (s *Server) fineClassifier() shapes.Classifier {
	if s.fine.Len() < s.fine.K() {
		return nil
	}
	return s.fine
}

// scanLine runs a full scan of one line.
func (s *Server) scanLine(path string, index int) (*sheet.SheetLine, *shapes.Finder, error) {
	l, err := s.line(path, index)
	if err != nil {
		return nil, nil, err
	}
	f := s.newFinder()
	if err := f.ScanLine(l, s.coarse, s.fineClassifier()); err != nil {
		return nil, nil, err
	}
	return l, f, nil
}
