package extraction

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
	"github.com/JaimeStill/document-context/pkg/image"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/intake/pkg/formatting"
)

//go:embed prompt.md
var basePrompt string

const sourcePDF = "source.pdf"

type agentGateway struct {
	agent   gaconfig.AgentConfig
	cfg     Config
	cost    decimal.Decimal
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Gateway that sends rendered page images to a vision model.
// Outbound calls are throttled by a token bucket shared across requests.
func New(agentCfg gaconfig.AgentConfig, cfg Config, logger *slog.Logger) Gateway {
	return &agentGateway{
		agent:   agentCfg,
		cfg:     cfg,
		cost:    cfg.Cost(),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger.With("system", "extraction"),
	}
}

func (g *agentGateway) Extract(ctx context.Context, req Request) (*Extraction, error) {
	start := time.Now()

	images, err := g.images(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, Transient("rate limited", err)
	}

	a, err := agent.New(&g.agent)
	if err != nil {
		return nil, Transient("create agent", err)
	}

	resp, err := a.Vision(ctx, composePrompt(req.Hint), images)
	if err != nil {
		return nil, Classify(fmt.Errorf("vision call: %w", err))
	}

	fields, err := formatting.Parse[Fields](resp.Content())
	if err != nil {
		return nil, Permanent("unparseable model response", err)
	}

	pages := len(images)
	result := &Extraction{
		Fields:   fields,
		Cost:     g.cost.Mul(decimal.NewFromInt(int64(pages))),
		Model:    g.model(),
		Pages:    pages,
		Duration: time.Since(start),
	}

	g.logger.InfoContext(ctx, "extraction complete",
		"filename", req.Filename,
		"pages", pages,
		"model", result.Model,
		"cost", result.Cost.String(),
		"duration", result.Duration,
	)

	return result, nil
}

func (g *agentGateway) model() string {
	if g.agent.Model == nil {
		return ""
	}
	return g.agent.Model.Name
}

func (g *agentGateway) images(ctx context.Context, req Request) ([]string, error) {
	contentType := strings.ToLower(req.ContentType)

	switch {
	case strings.HasPrefix(contentType, "application/pdf"):
		return g.renderPDF(ctx, req.Data)
	case strings.HasPrefix(contentType, "image/png"):
		uri, err := encoding.EncodeImageDataURI(req.Data, document.PNG)
		if err != nil {
			return nil, Permanent("encode image", err)
		}
		return []string{uri}, nil
	case strings.HasPrefix(contentType, "image/jpeg"):
		return []string{jpegDataURI(req.Data)}, nil
	default:
		return nil, Permanent(contentType, ErrUnsupportedContent)
	}
}

func (g *agentGateway) renderPDF(ctx context.Context, data []byte) ([]string, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, Permanent("read pdf", err)
	}
	if count > g.cfg.MaxPages {
		return nil, Permanent(fmt.Sprintf("%d pages, limit %d", count, g.cfg.MaxPages), ErrTooManyPages)
	}

	tempDir, err := os.MkdirTemp("", "intake-extract-*")
	if err != nil {
		return nil, Transient("create temp directory", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, sourcePDF)
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return nil, Transient("write temp pdf", err)
	}

	pdfDoc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return nil, Permanent("open pdf", fmt.Errorf("%w: %w", ErrRenderFailed, err))
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(config.ImageConfig{
		Format: "png",
		DPI:    g.cfg.DPI,
	})
	if err != nil {
		return nil, Transient("create renderer", err)
	}

	pages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, Permanent("extract pages", fmt.Errorf("%w: %w", ErrRenderFailed, err))
	}

	uris := make([]string, len(pages))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workerCount(len(pages)))

	for i, page := range pages {
		eg.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			img, err := page.ToImage(renderer, nil)
			if err != nil {
				return fmt.Errorf("render page %d: %w", i+1, err)
			}

			uri, err := encoding.EncodeImageDataURI(img, document.PNG)
			if err != nil {
				return fmt.Errorf("encode page %d: %w", i+1, err)
			}

			uris[i] = uri
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, Transient("render interrupted", ctx.Err())
		}
		return nil, Permanent("render pages", fmt.Errorf("%w: %w", ErrRenderFailed, err))
	}

	return uris, nil
}

func composePrompt(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return basePrompt
	}
	return basePrompt + "\nThe uploader indicated this document is a " + hint + ".\n"
}

func jpegDataURI(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

func workerCount(pageCount int) int {
	return max(min(runtime.NumCPU(), pageCount), 1)
}
