package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
)

// DefaultRenderTimeout bounds a single PDF render, headless browser
// startup included.
const DefaultRenderTimeout = 60 * time.Second

// Chromium renders report HTML to PDF through a headless Chrome/Chromium
// instance. Requires a Chrome binary on the host.
type Chromium struct {
	registry *Registry
	timeout  time.Duration
}

// NewChromium creates a Chromium renderer. A non-positive timeout falls
// back to DefaultRenderTimeout.
func NewChromium(registry *Registry, timeout time.Duration) *Chromium {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &Chromium{registry: registry, timeout: timeout}
}

// Render materializes the report HTML, loads it into a fresh browser
// context, and prints it to PDF. A renderer that produces no bytes is
// treated as failed.
func (c *Chromium) Render(ctx context.Context, kind domain.ReportKind, model []byte) ([]byte, error) {
	html, err := c.registry.HTML(kind, model)
	if err != nil {
		return nil, err
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, c.timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRendererFailure, err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrRendererFailure)
	}
	return pdf, nil
}

var _ Renderer = (*Chromium)(nil)
