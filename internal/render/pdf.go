// Package render converts invoice HTML into PDF bytes using headless Chrome.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Renderer turns an HTML document into a downloadable byte sequence.
type Renderer interface {
	RenderToBytes(ctx context.Context, html []byte) ([]byte, error)
}

// ChromePDF renders HTML to PDF through chromedp. Each render spins up its
// own browser context; invoice volume is a handful per day, not per second.
type ChromePDF struct {
	Timeout time.Duration
}

var _ Renderer = (*ChromePDF)(nil)

func NewChromePDF() *ChromePDF {
	return &ChromePDF{Timeout: 30 * time.Second}
}

// RenderToBytes prints the document to PDF with backgrounds preserved.
func (r *ChromePDF) RenderToBytes(ctx context.Context, html []byte) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
		)...,
	)
	defer cancel()

	chromedpCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	chromedpCtx, cancel = context.WithTimeout(chromedpCtx, r.Timeout)
	defer cancel()

	var pdfData []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return pdfData, nil
}

// HTMLPassthrough returns the HTML bytes unchanged. Used when no Chrome
// binary is available; the operator downloads the invoice as HTML instead.
type HTMLPassthrough struct{}

var _ Renderer = (*HTMLPassthrough)(nil)

func (HTMLPassthrough) RenderToBytes(_ context.Context, html []byte) ([]byte, error) {
	return html, nil
}
