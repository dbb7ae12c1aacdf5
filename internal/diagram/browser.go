package diagram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrBrowserConnect indicates the headless browser could not be started.
var ErrBrowserConnect = errors.New("failed to connect to browser")

// BrowserRaster screenshots the SVG from the vector chain in headless Chrome.
// The browser starts on first use and is shared until Close.
type BrowserRaster struct {
	Timeout time.Duration

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserRaster creates a BrowserRaster with the given per-render timeout.
func NewBrowserRaster(timeout time.Duration) *BrowserRaster {
	return &BrowserRaster{Timeout: timeout}
}

// Name implements RasterStrategy.
func (*BrowserRaster) Name() string { return "browser-raster" }

func (b *BrowserRaster) ensureBrowser() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.browser = browser
	return browser, nil
}

// Raster implements RasterStrategy.
func (b *BrowserRaster) Raster(ctx context.Context, _ Job, vector []byte) ([]byte, error) {
	if len(vector) == 0 {
		return nil, ErrNoVector
	}
	browser, err := b.ensureBrowser()
	if err != nil {
		return nil, err
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	root, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: opening page: %v", ErrToolFailed, err)
	}
	defer func() { _ = root.Close() }()
	page := root.Context(ctx).Timeout(timeout)

	doc := `<!DOCTYPE html><html><body style="margin:0;background:#fff">` + string(vector) + `</body></html>`
	if err := page.SetDocumentContent(doc); err != nil {
		return nil, fmt.Errorf("%w: loading svg: %v", ErrToolFailed, err)
	}
	el, err := page.Element("svg")
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: browser screenshot", ErrStageTimeout)
		}
		return nil, fmt.Errorf("%w: locating svg: %v", ErrToolFailed, err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", ErrToolFailed, err)
	}
	return png, nil
}

// Close shuts the browser down if it was started.
func (b *BrowserRaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}

var _ RasterStrategy = (*BrowserRaster)(nil)
