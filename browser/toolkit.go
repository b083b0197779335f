// Package browser drives a local Chrome through chromedp.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/logger"
)

const defaultTimeout = 30 * time.Second

// Toolkit owns one browser tab. Chrome is started on first use.
type Toolkit struct {
	headless bool
	timeout  time.Duration

	mu          sync.Mutex
	started     bool
	browserCtx  context.Context
	browserDone context.CancelFunc
	allocDone   context.CancelFunc
}

// NewToolkit creates a toolkit; no browser is launched yet
func NewToolkit(cfg config.Browser) *Toolkit {
	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &Toolkit{
		headless: cfg.Headless,
		timeout:  timeout,
	}
}

// Initialize starts Chrome. Calling it again is a no-op.
func (t *Toolkit) Initialize(ctx context.Context) error {
	_, err := t.ensureBrowser(ctx)
	return err
}

// Initialized reports whether Chrome is running
func (t *Toolkit) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Close shuts Chrome down. It is safe to call on a toolkit that never started.
func (t *Toolkit) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}

	t.browserDone()
	t.allocDone()
	t.browserDone = nil
	t.allocDone = nil
	t.browserCtx = nil
	t.started = false
	logger.Info("BROWSER", "browser closed")
}

func (t *Toolkit) ensureBrowser(ctx context.Context) (context.Context, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return t.browserCtx, nil
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	if !t.headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	opts = append(opts,
		chromedp.Flag("incognito", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1280, 720),
	)

	// The browser outlives the call that started it; only Close stops it.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: start chrome: %w", err)
	}

	t.browserCtx = browserCtx
	t.browserDone = browserCancel
	t.allocDone = allocCancel
	t.started = true
	logger.Info("BROWSER", fmt.Sprintf("browser started (headless=%t)", t.headless))

	return t.browserCtx, nil
}

// run executes actions on the tab with the per-operation timeout, also
// stopping when ctx is cancelled.
func (t *Toolkit) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	bCtx, err := t.ensureBrowser(ctx)
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(bCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opCtx, actions...)
}
