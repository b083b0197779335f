package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Link is an anchor found on the page
type Link struct {
	Text  string `json:"text"`
	Href  string `json:"href"`
	Title string `json:"title"`
}

const extractLinksJS = `Array.from(document.querySelectorAll('a[href]')).map(a => ({
	text: (a.textContent || '').trim(),
	href: a.href,
	title: a.title || ''
}))`

const bodyTextJS = `document.body ? document.body.innerText : ""`

// Navigate loads url and waits for the body to be ready
func (t *Toolkit) Navigate(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("browser: url is required")
	}
	if err := t.run(ctx, t.timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

// ExtractText returns the visible text of the page body
func (t *Toolkit) ExtractText(ctx context.Context) (string, error) {
	var text string
	if err := t.run(ctx, t.timeout, chromedp.Evaluate(bodyTextJS, &text)); err != nil {
		return "", fmt.Errorf("browser: extract text: %w", err)
	}
	return text, nil
}

// ExtractLinks returns every anchor with an href
func (t *Toolkit) ExtractLinks(ctx context.Context) ([]Link, error) {
	var links []Link
	if err := t.run(ctx, t.timeout, chromedp.Evaluate(extractLinksJS, &links)); err != nil {
		return nil, fmt.Errorf("browser: extract links: %w", err)
	}
	return links, nil
}

// Click clicks the first element matching selector
func (t *Toolkit) Click(ctx context.Context, selector string) error {
	if err := t.run(ctx, t.timeout, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("browser: click %s: %w", selector, err)
	}
	return nil
}

// Fill replaces the value of an input with text
func (t *Toolkit) Fill(ctx context.Context, selector, text string) error {
	if err := t.run(ctx, t.timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("browser: fill %s: %w", selector, err)
	}
	return nil
}

// PressKey sends a key to the focused element. Named keys such as Enter,
// Tab or Escape are translated, anything else is typed as is.
func (t *Toolkit) PressKey(ctx context.Context, key string) error {
	if err := t.run(ctx, t.timeout, chromedp.KeyEvent(keyFor(key))); err != nil {
		return fmt.Errorf("browser: press %s: %w", key, err)
	}
	return nil
}

func (t *Toolkit) Title(ctx context.Context) (string, error) {
	var title string
	if err := t.run(ctx, t.timeout, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("browser: title: %w", err)
	}
	return title, nil
}

func (t *Toolkit) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := t.run(ctx, t.timeout, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("browser: location: %w", err)
	}
	return url, nil
}

// Screenshot captures the viewport as PNG and writes it to path when path is not empty
func (t *Toolkit) Screenshot(ctx context.Context, path string) ([]byte, error) {
	var buf []byte
	if err := t.run(ctx, t.timeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("browser: screenshot: %w", err)
	}
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("browser: screenshot dir: %w", err)
			}
		}
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			return nil, fmt.Errorf("browser: save screenshot: %w", err)
		}
	}
	return buf, nil
}

// WaitForElement waits until selector is visible. A zero timeout means 30 seconds.
func (t *Toolkit) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if err := t.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("browser: wait for %s: %w", selector, err)
	}
	return nil
}

// Evaluate runs script and returns its JSON-decoded result
func (t *Toolkit) Evaluate(ctx context.Context, script string) (any, error) {
	var res any
	if err := t.run(ctx, t.timeout, chromedp.Evaluate(script, &res)); err != nil {
		return nil, fmt.Errorf("browser: evaluate: %w", err)
	}
	return res, nil
}

// HTML returns the outer HTML of the document
func (t *Toolkit) HTML(ctx context.Context) (string, error) {
	var html string
	if err := t.run(ctx, t.timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser: html: %w", err)
	}
	return html, nil
}

func (t *Toolkit) Back(ctx context.Context) error {
	if err := t.run(ctx, t.timeout, chromedp.NavigateBack()); err != nil {
		return fmt.Errorf("browser: back: %w", err)
	}
	return nil
}

func (t *Toolkit) Forward(ctx context.Context) error {
	if err := t.run(ctx, t.timeout, chromedp.NavigateForward()); err != nil {
		return fmt.Errorf("browser: forward: %w", err)
	}
	return nil
}

var namedKeys = map[string]string{
	"enter":      kb.Enter,
	"tab":        kb.Tab,
	"escape":     kb.Escape,
	"esc":        kb.Escape,
	"backspace":  kb.Backspace,
	"delete":     kb.Delete,
	"arrowup":    kb.ArrowUp,
	"arrowdown":  kb.ArrowDown,
	"arrowleft":  kb.ArrowLeft,
	"arrowright": kb.ArrowRight,
	"home":       kb.Home,
	"end":        kb.End,
	"pageup":     kb.PageUp,
	"pagedown":   kb.PageDown,
	"space":      " ",
}

func keyFor(name string) string {
	if k, ok := namedKeys[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return name
}
