package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// scrollScript scrolls the window to an absolute position.
const scrollScript = `([x, y]) => window.scrollTo(x, y)`

// WindowName returns the name of the window at position i.
// Position 0 is the controller; followers are numbered from 1.
func WindowName(i int) string {
	if i == 0 {
		return "controller"
	}
	return fmt.Sprintf("follower-%d", i)
}

// Navigate navigates the window to the specified URL.
func (w *Window) Navigate(url string) error {
	_, err := w.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(w.navigationTimeout),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Click clicks the first element matching the selector.
func (w *Window) Click(selector string) error {
	err := w.Page.Click(selector, playwright.PageClickOptions{
		Timeout: playwright.Float(w.actionTimeout),
	})
	if err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Fill replaces the value of the first element matching the selector.
func (w *Window) Fill(selector, value string) error {
	err := w.Page.Fill(selector, value, playwright.PageFillOptions{
		Timeout: playwright.Float(w.actionTimeout),
	})
	if err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// ScrollTo scrolls the window to an absolute position.
func (w *Window) ScrollTo(x, y int) error {
	if _, err := w.Page.Evaluate(scrollScript, []int{x, y}); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// Evaluate runs a script in the window's current document.
func (w *Window) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	return w.Page.Evaluate(expression, arg...)
}

// AddInitScript registers a script to run in every document the window loads.
func (w *Window) AddInitScript(script string) error {
	if err := w.Page.AddInitScript(playwright.Script{Content: playwright.String(script)}); err != nil {
		return fmt.Errorf("failed to add init script: %w", err)
	}
	return nil
}

// URL returns the window's current URL.
func (w *Window) URL() string {
	return w.Page.URL()
}

// IsClosed reports whether the window's page was closed.
func (w *Window) IsClosed() bool {
	return w.Page.IsClosed()
}

// WindowName returns the window's name.
func (w *Window) WindowName() string {
	return w.Name
}

// close releases the window's page and context.
func (w *Window) close() error {
	var errs []error
	if !w.Page.IsClosed() {
		if err := w.Page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.Context.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing %s: %v", w.Name, errs)
	}
	return nil
}
