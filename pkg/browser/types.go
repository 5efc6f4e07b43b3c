package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Window is one browser window: an isolated context with a single page.
type Window struct {
	// Name identifies the window in logs ("controller", "follower-1", ...)
	Name string

	// Context is the browser context (isolated cookies and storage)
	Context playwright.BrowserContext

	// Page is the window's only page
	Page playwright.Page

	// actionTimeout and navigationTimeout bound each call, in milliseconds
	actionTimeout     float64
	navigationTimeout float64
}

// Options configures the browser and its windows.
type Options struct {
	// Headless controls whether windows are hidden
	Headless bool

	// Channel selects an installed browser ("chrome", "msedge"); empty uses bundled chromium
	Channel string

	// Viewport sets the size of every window
	Viewport Viewport

	// ActionTimeout bounds each click, fill and scroll
	ActionTimeout time.Duration

	// NavigationTimeout bounds each navigation
	NavigationTimeout time.Duration

	// SkipInstall skips the driver and browser download check
	SkipInstall bool
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for browser options
const (
	DefaultActionTimeout     = 2 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultViewportWidth     = 1280
	DefaultViewportHeight    = 720
)

// withDefaults fills zero-valued options.
func (o Options) withDefaults() Options {
	if o.Viewport.Width == 0 || o.Viewport.Height == 0 {
		o.Viewport = Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = DefaultActionTimeout
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	return o
}

// millis converts a duration to the millisecond floats playwright expects.
func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
