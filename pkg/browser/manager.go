package browser

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Manager owns the Playwright runtime, the browser, and every window opened
// for a mirror run.
type Manager struct {
	mu          sync.Mutex
	opts        Options
	playwright  *playwright.Playwright
	browser     playwright.Browser
	windows     []*Window
	initialized bool
}

// Session is the fixed window set of one run: a controller and its followers.
type Session struct {
	Controller *Window
	Followers  []*Window
}

// NewManager creates a new browser manager.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts.withDefaults()}
}

// Initialize installs (unless skipped) and starts Playwright, then launches
// the browser. It must be called before opening windows.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output would interleave with operator guidance on stdout
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if !m.opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.opts.Headless),
	}
	if m.opts.Channel != "" {
		launchOpts.Channel = playwright.String(m.opts.Channel)
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	m.playwright = pw
	m.browser = browser
	m.initialized = true
	return nil
}

// OpenWindow creates a new isolated context with one page and navigates it
// to startURL.
func (m *Manager) OpenWindow(name, startURL string) (*Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}

	context, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  m.opts.Viewport.Width,
			Height: m.opts.Viewport.Height,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context for %s: %w", name, err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		return nil, fmt.Errorf("failed to create page for %s: %w", name, err)
	}

	window := &Window{
		Name:              name,
		Context:           context,
		Page:              page,
		actionTimeout:     millis(m.opts.ActionTimeout),
		navigationTimeout: millis(m.opts.NavigationTimeout),
	}
	page.SetDefaultTimeout(window.actionTimeout)
	page.SetDefaultNavigationTimeout(window.navigationTimeout)

	// Track before navigating so Shutdown reclaims the window on failure
	m.windows = append(m.windows, window)

	if startURL != "" {
		if err := window.Navigate(startURL); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	return window, nil
}

// OpenSession opens the controller and the given number of followers, in
// that order, each navigated to startURL.
func (m *Manager) OpenSession(followers int, startURL string) (*Session, error) {
	if followers < 1 {
		return nil, fmt.Errorf("at least one follower is required, got %d", followers)
	}

	controller, err := m.OpenWindow(WindowName(0), startURL)
	if err != nil {
		return nil, err
	}

	session := &Session{Controller: controller}
	for i := 1; i <= followers; i++ {
		follower, err := m.OpenWindow(WindowName(i), startURL)
		if err != nil {
			return nil, err
		}
		session.Followers = append(session.Followers, follower)
	}

	return session, nil
}

// Windows returns every window opened so far, in opening order.
func (m *Manager) Windows() []*Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	windows := make([]*Window, len(m.windows))
	copy(windows, m.windows)
	return windows
}

// Shutdown closes all windows, the browser, and Playwright.
// It is safe to call more than once and after a failed Initialize.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, window := range m.windows {
		if err := window.close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.windows = nil

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
		m.browser = nil
	}

	if m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		m.playwright = nil
	}

	m.initialized = false
	return errors.Join(errs...)
}
