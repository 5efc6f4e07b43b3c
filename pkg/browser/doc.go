// Package browser provides the browser windows a mirror run drives, through Playwright.
//
// # Architecture
//
// A Manager owns one Playwright runtime and one launched browser. Every window
// is its own BrowserContext with a single Page, so windows share no cookies or
// storage. A run opens a Session: the controller window first, then a fixed
// list of followers.
//
// # Lifecycle
//
//  1. Initialize: install the driver (unless skipped), start Playwright, launch the browser
//  2. OpenSession: open the controller and followers, each navigated to the start URL
//  3. Shutdown: close every window, the browser, and the runtime
//
// Window methods bound each call by the configured action or navigation timeout.
//
// # Example Usage
//
//	manager := browser.NewManager(browser.Options{Headless: false})
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.OpenSession(5, "https://google.com")
//	if err != nil {
//	    return err
//	}
//	err = session.Followers[0].Click("button#go")
package browser
