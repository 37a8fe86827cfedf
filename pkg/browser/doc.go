// Package browser drives a real Chromium instance through Playwright and
// exposes it as a quiz.Page.
//
// # Architecture
//
// The package is built around three pieces:
//
//  1. SessionManager: owns the Playwright driver and the set of open sessions
//  2. Session: one browser, context and page, usable as a quiz.Page
//  3. frameDocument and element: quiz.Document and quiz.Element over
//     playwright.Frame and playwright.Locator
//
// # Session Lifecycle
//
//  1. Initialize: install and start the Playwright driver
//  2. StartSession: launch a browser and open a blank page
//  3. Use: the quiz runner navigates, locates frames and acts on elements
//  4. Shutdown: close every session and stop the driver
//
// # Selectors
//
// Selectors are passed to Playwright unchanged. The "xpath=" prefix used by
// the quiz package is understood natively; anything else is CSS.
//
// Playwright calls are not context aware. Each call checks the context first
// and bounds its Playwright timeout by the context deadline.
//
// CleanHTML reduces a document's markup to the structure and attributes
// useful for choosing an element, for prompting a language model.
package browser
