package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session represents an open browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the root page quizzes are run in
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	main *frameDocument
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations
	Timeout time.Duration

	// UserAgent overrides the browser's user agent when set
	UserAgent string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for sessions
const (
	DefaultTimeout        = 30 * time.Second
	DefaultNavTimeout     = 60 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)
