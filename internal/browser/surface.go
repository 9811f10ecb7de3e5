// Package browser wraps the chromedp automation surface behind a small
// interface so the login and calendar flows can be driven against a fake
// in tests.
package browser

import (
	"errors"
	"time"
)

var (
	// ErrNavigationFailed means every navigation attempt was exhausted.
	ErrNavigationFailed = errors.New("navigation failed")
	// ErrElementNotFound means a required element never became visible
	// within its timeout.
	ErrElementNotFound = errors.New("element not found")
)

// Surface is the browser-control capability the analyzer drives. The
// chromedp-backed Session implements it; tests substitute a fake.
type Surface interface {
	Navigate(url string) error
	Location() (string, error)
	Evaluate(script string, out interface{}) error
	WaitVisible(selector string, timeout time.Duration) error
	Click(selector string) error
	Fill(selector, text string) error
	PressKey(key string) error
	IsClosed() bool
	Close()
}
