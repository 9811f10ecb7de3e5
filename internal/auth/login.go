// Package auth drives the Stockbit login flow: automated credential
// submission or a long manual wait, followed by the new-device
// verification wait when the site asks for it.
package auth

import (
	"context"
	"errors"
	"time"

	"stockbit-analyzer/internal/browser"
	"stockbit-analyzer/internal/utils"
)

// ErrVerificationTimeout means the device-verification page never cleared.
// It is raised as a hard failure: the session is stuck, not rejected, and
// no extraction can safely proceed on it.
var ErrVerificationTimeout = errors.New("device verification timeout")

var errBrowserClosed = errors.New("browser closed")

// Outcome is the terminal result of a login attempt.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSuccess
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

const (
	usernameSelector = "#username"
	passwordSelector = "#password"
	submitSelector   = "#email-login-button"
)

// timings are the wait budgets of the state machine. They are fields, not
// constants, so tests can shrink them.
type timings struct {
	fieldWait     time.Duration
	submitCeiling time.Duration
	submitGrace   time.Duration
	pollInterval  time.Duration
	manualCeiling time.Duration
	verifyCeiling time.Duration
}

func defaultTimings() timings {
	return timings{
		fieldWait:     10 * time.Second,
		submitCeiling: 10 * time.Second,
		submitGrace:   5 * time.Second,
		pollInterval:  2 * time.Second,
		manualCeiling: 10 * time.Minute,
		verifyCeiling: 5 * time.Minute,
	}
}

type Flow struct {
	surface browser.Surface
	nav     *browser.Navigator
	logger  *utils.Logger
	creds   utils.Credentials
	retries int
	times   timings
}

func NewFlow(surface browser.Surface, nav *browser.Navigator, logger *utils.Logger, creds utils.Credentials, retries int) *Flow {
	return &Flow{
		surface: surface,
		nav:     nav,
		logger:  logger,
		creds:   creds,
		retries: retries,
		times:   defaultTimings(),
	}
}

// Login authenticates the session. Re-invoking it on an already
// authenticated session short-circuits to success without touching any
// form field.
func (f *Flow) Login(ctx context.Context, manual bool) (Outcome, error) {
	f.logger.Info("Navigating to Stockbit login page...")
	if err := f.nav.Navigate(browser.LoginURL, f.retries); err != nil {
		return OutcomeFailed, err
	}

	loc, err := f.surface.Location()
	if err != nil {
		return OutcomeFailed, err
	}
	switch browser.ClassifyLocation(loc) {
	case browser.LocationDeviceVerification:
		// A resumed session can land here straight away; verification
		// still has to clear before anything else runs.
		f.logger.Info("Session resumed on device verification page (%s)", loc)
		return f.checkDeviceVerification(ctx)
	case browser.LocationOther:
		f.logger.Info("Already authenticated (at %s), skipping login", loc)
		return OutcomeSuccess, nil
	}

	if manual {
		return f.manualWait(ctx, loc)
	}
	return f.automatedSubmit(ctx)
}

// automatedSubmit fills the credential form and issues exactly one submit.
// Staying on the login page past the grace period means a challenge or an
// account lock; that is reported as a failed outcome, never retried here.
func (f *Flow) automatedSubmit(ctx context.Context) (Outcome, error) {
	for _, selector := range []string{usernameSelector, passwordSelector, submitSelector} {
		if err := f.surface.WaitVisible(selector, f.times.fieldWait); err != nil {
			return OutcomeFailed, err
		}
	}

	f.logger.Info("Filling in credentials...")
	if err := f.surface.Fill(usernameSelector, f.creds.Username); err != nil {
		return OutcomeFailed, err
	}
	if err := f.surface.Fill(passwordSelector, f.creds.Password); err != nil {
		return OutcomeFailed, err
	}

	f.logger.Info("Clicking login button...")
	if err := f.surface.Click(submitSelector); err != nil {
		return OutcomeFailed, err
	}

	err := utils.Poll(ctx, f.times.pollInterval, f.times.submitCeiling, f.leftLoginPage)
	if errors.Is(err, utils.ErrPollTimeout) {
		f.logger.Warn("Still on login page, allowing a grace period...")
		err = utils.Poll(ctx, f.times.pollInterval, f.times.submitGrace, f.leftLoginPage)
	}
	if errors.Is(err, utils.ErrPollTimeout) {
		f.logger.Error("Login did not leave the login page; challenge or account lock suspected")
		return OutcomeFailed, nil
	}
	if err != nil {
		return OutcomeFailed, err
	}

	return f.checkDeviceVerification(ctx)
}

// manualWait blocks until a human completes the login in the browser
// window. The browser disappearing mid-wait is a failed outcome, not a
// crash.
func (f *Flow) manualWait(ctx context.Context, initial string) (Outcome, error) {
	f.logger.Info("======================================================================")
	f.logger.Info("MANUAL LOGIN MODE")
	f.logger.Info("Please log in manually in the browser window.")
	f.logger.Info("Waiting up to %v for the login to complete.", f.times.manualCeiling)
	f.logger.Info("======================================================================")

	err := utils.Poll(ctx, f.times.pollInterval, f.times.manualCeiling, func() (bool, error) {
		if f.surface.IsClosed() {
			return false, errBrowserClosed
		}
		loc, lerr := f.surface.Location()
		if lerr != nil {
			return false, lerr
		}
		return loc != initial && browser.ClassifyLocation(loc) != browser.LocationLogin, nil
	})

	switch {
	case err == nil:
		return f.checkDeviceVerification(ctx)
	case errors.Is(err, utils.ErrPollTimeout):
		// Unlike a verification timeout this is retryable, so it is an
		// outcome rather than an error.
		f.logger.Error("Manual login wait timed out after %v", f.times.manualCeiling)
		return OutcomeTimeout, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return OutcomeFailed, err
	default:
		f.logger.Error("Error during manual login wait: %v", err)
		return OutcomeFailed, nil
	}
}

func (f *Flow) leftLoginPage() (bool, error) {
	if f.surface.IsClosed() {
		return false, errBrowserClosed
	}
	loc, err := f.surface.Location()
	if err != nil {
		return false, err
	}
	return browser.ClassifyLocation(loc) != browser.LocationLogin, nil
}

func (f *Flow) checkDeviceVerification(ctx context.Context) (Outcome, error) {
	loc, err := f.surface.Location()
	if err != nil {
		f.logger.Error("Failed to read post-login location: %v", err)
		return OutcomeFailed, nil
	}
	if browser.ClassifyLocation(loc) != browser.LocationDeviceVerification {
		f.logger.Info("Login successful! Current URL: %s", loc)
		return OutcomeSuccess, nil
	}

	f.logger.Info("New device verification required. Please complete verification...")
	err = utils.Poll(ctx, f.times.pollInterval, f.times.verifyCeiling, func() (bool, error) {
		current, lerr := f.surface.Location()
		if lerr != nil {
			return false, lerr
		}
		return browser.ClassifyLocation(current) != browser.LocationDeviceVerification, nil
	})
	if err == nil {
		f.logger.Info("Verification completed!")
		return OutcomeSuccess, nil
	}
	if errors.Is(err, utils.ErrPollTimeout) {
		return OutcomeTimeout, ErrVerificationTimeout
	}
	return OutcomeFailed, err
}
