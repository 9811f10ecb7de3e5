package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockbit-analyzer/internal/utils"
)

// Navigator wraps a Surface with the retry behavior needed against a
// renderer that sometimes hangs mid-navigation.
type Navigator struct {
	surface Surface
	logger  *utils.Logger
	delay   time.Duration
}

func NewNavigator(surface Surface, logger *utils.Logger, delay time.Duration) *Navigator {
	return &Navigator{surface: surface, logger: logger, delay: delay}
}

// Navigate drives the surface to target, retrying up to maxAttempts times.
// Success means the resulting location contains target's path (query
// string ignored) — or, when target is the login page, that the location
// is no longer login-like at all, since an authenticated session gets
// redirected straight off the login page.
//
// Renderer hangs and timeouts are retried, first through a client-side
// location change which has the same effect as clicking a link; any other
// error class propagates immediately.
func (n *Navigator) Navigate(target string, maxAttempts int) error {
	base := strings.SplitN(target, "?", 2)[0]
	targetIsLogin := ClassifyLocation(base) == LocationLogin

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		n.logger.Info("Navigating to %s (attempt %d/%d)...", target, attempt, maxAttempts)

		err := n.surface.Navigate(target)
		if err == nil {
			time.Sleep(n.delay)
			if loc, ok := n.arrived(base, targetIsLogin); ok {
				n.logger.Info("Successfully navigated to: %s", loc)
				return nil
			}
			time.Sleep(n.delay)
			continue
		}

		if !isRendererTimeout(err) {
			return fmt.Errorf("navigate to %s: %w", target, err)
		}

		n.logger.Warn("Renderer timeout on attempt %d, trying location workaround...", attempt)
		if jsErr := n.surface.Evaluate(fmt.Sprintf("window.location.href = %q;", target), nil); jsErr != nil {
			n.logger.Debug("Location workaround failed: %v", jsErr)
		}
		time.Sleep(n.delay + time.Second)

		if loc, ok := n.arrived(base, targetIsLogin); ok {
			n.logger.Info("Location workaround succeeded: %s", loc)
			return nil
		}
		time.Sleep(n.delay)
	}

	n.logger.Error("All navigation attempts to %s failed", target)
	return fmt.Errorf("%w: %s", ErrNavigationFailed, target)
}

func (n *Navigator) arrived(base string, targetIsLogin bool) (string, bool) {
	loc, err := n.surface.Location()
	if err != nil {
		n.logger.Debug("Failed to read location: %v", err)
		return "", false
	}
	if strings.Contains(loc, base) {
		return loc, true
	}
	// A login target that redirected elsewhere means the session is
	// already authenticated.
	if targetIsLogin && ClassifyLocation(loc) != LocationLogin {
		return loc, true
	}
	return loc, false
}

func isRendererTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "renderer")
}
