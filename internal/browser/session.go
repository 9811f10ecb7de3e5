package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockbit-analyzer/internal/utils"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const maxStartupAttempts = 3

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Session is the chromedp-backed Surface. One session owns one browser
// with a persistent on-disk profile, so prior authentication survives
// across runs.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *utils.Logger
	timeout     time.Duration
}

// NewSession launches the browser with the persistent profile directory.
// If startup fails (typically a stale lock left by a crashed instance) the
// lock is cleared and startup retried a bounded number of times.
func NewSession(parent context.Context, logger *utils.Logger, config *utils.Config) (*Session, error) {
	headless := config.Scraper.Browser.Headless
	if v, set := utils.HeadlessOverride(); set {
		headless = v
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(config.Scraper.Browser.ProfileDir),
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-logging", config.Scraper.Browser.Debug),
	)
	if !headless {
		opts = append(opts, chromedp.Flag("start-maximized", true))
	}

	var lastErr error
	for attempt := 1; attempt <= maxStartupAttempts; attempt++ {
		allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
		ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debug))

		if err := chromedp.Run(ctx,
			chromedp.Navigate("about:blank"),
			networkPreflight(),
		); err != nil {
			lastErr = err
			cancel()
			allocCancel()
			logger.Warn("Browser startup attempt %d/%d failed: %v", attempt, maxStartupAttempts, err)
			clearStaleProfileLock(config.Scraper.Browser.ProfileDir, logger)
			time.Sleep(2 * time.Second)
			continue
		}

		// Auto-accept any JavaScript dialog so a stray confirm() cannot
		// wedge the session mid-run.
		chromedp.ListenTarget(ctx, func(ev interface{}) {
			if dialog, ok := ev.(*page.EventJavascriptDialogOpening); ok {
				logger.Debug("Dialog detected: %s", dialog.Message)
				go func() {
					if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(true)); err != nil {
						logger.Debug("Failed to handle dialog: %v", err)
					}
				}()
			}
		})

		return &Session{
			ctx:         ctx,
			cancel:      cancel,
			allocCancel: allocCancel,
			logger:      logger,
			timeout:     time.Duration(config.Scraper.Timeout) * time.Second,
		}, nil
	}

	return nil, fmt.Errorf("failed to start browser after %d attempts: %w", maxStartupAttempts, lastErr)
}

// networkPreflight enables network events with caching off and masks the
// headless user agent, so every page load sees a normal desktop browser.
func networkPreflight() chromedp.Tasks {
	return chromedp.Tasks{
		network.Enable(),
		network.SetCacheDisabled(true),
		emulation.SetUserAgentOverride(userAgent),
	}
}

func (s *Session) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (s *Session) Navigate(url string) error {
	return s.run(s.timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
}

func (s *Session) Location() (string, error) {
	var loc string
	err := s.run(10*time.Second, chromedp.Location(&loc))
	return loc, err
}

func (s *Session) Evaluate(script string, out interface{}) error {
	return s.run(s.timeout, chromedp.Evaluate(script, out))
}

func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	err := s.run(timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return err
}

func (s *Session) Click(selector string) error {
	return s.run(10*time.Second, chromedp.Click(selector, chromedp.ByQuery))
}

func (s *Session) Fill(selector, text string) error {
	return s.run(10*time.Second, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

func (s *Session) PressKey(key string) error {
	if key == "Escape" {
		key = kb.Escape
	}
	return s.run(5*time.Second, chromedp.KeyEvent(key))
}

func (s *Session) IsClosed() bool {
	return s.ctx.Err() != nil
}

// Close shuts the browser down gracefully so the profile is written out
// cleanly and the singleton lock is released.
func (s *Session) Close() {
	if s.cancel == nil {
		return
	}
	if err := chromedp.Cancel(s.ctx); err != nil {
		s.logger.Debug("Error during graceful shutdown: %v", err)
	}
	s.cancel()
	s.allocCancel()
}
