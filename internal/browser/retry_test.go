package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbit-analyzer/internal/utils"
)

// fakeSurface scripts the surface's responses per call.
type fakeSurface struct {
	navErrs   []error  // error per Navigate call, nil past the end
	locations []string // Location() result per call, last repeats
	navCalls  int
	locCalls  int
	evals     []string
	closed    bool
}

func (f *fakeSurface) Navigate(url string) error {
	f.navCalls++
	if f.navCalls <= len(f.navErrs) {
		return f.navErrs[f.navCalls-1]
	}
	return nil
}

func (f *fakeSurface) Location() (string, error) {
	f.locCalls++
	if len(f.locations) == 0 {
		return "", errors.New("no location scripted")
	}
	i := f.locCalls - 1
	if i >= len(f.locations) {
		i = len(f.locations) - 1
	}
	return f.locations[i], nil
}

func (f *fakeSurface) Evaluate(script string, out interface{}) error {
	f.evals = append(f.evals, script)
	return nil
}

func (f *fakeSurface) WaitVisible(selector string, timeout time.Duration) error { return nil }
func (f *fakeSurface) Click(selector string) error                              { return nil }
func (f *fakeSurface) Fill(selector, text string) error                         { return nil }
func (f *fakeSurface) PressKey(key string) error                                { return nil }
func (f *fakeSurface) IsClosed() bool                                           { return f.closed }
func (f *fakeSurface) Close()                                                   { f.closed = true }

func newTestNavigator(surface Surface) *Navigator {
	return NewNavigator(surface, utils.NewNopLogger(), 0)
}

func TestNavigatorSuccessOnFirstAttempt(t *testing.T) {
	surface := &fakeSurface{
		locations: []string{"https://stockbit.com/symbol/BBRI"},
	}

	err := newTestNavigator(surface).Navigate("https://stockbit.com/symbol/BBRI?tab=broker", 3)

	require.NoError(t, err)
	assert.Equal(t, 1, surface.navCalls)
}

func TestNavigatorLoginTargetRedirectMeansAuthenticated(t *testing.T) {
	// Navigating to the login page but landing elsewhere is success: an
	// authenticated session gets redirected off the login page.
	surface := &fakeSurface{
		locations: []string{"https://stockbit.com/stream"},
	}

	err := newTestNavigator(surface).Navigate(LoginURL, 3)

	require.NoError(t, err)
}

func TestNavigatorRetriesTimeoutClass(t *testing.T) {
	surface := &fakeSurface{
		navErrs:   []error{errors.New("page load timeout: renderer unresponsive")},
		locations: []string{"https://stockbit.com/symbol/BBRI"},
	}

	err := newTestNavigator(surface).Navigate("https://stockbit.com/symbol/BBRI", 3)

	// The timeout triggers the client-side location workaround, which
	// lands on the target.
	require.NoError(t, err)
	require.Len(t, surface.evals, 1)
	assert.Contains(t, surface.evals[0], "window.location.href")
}

func TestNavigatorPropagatesOtherErrors(t *testing.T) {
	fatal := errors.New("net::ERR_NAME_NOT_RESOLVED")
	surface := &fakeSurface{
		navErrs: []error{fatal},
	}

	err := newTestNavigator(surface).Navigate("https://stockbit.com/symbol/BBRI", 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, surface.navCalls, "non-timeout errors must not be retried")
	assert.Empty(t, surface.evals)
}

func TestNavigatorExhaustsAttempts(t *testing.T) {
	surface := &fakeSurface{
		locations: []string{"https://stockbit.com/maintenance"},
	}

	err := newTestNavigator(surface).Navigate("https://stockbit.com/symbol/BBRI", 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigationFailed)
	assert.Equal(t, 3, surface.navCalls)
}
