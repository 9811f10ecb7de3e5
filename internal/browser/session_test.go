package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkPreflightComposition(t *testing.T) {
	tasks := networkPreflight()

	// Network events on, cache off, user agent override.
	assert.Len(t, tasks, 3)
}

func TestUserAgentMasksHeadless(t *testing.T) {
	assert.NotContains(t, strings.ToLower(userAgent), "headless")
	assert.Contains(t, userAgent, "Chrome/")
	assert.Contains(t, userAgent, "Mozilla/5.0")
}
