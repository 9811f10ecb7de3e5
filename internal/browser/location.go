package browser

import "strings"

// LoginURL is the entry point of the Stockbit login flow.
const LoginURL = "https://stockbit.com/login"

// LocationClass classifies a browser location by which stage of the login
// flow it belongs to.
type LocationClass int

const (
	LocationOther LocationClass = iota
	LocationLogin
	LocationDeviceVerification
)

func (c LocationClass) String() string {
	switch c {
	case LocationLogin:
		return "login"
	case LocationDeviceVerification:
		return "device-verification"
	default:
		return "other"
	}
}

// ClassifyLocation maps a URL to its location class. The device
// verification marker wins over the login marker since the verification
// page may itself live under a login-like path.
func ClassifyLocation(rawURL string) LocationClass {
	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, "new-device") {
		return LocationDeviceVerification
	}
	if strings.Contains(lower, "login") {
		return LocationLogin
	}
	return LocationOther
}
