package auth

import (
	"strings"

	"github.com/mssola/useragent"
)

// DeviceDisplayName turns a User-Agent string into a short human-readable
// device label for audit events and future device management UIs.
func DeviceDisplayName(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return "Unknown Device"
	}

	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	os := parsed.OSInfo().Name

	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Unknown Device"
	}
}
