// Package device derives a human readable device label from the User-Agent
// header. The label is recorded on attendance audit entries.
package device

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"presence/pkg/requestcontext"
)

const unknownDevice = "Unknown Device"

// Middleware stores the parsed device label in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithDevice(r.Context(), ParseUserAgent(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseUserAgent returns "<browser> on <os>" or "Unknown Device".
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDevice
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := strings.TrimSpace(ua.OS())
	if platform := strings.TrimSpace(ua.Platform()); ua.Mobile() && platform != "" && !strings.Contains(os, platform) {
		os = strings.TrimSpace(platform + " " + os)
	}
	if os == "" {
		os = "Unknown OS"
	}

	return fmt.Sprintf("%s on %s", browser, os)
}
