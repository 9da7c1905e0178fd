package ratelimit

import (
	"net/http"
	"strings"
)

// ResolveIdentity derives a stable client identifier for rate-limit accounting.
// An authenticated user id wins over network origin, so accounting follows the
// principal regardless of which address they connect from. Without one, the
// client IP is taken from X-Forwarded-For (first entry, the original client in
// a proxy chain), then X-Real-IP, then the literal "unknown".
//
// The function is total: it never fails and has no side effects.
func ResolveIdentity(r *http.Request, userID string) string {
	if userID != "" {
		return "user:" + userID
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return "ip:" + first
		}
	}

	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		return "ip:" + rip
	}

	return "ip:unknown"
}
