package ratelimit

import "time"

// Endpoint classes. Each class shares one policy across all its routes.
const (
	ClassAIGeneration = "aiGeneration"
	ClassAuth         = "auth"
	ClassBlog         = "blog"
	ClassGeneral      = "general"
	ClassUpload       = "upload"
)

// Policy is the admission ceiling for one endpoint class.
type Policy struct {
	// MaxRequests is the number of requests admitted per trailing window.
	MaxRequests int
	// Window is the sliding window length.
	Window time.Duration
	// KeyPrefix namespaces store keys so classes never collide.
	KeyPrefix string
}

// DefaultPolicies returns the process-wide policy table.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		ClassAIGeneration: {MaxRequests: 10, Window: time.Hour, KeyPrefix: "ratelimit:ai"},
		ClassAuth:         {MaxRequests: 5, Window: 15 * time.Minute, KeyPrefix: "ratelimit:auth"},
		ClassBlog:         {MaxRequests: 30, Window: time.Minute, KeyPrefix: "ratelimit:blog"},
		ClassGeneral:      {MaxRequests: 100, Window: time.Minute, KeyPrefix: "ratelimit:general"},
		ClassUpload:       {MaxRequests: 20, Window: time.Hour, KeyPrefix: "ratelimit:upload"},
	}
}
