package main

import (
	"fmt"
	"os"
	"strings"
)

// cspPolicy returns the Content Security Policy for every response. The page
// loads only its own script and stylesheet and talks to its own API and clock
// feed.
func cspPolicy() string {
	directives := []string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self'",
		"img-src 'self' data:",
		"font-src 'self' data:",
	}

	// 'self' covers ws:// and wss:// on the same host in current browsers.
	connectSrcs := []string{"'self'"}
	directives = append(directives,
		fmt.Sprintf("connect-src %s", strings.Join(connectSrcs, " ")),
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	)

	if os.Getenv("PRODUCTION") == "true" {
		directives = append(directives, "upgrade-insecure-requests")
	}

	return strings.Join(directives, "; ")
}
