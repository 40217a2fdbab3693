// Package tuneauth implements a music-memory two-factor authentication
// study service. Participants pick five songs during setup; later they
// must recognize a one-second snippet of one of their own songs among
// distractors to log in.
package tuneauth

import (
	"regexp"
	"strings"
)

// SlugifyTitle converts a provider title into a filesystem-safe identifier.
// Runs of non-alphanumeric characters collapse into a single hyphen and the
// result is capped at 100 characters.
func SlugifyTitle(title string) string {
	s := strings.ToLower(title)
	s = nonAlphanumericRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)
