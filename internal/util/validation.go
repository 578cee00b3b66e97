package util

import (
	"regexp"
)

// Site slugs look like "001-chatbot": lowercase alphanumerics and hyphens,
// never starting or ending with a hyphen.
var siteNameRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func IsValidSiteName(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	return siteNameRegex.MatchString(s)
}

// Component identifiers are Go/JS-style exported names, e.g. "ChatbotTemplate".
var componentNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func IsValidComponentName(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	return componentNameRegex.MatchString(s)
}

func IsValidEnum(value string, validValues []string) bool {
	if value == "" {
		return true
	}
	for _, v := range validValues {
		if value == v {
			return true
		}
	}
	return false
}
