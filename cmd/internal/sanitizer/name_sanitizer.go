package sanitizer

import (
	"regexp"
	"strings"
)

var allowedChars = regexp.MustCompile(`[^A-Za-z0-9]`)
var leadingNumber = regexp.MustCompile(`^[0-9]`)

// SanitizeName creates a string that can be used as a name for HCL resources
func SanitizeName(name string) string {
	sanitized := allowedChars.ReplaceAllString(strings.ToLower(name), "_")
	if leadingNumber.MatchString(sanitized) {
		return "_" + sanitized
	}

	return sanitized
}
