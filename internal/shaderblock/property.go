package shaderblock

import (
	"regexp"
	"strings"
)

// HiddenMarker is the attribute that hides a property in the material inspector.
const HiddenMarker = "[HideInInspector]"

// propertyName matches `Name (` either at line start or after a closing
// attribute bracket, e.g. `[HideInInspector] _Color ("Color", Color)`.
var propertyName = regexp.MustCompile(`(?:\]\s*|^)([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// ParseName returns the property identifier declared on line, if any.
// Blank lines and // comments never declare a property.
func ParseName(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "//") {
		return "", false
	}

	matches := propertyName.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return "", false
	}

	// The declaration is the last identifier-paren pair on the line.
	candidate := matches[len(matches)-1][1]
	if candidate == "" || strings.HasPrefix(candidate, "[") {
		return "", false
	}
	return candidate, true
}

// IsHidden reports whether line carries the HideInInspector attribute.
func IsHidden(line string) bool {
	return strings.Contains(line, HiddenMarker)
}
