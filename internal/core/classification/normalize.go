package classification

import "strings"

// Normalize joins the petition fields with single spaces and lowercases the result.
// No tokenizing or stemming happens; keyword matching is plain substring search.
func Normalize(title, description, location string) string {
	return strings.ToLower(title + " " + description + " " + location)
}
