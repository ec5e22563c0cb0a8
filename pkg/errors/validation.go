package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxCourseIDLength bounds identifiers accepted from query strings and flags.
const maxCourseIDLength = 32

// courseIDRegex matches catalog course codes such as MBA505 or FIN-610.
var courseIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateCourseID validates a course identifier supplied by a user.
//
// The catalog itself accepts any non-empty identifier; this check applies to
// untrusted input (CLI flags, query parameters) before it is looked up:
//   - No empty identifiers
//   - No control characters or whitespace
//   - Letters, digits, '-' and '_' only, starting with a letter
//   - Maximum length of 32 characters
func ValidateCourseID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSelection, "course ID cannot be empty")
	}

	if len(id) > maxCourseIDLength {
		return New(ErrCodeInvalidSelection, "course ID too long (max %d characters)", maxCourseIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidSelection, "course ID contains invalid characters: %q", id)
		}
	}

	if !courseIDRegex.MatchString(id) {
		return New(ErrCodeInvalidSelection, "invalid course ID: %q", id)
	}

	return nil
}

// ParseSelectionList splits a comma-separated list of course IDs, trimming
// whitespace and dropping empty entries. Every remaining entry must pass
// [ValidateCourseID].
func ParseSelectionList(s string) ([]string, error) {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := ValidateCourseID(part); err != nil {
			return nil, err
		}
		ids = append(ids, part)
	}
	return ids, nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
