package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
)

var (
	htmlTagRegex     = regexp.MustCompile(`<[^>]*>`)
	controlCharRegex = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	slugInvalidRegex = regexp.MustCompile(`[^a-z0-9]+`)
)

// SanitizeUserName trims and cleans a proposed display name. An empty result
// falls back to a guest name derived from the connection id.
func SanitizeUserName(name, connID string) string {
	name = controlCharRegex.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	name = truncateRunes(name, domain.MaxUserNameLength)
	name = strings.TrimSpace(name)

	if name == "" {
		return FallbackName(connID)
	}
	return name
}

// FallbackName builds "Guest-xxxxxx" from the first characters of a connection id
func FallbackName(connID string) string {
	short := strings.ReplaceAll(connID, "-", "")
	if len(short) > 6 {
		short = short[:6]
	}
	if short == "" {
		short = "anon"
	}
	return "Guest-" + short
}

// NormalizeRoomID turns caller input into a URL-safe slug
func NormalizeRoomID(id string) (string, error) {
	slug := slugInvalidRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(id)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > domain.MaxRoomIDLength {
		slug = strings.TrimRight(slug[:domain.MaxRoomIDLength], "-")
	}
	if slug == "" {
		return "", domain.ErrInvalidRoomID
	}
	return slug, nil
}

// SanitizeRoomName cleans a room display name, defaulting to fallback
func SanitizeRoomName(name, fallback string) string {
	name = strings.TrimSpace(name)
	name = truncateRunes(name, domain.MaxRoomNameLength)

	// Remove HTML tags to prevent XSS
	name = htmlTagRegex.ReplaceAllString(name, "")
	name = controlCharRegex.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	if name == "" {
		return fallback
	}
	return name
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
