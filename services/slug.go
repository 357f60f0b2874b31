package services

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const slugMaxLen = 48

// slugify derives the identity key for a display name: lowercase,
// runs of non-alphanumerics collapsed to single hyphens, trimmed of
// edge hyphens, capped at 48 characters. Deterministic for any name
// containing at least one letter or digit; all-symbolic input falls
// back to a random player-<hex> token.
func slugify(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		} else {
			hyphen = true
		}
	}

	slug := b.String()
	if len(slug) > slugMaxLen {
		slug = strings.Trim(slug[:slugMaxLen], "-")
	}
	if slug == "" {
		return "player-" + randomHex(4)
	}
	return slug
}

// normalizeNames splits a free-text block on newlines and commas into
// trimmed, non-empty names.
func normalizeNames(input string) []string {
	names := []string{}
	for _, name := range strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	}) {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// uniqueNames merges the free-text block with explicitly selected
// existing-player names, free text first, deduplicated
// case-insensitively preserving first occurrence order.
func uniqueNames(freeText string, existing []string) []string {
	all := normalizeNames(freeText)
	for _, name := range existing {
		name = strings.TrimSpace(name)
		if name != "" {
			all = append(all, name)
		}
	}

	seen := map[string]bool{}
	unique := []string{}
	for _, name := range all {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, name)
	}
	return unique
}

func randomHex(n int) string {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
