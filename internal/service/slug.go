package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// makeSlug turns a title into a URL slug with a short random suffix so that
// identical titles never collide on the unique slug column.
func makeSlug(title string) string {
	return slugify(title) + "-" + randomSuffix(3)
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func randomSuffix(bytes int) string {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is not recoverable in any useful way here
		panic(err)
	}
	return hex.EncodeToString(buf)
}
