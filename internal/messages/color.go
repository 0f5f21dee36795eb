package messages

import "strings"

// ColorChar is the section sign hosts use to prefix formatting codes.
const ColorChar = '§'

// AltColorChar is the author-friendly prefix translated by Colorize.
const AltColorChar = '&'

const colorCodes = "0123456789AaBbCcDdEeFfKkLlMmNnOoRr"

// Colorize translates &-prefixed formatting codes to section-sign codes.
// An & not followed by a valid code is kept as is.
func Colorize(s string) string {
	if !strings.ContainsRune(s, AltColorChar) {
		return s
	}
	r := []rune(s)
	for i := 0; i < len(r)-1; i++ {
		if r[i] == AltColorChar && strings.ContainsRune(colorCodes, r[i+1]) {
			r[i] = ColorChar
			r[i+1] = toLower(r[i+1])
		}
	}
	return string(r)
}

// StripColor removes section-sign codes, leaving plain text.
func StripColor(s string) string {
	if !strings.ContainsRune(s, ColorChar) {
		return s
	}
	var b strings.Builder
	r := []rune(s)
	for i := 0; i < len(r); i++ {
		if r[i] == ColorChar && i+1 < len(r) && strings.ContainsRune(colorCodes, r[i+1]) {
			i++
			continue
		}
		b.WriteRune(r[i])
	}
	return b.String()
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
