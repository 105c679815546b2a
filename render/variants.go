package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Variants returns the four textual forms of name in substitution order.
func Variants(name string) [4]string {
	return [4]string{
		strings.ToLower(name),
		strings.ReplaceAll(strings.ToUpper(name), "-", "_"),
		titleWords(name),
		strings.ToUpper(name),
	}
}

// Rewrite replaces every variant of from in text with the matching variant
// of to. Variants are applied one after another in Variants order, each
// against the output of the previous one.
func Rewrite(text, from, to string) string {
	if from == "" {
		return text
	}
	old, repl := Variants(from), Variants(to)
	for i := range old {
		text = strings.ReplaceAll(text, old[i], repl[i])
	}
	return text
}

// titleWords title-cases every run of letters in s. A new word starts after
// any non-letter, so "my_app" becomes "My_App" and "oauth2proxy" becomes
// "Oauth2Proxy".
func titleWords(s string) string {
	title := cases.Title(language.English)

	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(title.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(title.String(s[start:]))
	}
	return b.String()
}
