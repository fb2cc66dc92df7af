package service

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	punctuation   = strings.NewReplacer(
		".", "", ",", "", "!", "", "?", "", ";", "", ":", "",
		"'", "", `"`, "", "-", "",
		"‘", "", "’", "", "“", "", "”", "",
	)
)

// normalizeAnswer lowercases, strips common punctuation and smart quotes, and
// collapses whitespace runs to single spaces.
func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = punctuation.Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// solutionsMatch compares normalized forms, then retries with all whitespace
// removed so spacing-only differences are accepted.
func solutionsMatch(plaintext, guess string) bool {
	want, got := normalizeAnswer(plaintext), normalizeAnswer(guess)
	if want == got {
		return true
	}
	return whitespaceRun.ReplaceAllString(want, "") == whitespaceRun.ReplaceAllString(got, "")
}
