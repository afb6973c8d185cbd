// Package validation holds the pure predicate functions used by the dialog
// flows: class names, full names, times of day and schedule lines.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var classRegexp = regexp.MustCompile(`^[5-9][АБВ]$`)

// seniorClasses are the fixed codes outside the grade+letter grammar.
var seniorClasses = map[string]struct{}{
	"10П": {},
	"10Р": {},
	"11Р": {},
}

// IsValidClass reports whether s names a class of the school:
// grade 5-9 with section А, Б or В, or one of the senior codes.
func IsValidClass(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	if classRegexp.MatchString(s) {
		return true
	}
	_, ok := seniorClasses[s]
	return ok
}

// IsValidFullName reports whether name looks like a real full name:
// at least two words, letters only, each word 2 to 20 characters,
// the whole string at most 100 characters.
func IsValidFullName(name string) bool {
	name = strings.TrimSpace(name)
	if len([]rune(name)) > 100 {
		return false
	}
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		runes := []rune(part)
		if len(runes) < 2 || len(runes) > 20 {
			return false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

var timeRegexp = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidTime reports whether s is a time of day in HH:MM form.
func IsValidTime(s string) bool {
	return timeRegexp.MatchString(s)
}

// IsLessonLine reports whether line can contribute a lesson to the manual
// schedule grammar: non-empty, starts with a digit and has the number/text
// separator. Lines failing this are silently skipped by the parser.
func IsLessonLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	r := []rune(line)[0]
	if !unicode.IsDigit(r) {
		return false
	}
	return strings.Contains(line, ".")
}
