package models

import "strings"

// HPD violation classes.
const (
	ViolationClassA       = "A"
	ViolationClassB       = "B"
	ViolationClassC       = "C"
	ViolationClassI       = "I"
	ViolationClassUnknown = "Unknown"
)

// Correction deadlines associated with the violation classes.
const (
	DeadlineImmediate = "24-72 hours"
	Deadline30Days    = "30 days"
	Deadline90Days    = "90 days"
	DeadlineUnknown   = "Unknown"
)

var violationClasses = []string{ViolationClassA, ViolationClassB, ViolationClassC, ViolationClassI, ViolationClassUnknown}

var deadlines = []string{DeadlineImmediate, Deadline30Days, Deadline90Days, DeadlineUnknown}

// NormalizeViolationClass folds case and whitespace and clamps anything
// outside the closed set to Unknown.
func NormalizeViolationClass(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Class "), "class ")
	for _, v := range violationClasses {
		if strings.EqualFold(s, v) {
			return v
		}
	}
	return ViolationClassUnknown
}

// NormalizeDeadline clamps a deadline to the closed set, accepting spacing and
// dash variants such as "24 - 72 hours".
func NormalizeDeadline(s string) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	key = strings.ReplaceAll(key, " - ", "-")
	key = strings.ReplaceAll(key, "–", "-")
	for _, d := range deadlines {
		if key == strings.ToLower(d) {
			return d
		}
	}
	return DeadlineUnknown
}
