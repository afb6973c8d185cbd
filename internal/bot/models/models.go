// Package models defines the domain types shared by the repository,
// the dialog services and the spreadsheet extractor.
package models

import "time"

// User is a registered member of the school community.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Class        string    `json:"class"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// LessonRecord is one lesson in a class's day schedule.
// It is uniquely identified by (Class, Day, Number); a later write for
// the same key replaces the earlier one.
type LessonRecord struct {
	Class   string `json:"class"`
	Day     string `json:"day"` // day code, see DayCodes
	Number  int    `json:"number"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

// BellSlot is the start/end time pair for one of the seven lesson periods.
type BellSlot struct {
	Number int    `json:"number"`
	Start  string `json:"start"` // HH:MM
	End    string `json:"end"`   // HH:MM
}

// DayCodes lists the school days in week order. These codes are the
// canonical Day values of LessonRecord and of the day_<code> callbacks.
var DayCodes = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

var dayNames = map[string]string{
	"monday":    "Понедельник",
	"tuesday":   "Вторник",
	"wednesday": "Среда",
	"thursday":  "Четверг",
	"friday":    "Пятница",
	"saturday":  "Суббота",
}

// dayNamesAccusative is used in prompts like "расписание на среду".
var dayNamesAccusative = map[string]string{
	"monday":    "понедельник",
	"tuesday":   "вторник",
	"wednesday": "среду",
	"thursday":  "четверг",
	"friday":    "пятницу",
	"saturday":  "субботу",
}

// DayName returns the Russian display name for a day code,
// or the code itself if it is unknown.
func DayName(code string) string {
	if name, ok := dayNames[code]; ok {
		return name
	}
	return code
}

// DayNameAccusative returns the Russian accusative form for a day code.
func DayNameAccusative(code string) string {
	if name, ok := dayNamesAccusative[code]; ok {
		return name
	}
	return code
}

// IsDayCode reports whether code is one of the known day codes.
func IsDayCode(code string) bool {
	_, ok := dayNames[code]
	return ok
}
