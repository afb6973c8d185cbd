// Package timetable parses the free-text schedule grammar used by the
// manual editing flow and renders schedule and bell messages.
package timetable

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/r1kuza/schoolbot/internal/bot/models"
	"github.com/r1kuza/schoolbot/internal/bot/validation"
)

// Lesson is one parsed line of the manual schedule grammar.
type Lesson struct {
	Number  int
	Subject string
	Teacher string
	Room    string
}

// IsClearMarker reports whether text is the single-dash message that
// clears the schedule for a class/day instead of parsing any lines.
func IsClearMarker(text string) bool {
	return strings.TrimSpace(text) == "-"
}

// ParseLine parses one schedule line of the form
// "N. Subject (Teacher) - Room". The teacher and room parts are optional.
// A line that is not a lesson line reports ok=false and is to be skipped.
func ParseLine(line string) (Lesson, bool) {
	line = strings.TrimSpace(line)
	if !validation.IsLessonLine(line) {
		return Lesson{}, false
	}

	numberPart, rest, _ := strings.Cut(line, ".")
	number, err := strconv.Atoi(strings.TrimSpace(numberPart))
	if err != nil {
		return Lesson{}, false
	}

	info := strings.TrimSpace(rest)
	teacher := ""
	if open := strings.Index(info, "("); open >= 0 {
		if length := strings.Index(info[open:], ")"); length > 0 {
			teacher = strings.TrimSpace(info[open+1 : open+length])
			info = info[:open] + info[open+length+1:]
		}
	}

	subject := info
	room := ""
	if sep := strings.Index(info, " - "); sep >= 0 {
		subject = info[:sep]
		room = strings.TrimSpace(info[sep+3:])
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Lesson{}, false
	}

	return Lesson{Number: number, Subject: subject, Teacher: teacher, Room: room}, true
}

// ParseText parses a whole schedule block, one lesson per line,
// silently skipping malformed lines.
func ParseText(text string) []Lesson {
	var lessons []Lesson
	for _, line := range strings.Split(text, "\n") {
		if lesson, ok := ParseLine(line); ok {
			lessons = append(lessons, lesson)
		}
	}
	return lessons
}

// FormatLesson renders one lesson the way every schedule view shows it:
// "N. Subject (Teacher) - Room" with bold subject.
func FormatLesson(l models.LessonRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. <b>%s</b>", l.Number, l.Subject)
	if l.Teacher != "" {
		fmt.Fprintf(&b, " (%s)", l.Teacher)
	}
	if l.Room != "" {
		fmt.Fprintf(&b, " - %s", l.Room)
	}
	return b.String()
}

// FormatSchedule renders a class's day schedule, or a not-found notice
// when the day has no lessons.
func FormatSchedule(class, day string, lessons []models.LessonRecord) string {
	dayName := models.DayName(day)
	if len(lessons) == 0 {
		return fmt.Sprintf("❌ Расписание для %s класса на %s не найдено",
			class, strings.ToLower(dayName))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 <b>Расписание %s класса</b>\n%s\n\n", class, dayName)
	for _, l := range lessons {
		b.WriteString(FormatLesson(l))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCurrentSchedule renders the plain lesson list shown to an admin
// before editing a day.
func FormatCurrentSchedule(lessons []models.LessonRecord) string {
	if len(lessons) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<b>Текущее расписание:</b>\n")
	for _, l := range lessons {
		fmt.Fprintf(&b, "%d. %s", l.Number, l.Subject)
		if l.Teacher != "" {
			fmt.Fprintf(&b, " (%s)", l.Teacher)
		}
		if l.Room != "" {
			fmt.Fprintf(&b, " - %s", l.Room)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// FormatBells renders the plain bell list used in the admin view.
func FormatBells(slots []models.BellSlot) string {
	var b strings.Builder
	b.WriteString("🔔 <b>Текущее расписание звонков</b>\n\n")
	for _, slot := range slots {
		fmt.Fprintf(&b, "%d. %s - %s\n", slot.Number, slot.Start, slot.End)
	}
	return b.String()
}

// FormatBellsWithBreaks renders the pupil-facing bell list with the
// break durations between lessons.
func FormatBellsWithBreaks(slots []models.BellSlot) string {
	var b strings.Builder
	b.WriteString("🔔 <b>Расписание звонков</b>\n\n")
	for _, slot := range slots {
		fmt.Fprintf(&b, "%d. %s - %s\n", slot.Number, slot.Start, slot.End)
		switch {
		case slot.Number == 4:
			b.WriteString("    ⏰ Перемена 15 минут\n")
		case slot.Number == 5:
			b.WriteString("    ⏰ Перемена 5 минут\n")
		case slot.Number < 7:
			b.WriteString("    ⏰ Перемена 10 минут\n")
		}
	}
	b.WriteString("\n📝 <i>Уроки по 40 минут</i>")
	return b.String()
}
