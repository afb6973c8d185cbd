// Package extract recovers a timetable from a human-authored xlsx workbook.
// The tables are not machine exports, so every step is a heuristic: pick a
// sheet for the shift, find the class header row, map classes to columns,
// find the lesson-number rows and infer the day each row belongs to.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/r1kuza/schoolbot/internal/bot/models"
)

// Structural failures: the table could not be located or segmented at all.
var (
	ErrNoSheets     = errors.New("workbook has no sheets")
	ErrNoClasses    = errors.New("no class header row found")
	ErrNoLessonRows = errors.New("no lesson rows found")
)

// ErrNoLessons means the table was segmented but yielded zero lessons,
// which is reported distinctly from a structural failure.
var ErrNoLessons = errors.New("table parsed but no lessons found")

// Scan bounds of the heuristics.
const (
	headerScanRows     = 15
	headerFallbackRows = 20
	lessonScanRows     = 20
	dayWindowRows      = 10
	dayWindowCols      = 5
	maxLessonNumber    = 10 // tolerates extracurricular periods past the 7 bell slots
)

// Result is the outcome of a successful extraction. It records which
// silent fallbacks fired so the operator can be warned about them.
type Result struct {
	Lessons       []models.LessonRecord
	Sheet         string
	SheetFallback bool // no sheet name matched the shift, first sheet taken
	DefaultedDays int  // lessons whose day fell back to Monday
}

// Extract parses workbook bytes into lesson records for the given shift.
func Extract(data []byte, shift string) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, fallback, err := pickSheet(f.GetSheetList(), shift)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	res, err := fromRows(rows)
	if err != nil {
		return nil, err
	}
	res.Sheet = sheet
	res.SheetFallback = fallback
	return res, nil
}

// pickSheet chooses the sheet for a shift. Name patterns are tried in
// order; for shift "1" any sheet name is acceptable as a last resort.
// When nothing matches, the first sheet is taken and flagged as fallback.
func pickSheet(names []string, shift string) (string, bool, error) {
	if len(names) == 0 {
		return "", false, ErrNoSheets
	}

	patterns := []string{
		shift + " смена",
		"смена " + shift,
		"смена" + shift,
		"shift " + shift,
	}
	if shift == "1" {
		patterns = append(patterns, "")
	}

	for _, pattern := range patterns {
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), pattern) {
				return name, false, nil
			}
		}
	}
	return names[0], true, nil
}

// classCellRegexp extracts a canonical class code from a header cell that
// may carry decorative words around it. The leading guard keeps "15А"
// from matching as "5А".
var classCellRegexp = regexp.MustCompile(`(?:^|[^0-9])(10П|10Р|11Р|[5-9][АБВ])`)

// classFromCell returns the canonical class code found in a header cell,
// or "" when the cell holds none.
func classFromCell(cell string) string {
	m := classCellRegexp.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(cell)))
	if m == nil {
		return ""
	}
	return m[1]
}

// findHeaderRow locates the class header row: the first of the top 15 rows
// with at least two class cells, falling back to the first of the top 20
// rows with at least one. Returns -1 when no row qualifies.
func findHeaderRow(rows [][]string) int {
	limit := headerScanRows
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if countClassCells(rows[i]) >= 2 {
			return i
		}
	}

	limit = headerFallbackRows
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if countClassCells(rows[i]) >= 1 {
			return i
		}
	}
	return -1
}

func countClassCells(row []string) int {
	n := 0
	for _, cell := range row {
		if cell != "" && classFromCell(cell) != "" {
			n++
		}
	}
	return n
}

// mapClassColumns maps column index to class code for every header cell
// holding a class; columns without one are ignored.
func mapClassColumns(header []string) map[int]string {
	cols := make(map[int]string)
	for i, cell := range header {
		if cell == "" {
			continue
		}
		if class := classFromCell(cell); class != "" {
			cols[i] = class
		}
	}
	return cols
}

type lessonRow struct {
	row    int
	number int
}

// findLessonRows collects rows below the header whose first column holds a
// period number 1..10, in encounter order. A period repeated across
// stacked day blocks yields separate rows.
func findLessonRows(rows [][]string, headerRow int) []lessonRow {
	var found []lessonRow
	limit := headerRow + 1 + lessonScanRows
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := headerRow + 1; i < limit; i++ {
		if len(rows[i]) == 0 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rows[i][0]))
		if err != nil || n < 1 || n > maxLessonNumber {
			continue
		}
		found = append(found, lessonRow{row: i, number: n})
	}
	return found
}

var weekdayCodes = map[string]string{
	"понедельник": "monday",
	"вторник":     "tuesday",
	"среда":       "wednesday",
	"четверг":     "thursday",
	"пятница":     "friday",
	"суббота":     "saturday",
	"воскресенье": "sunday",
}

// isWeekdayName reports whether the cell text equals a weekday name.
func isWeekdayName(cell string) bool {
	_, ok := weekdayCodes[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// dayInText returns the day code of the first weekday name contained in
// the text, or "".
func dayInText(text string) string {
	lower := strings.ToLower(text)
	for name, code := range weekdayCodes {
		if strings.Contains(lower, name) {
			return code
		}
	}
	return ""
}

// inferDay searches the 10 rows above a lesson row, first 5 columns, for
// a weekday name and returns the closest match above. With no match the
// day defaults to Monday and defaulted reports true.
func inferDay(rows [][]string, row int) (day string, defaulted bool) {
	start := row - dayWindowRows
	if start < 0 {
		start = 0
	}
	found := ""
	for r := start; r < row; r++ {
		cols := dayWindowCols
		if cols > len(rows[r]) {
			cols = len(rows[r])
		}
		for c := 0; c < cols; c++ {
			if d := dayInText(rows[r][c]); d != "" {
				found = d
			}
		}
	}
	if found == "" {
		return "monday", true
	}
	return found, false
}

// skipCell reports whether a schedule cell means "no lesson": empty,
// a lone dash, or a weekday label bleeding into the grid.
func skipCell(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	return trimmed == "" || trimmed == "-" || isWeekdayName(trimmed)
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// fromRows runs the heuristic pipeline over an in-memory grid.
func fromRows(rows [][]string) (*Result, error) {
	header := findHeaderRow(rows)
	if header < 0 {
		return nil, ErrNoClasses
	}
	columns := mapClassColumns(rows[header])
	if len(columns) == 0 {
		return nil, ErrNoClasses
	}
	lessonRows := findLessonRows(rows, header)
	if len(lessonRows) == 0 {
		return nil, ErrNoLessonRows
	}

	cols := make([]int, 0, len(columns))
	for col := range columns {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	res := &Result{}
	for _, lr := range lessonRows {
		day, defaulted := inferDay(rows, lr.row)
		for _, col := range cols {
			class := columns[col]
			cell := cellAt(rows[lr.row], col)
			if skipCell(cell) {
				continue
			}
			room := ""
			if adjacent := strings.TrimSpace(cellAt(rows[lr.row], col+1)); adjacent != "" && !isWeekdayName(adjacent) {
				room = adjacent
			}
			res.Lessons = append(res.Lessons, models.LessonRecord{
				Class:   class,
				Day:     day,
				Number:  lr.number,
				Subject: strings.TrimSpace(cell),
				Room:    room,
			})
			if defaulted {
				res.DefaultedDays++
			}
		}
	}

	if len(res.Lessons) == 0 {
		return nil, ErrNoLessons
	}
	return res, nil
}
