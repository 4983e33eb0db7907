package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"sheetimport/domain/core"
)

// Spreadsheet serial dates count days from this epoch
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial values outside 1950-01-01..2100-12-31 are read as plain numbers
const (
	MinSerial = 18264
	MaxSerial = 73415
)

var (
	serialPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
	dmyPattern    = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})$`)
)

// calendarLayouts are tried in order; month-first forms win over the
// day-first fallback for ambiguous input
var calendarLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	core.DateLayout,
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"1-2-06",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"Mon, 02 Jan 2006",
}

// Date parses a date cell: a spreadsheet serial, then calendar layouts, then
// day/month/year. Time of day is dropped.
func Date(s string) *core.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if d, ok := fromSerial(s); ok {
		return &d
	}
	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := core.DateOf(t)
			return &d
		}
	}
	if d, ok := fromDayMonthYear(s); ok {
		return &d
	}
	return nil
}

// SerialOf returns the spreadsheet serial of a date
func SerialOf(d core.Date) int {
	return int(d.Time().Sub(serialEpoch).Hours() / 24)
}

func fromSerial(s string) (core.Date, bool) {
	if !serialPattern.MatchString(s) {
		return core.Date{}, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < MinSerial || v >= MaxSerial+1 {
		return core.Date{}, false
	}
	return core.DateOf(serialEpoch.AddDate(0, 0, int(v))), true
}

func fromDayMonthYear(s string) (core.Date, bool) {
	m := dmyPattern.FindStringSubmatch(s)
	if m == nil {
		return core.Date{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		// Same pivot as the standard library's two-digit years
		if year >= 69 {
			year += 1900
		} else {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) {
		return core.Date{}, false
	}
	return core.NewDate(year, time.Month(month), day), true
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
