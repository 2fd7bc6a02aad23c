package aitime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Patterns for time parsing
var (
	clockPattern   = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	hourMinPattern = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	atHourPattern  = regexp.MustCompile(`\bat\s+(\d{1,2})\b`)

	relativePattern = regexp.MustCompile(`\bin\s+(\d+)\s+(minute|hour|day|week)s?\b`)

	weekdayPattern = regexp.MustCompile(`\b(next|this)?\s*(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

	monthDayPattern = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthPattern = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
)

// dateLayouts are tried against the whole input before fuzzy parsing.
var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"Jan 2 2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
}

// relDateOffsets maps relative date keywords to day offsets.
// "day after tomorrow" must be checked before "tomorrow".
var relDateOffsets = []struct {
	keyword string
	offset  int
}{
	{"day after tomorrow", 2},
	{"tomorrow", 1},
	{"today", 0},
	{"tonight", 0},
}

// periodHours maps day-period keywords to typical hours.
var periodHours = []struct {
	keyword string
	hour    int
}{
	{"midnight", 0},
	{"noon", 12},
	{"midday", 12},
	{"morning", 9},
	{"afternoon", 14},
	{"evening", 18},
	{"tonight", 19},
	{"night", 19},
}

var weekdayMap = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var monthMap = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// defaultHour is assumed when a date is given without a time of day.
const defaultHour = 9

// Parser parses English time expressions relative to a reference instant.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewParser creates a new time parser with the given timezone.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.Local
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
	}
}

// Parse resolves input to a concrete timestamp, or ErrAmbiguous.
func (p *Parser) Parse(input string) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, ErrAmbiguous
	}

	// Exact layouts first.
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(input), p.timezone); err == nil {
			return t, nil
		}
	}

	ref := p.now().In(p.timezone)

	// Pure relative offsets: "in 2 hours", "in 30 minutes".
	if m := relativePattern.FindStringSubmatch(input); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "minute":
			return ref.Add(time.Duration(n) * time.Minute), nil
		case "hour":
			return ref.Add(time.Duration(n) * time.Hour), nil
		case "day":
			return ref.AddDate(0, 0, n), nil
		case "week":
			return ref.AddDate(0, 0, 7*n), nil
		}
	}

	day, hasDate := p.parseDatePart(input, ref)
	hour, minute, hasTime := parseTimePart(input)

	if !hasDate && !hasTime {
		return time.Time{}, ErrAmbiguous
	}
	if !hasDate {
		day = ref
	}
	if !hasTime {
		hour, minute = defaultHour, 0
	}

	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, p.timezone)

	// A bare time of day that already passed means the next occurrence.
	if !hasDate && !t.After(ref) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// parseDatePart finds the calendar day named in the input.
func (p *Parser) parseDatePart(input string, ref time.Time) (time.Time, bool) {
	for _, rel := range relDateOffsets {
		if strings.Contains(input, rel.keyword) {
			return ref.AddDate(0, 0, rel.offset), true
		}
	}

	if m := weekdayPattern.FindStringSubmatch(input); m != nil {
		target := weekdayMap[m[2]]
		offset := (int(target) - int(ref.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		if m[1] == "next" && offset < 7 {
			offset += 7
		}
		return ref.AddDate(0, 0, offset), true
	}

	var month time.Month
	var dayNum int
	if m := monthDayPattern.FindStringSubmatch(input); m != nil {
		month = monthMap[m[1]]
		dayNum, _ = strconv.Atoi(m[2])
	} else if m := dayMonthPattern.FindStringSubmatch(input); m != nil {
		dayNum, _ = strconv.Atoi(m[1])
		month = monthMap[m[2]]
	}
	if dayNum > 0 && dayNum <= 31 {
		t := time.Date(ref.Year(), month, dayNum, 0, 0, 0, 0, ref.Location())
		// A month/day without a year means the next occurrence.
		if t.Before(time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())) {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}

	return time.Time{}, false
}

// parseTimePart finds the hour and minute named in the input.
func parseTimePart(input string) (hour, minute int, ok bool) {
	if m := clockPattern.FindStringSubmatch(input); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour > 12 || minute > 59 {
			return 0, 0, false
		}
		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return hour, minute, true
	}

	if m := hourMinPattern.FindStringSubmatch(input); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return hour, minute, true
		}
		return 0, 0, false
	}

	for _, p := range periodHours {
		if strings.Contains(input, p.keyword) {
			return p.hour, 0, true
		}
	}

	if m := atHourPattern.FindStringSubmatch(input); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if hour > 23 {
			return 0, 0, false
		}
		// Bare small hours read as afternoon: "at 3" means 15:00.
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
		return hour, 0, true
	}

	return 0, 0, false
}
