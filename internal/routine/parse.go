// Package routine turns raw OCR text of a printed weekly class routine
// into structured RoutineEvent records. The parser is pure and total:
// it never fails, and gibberish input degrades to an empty list.
package routine

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/KaziBadrul/Acadex-sub000/internal/model"
)

// Default wall-clock times assigned to every extracted slot. No
// time-of-day extraction is attempted on the OCR text; printed routines
// rarely survive OCR with usable time columns, so every event gets the
// same placeholder pair and the user adjusts slots in the UI.
const (
	DefaultClassStart = "08:00"
	DefaultClassEnd   = "09:30"
)

var (
	// Characters that are almost always OCR misreads in routine scans.
	noiseChars = regexp.MustCompile("[©™=~_`]")

	// En/em dashes normalize to an ASCII hyphen before scanning.
	dashChars = regexp.MustCompile("[–—]")

	// Runs of spaces/tabs collapse to a single space.
	spaceRuns = regexp.MustCompile("[ \t]+")

	// Header/legend rows listing teachers, not schedule rows.
	teacherLabel = regexp.MustCompile(`(?i)^teachers?\b`)

	// Day headers. Weekend tokens are deliberately absent: printed
	// routines at the source institutions run Monday through Friday.
	dayToken = regexp.MustCompile(`(?i)\b(mon|tue|wed|thu|fri)\b`)

	// Course codes: department prefix, optional space, exactly 4 digits.
	courseCode = regexp.MustCompile(`(?i)(CSE|MATH) ?\d{4}`)
)

// dayNames maps lowered day tokens to full weekday names.
var dayNames = map[string]model.Weekday{
	"mon": model.Monday,
	"tue": model.Tuesday,
	"wed": model.Wednesday,
	"thu": model.Thursday,
	"fri": model.Friday,
}

// Options controls parse-time defaults. The zero value is valid and
// uses DefaultClassStart / DefaultClassEnd.
type Options struct {
	// DefaultStart / DefaultEnd are the "HH:MM" times assigned to every
	// extracted event. Malformed values fall back to the defaults.
	DefaultStart string
	DefaultEnd   string
}

func (o Options) withDefaults() Options {
	if !IsClockTime(o.DefaultStart) {
		o.DefaultStart = DefaultClassStart
	}
	if !IsClockTime(o.DefaultEnd) {
		o.DefaultEnd = DefaultClassEnd
	}
	return o
}

var clockTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsClockTime reports whether s is a 24-hour "HH:MM" string.
func IsClockTime(s string) bool {
	return clockTime.MatchString(s)
}

// Parse extracts routine events from raw OCR text using default
// options. See ParseWith.
func Parse(rawText string) []model.RoutineEvent {
	return ParseWith(rawText, Options{})
}

// ParseWith extracts routine events from raw OCR text.
//
// The scan is stateful in exactly one way: a day header on one line
// applies to all following lines until the next day header, because
// OCR output groups several class rows under a single day label. A
// line emits events only when a day is in scope AND the line contains
// at least one course code; each code on the line becomes a separate
// event sharing the same day and raw line.
//
// The returned list is in scan order, with no dedup and no sorting.
// The same course may legitimately appear once per line mentioning it.
func ParseWith(rawText string, opts Options) []model.RoutineEvent {
	opts = opts.withDefaults()

	events := make([]model.RoutineEvent, 0)

	var currentDay model.Weekday
	for _, line := range Preprocess(rawText) {
		if m := dayToken.FindString(line); m != "" {
			currentDay = dayNames[strings.ToLower(m)]
			// Fall through: a day-header line can still carry codes.
		}

		courses := courseCode.FindAllString(line, -1)
		if currentDay == "" || len(courses) == 0 {
			continue
		}

		for _, code := range courses {
			events = append(events, model.RoutineEvent{
				ID:         uuid.NewString(),
				Title:      strings.ReplaceAll(code, " ", ""),
				Day:        currentDay,
				Start:      opts.DefaultStart,
				End:        opts.DefaultEnd,
				Confidence: scoreLine(currentDay, courses),
				Raw:        line,
			})
		}
	}

	return events
}

// Preprocess normalizes raw OCR text into trimmed schedule-candidate
// lines:
//
//   - stray noise characters and en/em dashes are normalized
//   - space/tab runs collapse to one space
//   - lines shorter than 7 characters are dropped as OCR artifacts,
//     except bare day headers ("Mon", "Tue", ...), which OCR routinely
//     emits as three-letter lines and which carry the day state
//   - "Teacher(s) ..." legend rows are dropped
func Preprocess(rawText string) []string {
	text := noiseChars.ReplaceAllString(rawText, " ")
	text = dashChars.ReplaceAllString(text, "-")
	text = spaceRuns.ReplaceAllString(text, " ")

	kept := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 7 && !dayToken.MatchString(line) {
			continue
		}
		if teacherLabel.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// scoreLine computes the additive confidence for an emitted event.
//
// Base 0.4, +0.3 for a known day, +0.3 for course matches on the line.
// Both bonus terms check the same values the emission condition checks,
// so as emitted every event scores 1.0. Kept as observed; a real signal
// would have to rate line cleanliness or candidate competition instead,
// and can replace this function without touching the scanner.
func scoreLine(day model.Weekday, courses []string) float64 {
	score := 0.4
	if day != "" {
		score += 0.3
	}
	if len(courses) > 0 {
		score += 0.3
	}
	return score
}
