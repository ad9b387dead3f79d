package model

// Weekday is a semantic day-of-week name ("Sunday".."Saturday"), not a
// date. Routine events carry a Weekday plus wall-clock times; absolute
// dates only appear after projection onto a concrete week.
type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// weekdayIndex maps weekday names to their offset from Sunday.
var weekdayIndex = map[Weekday]int{
	Sunday:    0,
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
	Saturday:  6,
}

// Index returns the day's offset from Sunday (Sunday=0 .. Saturday=6)
// and whether the value is a known weekday name.
func (d Weekday) Index() (int, bool) {
	idx, ok := weekdayIndex[d]
	return idx, ok
}

// ParseWeekday maps a weekday name to its Weekday value. It accepts
// only the full capitalized names used throughout this package.
func ParseWeekday(s string) (Weekday, bool) {
	d := Weekday(s)
	_, ok := weekdayIndex[d]
	return d, ok
}

// RoutineEvent is one extracted class slot: a course label pinned to a
// weekday and a wall-clock time range. It has no absolute date.
type RoutineEvent struct {
	// ID is an opaque parse-time identifier, stable for the lifetime of
	// the returned list. It exists for delete-by-id list operations and
	// carries no ordering or global-uniqueness guarantee.
	ID string `json:"id"`

	// Title is the course label as matched from text (e.g. "CSE4520"),
	// whitespace-normalized.
	Title string `json:"title"`

	Day Weekday `json:"day"`

	// Start / End are 24-hour "HH:MM" wall-clock times. They are not
	// validated against each other.
	Start string `json:"start"`
	End   string `json:"end"`

	// Location is free text; the current parser never fills it.
	Location string `json:"location,omitempty"`

	// Confidence is a heuristic quality score in [0,1], built
	// additively from independent signal contributions.
	Confidence float64 `json:"confidence"`

	// Raw is the source line the event was extracted from, kept for
	// audit and user display.
	Raw string `json:"raw"`
}

// CalendarEvent is a RoutineEvent projected onto a concrete week,
// shaped for direct consumption by a calendar-rendering widget.
type CalendarEvent struct {
	ID string `json:"id"`

	// Title is the source title, with the location appended in
	// parentheses when present.
	Title string `json:"title"`

	// Start / End are local "YYYY-MM-DDTHH:MM:SS" timestamps with no
	// zone suffix.
	Start string `json:"start"`
	End   string `json:"end"`

	ExtendedProps ExtendedProps `json:"extendedProps"`
}

// ExtendedProps is side-channel metadata passed through for UI
// display and debugging.
type ExtendedProps struct {
	Confidence float64 `json:"confidence"`
	Raw        string  `json:"raw"`
	Location   string  `json:"location,omitempty"`
	Day        Weekday `json:"day"`
}
