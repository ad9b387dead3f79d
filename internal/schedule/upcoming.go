package schedule

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "github.com/KaziBadrul/Acadex-sub000/internal/log"
	"github.com/KaziBadrul/Acadex-sub000/internal/model"
)

const defaultMaxOccurrencesPerEvent = 500

// rruleByDay maps Sunday-based day indexes to rrule weekday constants.
var rruleByDay = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// UpcomingConfig controls weekly recurrence expansion.
type UpcomingConfig struct {
	// RangeStart / RangeEnd define the inclusive window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxPerEvent caps occurrences per routine event as a safety bound.
	// If zero, defaultMaxOccurrencesPerEvent is used.
	MaxPerEvent int
}

// Occurrence is a single concrete class instance with absolute times.
type Occurrence struct {
	EventID  string        `json:"event_id"`
	Title    string        `json:"title"`
	Day      model.Weekday `json:"day"`
	Location string        `json:"location,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// UpcomingResult wraps expanded occurrences plus truncation info.
type UpcomingResult struct {
	Occurrences []Occurrence
	// Truncated records event IDs that hit the MaxPerEvent cap.
	Truncated []string
}

// Upcoming expands routine events as weekly recurrences
// (FREQ=WEEKLY;BYDAY=<day>) into concrete occurrences within the
// configured window. Each event's first candidate occurrence is its
// slot in the week containing RangeStart; rrule handles the stepping
// from there.
//
// Events whose Day or Start/End strings cannot be interpreted are
// skipped, not failed: the parser may hand over records the user has
// hand-edited in the UI.
func Upcoming(events []model.RoutineEvent, cfg UpcomingConfig) (UpcomingResult, error) {
	var result UpcomingResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("upcoming: RangeEnd is before RangeStart")
	}
	if cfg.MaxPerEvent <= 0 {
		cfg.MaxPerEvent = defaultMaxOccurrencesPerEvent
	}

	weekStart := WeekStart(cfg.RangeStart)
	loc := cfg.RangeStart.Location()

	for _, ev := range events {
		idx, ok := ev.Day.Index()
		if !ok {
			appLog.Warn("upcoming: skipping event with unknown day", "id", ev.ID, "day", string(ev.Day))
			continue
		}
		startMin, ok := clockMinutes(ev.Start)
		if !ok {
			appLog.Warn("upcoming: skipping event with bad start time", "id", ev.ID, "start", ev.Start)
			continue
		}
		endMin, ok := clockMinutes(ev.End)
		if !ok {
			appLog.Warn("upcoming: skipping event with bad end time", "id", ev.ID, "end", ev.End)
			continue
		}

		day := weekStart.AddDate(0, 0, idx)
		dtstart := time.Date(day.Year(), day.Month(), day.Day(), startMin/60, startMin%60, 0, 0, loc)

		r, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{rruleByDay[idx]},
			Dtstart:   dtstart,
		})
		if err != nil {
			appLog.Error("upcoming: rrule construction failed", err, "id", ev.ID)
			continue
		}

		times := r.Between(cfg.RangeStart, cfg.RangeEnd, true)
		if len(times) > cfg.MaxPerEvent {
			times = times[:cfg.MaxPerEvent]
			result.Truncated = append(result.Truncated, ev.ID)
		}

		// Duration follows the stored pair; Start/End are never
		// cross-validated, so this can be negative and is kept as-is.
		dur := time.Duration(endMin-startMin) * time.Minute

		for _, t := range times {
			result.Occurrences = append(result.Occurrences, Occurrence{
				EventID:  ev.ID,
				Title:    ev.Title,
				Day:      ev.Day,
				Location: ev.Location,
				Start:    t,
				End:      t.Add(dur),
			})
		}
	}

	return result, nil
}

// clockMinutes parses "HH:MM" into minutes since midnight.
func clockMinutes(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) != 2 || len(m) != 2 {
		return 0, false
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}
