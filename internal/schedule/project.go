// Package schedule maps day-of-week routine events onto concrete
// calendar time. Projection anchors events into a single week around a
// caller-supplied reference instant; Upcoming expands them as weekly
// recurrences over a longer horizon.
package schedule

import (
	"time"

	"github.com/KaziBadrul/Acadex-sub000/internal/model"
)

// WeekStart returns the most recent Sunday at midnight in ref's
// location. If ref itself falls on a Sunday, it returns that day's
// midnight.
func WeekStart(ref time.Time) time.Time {
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// Project maps routine events onto the calendar week containing ref,
// producing one CalendarEvent per input in input order.
//
// The reference instant is an explicit parameter rather than a hidden
// clock read so the projection is deterministic under test; callers
// pass time.Now() to land in the current week. Overlapping events on
// the same day are legal output and are not merged or sorted.
//
// Start/End are "YYYY-MM-DDTHH:MM:SS" strings with no zone suffix; the
// consuming calendar widget interprets them as local time. Dates are
// formatted in ref's location, so day boundaries follow the display
// timezone.
func Project(events []model.RoutineEvent, ref time.Time) []model.CalendarEvent {
	weekStart := WeekStart(ref)

	out := make([]model.CalendarEvent, 0, len(events))
	for _, ev := range events {
		idx, ok := ev.Day.Index()
		if !ok {
			// Unknown day name; nothing sensible to anchor to.
			continue
		}

		date := weekStart.AddDate(0, 0, idx).Format("2006-01-02")

		title := ev.Title
		if ev.Location != "" {
			title = ev.Title + " (" + ev.Location + ")"
		}

		out = append(out, model.CalendarEvent{
			ID:    ev.ID,
			Title: title,
			Start: date + "T" + ev.Start + ":00",
			End:   date + "T" + ev.End + ":00",
			ExtendedProps: model.ExtendedProps{
				Confidence: ev.Confidence,
				Raw:        ev.Raw,
				Location:   ev.Location,
				Day:        ev.Day,
			},
		})
	}

	return out
}
