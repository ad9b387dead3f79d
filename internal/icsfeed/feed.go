// Package icsfeed renders a parsed routine as an iCalendar feed so the
// weekly schedule can be subscribed to from any calendar client.
package icsfeed

import (
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/KaziBadrul/Acadex-sub000/internal/log"
	"github.com/KaziBadrul/Acadex-sub000/internal/model"
	"github.com/KaziBadrul/Acadex-sub000/internal/schedule"
)

const prodID = "-//Acadex//routinecal//EN"

// byDayToken maps Sunday-based day indexes to RRULE BYDAY tokens.
var byDayToken = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// confidenceProp carries the parser's heuristic score on each VEVENT
// for clients that care; everything else ignores X- properties.
const confidenceProp = ical.ComponentProperty("X-ROUTINE-CONFIDENCE")

// Build renders routine events into a VCALENDAR with one weekly
// recurring VEVENT per event. Each VEVENT's DTSTART is the event's
// slot in the week containing ref (in ref's location) and recurs with
// FREQ=WEEKLY;BYDAY=<day>. Events with unparseable fields are skipped.
func Build(events []model.RoutineEvent, ref time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetMethod(ical.MethodPublish)

	weekStart := schedule.WeekStart(ref)
	loc := ref.Location()

	for _, ev := range events {
		idx, ok := ev.Day.Index()
		if !ok {
			appLog.Warn("icsfeed: skipping event with unknown day", "id", ev.ID, "day", string(ev.Day))
			continue
		}
		start, err := time.Parse("15:04", ev.Start)
		if err != nil {
			appLog.Warn("icsfeed: skipping event with bad start time", "id", ev.ID, "start", ev.Start)
			continue
		}
		end, err := time.Parse("15:04", ev.End)
		if err != nil {
			appLog.Warn("icsfeed: skipping event with bad end time", "id", ev.ID, "end", ev.End)
			continue
		}

		day := weekStart.AddDate(0, 0, idx)
		dtstart := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, loc)
		dtend := time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, loc)

		ve := cal.AddEvent(ev.ID)
		ve.SetSummary(ev.Title)
		ve.SetStartAt(dtstart)
		ve.SetEndAt(dtend)
		ve.AddRrule("FREQ=WEEKLY;BYDAY=" + byDayToken[idx])
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Raw != "" {
			// Keep the OCR source line for audit, same as the JSON API.
			ve.SetDescription(ev.Raw)
		}
		ve.SetProperty(confidenceProp, strconv.FormatFloat(ev.Confidence, 'f', -1, 64))
	}

	return cal
}

// Bytes serializes the feed for HTTP responses.
func Bytes(events []model.RoutineEvent, ref time.Time) []byte {
	return []byte(Build(events, ref).Serialize())
}
