package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaziBadrul/Acadex-sub000/internal/model"
)

// refWednesday is a fixed reference instant: Wednesday 2025-03-12
// 15:04:05 UTC. The containing week starts Sunday 2025-03-09.
var refWednesday = time.Date(2025, 3, 12, 15, 4, 5, 0, time.UTC)

func routineEvent(day model.Weekday) model.RoutineEvent {
	return model.RoutineEvent{
		ID:         "ev-1",
		Title:      "CSE4520",
		Day:        day,
		Start:      "08:00",
		End:        "09:30",
		Confidence: 1.0,
		Raw:        "CSE4520 Data Structures",
	}
}

func TestWeekStart_MidWeek(t *testing.T) {
	ws := WeekStart(refWednesday)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), ws)
	assert.Equal(t, time.Sunday, ws.Weekday())
}

func TestWeekStart_OnSunday(t *testing.T) {
	sunday := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
}

func TestWeekStart_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("BST", 6*3600)
	ws := WeekStart(refWednesday.In(loc))
	assert.Equal(t, loc, ws.Location())
}

func TestProject_Empty(t *testing.T) {
	assert.Empty(t, Project(nil, refWednesday))
	assert.Empty(t, Project([]model.RoutineEvent{}, refWednesday))
}

func TestProject_AnchorsDayInReferenceWeek(t *testing.T) {
	out := Project([]model.RoutineEvent{routineEvent(model.Wednesday)}, refWednesday)

	require.Len(t, out, 1)
	ev := out[0]
	assert.Equal(t, "ev-1", ev.ID)
	assert.Equal(t, "CSE4520", ev.Title)
	// weekStart (2025-03-09) + 3 days.
	assert.Equal(t, "2025-03-12T08:00:00", ev.Start)
	assert.Equal(t, "2025-03-12T09:30:00", ev.End)
}

func TestProject_AllSevenDays(t *testing.T) {
	days := []model.Weekday{
		model.Sunday, model.Monday, model.Tuesday, model.Wednesday,
		model.Thursday, model.Friday, model.Saturday,
	}
	events := make([]model.RoutineEvent, 0, len(days))
	for _, d := range days {
		events = append(events, routineEvent(d))
	}

	out := Project(events, refWednesday)
	require.Len(t, out, 7)
	for i, ev := range out {
		wantDate := time.Date(2025, 3, 9+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		assert.Equal(t, wantDate+"T08:00:00", ev.Start, "day %s", days[i])
	}
}

func TestProject_TitleCarriesLocation(t *testing.T) {
	ev := routineEvent(model.Monday)
	ev.Location = "Room 301"

	out := Project([]model.RoutineEvent{ev}, refWednesday)
	require.Len(t, out, 1)
	assert.Equal(t, "CSE4520 (Room 301)", out[0].Title)
	assert.Equal(t, "Room 301", out[0].ExtendedProps.Location)
}

func TestProject_ExtendedPropsPassthrough(t *testing.T) {
	out := Project([]model.RoutineEvent{routineEvent(model.Friday)}, refWednesday)

	require.Len(t, out, 1)
	props := out[0].ExtendedProps
	assert.Equal(t, 1.0, props.Confidence)
	assert.Equal(t, "CSE4520 Data Structures", props.Raw)
	assert.Equal(t, model.Friday, props.Day)
}

func TestProject_PreservesOrderAndDuplicates(t *testing.T) {
	events := []model.RoutineEvent{
		routineEvent(model.Friday),
		routineEvent(model.Monday),
		routineEvent(model.Monday),
	}

	out := Project(events, refWednesday)
	require.Len(t, out, 3)
	assert.Equal(t, "2025-03-14T08:00:00", out[0].Start)
	assert.Equal(t, "2025-03-10T08:00:00", out[1].Start)
	assert.Equal(t, out[1], out[2])
}

func TestProject_SkipsUnknownDay(t *testing.T) {
	ev := routineEvent("Someday")
	out := Project([]model.RoutineEvent{ev, routineEvent(model.Monday)}, refWednesday)
	require.Len(t, out, 1)
}

func TestProject_DeterministicForFixedReference(t *testing.T) {
	events := []model.RoutineEvent{routineEvent(model.Tuesday)}
	assert.Equal(t, Project(events, refWednesday), Project(events, refWednesday))
}
