package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoWeekPlan() *Plan {
	return &Plan{
		Version:     PlanSchemaVersion,
		AthleteID:   "athlete-1",
		AthleteGoal: "Sub-20 5k",
		Weeks: []Week{
			{
				WeekNumber: 1, StartDate: "2026-05-04", EndDate: "2026-05-10",
				Sessions: []Session{
					{ID: "w1-s1", Type: SessionRun, Description: "Tempo run"},
					{ID: "w1-s2", Type: SessionRun, Description: "Long run"},
					{ID: "w1-s3", Type: SessionRest},
				},
			},
			{
				WeekNumber: 2, StartDate: "2026-05-11", EndDate: "2026-05-17",
				Sessions: []Session{
					{ID: "w2-s1", Type: SessionBike, Description: "FTP intervals"},
					{ID: "w2-s2", Type: SessionRun, Description: "5k race", Date: "2026-05-16"},
				},
			},
		},
	}
}

func TestPlanWeekLookups(t *testing.T) {
	plan := twoWeekPlan()

	week := plan.WeekByDate("2026-05-12")
	require.NotNil(t, week)
	assert.Equal(t, 2, week.WeekNumber)
	assert.Nil(t, plan.WeekByDate("2026-06-01"))

	require.NotNil(t, plan.WeekByNumber(1))
	assert.Nil(t, plan.WeekByNumber(9))

	session := plan.Weeks[1].SessionByDate("2026-05-16")
	require.NotNil(t, session)
	assert.Equal(t, "w2-s2", session.ID)
	assert.Nil(t, plan.Weeks[0].SessionByDate("2026-05-16"))
}

func TestPlanCompletionExcludesRest(t *testing.T) {
	plan := twoWeekPlan()
	assert.Zero(t, plan.CompletionPercentage())

	require.True(t, plan.MarkSessionComplete("w1-s1", 42, "2026-05-05T08:00:00Z"))
	require.True(t, plan.MarkSessionComplete("w1-s2", 43, "2026-05-09T08:00:00Z"))

	// 2 of 4 non-rest sessions done; the rest day never counts.
	assert.InDelta(t, 50.0, plan.CompletionPercentage(), 0.001)
	assert.InDelta(t, 100.0*2/3, plan.Weeks[0].CompletionPercentage(), 0.001)

	found := plan.SessionByActivity(42)
	require.NotNil(t, found)
	assert.Equal(t, "w1-s1", found.ID)
}

func TestPlanCloneIsDeep(t *testing.T) {
	plan := twoWeekPlan()
	plan.Weeks[0].Sessions[0].Zones = ZoneTarget{HeartRate: &HeartRateTarget{ZoneLabel: "3-4"}}
	plan.Libraries = map[string]string{"A": "squats"}

	copied := plan.Clone()
	copied.Weeks[0].Sessions[0].MarkComplete(99, "")
	copied.Weeks[0].Sessions[0].Zones.HeartRate.ZoneLabel = "5"
	copied.Libraries["A"] = "lunges"

	assert.False(t, plan.Weeks[0].Sessions[0].Completed)
	assert.Equal(t, "3-4", plan.Weeks[0].Sessions[0].Zones.HeartRate.ZoneLabel)
	assert.Equal(t, "squats", plan.Libraries["A"])
}

func TestPlanIsFinished(t *testing.T) {
	plan := twoWeekPlan()
	assert.False(t, plan.IsFinished("2026-05-17"))
	assert.True(t, plan.IsFinished("2026-05-18"))
	assert.False(t, (&Plan{}).IsFinished("2026-05-18"))
}

func TestPlanJSONRoundTrip(t *testing.T) {
	plan := twoWeekPlan()
	plan.MarkSessionComplete("w1-s1", 42, "2026-05-05T08:00:00Z")

	data, err := plan.ToJSON()
	require.NoError(t, err)

	decoded, err := PlanFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, plan, decoded)

	_, err = PlanFromJSON([]byte("not json"))
	assert.Error(t, err)
}

func TestPlanValidate(t *testing.T) {
	assert.Equal(t, []string{"plan has no weeks"}, (&Plan{}).Validate())
	assert.Empty(t, twoWeekPlan().Validate())

	plan := twoWeekPlan()
	plan.Weeks[1].WeekNumber = 5
	plan.Weeks[1].EndDate = "2026-05-20"
	issues := plan.Validate()
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0], "not contiguous")
	assert.Contains(t, issues[1], "not a 7-day span")
}

func TestSessionMarkCompleteDefaultsTimestamp(t *testing.T) {
	s := Session{ID: "w1-s1", Type: SessionRun}
	s.MarkComplete(42, "")
	assert.True(t, s.Completed)
	assert.Equal(t, int64(42), s.ActivityID)
	assert.NotEmpty(t, s.CompletedAt)

	s.MarkIncomplete()
	assert.False(t, s.Completed)
	assert.Zero(t, s.ActivityID)
	assert.Empty(t, s.CompletedAt)
}
