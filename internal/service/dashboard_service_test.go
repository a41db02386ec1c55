package service

import (
	"testing"
	"time"

	"placeprep_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreAt(topic string, score, total int, at time.Time) model.QuizScore {
	return model.QuizScore{UserID: 1, Topic: topic, Score: score, Total: total, TakenAt: at}
}

func TestDashboardService_Get(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scores := &fakeScores{rows: []model.QuizScore{
		scoreAt("DBMS", 4, 10, base),
		scoreAt("DBMS", 8, 10, base.Add(time.Hour)),
		scoreAt("OOP", 9, 10, base.Add(2*time.Hour)),
		{UserID: 2, Topic: "OOP", Score: 1, Total: 10, TakenAt: base},
	}}

	d, err := NewDashboardService(scores).Get(1)
	require.NoError(t, err)

	assert.Equal(t, 3, d.Attempts)
	assert.Equal(t, 30, d.QuestionsAnswered)
	assert.InDelta(t, 70.0, d.Average, 0.001)
	assert.Equal(t, "OOP", d.BestTopic)

	require.Len(t, d.Topics, 2)
	assert.Equal(t, "OOP", d.Topics[0].Topic)
	dbms := d.Topics[1]
	assert.Equal(t, 2, dbms.Attempts)
	assert.InDelta(t, 60.0, dbms.Average, 0.001)
	assert.InDelta(t, 80.0, dbms.Best, 0.001)
	assert.Equal(t, base.Add(time.Hour), dbms.LastTaken)
	assert.Equal(t, "intermediate", dbms.Difficulty)

	require.Len(t, d.Recent, 3)
	assert.Equal(t, "OOP", d.Recent[0].Topic)
}

func TestDashboardService_RecentIsCapped(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scores := &fakeScores{}
	for i := 0; i < 15; i++ {
		scores.rows = append(scores.rows, scoreAt("DBMS", i%10, 10, base.Add(time.Duration(i)*time.Minute)))
	}

	d, err := NewDashboardService(scores).Get(1)
	require.NoError(t, err)
	assert.Len(t, d.Recent, recentAttempts)
	assert.Equal(t, base.Add(14*time.Minute), d.Recent[0].TakenAt)
}

func TestDashboardService_Empty(t *testing.T) {
	d, err := NewDashboardService(&fakeScores{}).Get(1)
	require.NoError(t, err)
	assert.Zero(t, d.Attempts)
	assert.Empty(t, d.BestTopic)
	assert.NotNil(t, d.Recent)
	assert.Empty(t, d.Topics)
}
