package questiongen

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"placeprep_backend/internal/difficulty"
	"placeprep_backend/internal/llm"
	"placeprep_backend/internal/question"
	"placeprep_backend/internal/questionbank"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batch renders n distinct valid items, optionally followed by broken ones.
func batch(n, broken int) string {
	var items []string
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"question":"Q%d?","options":["alpha %d","beta %d","gamma %d","delta %d"],"answer":"beta %d","explanation":"e"}`,
			i, i, i, i, i, i))
	}
	for i := 0; i < broken; i++ {
		items = append(items, `{"question":"bad","options":["x","y","z"],"answer":"x","explanation":""}`)
	}
	return `{"questions":[` + strings.Join(items, ",") + `]}`
}

type recordingSleep struct{ delays []time.Duration }

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestAcquirer(p llm.Provider) (*Acquirer, *recordingSleep) {
	a := New(p, questionbank.Default, DefaultSettings(), nil)
	rs := &recordingSleep{}
	a.sleep = rs.sleep
	return a, rs
}

func TestAcquire_AcceptsFirstGoodBatch(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(batch(5, 0)))
	a, rs := newTestAcquirer(mock)

	res, err := a.Acquire(context.Background(), Request{
		Topic: "Data Structures", Subtopic: "Trees", Difficulty: difficulty.Intermediate, Count: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, question.SourceGenerated, res.Source)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, res.Questions, 5)
	assert.Empty(t, rs.delays)

	for _, q := range res.Questions {
		assert.Equal(t, "intermediate", q.Difficulty)
		assert.Equal(t, question.SourceGenerated, q.Source)
	}

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	assert.NotNil(t, call.Schema)
	assert.Contains(t, call.Messages[0].Content, `"Data Structures"`)
	assert.Contains(t, call.Messages[0].Content, "intermediate")
}

func TestAcquire_ItemWithoutExplanationDoesNotSinkBatch(t *testing.T) {
	body := strings.TrimSuffix(batch(5, 0), "]}") +
		`,{"question":"Which traversal visits the root first?","options":["Preorder","Inorder","Postorder","Level order"],"answer":"Preorder"}]}`
	mock := llm.NewMockProvider(llm.MockText(body))
	a, rs := newTestAcquirer(mock)

	res, err := a.Acquire(context.Background(), Request{Topic: "Data Structures", Count: 6})
	require.NoError(t, err)
	assert.Equal(t, question.SourceGenerated, res.Source)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, res.Questions, 6)
	assert.Empty(t, rs.delays)
	assert.Equal(t, "Preorder", res.Questions[5].Answer)
}

func TestAcquire_BareArrayIsAccepted(t *testing.T) {
	body := strings.TrimSuffix(strings.TrimPrefix(batch(5, 0), `{"questions":`), "}")
	require.True(t, strings.HasPrefix(body, "["))
	mock := llm.NewMockProvider(llm.MockText(body))
	a, _ := newTestAcquirer(mock)

	res, err := a.Acquire(context.Background(), Request{Topic: "OOP", Count: 5})
	require.NoError(t, err)
	assert.Equal(t, question.SourceGenerated, res.Source)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, res.Questions, 5)
}

func TestAcquire_ThreeValidOutOfBatchIsEnough(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(batch(3, 7)))
	a, _ := newTestAcquirer(mock)

	res, err := a.Acquire(context.Background(), Request{Topic: "OOP", Count: 10})
	require.NoError(t, err)
	assert.Equal(t, question.SourceGenerated, res.Source)
	assert.Len(t, res.Questions, 3)
}

func TestAcquire_RetriesOnceWithFixedDelay(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockText(batch(2, 3)),
		llm.MockText(batch(4, 0)),
	)
	a, rs := newTestAcquirer(mock)

	res, err := a.Acquire(context.Background(), Request{Topic: "DBMS", Count: 4})
	require.NoError(t, err)
	assert.Equal(t, question.SourceGenerated, res.Source)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []time.Duration{time.Second}, rs.delays)
}

func TestAcquire_FallsBackAfterAllAttemptsFail(t *testing.T) {
	tests := []struct {
		name      string
		responses []llm.MockResponse
	}{
		{"too few valid", []llm.MockResponse{llm.MockText(batch(2, 5)), llm.MockText(batch(1, 0))}},
		{"malformed json", []llm.MockResponse{llm.MockText(`not json`), llm.MockText(`{"questions":`)}},
		{"quota", []llm.MockResponse{{Err: &llm.ErrRateLimit{}}, {Err: &llm.ErrRateLimit{}}}},
		{"network then empty", []llm.MockResponse{{Err: &llm.ErrProviderUnavailable{}}, llm.MockText(`[]`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(tt.responses...)
			a, _ := newTestAcquirer(mock)

			res, err := a.Acquire(context.Background(), Request{
				Topic: "Operating Systems", Subtopic: "Deadlocks", Difficulty: difficulty.Beginner, Count: 4,
			})
			require.NoError(t, err)
			assert.Equal(t, question.SourceFallback, res.Source)
			assert.Equal(t, 2, res.Attempts)
			assert.Equal(t, 2, mock.CallCount())
			assert.LessOrEqual(t, len(res.Questions), 4)
			require.NotEmpty(t, res.Questions)
			assert.Contains(t, res.Questions[0].Text, "deadlock avoidance")
			for _, q := range res.Questions {
				assert.Equal(t, question.SourceFallback, q.Source)
			}
		})
	}
}

func TestAcquire_NeverExceedsRequestedCount(t *testing.T) {
	for _, count := range []int{1, 2, 3, 7} {
		mock := llm.NewMockProvider(llm.MockText(batch(12, 0)))
		a, _ := newTestAcquirer(mock)

		res, err := a.Acquire(context.Background(), Request{Topic: "Algorithms", Count: count})
		require.NoError(t, err)
		assert.Len(t, res.Questions, count)
		assert.Equal(t, question.SourceGenerated, res.Source)
	}
}

func TestAcquire_SmallRequestNeedsOnlyItsCount(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(batch(2, 0)))
	a, _ := newTestAcquirer(mock)

	res, err := a.Acquire(context.Background(), Request{Topic: "Algorithms", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, question.SourceGenerated, res.Source)
	assert.Len(t, res.Questions, 2)
}

func TestAcquire_CountIsClamped(t *testing.T) {
	a, _ := newTestAcquirer(nil)

	res, err := a.Acquire(context.Background(), Request{Topic: "Algorithms", Count: 500})
	require.NoError(t, err)
	assert.Equal(t, 25, res.Requested)
	assert.LessOrEqual(t, len(res.Questions), 25)

	res, err = a.Acquire(context.Background(), Request{Topic: "Algorithms"})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Requested)
}

func TestAcquire_DisabledGenerationSkipsProvider(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(batch(5, 0)))
	a, _ := newTestAcquirer(mock)
	s := a.Settings()
	s.Enabled = false
	a.Update(s)

	res, err := a.Acquire(context.Background(), Request{Topic: "OOP", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, question.SourceFallback, res.Source)
	assert.Zero(t, res.Attempts)
	assert.Zero(t, mock.CallCount())
	assert.False(t, a.GenerationAvailable())
}

func TestAcquire_UpdateChangesAttempts(t *testing.T) {
	mock := llm.NewMockProvider()
	a, _ := newTestAcquirer(mock)
	s := a.Settings()
	s.MaxAttempts = 3
	a.Update(s)

	res, err := a.Acquire(context.Background(), Request{Topic: "OOP", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, mock.CallCount())
}

func TestAcquire_CancelledContextStopsRetrying(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(`[]`), llm.MockText(batch(5, 0)))
	a := New(mock, questionbank.Default, DefaultSettings(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := a.Acquire(ctx, Request{Topic: "OOP", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, question.SourceFallback, res.Source)
	assert.Equal(t, 1, mock.CallCount())
}

func TestAcquire_RequiresTopic(t *testing.T) {
	a, _ := newTestAcquirer(nil)
	_, err := a.Acquire(context.Background(), Request{Topic: "  "})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

type emptyBank struct{}

func (emptyBank) Lookup(string, string, string, int) []question.Question { return nil }

func TestAcquire_EmptyBank(t *testing.T) {
	a := New(nil, emptyBank{}, DefaultSettings(), nil)
	_, err := a.Acquire(context.Background(), Request{Topic: "OOP"})
	assert.ErrorIs(t, err, ErrNoQuestions)
}
