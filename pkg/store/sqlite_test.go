package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "kith.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := Run{
		RunID:      "run-1",
		StartedAt:  time.Now(),
		InputPath:  "/data/edges.tsv",
		OutputPath: "/data/recs.tsv",
		Threshold:  20,
		Workers:    4,
	}
	require.NoError(t, s.BeginRun(ctx, run))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusRunning, runs[0].Status)
	assert.Nil(t, runs[0].FinishedAt)

	require.NoError(t, s.CompleteRun(ctx, "run-1", 100, 250, 17))

	runs, err = s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, 100, runs[0].Vertices)
	assert.Equal(t, 250, runs[0].Edges)
	assert.Equal(t, 17, runs[0].Recommendations)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestFailRunRecordsError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, Run{RunID: "run-err", StartedAt: time.Now(), InputPath: "in", OutputPath: "out"}))
	require.NoError(t, s.FailRun(ctx, "run-err", errors.New("malformed edge record")))

	runs, err := s.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "malformed edge record")
}

func TestFinishUnknownRun(t *testing.T) {
	s := newTestStore(t)
	err := s.CompleteRun(context.Background(), "missing", 0, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSaveAndQueryRecommendations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, Run{RunID: "run-2", StartedAt: time.Now(), InputPath: "in", OutputPath: "out"}))
	recs := []StoredRecommendation{
		{RunID: "run-2", SourceID: "alice", CandidateID: "dave"},
		{RunID: "run-2", SourceID: "alice", CandidateID: "eve"},
		{RunID: "run-2", SourceID: "bob", CandidateID: "carol"},
	}
	require.NoError(t, s.SaveRecommendations(ctx, "run-2", recs))

	candidates, err := s.RecommendationsForSource(ctx, "run-2", "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"dave", "eve"}, candidates)

	candidates, err = s.RecommendationsForSource(ctx, "run-2", "nobody")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.BeginRun(ctx, Run{
			RunID:      id,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			InputPath:  "in",
			OutputPath: "out",
		}))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)
	assert.Equal(t, "mid", runs[1].RunID)
}
