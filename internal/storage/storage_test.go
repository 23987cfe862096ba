package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndRecentRuns(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.SaveRun(ctx, Run{
		SourceLang: "vbnet",
		TargetLang: "csharp",
		Method:     "rule-based",
		CodeLen:    120,
		Warnings:   []string{"two-step conversion"},
		Errors:     []string{},
	})
	require.NoError(t, err)

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	r := runs[0]
	assert.NotEmpty(t, r.ID, "missing ID is filled in")
	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, "vbnet", r.SourceLang)
	assert.Equal(t, "csharp", r.TargetLang)
	assert.Equal(t, "rule-based", r.Method)
	assert.Equal(t, 120, r.CodeLen)
	assert.Equal(t, []string{"two-step conversion"}, r.Warnings)
	assert.Empty(t, r.Errors)
}

func TestRecentRuns_Ordering(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := s.SaveRun(ctx, Run{
			ID:         string(rune('a' + i)),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			SourceLang: "vb6",
			TargetLang: "vbnet",
			Method:     "rule-based",
		})
		require.NoError(t, err)
	}

	runs, err := s.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID, "newest first")
	assert.Equal(t, "b", runs[1].ID)
}

func TestRecentRuns_Empty(t *testing.T) {
	s := openStore(t)
	runs, err := s.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSaveRun_ExplicitID(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, Run{ID: "fixed", SourceLang: "csharp", TargetLang: "vbnet"}))
	runs, err := s.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "fixed", runs[0].ID)
}
