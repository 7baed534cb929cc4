package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
)

func openTestStore(t *testing.T, limit int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "clipper.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListRuns(t *testing.T) {
	s := openTestStore(t, 10)

	base := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.SaveRun(domain.RunSnapshot{
			RunID:     fmt.Sprintf("run-%d", i),
			State:     domain.RunCompleted,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, "run-0", runs[2].RunID)
}

func TestRunHistoryPruned(t *testing.T) {
	s := openTestStore(t, 2)

	base := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := s.SaveRun(domain.RunSnapshot{
			RunID:     fmt.Sprintf("run-%d", i),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-4", runs[0].RunID)
	assert.Equal(t, "run-3", runs[1].RunID)
}

func TestLastReport(t *testing.T) {
	s := openTestStore(t, 5)

	path, err := s.LastReport()
	require.NoError(t, err)
	assert.Empty(t, path)

	require.NoError(t, s.SetLastReport("reports/daily_news_20250609.xlsx"))

	path, err = s.LastReport()
	require.NoError(t, err)
	assert.Equal(t, "reports/daily_news_20250609.xlsx", path)
}
