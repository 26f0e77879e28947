package schedule

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildFromHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o644))

	now := t0
	outcomes := []Outcome{
		{ID: "a.md#0", Timestamp: t0.Add(-48 * time.Hour), Score: 100, BoxAfter: 1},
		{ID: "a.md#0", Timestamp: t0.Add(-24 * time.Hour), Score: 100, BoxAfter: 2},
		{ID: "b.md#0", Timestamp: t0.Add(-2 * time.Hour), Score: 40, BoxAfter: 0},
	}

	s, result, err := Rebuild(path, outcomes, []string{"a.md#0", "c.md#0"}, fixedClock(&now))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Restored)
	assert.True(t, strings.HasPrefix(filepath.Base(result.Backup), "schedule.json.corrupt-"))

	backup, err := os.ReadFile(result.Backup)
	require.NoError(t, err)
	assert.Equal(t, "{garbage", string(backup))

	a, ok := s.Entry("a.md#0")
	require.True(t, ok)
	assert.Equal(t, 2, a.Box)
	assert.True(t, a.NextDue.Equal(t0.Add(-24*time.Hour).Add(24*time.Hour)))

	b, _ := s.Entry("b.md#0")
	assert.Equal(t, 0, b.Box)
	assert.Equal(t, float64(40), b.LastScore)

	c, ok := s.Entry("c.md#0")
	require.True(t, ok)
	assert.False(t, c.Reviewed())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 3, reopened.Len())
}

func TestRebuildWithoutExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	_, result, err := Rebuild(path, nil, []string{"a.md#0"})
	require.NoError(t, err)
	assert.Empty(t, result.Backup)
	assert.Equal(t, 0, result.Restored)
}

func TestRebuildSaveFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o644))

	failing := withWriter(func(string, []byte) error { return errors.New("disk full") })
	now := t0
	_, result, err := Rebuild(path, nil, []string{"a.md#0"}, fixedClock(&now), failing)

	var perr *PersistError
	require.ErrorAs(t, err, &perr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{garbage", string(data), "schedule path still holds the old file")

	backup, err := os.ReadFile(result.Backup)
	require.NoError(t, err)
	assert.Equal(t, "{garbage", string(backup))
}
