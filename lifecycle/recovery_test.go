package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryFileRecordAndReap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistants.txt")
	rf := NewRecoveryFile(path, nil)

	require.NoError(t, rf.Record("asst_1"))
	require.NoError(t, rf.Record("asst_2"))

	var deleted []string
	rf.Reap(context.Background(), func(_ context.Context, id string) error {
		deleted = append(deleted, id)
		return nil
	})

	assert.Equal(t, []string{"asst_1", "asst_2"}, deleted)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "recovery file must be removed after reap")
}

func TestRecoveryFileReapRemovesFileDespiteFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistants.txt")
	rf := NewRecoveryFile(path, nil)

	require.NoError(t, rf.Record("asst_bad"))
	require.NoError(t, rf.Record("asst_good"))

	var deleted []string
	rf.Reap(context.Background(), func(_ context.Context, id string) error {
		if id == "asst_bad" {
			return errors.New("gone already")
		}
		deleted = append(deleted, id)
		return nil
	})

	// Cleanup is best-effort: the failing id is skipped, the file still goes.
	assert.Equal(t, []string{"asst_good"}, deleted)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRecoveryFileReapMissingFile(t *testing.T) {
	rf := NewRecoveryFile(filepath.Join(t.TempDir(), "nope.txt"), nil)

	called := false
	rf.Reap(context.Background(), func(_ context.Context, _ string) error {
		called = true
		return nil
	})
	assert.False(t, called)
}

func TestRecoveryFileConcurrentRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistants.txt")
	rf := NewRecoveryFile(path, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rf.Record("asst_x"))
		}()
	}
	wg.Wait()

	var count int
	rf.Reap(context.Background(), func(_ context.Context, _ string) error {
		count++
		return nil
	})
	assert.Equal(t, 10, count)
}
