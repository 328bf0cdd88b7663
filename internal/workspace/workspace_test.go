package workspace

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	ws, err := Open(Files{Dir: dir}, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	for _, d := range ws.Domains() {
		assert.True(t, d.Store.Absent(), d.Name)
	}
	assert.Equal(t, "notes.json", ws.Notes.StoreName())
	assert.Equal(t, "finance.json", ws.Finance.StoreName())
}

func TestOpenUsesConfiguredNames(t *testing.T) {
	dir := t.TempDir()
	ws, err := Open(Files{Dir: dir, Tasks: "todo.json"}, nil)
	require.NoError(t, err)

	_, err = ws.Tasks.Add("t", "", "1", "01-01-2024")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "todo.json"))
	assert.NoError(t, err)

	path, err := ws.Path("todo.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.Root(), "todo.json"), path)
}

func TestOpenFailsOnCorruptStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contacts.json"), []byte("not json"), 0o644))
	_, err := Open(Files{Dir: dir}, nil)
	assert.Error(t, err)
}

func TestExclusiveSerializesManagers(t *testing.T) {
	ws, err := Open(Files{Dir: t.TempDir()}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ws.Exclusive(func() error {
				_, err := ws.Contacts.Add("x", "", "")
				return err
			})
		}()
	}
	wg.Wait()

	contacts := ws.Contacts.List()
	require.Len(t, contacts, 20)
	seen := map[int]bool{}
	for _, c := range contacts {
		seen[c.ID] = true
	}
	assert.Len(t, seen, 20)
}
