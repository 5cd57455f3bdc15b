package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNDJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")

	w, err := NewNDJSONWriter(path)
	require.NoError(t, err)

	err = w.WriteBatch(context.Background(), []Document{
		{ID: "1", Source: map[string]interface{}{"host": "a"}},
		{ID: "2", Source: map[string]interface{}{"host": "b"}},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "a", first["host"])
}

func TestNDJSONWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")

	for i := 0; i < 2; i++ {
		w, err := NewNDJSONWriter(path)
		require.NoError(t, err)
		require.NoError(t, w.WriteBatch(context.Background(), []Document{
			{Source: map[string]interface{}{"n": i}},
		}))
		require.NoError(t, w.Close())
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 2)
}

func TestCSVWriterFlattensRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := NewCSVWriter(path, ".")
	require.NoError(t, err)

	err = w.WriteBatch(context.Background(), []Document{
		{Source: map[string]interface{}{
			"user": map[string]interface{}{"name": "a"},
			"tags": []interface{}{"x", "y"},
		}},
		{Source: map[string]interface{}{
			"user": map[string]interface{}{"name": "b"},
		}},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"tags", "user.name"}, rows[0])
	assert.Equal(t, []string{`["x","y"]`, "a"}, rows[1])
	assert.Equal(t, []string{"", "b"}, rows[2])
}

func TestCSVWriterHeaderFixedByFirstBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := NewCSVWriter(path, ".")
	require.NoError(t, err)

	require.NoError(t, w.WriteBatch(context.Background(), []Document{
		{Source: map[string]interface{}{"a": 1}},
	}))
	require.NoError(t, w.WriteBatch(context.Background(), []Document{
		{Source: map[string]interface{}{"a": 2, "b": "dropped"}},
	}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a"}, rows[0])
	assert.Equal(t, []string{"2"}, rows[2])
}

func TestFileWritersRequirePath(t *testing.T) {
	_, err := NewNDJSONWriter("")
	assert.Error(t, err)

	_, err = NewCSVWriter("", ".")
	assert.Error(t, err)
}
