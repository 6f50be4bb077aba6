package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askcampus/askcampus/internal/record"
)

func sampleHistories() map[string][]record.Record {
	return map[string][]record.Record{
		"alice": {
			record.New("when does the library open?", "8am", "qa", "en"),
			record.New("thanks!", "you're welcome", "chat", "en"),
		},
		"bob": {
			record.New("cafeteria hours?", "7am to 8pm", "qa", "zh-TW"),
		},
	}
}

func TestNewComputesStatistics(t *testing.T) {
	s := New(sampleHistories(), false)

	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.False(t, s.GeneratedAt.IsZero())
	assert.Equal(t, 2, s.Statistics.TotalUsers)
	assert.Equal(t, 3, s.Statistics.TotalConversations)
	assert.Nil(t, s.Histories)
}

func TestNewIncludesHistories(t *testing.T) {
	s := New(sampleHistories(), true)
	require.Len(t, s.Histories, 2)
	assert.Len(t, s.Histories["alice"], 2)
}

func TestWriteAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snapshot.json")
	s := New(sampleHistories(), true)

	require.NoError(t, s.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Snapshot
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, s.Statistics.TotalConversations, loaded.Statistics.TotalConversations)
	assert.Len(t, loaded.Histories["alice"], 2)

	// No leftover temp file.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	s := New(nil, true)

	require.NoError(t, s.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Snapshot
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, 0, loaded.Statistics.TotalUsers)
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "askcampus_stats_20260301T120000Z.json", DefaultFilename(now))
}
