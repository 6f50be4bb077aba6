package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askcampus/askcampus/internal/testutil"
)

func writeBase(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge_base.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does_not_exist.json")

	base, err := Load(path, testutil.DiscardLogger())
	require.NoError(t, err)
	assert.True(t, base.Empty())
	assert.Equal(t, "", base.Context())
	assert.Equal(t, 0, base.Size())
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are ignored for root")
	}
	path := writeBase(t, `{}`)
	require.NoError(t, os.Chmod(path, 0o000))

	_, err := Load(path, testutil.DiscardLogger())
	require.Error(t, err)
}

func TestLoadRendersDocument(t *testing.T) {
	path := writeBase(t, `{
		"library": {"hours": "08:00-22:00", "floors": 5},
		"cafeteria": {"hours": "07:00-20:00"},
		"emergency_numbers": ["110", "119"]
	}`)

	base, err := Load(path, testutil.DiscardLogger())
	require.NoError(t, err)
	require.False(t, base.Empty())

	ctx := base.Context()
	assert.Contains(t, ctx, "library:")
	assert.Contains(t, ctx, "hours: 08:00-22:00")
	assert.Contains(t, ctx, "floors: 5")
	assert.Contains(t, ctx, "- 110")
	assert.Contains(t, ctx, "- 119")

	// Keys render in stable order.
	assert.Less(t, strings.Index(ctx, "cafeteria"), strings.Index(ctx, "library"))
	assert.Equal(t, len(ctx), base.Size())
}

func TestLoadMalformedJSONFallsBackToRawText(t *testing.T) {
	raw := "The library opens at 8am.\nNot JSON at all."
	path := writeBase(t, raw)

	base, err := Load(path, testutil.DiscardLogger())
	require.NoError(t, err)
	assert.Equal(t, raw, base.Context())
}

func TestLoadEmptyObject(t *testing.T) {
	path := writeBase(t, `{}`)

	base, err := Load(path, testutil.DiscardLogger())
	require.NoError(t, err)
	assert.True(t, base.Empty())
}

