package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askcampus/askcampus/internal/history"
)

func TestSubcommandsRegistered(t *testing.T) {
	expected := []string{
		"chat", "ask", "serve", "stats", "export",
		"user", "delete-user", "migrate", "sync", "version",
	}

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, names[name], "missing subcommand %q", name)
	}
}

func TestVersionCommand(t *testing.T) {
	out := new(bytes.Buffer)
	versionCmd.SetOut(out)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "askcampus")
	assert.Contains(t, out.String(), AppVersion)
}

func TestDeleteUserRejectsInvalidID(t *testing.T) {
	err := runDeleteUser(deleteUserCmd, []string{"../escape"})
	require.ErrorIs(t, err, history.ErrInvalidUserID)
}

func TestUserSetAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out := new(bytes.Buffer)
	userSetCmd.SetOut(out)
	require.NoError(t, runUserSet(userSetCmd, []string{"alice"}))
	assert.Contains(t, out.String(), "alice")

	out.Reset()
	userCmd.SetOut(out)
	require.NoError(t, runUserShow(userCmd, nil))
	assert.Equal(t, "alice\n", out.String())

	out.Reset()
	userClearCmd.SetOut(out)
	require.NoError(t, runUserClear(userClearCmd, nil))

	out.Reset()
	require.NoError(t, runUserShow(userCmd, nil))
	assert.Equal(t, "guest\n", out.String())
}
