package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommand_RegistersSubcommands checks that session and serve hang
// off the root command.
func TestRootCommand_RegistersSubcommands(t *testing.T) {
	for _, name := range []string{"session", "serve"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

// TestRootCommand_SessionFlags checks the flags session accepts.
func TestRootCommand_SessionFlags(t *testing.T) {
	assert.NotNil(t, sessionCmd.Flags().Lookup("seed"))
	assert.NotNil(t, sessionCmd.Flags().Lookup("api-url"))
	assert.NotNil(t, serveCmd.Flags().Lookup("addr"))
}

// TestSetVersionInfo checks the version string shown by --version.
func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")

	assert.Equal(t, "1.2.3 (commit: abc, built: today)", rootCmd.Version)
}

// TestSessionCommand_InvalidConfig checks that a bad service address is
// reported before the shell starts.
func TestSessionCommand_InvalidConfig(t *testing.T) {
	t.Setenv("BAYESX_API_URL", "ftp://nowhere")

	buf := new(bytes.Buffer)
	sessionCmd.SetOut(buf)
	sessionCmd.SetErr(buf)

	err := runSession(sessionCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session configuration")
	assert.Contains(t, buf.String(), "BAYESX_API_URL")
}
