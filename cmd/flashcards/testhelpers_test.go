package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// setConfigFile sets the global configFile variable and registers a cleanup to restore it.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	oldUser := userFlag
	configFile = cfgPath
	t.Cleanup(func() {
		configFile = oldConfigFile
		userFlag = oldUser
	})
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

// runCommand executes the root command with args and stdin, returning stdout.
// The root command resets the flag globals, so the config file is passed as a flag.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { userFlag = "" })

	args = append([]string{"--config", configFile}, args...)
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
