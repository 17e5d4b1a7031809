package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("flags populate the config", func(t *testing.T) {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse([]string{
			"-config", "econ.hcl", "-log-format", "text", "-log-level", "debug",
			"-workers", "4", "-validate",
		}, &out)
		require.NoError(t, err)
		assert.False(t, shouldExit)
		assert.Equal(t, "econ.hcl", cfg.ConfigPath)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 4, cfg.Workers)
		assert.True(t, cfg.ValidateOnly)
	})

	t.Run("positional config path", func(t *testing.T) {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse([]string{"econ.hcl"}, &out)
		require.NoError(t, err)
		assert.False(t, shouldExit)
		assert.Equal(t, "econ.hcl", cfg.ConfigPath)
	})

	t.Run("no config path prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid log level is exit code 2", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-config", "econ.hcl", "-log-level", "verbose"}, &out)
		require.Error(t, err)
		exitErr, ok := err.(*ExitError)
		require.True(t, ok)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log format is exit code 2", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-config", "econ.hcl", "-log-format", "xml"}, &out)
		require.Error(t, err)
		exitErr, ok := err.(*ExitError)
		require.True(t, ok)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("workers below one is normalized", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-config", "econ.hcl", "-workers", "0"}, &out)
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Workers)
	})
}
