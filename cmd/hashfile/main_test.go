//go:build unit

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gostonefire/linhashfile/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("runs commands against one file", func(t *testing.T) {
		// Prepare
		cfg := &config.Config{
			File:   config.FileConfig{Name: filepath.Join(t.TempDir(), "cli"), BlockSize: 512, OverflowBlockSize: 256},
			Record: config.RecordConfig{KeyLength: 10, ValueLength: 20},
			Log:    config.LogConfig{Level: "error", Format: "text"},
		}
		var out bytes.Buffer

		// Execute and check
		require.NoError(t, run(cfg, []string{"insert", "p1", "negative"}, &out))
		assert.Error(t, run(cfg, []string{"insert", "p1", "positive"}, &out), "duplicate key")
		require.NoError(t, run(cfg, []string{"get", "p1"}, &out))
		assert.Equal(t, "negative\n", out.String())

		out.Reset()
		require.NoError(t, run(cfg, []string{"edit", "p1", "positive"}, &out))
		require.NoError(t, run(cfg, []string{"get", "p1"}, &out))
		assert.Equal(t, "positive\n", out.String())

		out.Reset()
		require.NoError(t, run(cfg, []string{"stat"}, &out))
		assert.Contains(t, out.String(), "Records: 1 (1 in buckets, 0 in overflow)")

		require.NoError(t, run(cfg, []string{"delete", "p1"}, &out))
		assert.Error(t, run(cfg, []string{"get", "p1"}, &out), "deleted key")
		assert.Error(t, run(cfg, []string{"delete", "p1"}, &out), "deleted key")
	})

	t.Run("rejects bad arguments", func(t *testing.T) {
		cfg := &config.Config{
			File:   config.FileConfig{Name: filepath.Join(t.TempDir(), "cli"), BlockSize: 512, OverflowBlockSize: 256},
			Record: config.RecordConfig{KeyLength: 4, ValueLength: 4},
			Log:    config.LogConfig{Level: "error", Format: "text"},
		}
		var out bytes.Buffer

		assert.Error(t, run(cfg, nil, &out), "no command")
		assert.Error(t, run(cfg, []string{"frobnicate"}, &out), "unknown command")
		assert.Error(t, run(cfg, []string{"get"}, &out), "missing key")
		assert.Error(t, run(cfg, []string{"insert", "too-long-key", "v"}, &out), "key too long")
	})
}

func TestExecute(t *testing.T) {
	t.Run("logs failing command through configured logger", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		confPath := filepath.Join(dir, "hashfile.yaml")
		yaml := "file:\n  name: " + filepath.Join(dir, "cli") + "\nlog:\n  level: info\n  format: json\n"
		require.NoError(t, os.WriteFile(confPath, []byte(yaml), 0644))
		var out, errOut bytes.Buffer

		// Execute
		code := execute([]string{"-conf", confPath, "get", "missing"}, &out, &errOut)

		// Check
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut.String(), `"level":"ERROR"`)
		assert.Contains(t, errOut.String(), `"msg":"command failed"`)
		assert.Contains(t, errOut.String(), `key \"missing\" not found`)
		assert.Empty(t, out.String())
	})

	t.Run("logs configuration failure", func(t *testing.T) {
		var out, errOut bytes.Buffer

		code := execute([]string{"-conf", filepath.Join(t.TempDir(), "absent.yaml"), "stat"}, &out, &errOut)

		assert.Equal(t, 1, code)
		assert.Contains(t, errOut.String(), "level=ERROR")
		assert.Contains(t, errOut.String(), "failed to load configuration")
	})

	t.Run("succeeds on a valid command", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		confPath := filepath.Join(dir, "hashfile.yaml")
		yaml := "file:\n  name: " + filepath.Join(dir, "cli") + "\nlog:\n  level: error\n"
		require.NoError(t, os.WriteFile(confPath, []byte(yaml), 0644))
		var out, errOut bytes.Buffer

		// Execute
		code := execute([]string{"-conf", confPath, "stat"}, &out, &errOut)

		// Check
		assert.Equal(t, 0, code)
		assert.Contains(t, out.String(), "Buckets: 2")
		assert.Empty(t, errOut.String())
	})
}
