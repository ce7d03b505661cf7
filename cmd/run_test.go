package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gatedbus/app"
)

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`events:
  msg:
    - type: switch
      conf:
        name: gate
log:
  level: error
`), 0o644))
	scriptFile := filepath.Join(dir, "script.jsonl")
	require.NoError(t, os.WriteFile(scriptFile, []byte(`{"op":"emit","event":"msg","payload":"a"}
{"op":"emit","event":"msg","payload":"b"}
{"op":"open","switch":"gate"}
{"op":"reeval","event":"msg"}
{"op":"close","switch":"gate"}
{"op":"emit","event":"msg","payload":"c"}
`), 0o644))

	old := cfgPath
	cfgPath = cfgFile
	t.Cleanup(func() { cfgPath = old })

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, scriptFile, false))
	var rep app.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, []any{"a", "b"}, rep.Delivered["msg"])
	assert.Equal(t, []any{"c"}, rep.Pending["msg"])
}

func TestRunCommandErrors(t *testing.T) {
	old := cfgPath
	t.Cleanup(func() { cfgPath = old })

	cfgPath = filepath.Join(t.TempDir(), "missing.yaml")
	assert.ErrorContains(t, run(context.Background(), &bytes.Buffer{}, "-", false), "load config")

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log:\n  level: error\n"), 0o644))
	cfgPath = cfgFile
	assert.ErrorContains(t, run(context.Background(), &bytes.Buffer{}, "/does/not/exist.jsonl", false), "open script")
}

func TestRootHasRunCommand(t *testing.T) {
	c, _, err := rootCmd.Find([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", c.Name())
	assert.NotNil(t, c.Flags().Lookup("script"))
}
