package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	// keep a stray .env in the package dir from leaking in
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(home))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("EDAMASTER_OUTPUT_FILE", "out/master.csv")
	t.Setenv("EDAMASTER_PREVIEW_ROWS", "3")
	t.Setenv("EDAMASTER_LOG_LEVEL", "DEBUG")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "out/master.csv", c.OutputFile)
	assert.Equal(t, 3, c.PreviewRows)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("EDAMASTER_FILENAME_SUFFIX=_summary\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("EDAMASTER_FILENAME_SUFFIX") })
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "_summary", c.FilenameSuffix)
}

func TestSaveAndLoadFile(t *testing.T) {
	home := isolate(t)
	c := Defaults()
	c.OutputFormat = "xlsx"
	c.OutputFile = "EDA_MASTER_SHEET.xlsx"
	c.Delimiter = ";"
	require.NoError(t, Save(c, ""))

	_, err := os.Stat(filepath.Join(home, ".edamaster", "config.yaml"))
	require.NoError(t, err)

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidate(t *testing.T) {
	c := Defaults()
	require.NoError(t, c.Validate())

	c.OutputFormat = "pdf"
	assert.Error(t, c.Validate())

	c = Defaults()
	c.Delimiter = ","
	assert.NoError(t, c.Validate())
	c.Delimiter = "|"
	assert.Error(t, c.Validate())

	c = Defaults()
	c.MaxUploadMB = 0
	assert.Error(t, c.Validate())

	c = Defaults()
	c.OutputFile = ""
	assert.Error(t, Save(c, filepath.Join(t.TempDir(), "c.yaml")))
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
