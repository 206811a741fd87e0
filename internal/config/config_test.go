package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".waterlens", "projects"), c.ProjectsDir)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, "markdown", c.ReportFormat)
	assert.Equal(t, 1, c.SheetIndex)
	assert.Zero(t, c.Workers)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("workers: 3\nreport_format: JSON\ndecimal_separator: \",\"\nstandards_file: /etc/limits.yaml\n"), 0o644))
	t.Setenv("WATERLENS_LOG_LEVEL", "debug")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, "json", c.ReportFormat)
	assert.Equal(t, ",", c.DecimalSeparator)
	assert.Equal(t, "/etc/limits.yaml", c.StandardsFile)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, ',', Separator(c.DecimalSeparator))
	assert.Equal(t, rune(0), Separator(c.ThousandsSeparator))
}

func TestLoadMissingExplicitFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "markdown", c.ReportFormat)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("log_level: loud\nsheet_index: 0\n"), 0o644))

	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "sheet_index")
}

func TestSaveAndReload(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("workers", "8"))
	require.NoError(t, c.Set("report_format", "XLSX"))
	require.NoError(t, c.Set("sheet_name", "Samples"))
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".waterlens", "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, again.Workers)
	assert.Equal(t, "xlsx", again.ReportFormat)
	assert.Equal(t, "Samples", again.SheetName)
}

func TestSetValidates(t *testing.T) {
	c := &Global{LogLevel: "info", LogFormat: "text", ReportFormat: "markdown", SheetIndex: 1}
	assert.Error(t, c.Set("workers", "many"))
	assert.Error(t, c.Set("log_format", "xml"))
	assert.Error(t, c.Set("colour", "blue"))

	c = &Global{LogLevel: "info", LogFormat: "text", ReportFormat: "markdown", SheetIndex: 1}
	require.NoError(t, c.Set("thousands_separator", "."))
	assert.Error(t, c.Set("decimal_separator", "."), "decimal and thousands separators must differ")
}

func TestGetCoversEveryKey(t *testing.T) {
	c := &Global{Workers: 4, SheetIndex: 2, ReportFormat: "json"}
	for _, k := range Keys {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	v, _ := c.Get("workers")
	assert.Equal(t, "4", v)
	v, _ = c.Get("REPORT_FORMAT")
	assert.Equal(t, "json", v)
	_, ok := c.Get("api_key")
	assert.False(t, ok)
}
