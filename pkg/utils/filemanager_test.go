package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2024, 4, 12, 8, 15, 0, 0, time.UTC)

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		name   string
		format string
		ext    string
		params map[string]string
		want   string
	}{
		{"default pattern", "{original}_{kind}_{timestamp}", ".csv",
			map[string]string{"original": "inbound", "kind": "items"}, "inbound_items_20240412_081500.csv"},
		{"date and time", "{date}-{time}", ".xlsx", nil, "20240412-081500.xlsx"},
		{"extension already present", "fixed.CSV", ".csv", nil, "fixed.CSV"},
		{"unsafe characters", "{original}", ".csv",
			map[string]string{"original": "a/b:c"}, "a_b_c.csv"},
		{"unknown placeholder kept", "{dept}", "", nil, "{dept}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateOutputFileName(tt.format, tt.ext, tt.params, fixed))
		})
	}
}

func TestGenerateOutputFileNameUUID(t *testing.T) {
	name := GenerateOutputFileName("{uuid}", ".csv", nil, fixed)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}\.csv$`), name)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "manifest-0412", BaseName("/tmp/in/manifest-0412.xlsx"))
	assert.Equal(t, "plain", BaseName("plain"))
	assert.Equal(t, "manifest", BaseName(""))
}

func TestFileManagerOutputPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	fm := NewFileManager(dir, "{original}_{kind}_{timestamp}")
	fm.now = func() time.Time { return fixed }

	require.NoError(t, fm.EnsureDirectories())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, filepath.Join(dir, "inbound_report_20240412_081500.xlsx"),
		fm.OutputPath("report", "uploads/inbound.xlsx", ".xlsx"))
}
