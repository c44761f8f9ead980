package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msepahkar/platenest/internal/model"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s)
}

func TestLoad_PartialFileKeepsDefaultsForAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platenest.toml")
	content := `
[sheet]
width = 2500
height = 1250

[layout]
part_gap = 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2500.0, s.SheetWidth)
	assert.Equal(t, 1250.0, s.SheetHeight)
	assert.Equal(t, 8.0, s.PartGap)

	// Unset keys keep the defaults.
	defaults := model.DefaultSettings()
	assert.Equal(t, defaults.SheetMargin, s.SheetMargin)
	assert.Equal(t, defaults.SheetGap, s.SheetGap)
	assert.Equal(t, defaults.ColumnMargin, s.ColumnMargin)
	assert.Equal(t, defaults.TextHeight, s.TextHeight)
	assert.Equal(t, defaults.TextWidthFactor, s.TextWidthFactor)
}

func TestLoad_FullOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platenest.toml")
	content := `
[sheet]
width = 2000
height = 1000

[layout]
margin = 15
part_gap = 12
sheet_gap = 300
column_margin = 40

[text]
height = 12
width_factor = 0.55
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.NestSettings{
		SheetWidth:      2000,
		SheetHeight:     1000,
		SheetMargin:     15,
		PartGap:         12,
		SheetGap:        300,
		ColumnMargin:    40,
		TextHeight:      12,
		TextWidthFactor: 0.55,
	}, s)
}

func TestLoad_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platenest.toml")
	require.NoError(t, os.WriteFile(path, []byte("[sheet\nwidth ="), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
