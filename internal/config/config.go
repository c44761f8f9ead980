// Package config loads nesting settings from an optional TOML file.
// Absent files and absent keys fall back to the fixed defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/msepahkar/platenest/internal/model"
)

// DefaultFileName is the settings file looked up in the working
// directory when no explicit path is given.
const DefaultFileName = "platenest.toml"

// fileConfig mirrors the TOML layout. Decoding happens over a struct
// pre-filled with defaults, so missing keys keep their default values.
type fileConfig struct {
	Sheet struct {
		Width  float64 `toml:"width"`
		Height float64 `toml:"height"`
	} `toml:"sheet"`
	Layout struct {
		Margin       float64 `toml:"margin"`
		PartGap      float64 `toml:"part_gap"`
		SheetGap     float64 `toml:"sheet_gap"`
		ColumnMargin float64 `toml:"column_margin"`
	} `toml:"layout"`
	Text struct {
		Height      float64 `toml:"height"`
		WidthFactor float64 `toml:"width_factor"`
	} `toml:"text"`
}

func fromSettings(s model.NestSettings) fileConfig {
	var fc fileConfig
	fc.Sheet.Width = s.SheetWidth
	fc.Sheet.Height = s.SheetHeight
	fc.Layout.Margin = s.SheetMargin
	fc.Layout.PartGap = s.PartGap
	fc.Layout.SheetGap = s.SheetGap
	fc.Layout.ColumnMargin = s.ColumnMargin
	fc.Text.Height = s.TextHeight
	fc.Text.WidthFactor = s.TextWidthFactor
	return fc
}

func (fc fileConfig) toSettings() model.NestSettings {
	return model.NestSettings{
		SheetWidth:      fc.Sheet.Width,
		SheetHeight:     fc.Sheet.Height,
		SheetMargin:     fc.Layout.Margin,
		PartGap:         fc.Layout.PartGap,
		SheetGap:        fc.Layout.SheetGap,
		ColumnMargin:    fc.Layout.ColumnMargin,
		TextHeight:      fc.Text.Height,
		TextWidthFactor: fc.Text.WidthFactor,
	}
}

// Load reads settings from path, applied over the defaults. A missing
// file is not an error: the defaults are returned as-is.
func Load(path string) (model.NestSettings, error) {
	defaults := model.DefaultSettings()
	if path == "" {
		path = DefaultFileName
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaults, nil
	}

	fc := fromSettings(defaults)
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return defaults, fmt.Errorf("config: %s: %w", path, err)
	}
	return fc.toSettings(), nil
}
