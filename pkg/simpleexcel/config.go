package simpleexcel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// SectionType controls how a section is rendered.
type SectionType string

const (
	// SectionTypeData renders columns of struct data (the default).
	SectionTypeData SectionType = "data"
	// SectionTypeTitleOnly renders just the title row, for report headers.
	SectionTypeTitleOnly SectionType = "title"
	// SectionTypeHidden renders data into rows hidden from view, for metadata.
	SectionTypeHidden SectionType = "hidden"
)

// FontTemplate styles section text.
type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"`
}

// FillTemplate styles section backgrounds.
type FillTemplate struct {
	Color string `yaml:"color"`
}

// StyleTemplate combines font and fill styling for a row.
type StyleTemplate struct {
	Font *FontTemplate `yaml:"font"`
	Fill *FillTemplate `yaml:"fill"`
}

// ColumnConfig maps a struct field to a sheet column.
type ColumnConfig struct {
	FieldName string  `yaml:"field_name"`
	Header    string  `yaml:"header"`
	Width     float64 `yaml:"width"`
}

// SectionConfig describes one vertical section of a sheet.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Type        SectionType    `yaml:"type"`
	ShowHeader  bool           `yaml:"show_header"`
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`

	// Data is bound in code, either inline or via BindSectionData.
	Data interface{} `yaml:"-"`
}

// SheetConfig is one sheet with its ordered sections.
type SheetConfig struct {
	Name     string           `yaml:"name"`
	Sections []*SectionConfig `yaml:"sections"`
}

type exporterConfig struct {
	Sheets []*SheetConfig `yaml:"sheets"`
}

// NewDataExporterFromYaml builds an exporter from a YAML layout; data is
// attached afterwards with BindSectionData keyed by section id.
func NewDataExporterFromYaml(raw []byte) (*DataExporter, error) {
	var cfg exporterConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse exporter config: %w", err)
	}
	return &DataExporter{sheets: cfg.Sheets}, nil
}

// NewDataExporterFromYamlFile reads the layout from a file.
func NewDataExporterFromYamlFile(path string) (*DataExporter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exporter config %s: %w", path, err)
	}
	return NewDataExporterFromYaml(raw)
}
