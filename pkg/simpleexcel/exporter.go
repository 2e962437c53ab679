// Package simpleexcel renders sectioned Excel reports from slices of structs.
// A report is a list of sheets, each a vertical stack of sections: title-only
// banners, visible data tables, or hidden metadata rows.
package simpleexcel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/xuri/excelize/v2"
)

// DataExporter builds and renders a report. Configure it fluently via
// AddSheet/AddSection or load the layout from YAML and bind data by id.
type DataExporter struct {
	sheets  []*SheetConfig
	current *SheetConfig
}

func NewDataExporter() *DataExporter {
	return &DataExporter{}
}

// AddSheet starts a new sheet; following AddSection calls attach to it.
func (e *DataExporter) AddSheet(name string) *DataExporter {
	sheet := &SheetConfig{Name: name}
	e.sheets = append(e.sheets, sheet)
	e.current = sheet
	return e
}

// AddSection appends a section to the current sheet.
func (e *DataExporter) AddSection(section *SectionConfig) *DataExporter {
	if e.current == nil {
		e.AddSheet("Sheet1")
	}
	e.current.Sections = append(e.current.Sections, section)
	return e
}

// Build finalizes the fluent configuration.
func (e *DataExporter) Build() *DataExporter {
	return e
}

// BindSectionData attaches data to the section with the given id.
func (e *DataExporter) BindSectionData(id string, data interface{}) *DataExporter {
	for _, sheet := range e.sheets {
		for _, section := range sheet.Sections {
			if section.ID == id {
				section.Data = data
			}
		}
	}
	return e
}

// ExportToExcel renders the report to a file on disk.
func (e *DataExporter) ExportToExcel(ctx context.Context, path string) error {
	f, err := e.render()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// ToBytes renders the report into memory.
func (e *DataExporter) ToBytes() ([]byte, error) {
	f, err := e.render()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ToWriter renders the report and streams it to w.
func (e *DataExporter) ToWriter(w io.Writer) error {
	raw, err := e.ToBytes()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(raw))
	return err
}

func (e *DataExporter) render() (*excelize.File, error) {
	f := excelize.NewFile()

	for i, sheet := range e.sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			// Rename the default sheet excelize creates.
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
			}
		}

		row := 1
		for _, section := range sheet.Sections {
			var err error
			row, err = renderSection(f, name, section, row)
			if err != nil {
				return nil, fmt.Errorf("failed to render section %q: %w", section.Title, err)
			}
		}
	}

	return f, nil
}

func renderSection(f *excelize.File, sheet string, section *SectionConfig, row int) (int, error) {
	hidden := section.Type == SectionTypeHidden

	if section.Title != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheet, cell, section.Title); err != nil {
			return row, err
		}
		if err := applyStyle(f, sheet, row, len(section.Columns), section.TitleStyle); err != nil {
			return row, err
		}
		if hidden {
			if err := f.SetRowVisible(sheet, row, false); err != nil {
				return row, err
			}
		}
		row++
	}

	if section.Type == SectionTypeTitleOnly {
		return row + 1, nil // blank spacer after a banner
	}

	for i, col := range section.Columns {
		if col.Width <= 0 {
			continue
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
			return row, err
		}
	}

	if section.ShowHeader {
		for i, col := range section.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			header := col.Header
			if header == "" {
				header = col.FieldName
			}
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return row, err
			}
		}
		if err := applyStyle(f, sheet, row, len(section.Columns), section.HeaderStyle); err != nil {
			return row, err
		}
		if hidden {
			if err := f.SetRowVisible(sheet, row, false); err != nil {
				return row, err
			}
		}
		row++
	}

	items, err := sliceValues(section.Data)
	if err != nil {
		return row, err
	}
	for _, item := range items {
		for i, col := range section.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, fieldValue(item, col.FieldName)); err != nil {
				return row, err
			}
		}
		if hidden {
			if err := f.SetRowVisible(sheet, row, false); err != nil {
				return row, err
			}
		}
		row++
	}

	return row + 1, nil
}

func applyStyle(f *excelize.File, sheet string, row, cols int, style *StyleTemplate) error {
	if style == nil {
		return nil
	}

	s := excelize.Style{}
	if style.Font != nil {
		s.Font = &excelize.Font{Bold: style.Font.Bold, Color: style.Font.Color}
	}
	if style.Fill != nil {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{style.Fill.Color}}
	}

	id, err := f.NewStyle(&s)
	if err != nil {
		return err
	}
	if cols < 1 {
		cols = 1
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(cols, row)
	return f.SetCellStyle(sheet, from, to, id)
}

// sliceValues flattens the section data into reflect values of its elements.
func sliceValues(data interface{}) ([]reflect.Value, error) {
	if data == nil {
		return nil, nil
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("section data must be a slice, got %s", v.Kind())
	}
	out := make([]reflect.Value, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = v.Index(i)
	}
	return out, nil
}

// fieldValue reads the named field, rendering times human-readably and nil
// pointers as empty cells.
func fieldValue(item reflect.Value, field string) interface{} {
	if item.Kind() == reflect.Ptr {
		if item.IsNil() {
			return ""
		}
		item = item.Elem()
	}
	if item.Kind() != reflect.Struct {
		return ""
	}

	v := item.FieldByName(field)
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if t, ok := v.Interface().(time.Time); ok {
		return t.Format("2006-01-02 15:04")
	}
	return v.Interface()
}
