// Package exporter writes flat, pre-formatted rows to .xlsx workbooks and
// delimited text. Values are written as strings exactly as given; no cell is
// coerced to a number or date.
package exporter

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column binds a record field to its localized header.
type Column struct {
	Field  string
	Header string
}

// Row is one flat record keyed by field. Missing fields export as empty cells.
type Row map[string]string

// Sheet is one named table of rows in a fixed column order.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// docTimestamp pins workbook metadata so identical input gives identical bytes.
const docTimestamp = "2000-01-01T00:00:00Z"

// WriteXLSX writes one worksheet per sheet, in order. The header row is bold.
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        "smallbiz-crm",
		LastModifiedBy: "smallbiz-crm",
		Created:        docTimestamp,
		Modified:       docTimestamp,
	}); err != nil {
		return fmt.Errorf("set doc props: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, s := range sheets {
		name := sheetName(s.Name, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, s, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return rezip(w, buf.Bytes())
}

// rezip copies the package with entries sorted by name and zero timestamps,
// so the archive bytes depend only on its contents.
func rezip(w io.Writer, pkg []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return fmt.Errorf("read xlsx package: %w", err)
	}
	files := append([]*zip.File(nil), zr.File...)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	zw := zip.NewWriter(w)
	for _, zf := range files {
		dst, err := zw.CreateHeader(&zip.FileHeader{Name: zf.Name, Method: zip.Deflate})
		if err != nil {
			return err
		}
		src, err := zf.Open()
		if err != nil {
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeSheet(f *excelize.File, name string, s Sheet, headerStyle int) error {
	for c, col := range s.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(name, cell, col.Header); err != nil {
			return fmt.Errorf("write header %q: %w", col.Header, err)
		}
	}
	if len(s.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(s.Columns), 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	for r, row := range s.Rows {
		for c, col := range s.Columns {
			v := row[col.Field]
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(name, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}
	return nil
}

// sheetName trims names to the Excel limit and strips characters Excel rejects.
func sheetName(name string, index int) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = fmt.Sprintf("Hoja%d", index+1)
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}

// WriteCSV writes a UTF-8 BOM, the header row and every row with CRLF line
// endings. The BOM makes spreadsheet programs detect the encoding.
func WriteCSV(w io.Writer, s Sheet) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(bw)
	cw.UseCRLF = true

	record := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		record[i] = col.Header
	}
	if err := cw.Write(record); err != nil {
		return err
	}
	for _, row := range s.Rows {
		for i, col := range s.Columns {
			record[i] = row[col.Field]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return bw.Flush()
}

// Select narrows columns to fields, keeping the column order. Unknown fields
// are ignored; an empty field list keeps every column.
func Select(columns []Column, fields []string) []Column {
	if len(fields) == 0 {
		return columns
	}
	want := make(map[string]bool, len(fields))
	for _, f := range fields {
		want[strings.TrimSpace(f)] = true
	}
	out := make([]Column, 0, len(fields))
	for _, col := range columns {
		if want[col.Field] {
			out = append(out, col)
		}
	}
	return out
}
