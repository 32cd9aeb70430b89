// Package excel writes the analysis report as an .xlsx workbook: one chart
// sheet and one data sheet each for the chromatogram and the mass spectrum.
package excel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/PeakExplorer/pkg/core"
	"github.com/ChrisMcGann/PeakExplorer/pkg/pipeline"
)

const (
	// ModeCountsPerTime is the chromatogram part of the report.
	ModeCountsPerTime = "Counts_Per_Time"
	// ModeCountsPerMass is the mass spectrum part of the report.
	ModeCountsPerMass = "Counts_Per_Mass"

	columnWidth = 22
	paperA4     = 9
	numberFmt   = "#,##0.000;;[Red] 0"
)

// ErrFileInUse is returned when the report file exists but cannot be replaced.
var ErrFileInUse = errors.New("report file is in use")

// ResultFilename returns the report path for an input file:
// <dir>/HPLC_MS_<name>.xlsx, the input extension included in <name>.
func ResultFilename(input string) string {
	return filepath.Join(filepath.Dir(input), "HPLC_MS_"+filepath.Base(input)+".xlsx")
}

// ChartSheet returns the name of the chart sheet of a mode.
func ChartSheet(mode string) string { return "Chart " + mode }

// DataSheet returns the name of the data sheet of a mode.
func DataSheet(mode string) string { return "Data_" + mode }

// sheetData is the table behind one chart.
type sheetData struct {
	mode   string
	header []string
	rows   [][]float64
	trace  bool

	title  string
	xTitle string
}

func reportSheets(res *pipeline.Result) []sheetData {
	perTime := sheetData{
		mode:   ModeCountsPerTime,
		header: []string{"Elution time [min]", "Total counts"},
		trace:  res.MassTrace != nil,
		title:  "HPLC-MS Chromatogram",
		xTitle: "Elution time [min]",
	}
	if perTime.trace {
		perTime.header = append(perTime.header, traceHeader("mass", res.MassTrace))
	}
	for _, r := range res.ChromatogramRows() {
		perTime.rows = append(perTime.rows, []float64{r.ElutionTime, r.Counts, r.Trace})
	}

	perMass := sheetData{
		mode:   ModeCountsPerMass,
		header: []string{"Ion masses [Da]", "Summed up total counts"},
		trace:  res.TimeTrace != nil,
		title:  "Mass spectrum (HPLC-MS)",
		xTitle: "Ion masses [Da]",
	}
	if perMass.trace {
		perMass.header = append(perMass.header, traceHeader("minute", res.TimeTrace))
	}
	for _, r := range res.SpectrumRows() {
		perMass.rows = append(perMass.rows, []float64{r.Mass, r.Counts, r.Trace})
	}

	return []sheetData{perTime, perMass}
}

func traceHeader(kind string, tr *core.Trace) string {
	return fmt.Sprintf("Counts for %s trace %s", kind, tr.Label())
}

// Write creates the report workbook at path. An existing file is replaced.
func Write(path string, res *pipeline.Result) error {
	if err := checkReplaceable(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	fmtCode := numberFmt
	valueStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &fmtCode})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	sheets := reportSheets(res)
	defaultSheet := f.GetSheetName(0)

	for _, sd := range sheets {
		if _, err := f.NewSheet(DataSheet(sd.mode)); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", DataSheet(sd.mode), err)
		}
		if err := fillDataSheet(f, sd, res.Source, headerStyle, valueStyle); err != nil {
			return err
		}
	}

	for _, sd := range sheets {
		if err := f.AddChartSheet(ChartSheet(sd.mode), newChart(sd)); err != nil {
			return fmt.Errorf("failed to create chart sheet %s: %w", ChartSheet(sd.mode), err)
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(ChartSheet(ModeCountsPerTime)); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func fillDataSheet(f *excelize.File, sd sheetData, source string, headerStyle, valueStyle int) error {
	sheet := DataSheet(sd.mode)

	orientation := "landscape"
	size := paperA4
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{Size: &size, Orientation: &orientation}); err != nil {
		return fmt.Errorf("failed to set page layout: %w", err)
	}
	zoom := 100.0
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{ZoomScale: &zoom}); err != nil {
		return fmt.Errorf("failed to set zoom: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	header := make([]interface{}, len(sd.header))
	for i, h := range sd.header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(sd.header), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "C", columnWidth); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	cols := len(sd.header)
	for i, row := range sd.rows {
		values := make([]interface{}, cols)
		for c := 0; c < cols; c++ {
			values[c] = row[c]
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if len(sd.rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(cols, len(sd.rows)+1)
		if err := f.SetCellStyle(sheet, "A2", last, valueStyle); err != nil {
			return fmt.Errorf("failed to style values: %w", err)
		}
	}

	if err := f.SetCellValue(sheet, "F1", fmt.Sprintf("HPLC-MS-Data derived from '%s'", source)); err != nil {
		return fmt.Errorf("failed to write source note: %w", err)
	}
	return nil
}

func newChart(sd sheetData) *excelize.Chart {
	sheet := DataSheet(sd.mode)
	last := len(sd.rows) + 1
	if last < 2 {
		last = 2
	}
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last)

	series := []excelize.ChartSeries{{
		Name:       fmt.Sprintf("'%s'!$B$1", sheet),
		Categories: categories,
		Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		Line:       excelize.ChartLine{Width: 1.25},
		Marker:     excelize.ChartMarker{Symbol: "none"},
	}}
	if sd.trace {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$C$1", sheet),
			Categories: categories,
			Values:     fmt.Sprintf("'%s'!$C$2:$C$%d", sheet, last),
			Line:       excelize.ChartLine{Width: 1.25},
			Marker:     excelize.ChartMarker{Symbol: "none"},
		})
	}

	return &excelize.Chart{
		Type:   excelize.Scatter,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: sd.title}},
		XAxis: excelize.ChartAxis{
			Title:  []excelize.RichTextRun{{Text: sd.xTitle}},
			NumFmt: excelize.ChartNumFmt{CustomNumFmt: "0.0"},
		},
		YAxis: excelize.ChartAxis{
			Title:  []excelize.RichTextRun{{Text: "Counts"}},
			NumFmt: excelize.ChartNumFmt{CustomNumFmt: "#,##0"},
		},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}
}

// checkReplaceable fails when an existing report cannot be replaced, which
// usually means it is open in a spreadsheet application.
func checkReplaceable(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := os.Rename(path, path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFileInUse, path, err)
	}
	return nil
}
