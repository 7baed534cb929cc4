package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/logger"
)

const (
	filenamePrefix = "daily_news"
	headerFill     = "366092"

	colWidthSite     = 25
	colWidthHeadline = 80
	colWidthLink     = 15

	maxSheetNameLen = 31
)

// Writer renders collected articles into a styled xlsx workbook, one
// sheet per source group in the aggregation priority order, preceded by
// a summary sheet.
type Writer struct {
	outputDir string
	log       logger.Logger
}

// NewWriter builds a Writer targeting outputDir.
func NewWriter(outputDir string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Writer{outputDir: outputDir, log: log}
}

// Filename returns the report file name for the given day.
func Filename(day time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", filenamePrefix, day.Format("20060102"))
}

// Write renders results (already in priority order) into the output
// directory and returns the file path.
func (w *Writer) Write(results []domain.SourceResult, day time.Time) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"},
	})
	if err != nil {
		return "", fmt.Errorf("create link style: %w", err)
	}

	if err := w.writeSummary(f, results, headerStyle); err != nil {
		return "", err
	}

	for _, res := range results {
		if len(res.Articles) == 0 {
			continue
		}
		if err := w.writeSourceSheet(f, res, headerStyle, linkStyle); err != nil {
			return "", err
		}
	}

	path := filepath.Join(w.outputDir, Filename(day))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	w.log.InfoObj("report written", "report_saved", map[string]any{
		"path":    path,
		"sources": len(results),
	})
	return path, nil
}

func (w *Writer) writeSummary(f *excelize.File, results []domain.SourceResult, headerStyle int) error {
	const sheet = "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{"Source", "Articles", "Error"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}

	total := 0
	for i, res := range results {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{res.Source, len(res.Articles), res.Err}); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
		total += len(res.Articles)
	}
	totalCell := fmt.Sprintf("A%d", len(results)+2)
	if err := f.SetSheetRow(sheet, totalCell, &[]any{"Total", total, ""}); err != nil {
		return fmt.Errorf("write summary total: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", "A", colWidthSite); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "C", 50)
}

func (w *Writer) writeSourceSheet(f *excelize.File, res domain.SourceResult, headerStyle, linkStyle int) error {
	sheet := sheetName(res.Source)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{"Site", "Headline", "Link"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	seen := make(map[[2]string]struct{}, len(res.Articles))
	for _, a := range res.Articles {
		key := [2]string{a.Headline, a.Link}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]any{a.Site, a.Headline}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}

		linkCell := fmt.Sprintf("C%d", row)
		if strings.HasPrefix(a.Link, "http") {
			// quotes inside a formula string literal double up
			escaped := strings.ReplaceAll(a.Link, `"`, `""`)
			formula := fmt.Sprintf(`HYPERLINK("%s", "Click to open")`, escaped)
			if err := f.SetCellFormula(sheet, linkCell, formula); err != nil {
				return fmt.Errorf("write link formula: %w", err)
			}
			if err := f.SetCellStyle(sheet, linkCell, linkCell, linkStyle); err != nil {
				return fmt.Errorf("style link: %w", err)
			}
		} else if err := f.SetCellStr(sheet, linkCell, a.Link); err != nil {
			return fmt.Errorf("write link: %w", err)
		}
		row++
	}

	if err := f.SetColWidth(sheet, "A", "A", colWidthSite); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", colWidthHeadline); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "C", colWidthLink)
}

// sheetName sanitizes a source name for Excel's sheet naming rules.
func sheetName(name string) string {
	name = strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")", ":", "-").Replace(name)
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}
	return name
}
