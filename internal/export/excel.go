package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"adpulse/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter writes operator-facing Excel reports into the exports folder.
type Exporter struct {
	path   string
	logger zerolog.Logger
}

func NewExporter(path string, logger zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// ExportValidationReport создает Excel файл со сверкой счетчиков
func (e *Exporter) ExportValidationReport(result *models.ValidationResult) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Validation"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Account %s — validated at %s",
		result.AccountID, result.ValidatedAt.Format("02.01.2006 15:04")))

	headers := []string{"Entity", "Local", "Remote", "Status", "Error"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, "A2", "E2", headerStyle)

	for i, check := range result.Results {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), check.EntityType)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), check.LocalCount)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), check.RemoteCount)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), check.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), check.Error)

		if check.Status == models.CheckStatusMismatch {
			style, _ := f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
			})
			_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), style)
		}
	}

	summaryRow := len(result.Results) + 4
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Total diff")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow), result.TotalDiff)

	_ = f.SetColWidth(sheetName, "A", "A", 20)
	_ = f.SetColWidth(sheetName, "B", "E", 15)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("validation_%s_%s.xlsx", result.AccountID, time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("validation report created")
	return filePath, nil
}

// ExportExecutionReport создает Excel файл с деталями запуска движка
func (e *Exporter) ExportExecutionReport(rec *models.ExecutionRecord, details []*models.ExecutionDetail) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Execution"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Execution %s — account %s, status %s",
		rec.ID, rec.AccountID, rec.Status))
	_ = f.SetCellValue(sheetName, "A2", fmt.Sprintf("Total: %d, paused: %d, enabled: %d, skipped: %d",
		rec.TotalKeywords, rec.PausedCount, rec.EnabledCount, rec.SkippedCount))

	headers := []string{"Keyword ID", "Keyword", "Action", "Status", "Reason", "Error"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		_ = f.SetCellValue(sheetName, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, "A4", "F4", headerStyle)

	for i, detail := range details {
		row := i + 5
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), detail.KeywordID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), detail.KeywordText)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), detail.ActionType)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), detail.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), detail.Reason)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), detail.Error)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 15)
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "C", "F", 18)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("execution_%s.xlsx", rec.ID)
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("execution report created")
	return filePath, nil
}
