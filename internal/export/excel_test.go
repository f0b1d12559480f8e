package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"adpulse/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportValidationReport(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir, zerolog.Nop())

	result := &models.ValidationResult{
		AccountID: "acct-1",
		Results: []models.EntityCheck{
			{EntityType: "sp_campaigns", LocalCount: 10, RemoteCount: 10, Status: models.CheckStatusMatch},
			{EntityType: "keywords", LocalCount: 5, RemoteCount: 8, Status: models.CheckStatusMismatch},
		},
		TotalDiff:   3,
		ValidatedAt: time.Now(),
	}

	filePath, err := exporter.ExportValidationReport(result)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filePath, dir))
	assert.True(t, strings.HasSuffix(filePath, ".xlsx"))

	_, err = os.Stat(filePath)
	require.NoError(t, err)

	f, err := excelize.OpenFile(filePath)
	require.NoError(t, err)
	defer f.Close()

	entity, err := f.GetCellValue("Validation", "A4")
	require.NoError(t, err)
	assert.Equal(t, "keywords", entity)
}

func TestExportExecutionReport(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir, zerolog.Nop())

	rec := &models.ExecutionRecord{
		ID:            "exec-1",
		AccountID:     "acct-1",
		Status:        models.ExecutionStatusCompleted,
		TotalKeywords: 2,
		PausedCount:   1,
		SkippedCount:  1,
	}
	details := []*models.ExecutionDetail{
		{KeywordID: "kw-1", KeywordText: "running shoes", ActionType: models.ActionPause, Status: models.DetailStatusSuccess, Reason: "acos_above_threshold"},
		{KeywordID: "kw-2", KeywordText: "trail shoes", ActionType: models.ActionPause, Status: models.DetailStatusSkipped, Reason: "healthy"},
	}

	filePath, err := exporter.ExportExecutionReport(rec, details)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "execution_exec-1.xlsx"), filePath)

	f, err := excelize.OpenFile(filePath)
	require.NoError(t, err)
	defer f.Close()

	keyword, err := f.GetCellValue("Execution", "B5")
	require.NoError(t, err)
	assert.Equal(t, "running shoes", keyword)
}

func TestExportCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	exporter := NewExporter(dir, zerolog.Nop())

	_, err := exporter.ExportExecutionReport(&models.ExecutionRecord{ID: "exec-1"}, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
