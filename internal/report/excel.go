package report

import (
	"fmt"
	"log/slog"
	"strconv"

	"media-migrator/internal/migrate"

	"github.com/xuri/excelize/v2"
)

// Sink receives the full record set annotated with outcomes, in the original
// fetch order.
type Sink interface {
	Write(results []migrate.RecordOutcome) error
}

// ExcelSink writes one spreadsheet row per record.
type ExcelSink struct {
	path   string
	logger *slog.Logger
}

var _ Sink = &ExcelSink{}

func NewExcelSink(path string, logger *slog.Logger) *ExcelSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelSink{path: path, logger: logger}
}

const sheetName = "Sheet1"

var headers = []interface{}{
	"ProductId", "sku", "SystemCode", "LinkId", "Order", "MediaId", "URL",
	"ImageType", "MediaResourceId", "CompanyId", "ContentType",
	"Status", "Stage", "Message", "Response",
}

func (s *ExcelSink) Write(results []migrate.RecordOutcome) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for i, result := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute report cell: %w", err)
		}

		rec, out := result.Record, result.Outcome
		status := "Success"
		if !out.Success {
			status = "Error"
		}

		row := []interface{}{
			strconv.FormatInt(rec.ProductID, 10), rec.SKU, rec.SystemCode,
			strconv.FormatInt(rec.LinkID, 10), rec.Order,
			strconv.FormatInt(rec.MediaID, 10), rec.URL,
			rec.ImageType, rec.MediaResourceID,
			strconv.FormatInt(rec.CompanyID, 10), rec.ContentType,
			status, string(out.Stage), out.Message, out.Response,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save report to %s: %w", s.path, err)
	}

	s.logger.Info("report written", "path", s.path, "rows", len(results))
	return nil
}
