package reports_test

import (
	"bytes"
	"testing"

	"bitbucket.org/mmdatafocus/gstrecon_backend/models"
	"bitbucket.org/mmdatafocus/gstrecon_backend/models/reports"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestWriteReconciliationWorkbook(t *testing.T) {
	rows := []*models.ExportRow{
		{
			Gstin:                "27AABCU9603R1ZX",
			InvoiceNumber:        "INV001",
			Status:               models.MatchStatusAmountMismatch,
			BooksAmount:          decimal.NewFromInt(15000),
			StatementAmount:      decimal.NewFromInt(14500),
			AmountDiff:           decimal.NewFromInt(500),
			BooksInvoiceDate:     "2024-04-01",
			StatementInvoiceDate: "2024-04-01",
			BooksVendorName:      "Acme Traders",
		},
	}

	var buf bytes.Buffer
	if err := reports.WriteReconciliationWorkbook(&buf, rows); err != nil {
		t.Fatalf("WriteReconciliationWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Sheet1", "A1"); got != "GSTIN" {
		t.Errorf("A1 = %q, want GSTIN", got)
	}
	if got, _ := f.GetCellValue("Sheet1", "A2"); got != "27AABCU9603R1ZX" {
		t.Errorf("A2 = %q, want the gstin", got)
	}
	if got, _ := f.GetCellValue("Sheet1", "C2"); got != "AMOUNT_MISMATCH" {
		t.Errorf("C2 = %q, want AMOUNT_MISMATCH", got)
	}
	if got, _ := f.GetCellValue("Sheet1", "F2"); got != "500" {
		t.Errorf("F2 = %q, want 500", got)
	}
}
