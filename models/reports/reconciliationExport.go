package reports

import (
	"io"

	"bitbucket.org/mmdatafocus/gstrecon_backend/models"
	"github.com/xuri/excelize/v2"
)

var exportHeadings = []string{
	"GSTIN",
	"Invoice Number",
	"Match Status",
	"Books Amount",
	"Statement Amount",
	"Amount Difference",
	"Books CGST",
	"Statement CGST",
	"CGST Difference",
	"Books SGST",
	"Statement SGST",
	"SGST Difference",
	"Books IGST",
	"Statement IGST",
	"IGST Difference",
	"Total Tax Difference",
	"Books Invoice Date",
	"Statement Invoice Date",
	"Books Vendor",
	"Statement Vendor",
}

// WriteReconciliationWorkbook renders the flattened report rows as a single
// sheet xlsx workbook. Rows are written in the order given.
func WriteReconciliationWorkbook(w io.Writer, rows []*models.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	for col, heading := range exportHeadings {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, heading); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.Gstin,
			row.InvoiceNumber,
			string(row.Status),
			row.BooksAmount.InexactFloat64(),
			row.StatementAmount.InexactFloat64(),
			row.AmountDiff.InexactFloat64(),
			row.BooksCgst.InexactFloat64(),
			row.StatementCgst.InexactFloat64(),
			row.CgstDiff.InexactFloat64(),
			row.BooksSgst.InexactFloat64(),
			row.StatementSgst.InexactFloat64(),
			row.SgstDiff.InexactFloat64(),
			row.BooksIgst.InexactFloat64(),
			row.StatementIgst.InexactFloat64(),
			row.IgstDiff.InexactFloat64(),
			row.TotalTaxDiff.InexactFloat64(),
			row.BooksInvoiceDate,
			row.StatementInvoiceDate,
			row.BooksVendorName,
			row.StatementVendorName,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
