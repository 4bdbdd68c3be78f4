package ingest

import (
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/gstrecon_backend/models"
	"github.com/shopspring/decimal"
)

const gstinLength = 15

// ErrorPreviewLimit caps how many row errors are spelled out in messages and
// responses. The full list is still returned to the caller.
const ErrorPreviewLimit = 10

// RowError describes why one row was dropped. Row numbers follow the source
// sheet, where row 1 is the header.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// EmptyBatchError means validation dropped every row of the upload. Distinct
// from SchemaError: the headers were fine, the data was not.
type EmptyBatchError struct {
	RowErrors []RowError
}

func (e *EmptyBatchError) Error() string {
	msg := "no valid records found in file"
	if len(e.RowErrors) == 0 {
		return msg
	}
	preview := e.RowErrors
	if len(preview) > ErrorPreviewLimit {
		preview = preview[:ErrorPreviewLimit]
	}
	reasons := make([]string, 0, len(preview))
	for _, re := range preview {
		reasons = append(reasons, fmt.Sprintf("row %d: %s", re.Row, re.Reason))
	}
	if len(e.RowErrors) > ErrorPreviewLimit {
		reasons = append(reasons, fmt.Sprintf("... and %d more", len(e.RowErrors)-ErrorPreviewLimit))
	}
	return msg + " (" + strings.Join(reasons, "; ") + ")"
}

// invoiceDateFormats are tried in order.
var invoiceDateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// ParseInvoiceDate tries each known format in order and normalizes the result
// to a UTC calendar date.
func ParseInvoiceDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("invoice date is empty")
	}
	for _, layout := range invoiceDateFormats {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized invoice date %q", trimmed)
}

func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	return decimal.NewFromString(cleaned)
}

// parseTax degrades gracefully: unparsable or negative tax cells become zero
// instead of rejecting the row.
func parseTax(value string) decimal.Decimal {
	amount, err := parseAmount(value)
	if err != nil || amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Validate coerces a normalized grid into GSTRecords tagged with recordType.
// Rows are independent: a bad row is collected as a RowError and never aborts
// the batch. Returns the accepted records together with all row errors; when
// zero rows survive the whole batch fails with an *EmptyBatchError.
func Validate(grid *Grid, recordType models.RecordType) ([]*models.GSTRecord, []RowError, error) {
	records := make([]*models.GSTRecord, 0, len(grid.Rows))
	var rowErrors []RowError

	for i, row := range grid.Rows {
		rowNo := i + 2 // header is row 1

		gstin := strings.ToUpper(strings.TrimSpace(row[FieldGstin]))
		if len(gstin) != gstinLength {
			rowErrors = append(rowErrors, RowError{Row: rowNo, Reason: fmt.Sprintf("gstin %q must be %d characters", gstin, gstinLength)})
			continue
		}

		invoiceNumber := strings.TrimSpace(row[FieldInvoiceNumber])
		if invoiceNumber == "" {
			rowErrors = append(rowErrors, RowError{Row: rowNo, Reason: "invoice number is empty"})
			continue
		}

		invoiceAmount, err := parseAmount(row[FieldInvoiceAmount])
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNo, Reason: fmt.Sprintf("unparsable invoice amount %q", row[FieldInvoiceAmount])})
			continue
		}
		if !invoiceAmount.IsPositive() {
			rowErrors = append(rowErrors, RowError{Row: rowNo, Reason: fmt.Sprintf("invoice amount must be greater than zero, got %s", invoiceAmount)})
			continue
		}

		invoiceDate, err := ParseInvoiceDate(row[FieldInvoiceDate])
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNo, Reason: err.Error()})
			continue
		}

		cgst := parseTax(row[FieldCgst])
		sgst := parseTax(row[FieldSgst])
		igst := parseTax(row[FieldIgst])

		var vendorName *string
		if trimmed := strings.TrimSpace(row[FieldVendorName]); trimmed != "" {
			vendorName = &trimmed
		}

		records = append(records, &models.GSTRecord{
			Gstin:         gstin,
			InvoiceNumber: invoiceNumber,
			InvoiceDate:   invoiceDate,
			InvoiceAmount: invoiceAmount,
			Cgst:          cgst,
			Sgst:          sgst,
			Igst:          igst,
			TotalTax:      cgst.Add(sgst).Add(igst),
			VendorName:    vendorName,
			RecordType:    recordType,
		})
	}

	if len(records) == 0 {
		return nil, rowErrors, &EmptyBatchError{RowErrors: rowErrors}
	}
	return records, rowErrors, nil
}
