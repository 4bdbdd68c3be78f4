// Package ingest turns spreadsheet-style tabular uploads into canonical GST
// records: header alias resolution first, then tolerant per-row validation.
// How a grid is produced (xlsx, csv, ...) is the caller's concern.
package ingest

import (
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/gstrecon_backend/models"
)

// Row is one line of named cells, keyed by column name.
type Row map[string]string

// Grid is an ordered tabular upload. Rows keep the order of the source file.
type Grid struct {
	Columns []string
	Rows    []Row
}

// Canonical field names. These form the contract any upstream format adapter
// must honor.
const (
	FieldGstin         = "gstin"
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldInvoiceAmount = "invoice_amount"
	FieldCgst          = "cgst"
	FieldSgst          = "sgst"
	FieldIgst          = "igst"
	FieldVendorName    = "vendor_name"
)

// fieldAliases maps each canonical field to the header spellings seen in the
// wild. This is data, not code: extend the lists here, the resolution logic
// never changes. Aliases are compared after normalizeHeader.
var fieldAliases = map[string][]string{
	FieldGstin:         {"gstin", "gst_number", "gst_no", "vendor_gstin"},
	FieldInvoiceNumber: {"invoice_number", "invoice_no", "inv_no", "bill_no", "invoice number"},
	FieldInvoiceDate:   {"invoice_date", "inv_date", "bill_date", "date", "invoice date"},
	FieldInvoiceAmount: {"invoice_amount", "inv_amount", "bill_amount", "amount", "total_amount", "invoice amount"},
	FieldCgst:          {"cgst", "cgst_amount"},
	FieldSgst:          {"sgst", "sgst_amount"},
	FieldIgst:          {"igst", "igst_amount"},
	FieldVendorName:    {"vendor_name", "supplier_name", "party_name", "vendor", "vendor name"},
}

// canonicalFields fixes the column order of normalized grids.
var canonicalFields = []string{
	FieldGstin, FieldInvoiceNumber, FieldInvoiceDate, FieldInvoiceAmount,
	FieldCgst, FieldSgst, FieldIgst, FieldVendorName,
}

var requiredFields = []string{
	FieldGstin, FieldInvoiceNumber, FieldInvoiceDate, FieldInvoiceAmount,
}

// SchemaError reports which required canonical fields could not be resolved
// from the upload's headers, alongside every header that was actually present
// so the user can fix the file.
type SchemaError struct {
	Missing   []string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s. Available columns: %s",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// normalizeHeader folds case, surrounding space and space/underscore
// differences so "Invoice No", "invoice_no" and " INVOICE NO " all compare
// equal.
func normalizeHeader(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Normalize renames the grid's columns to the canonical field set using the
// alias table. For each canonical field the first actual column matching any
// alias wins; unmapped source columns are dropped, which is not an error.
// Returns a *SchemaError when any required field cannot be resolved.
//
// recordType is accepted for parity with Validate; today BOOKS and STATEMENT
// uploads share one alias table.
func Normalize(grid *Grid, recordType models.RecordType) (*Grid, error) {
	actualByNormalized := make(map[string]string, len(grid.Columns))
	for _, col := range grid.Columns {
		normalized := normalizeHeader(col)
		if _, ok := actualByNormalized[normalized]; !ok {
			actualByNormalized[normalized] = col
		}
	}

	// canonical field -> actual source column
	resolved := make(map[string]string, len(canonicalFields))
	for _, field := range canonicalFields {
		for _, alias := range fieldAliases[field] {
			if actual, ok := actualByNormalized[normalizeHeader(alias)]; ok {
				resolved[field] = actual
				break
			}
		}
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := resolved[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Available: grid.Columns}
	}

	normalized := &Grid{Rows: make([]Row, 0, len(grid.Rows))}
	for _, field := range canonicalFields {
		if _, ok := resolved[field]; ok {
			normalized.Columns = append(normalized.Columns, field)
		}
	}
	for _, row := range grid.Rows {
		out := make(Row, len(resolved))
		for field, actual := range resolved {
			if value, ok := row[actual]; ok {
				out[field] = value
			}
		}
		normalized.Rows = append(normalized.Rows, out)
	}
	return normalized, nil
}
