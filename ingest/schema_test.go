package ingest_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/gstrecon_backend/ingest"
	"bitbucket.org/mmdatafocus/gstrecon_backend/models"
)

func TestNormalizeResolvesAliasHeaders(t *testing.T) {
	grid := &ingest.Grid{
		Columns: []string{"GST Number", "Invoice No", "Invoice Date", "Amount", "Vendor Name"},
		Rows: []ingest.Row{
			{
				"GST Number":   "27AABCU9603R1ZX",
				"Invoice No":   "INV001",
				"Invoice Date": "2024-04-01",
				"Amount":       "10000",
				"Vendor Name":  "Acme Traders",
			},
		},
	}

	normalized, err := ingest.Normalize(grid, models.RecordTypeBooks)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := map[string]string{
		ingest.FieldGstin:         "27AABCU9603R1ZX",
		ingest.FieldInvoiceNumber: "INV001",
		ingest.FieldInvoiceDate:   "2024-04-01",
		ingest.FieldInvoiceAmount: "10000",
		ingest.FieldVendorName:    "Acme Traders",
	}
	if len(normalized.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(normalized.Rows))
	}
	for field, value := range want {
		if got := normalized.Rows[0][field]; got != value {
			t.Errorf("field %s: got %q, want %q", field, got, value)
		}
	}
}

func TestNormalizeMissingRequiredColumns(t *testing.T) {
	grid := &ingest.Grid{
		Columns: []string{"GSTIN", "Invoice No", "Invoice Date", "Remarks"},
		Rows:    []ingest.Row{},
	}

	_, err := ingest.Normalize(grid, models.RecordTypeStatement)
	if err == nil {
		t.Fatal("expected SchemaError, got nil")
	}
	var schemaErr *ingest.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != ingest.FieldInvoiceAmount {
		t.Errorf("missing = %v, want [%s]", schemaErr.Missing, ingest.FieldInvoiceAmount)
	}
	if len(schemaErr.Available) != 4 {
		t.Errorf("available = %v, want the 4 source columns", schemaErr.Available)
	}
}

func TestNormalizeDropsUnmappedColumns(t *testing.T) {
	grid := &ingest.Grid{
		Columns: []string{"gstin", "invoice_no", "bill_date", "bill_amount", "Remarks"},
		Rows: []ingest.Row{
			{
				"gstin":       "27AABCU9603R1ZX",
				"invoice_no":  "INV002",
				"bill_date":   "2024-04-02",
				"bill_amount": "5000",
				"Remarks":     "should disappear",
			},
		},
	}

	normalized, err := ingest.Normalize(grid, models.RecordTypeBooks)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, col := range normalized.Columns {
		if col == "Remarks" {
			t.Error("unmapped column survived normalization")
		}
	}
	if _, ok := normalized.Rows[0]["Remarks"]; ok {
		t.Error("unmapped cell survived normalization")
	}
	if got := normalized.Rows[0][ingest.FieldInvoiceAmount]; got != "5000" {
		t.Errorf("invoice_amount = %q, want %q", got, "5000")
	}
}

func TestNormalizeHeaderFolding(t *testing.T) {
	// Case, surrounding space and space-vs-underscore must not matter.
	grid := &ingest.Grid{
		Columns: []string{"  GSTIN  ", "INVOICE NUMBER", "invoice date", "Invoice_Amount"},
		Rows:    []ingest.Row{},
	}
	if _, err := ingest.Normalize(grid, models.RecordTypeBooks); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
}
