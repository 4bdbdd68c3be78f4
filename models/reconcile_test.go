package models_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/gstrecon_backend/models"
	"github.com/shopspring/decimal"
)

var nextTestRecordId int

func testRecord(recordType models.RecordType, gstin, invoiceNumber string, amount, cgst, sgst, igst float64) *models.GSTRecord {
	nextTestRecordId++
	cgstDec := decimal.NewFromFloat(cgst)
	sgstDec := decimal.NewFromFloat(sgst)
	igstDec := decimal.NewFromFloat(igst)
	return &models.GSTRecord{
		ID:            nextTestRecordId,
		Gstin:         gstin,
		InvoiceNumber: invoiceNumber,
		InvoiceDate:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		InvoiceAmount: decimal.NewFromFloat(amount),
		Cgst:          cgstDec,
		Sgst:          sgstDec,
		Igst:          igstDec,
		TotalTax:      cgstDec.Add(sgstDec).Add(igstDec),
		RecordType:    recordType,
	}
}

func TestReconcileMatchedRecords(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV001", 10000, 900, 900, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV001", 10000, 900, 900, 0),
	}

	matches := models.Reconcile(books, statement)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Status != models.MatchStatusMatched {
		t.Errorf("status = %s, want MATCHED", m.Status)
	}
	if m.BooksRecordId == nil || m.StatementRecordId == nil {
		t.Error("matched record must reference both sides")
	}
	for name, diff := range map[string]decimal.Decimal{
		"amount":    m.InvoiceAmountDiff,
		"cgst":      m.CgstDiff,
		"sgst":      m.SgstDiff,
		"igst":      m.IgstDiff,
		"total tax": m.TotalTaxDiff,
	} {
		if !diff.IsZero() {
			t.Errorf("%s diff = %s, want 0.00", name, diff)
		}
	}
}

func TestReconcileAmountMismatch(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV002", 15000, 900, 900, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV002", 14500, 900, 900, 0),
	}

	matches := models.Reconcile(books, statement)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Status != models.MatchStatusAmountMismatch {
		t.Errorf("status = %s, want AMOUNT_MISMATCH", matches[0].Status)
	}
	if want := decimal.NewFromInt(500); !matches[0].InvoiceAmountDiff.Equal(want) {
		t.Errorf("amount diff = %s, want 500.00", matches[0].InvoiceAmountDiff)
	}
}

func TestReconcileTaxMismatch(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV003", 10000, 900, 900, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV003", 10000, 850, 850, 0),
	}

	matches := models.Reconcile(books, statement)
	if matches[0].Status != models.MatchStatusTaxMismatch {
		t.Errorf("status = %s, want TAX_MISMATCH", matches[0].Status)
	}
	if want := decimal.NewFromInt(100); !matches[0].TotalTaxDiff.Equal(want) {
		t.Errorf("total tax diff = %s, want 100.00", matches[0].TotalTaxDiff)
	}
}

func TestReconcileAmountMismatchDominatesTaxMismatch(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV004", 15000, 900, 900, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV004", 14000, 500, 500, 0),
	}

	matches := models.Reconcile(books, statement)
	if matches[0].Status != models.MatchStatusAmountMismatch {
		t.Errorf("status = %s, want AMOUNT_MISMATCH to dominate", matches[0].Status)
	}
}

func TestReconcileToleranceBoundary(t *testing.T) {
	// A diff of exactly 0.01 is still agreement; 0.011 is not.
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV005", 100.01, 0, 0, 0),
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV006", 100.011, 0, 0, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV005", 100.00, 0, 0, 0),
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV006", 100.00, 0, 0, 0),
	}

	matches := models.Reconcile(books, statement)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Status != models.MatchStatusMatched {
		t.Errorf("0.01 diff: status = %s, want MATCHED", matches[0].Status)
	}
	if matches[1].Status != models.MatchStatusAmountMismatch {
		t.Errorf("0.011 diff: status = %s, want AMOUNT_MISMATCH", matches[1].Status)
	}
}

func TestReconcileUnmatchedBooks(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZA", "INV004", 2000, 100, 100, 0),
	}

	matches := models.Reconcile(books, nil)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Status != models.MatchStatusUnmatchedBooks {
		t.Errorf("status = %s, want UNMATCHED_BOOKS", m.Status)
	}
	if m.StatementRecordId != nil {
		t.Error("UNMATCHED_BOOKS must not reference a statement record")
	}
	if m.BooksRecordId == nil {
		t.Error("UNMATCHED_BOOKS must reference the books record")
	}
	if !m.InvoiceAmountDiff.IsZero() || !m.TotalTaxDiff.IsZero() {
		t.Error("unmatched diffs must all be zero")
	}
}

func TestReconcileUnmatchedStatement(t *testing.T) {
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZB", "INV010", 3000, 150, 150, 0),
	}

	matches := models.Reconcile(nil, statement)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Status != models.MatchStatusUnmatchedStatement {
		t.Errorf("status = %s, want UNMATCHED_STATEMENT", m.Status)
	}
	if m.BooksRecordId != nil {
		t.Error("UNMATCHED_STATEMENT must not reference a books record")
	}
	if m.StatementRecordId == nil {
		t.Error("UNMATCHED_STATEMENT must reference the statement record")
	}
}

func TestReconcileEveryKeyExactlyOnce(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV001", 100, 0, 0, 0),
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV002", 200, 0, 0, 0),
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV003", 300, 0, 0, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV002", 200, 0, 0, 0),
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV004", 400, 0, 0, 0),
	}

	matches := models.Reconcile(books, statement)
	if len(matches) != 4 {
		t.Fatalf("expected 4 matches for 4 distinct keys, got %d", len(matches))
	}
	seen := make(map[string]int)
	for _, m := range matches {
		seen[models.MatchKey(m.Gstin, m.InvoiceNumber)]++
	}
	for key, count := range seen {
		if count != 1 {
			t.Errorf("key %s appears %d times, want exactly once", key, count)
		}
	}
}

func TestReconcileKeyIsCaseNormalized(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "inv001", 100, 0, 0, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27aabcu9603r1zx", "INV001", 100, 0, 0, 0),
	}

	matches := models.Reconcile(books, statement)
	if len(matches) != 1 {
		t.Fatalf("expected case-insensitive keys to join, got %d matches", len(matches))
	}
	if matches[0].Status != models.MatchStatusMatched {
		t.Errorf("status = %s, want MATCHED", matches[0].Status)
	}
}

func TestReconcileDuplicateKeyLastWriteWins(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV001", 9999, 0, 0, 0),
		// Correction line later in the file supersedes the first.
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV001", 10000, 0, 0, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV001", 10000, 0, 0, 0),
	}

	matches := models.Reconcile(books, statement)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Status != models.MatchStatusMatched {
		t.Errorf("status = %s, want MATCHED using the later books record", matches[0].Status)
	}
	if matches[0].BooksRecordId == nil || *matches[0].BooksRecordId != books[1].ID {
		t.Errorf("books ref = %v, want the later record %d", matches[0].BooksRecordId, books[1].ID)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV001", 10000, 900, 900, 0),
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV002", 15000, 900, 900, 0),
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZA", "INV004", 2000, 100, 100, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV001", 10000, 900, 900, 0),
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV002", 14500, 900, 900, 0),
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZB", "INV010", 3000, 150, 150, 0),
	}

	first := models.Reconcile(books, statement)
	second := models.Reconcile(books, statement)
	if len(first) != len(second) {
		t.Fatalf("run sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Gstin != b.Gstin || a.InvoiceNumber != b.InvoiceNumber || a.Status != b.Status {
			t.Errorf("match %d differs between runs: %+v vs %+v", i, a, b)
		}
		if !a.InvoiceAmountDiff.Equal(b.InvoiceAmountDiff) || !a.TotalTaxDiff.Equal(b.TotalTaxDiff) {
			t.Errorf("match %d diffs differ between runs", i)
		}
	}
}

func TestSummarize(t *testing.T) {
	books := []*models.GSTRecord{
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV001", 10000, 900, 900, 0),
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV002", 15000, 900, 900, 0),
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZX", "INV003", 10000, 900, 900, 0),
		testRecord(models.RecordTypeBooks, "27AABCU9603R1ZA", "INV004", 2000, 100, 100, 0),
	}
	statement := []*models.GSTRecord{
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV001", 10000, 900, 900, 0),
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV002", 14500, 900, 900, 0),
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZX", "INV003", 10000, 850, 850, 0),
		testRecord(models.RecordTypeStatement, "27AABCU9603R1ZB", "INV010", 3000, 150, 150, 0),
	}

	matches := models.Reconcile(books, statement)
	summary := models.Summarize(matches, int64(len(books)), int64(len(statement)))

	if summary.TotalBooksRecords != 4 || summary.TotalStatementRecords != 4 {
		t.Errorf("record counts = %d/%d, want 4/4", summary.TotalBooksRecords, summary.TotalStatementRecords)
	}
	if summary.MatchedRecords != 1 {
		t.Errorf("matched = %d, want 1", summary.MatchedRecords)
	}
	if summary.AmountMismatches != 1 {
		t.Errorf("amount mismatches = %d, want 1", summary.AmountMismatches)
	}
	if summary.TaxMismatches != 1 {
		t.Errorf("tax mismatches = %d, want 1", summary.TaxMismatches)
	}
	if summary.UnmatchedBooksRecords != 1 || summary.UnmatchedStatementRecords != 1 {
		t.Errorf("unmatched = %d/%d, want 1/1", summary.UnmatchedBooksRecords, summary.UnmatchedStatementRecords)
	}
	if want := decimal.NewFromInt(500); !summary.TotalAmountDifference.Equal(want) {
		t.Errorf("total amount difference = %s, want 500", summary.TotalAmountDifference)
	}
	if want := decimal.NewFromInt(100); !summary.TotalTaxDifference.Equal(want) {
		t.Errorf("total tax difference = %s, want 100", summary.TotalTaxDifference)
	}
}

func TestSummarizeEmptyMatchSet(t *testing.T) {
	summary := models.Summarize(nil, 0, 0)
	if summary.MatchedRecords != 0 || summary.AmountMismatches != 0 || summary.TaxMismatches != 0 ||
		summary.UnmatchedBooksRecords != 0 || summary.UnmatchedStatementRecords != 0 {
		t.Errorf("empty match set must yield all-zero counts: %+v", summary)
	}
	if !summary.TotalAmountDifference.IsZero() || !summary.TotalTaxDifference.IsZero() {
		t.Errorf("empty match set must yield zero sums: %+v", summary)
	}
}
