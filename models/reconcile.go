package models

import (
	"strings"

	"bitbucket.org/mmdatafocus/gstrecon_backend/utils"
	"github.com/shopspring/decimal"
)

// mismatchTolerance absorbs rounding noise between the two sides. A diff of
// exactly 0.01 still counts as agreement; anything beyond it does not.
var mismatchTolerance = decimal.New(1, -2)

// MatchKey builds the case-normalized composite join key.
func MatchKey(gstin string, invoiceNumber string) string {
	return strings.ToUpper(strings.TrimSpace(gstin)) + "|" + strings.ToUpper(strings.TrimSpace(invoiceNumber))
}

// Reconcile joins the two record sets by (gstin, invoiceNumber) and classifies
// every key into exactly one status. It is a pure function: no state survives
// across calls, and identical inputs produce identical matches (timestamps
// aside), which is what makes a rerun on unchanged data idempotent.
//
// Duplicate keys within one side are resolved last-write-wins: the later
// record in slice order supersedes the earlier one for that side. This mirrors
// how most source ledgers export corrected lines (the correction comes last),
// but it is a silent policy; see DESIGN.md if a hard duplicate error is wanted
// instead.
//
// Output order is deterministic: books keys in slice order, then
// statement-only keys in slice order.
func Reconcile(books []*GSTRecord, statement []*GSTRecord) []*ReconciliationMatch {
	booksByKey := make(map[string]*GSTRecord, len(books))
	for _, r := range books {
		booksByKey[MatchKey(r.Gstin, r.InvoiceNumber)] = r
	}
	statementByKey := make(map[string]*GSTRecord, len(statement))
	for _, r := range statement {
		statementByKey[MatchKey(r.Gstin, r.InvoiceNumber)] = r
	}

	matches := make([]*ReconciliationMatch, 0, len(booksByKey)+len(statementByKey))
	seen := make(map[string]bool, len(booksByKey)+len(statementByKey))

	for _, r := range books {
		key := MatchKey(r.Gstin, r.InvoiceNumber)
		if seen[key] {
			continue
		}
		seen[key] = true

		booksRecord := booksByKey[key]
		statementRecord, ok := statementByKey[key]
		if !ok {
			matches = append(matches, unmatchedRecord(booksRecord, MatchStatusUnmatchedBooks))
			continue
		}

		amountDiff := booksRecord.InvoiceAmount.Sub(statementRecord.InvoiceAmount)
		cgstDiff := booksRecord.Cgst.Sub(statementRecord.Cgst)
		sgstDiff := booksRecord.Sgst.Sub(statementRecord.Sgst)
		igstDiff := booksRecord.Igst.Sub(statementRecord.Igst)
		totalTaxDiff := booksRecord.TotalTax.Sub(statementRecord.TotalTax)

		// Classification runs on the unrounded diffs; only the stored diff
		// fields are rounded to 2 places. Amount mismatch dominates tax
		// mismatch.
		status := MatchStatusMatched
		if amountDiff.Abs().GreaterThan(mismatchTolerance) {
			status = MatchStatusAmountMismatch
		} else if totalTaxDiff.Abs().GreaterThan(mismatchTolerance) {
			status = MatchStatusTaxMismatch
		}

		booksId := booksRecord.ID
		statementId := statementRecord.ID
		matches = append(matches, &ReconciliationMatch{
			Gstin:             booksRecord.Gstin,
			InvoiceNumber:     booksRecord.InvoiceNumber,
			BooksRecordId:     &booksId,
			StatementRecordId: &statementId,
			Status:            status,
			InvoiceAmountDiff: amountDiff.Round(2),
			CgstDiff:          cgstDiff.Round(2),
			SgstDiff:          sgstDiff.Round(2),
			IgstDiff:          igstDiff.Round(2),
			TotalTaxDiff:      totalTaxDiff.Round(2),
		})
	}

	for _, r := range statement {
		key := MatchKey(r.Gstin, r.InvoiceNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		matches = append(matches, unmatchedRecord(statementByKey[key], MatchStatusUnmatchedStatement))
	}

	return matches
}

func unmatchedRecord(r *GSTRecord, status MatchStatus) *ReconciliationMatch {
	id := r.ID
	match := &ReconciliationMatch{
		Gstin:             r.Gstin,
		InvoiceNumber:     r.InvoiceNumber,
		Status:            status,
		InvoiceAmountDiff: decimal.Zero,
		CgstDiff:          decimal.Zero,
		SgstDiff:          decimal.Zero,
		IgstDiff:          decimal.Zero,
		TotalTaxDiff:      decimal.Zero,
	}
	if status == MatchStatusUnmatchedBooks {
		match.BooksRecordId = &id
	} else {
		match.StatementRecordId = &id
	}
	return match
}

// ReconciliationSummary aggregates one match set for the dashboard.
type ReconciliationSummary struct {
	TotalBooksRecords         int64           `json:"total_books_records"`
	TotalStatementRecords     int64           `json:"total_statement_records"`
	MatchedRecords            int64           `json:"matched_records"`
	UnmatchedBooksRecords     int64           `json:"unmatched_books_records"`
	UnmatchedStatementRecords int64           `json:"unmatched_statement_records"`
	AmountMismatches          int64           `json:"amount_mismatches"`
	TaxMismatches             int64           `json:"tax_mismatches"`
	TotalAmountDifference     decimal.Decimal `json:"total_amount_difference"`
	TotalTaxDifference        decimal.Decimal `json:"total_tax_difference"`
}

// Summarize computes count and sum statistics over a match set. A read model:
// an empty match set yields an all-zero summary, never an error.
func Summarize(matches []*ReconciliationMatch, booksCount int64, statementCount int64) *ReconciliationSummary {
	summary := &ReconciliationSummary{
		TotalBooksRecords:     booksCount,
		TotalStatementRecords: statementCount,
		TotalAmountDifference: decimal.Zero,
		TotalTaxDifference:    decimal.Zero,
	}
	for _, m := range matches {
		switch m.Status {
		case MatchStatusMatched:
			summary.MatchedRecords++
		case MatchStatusAmountMismatch:
			summary.AmountMismatches++
		case MatchStatusTaxMismatch:
			summary.TaxMismatches++
		case MatchStatusUnmatchedBooks:
			summary.UnmatchedBooksRecords++
		case MatchStatusUnmatchedStatement:
			summary.UnmatchedStatementRecords++
		}
		summary.TotalAmountDifference = summary.TotalAmountDifference.Add(m.InvoiceAmountDiff.Abs())
		summary.TotalTaxDifference = summary.TotalTaxDifference.Add(m.TotalTaxDiff.Abs())
	}
	return summary
}

// ExportRow is one flattened line of the reconciliation report, carrying both
// sides of the key next to the stored diffs. An absent side defaults to zero
// amounts and empty strings.
type ExportRow struct {
	Gstin                string
	InvoiceNumber        string
	Status               MatchStatus
	BooksAmount          decimal.Decimal
	StatementAmount      decimal.Decimal
	AmountDiff           decimal.Decimal
	BooksCgst            decimal.Decimal
	StatementCgst        decimal.Decimal
	CgstDiff             decimal.Decimal
	BooksSgst            decimal.Decimal
	StatementSgst        decimal.Decimal
	SgstDiff             decimal.Decimal
	BooksIgst            decimal.Decimal
	StatementIgst        decimal.Decimal
	IgstDiff             decimal.Decimal
	TotalTaxDiff         decimal.Decimal
	BooksInvoiceDate     string
	StatementInvoiceDate string
	BooksVendorName      string
	StatementVendorName  string
}

// RecordLookup resolves a stored record by id for export flattening.
type RecordLookup func(id int) (*GSTRecord, bool)

// BuildExportRows joins matches back to their source records. Row order
// follows the order of the match slice; no re-sorting is applied.
func BuildExportRows(matches []*ReconciliationMatch, lookup RecordLookup) []*ExportRow {
	rows := make([]*ExportRow, 0, len(matches))
	for _, m := range matches {
		row := &ExportRow{
			Gstin:           m.Gstin,
			InvoiceNumber:   m.InvoiceNumber,
			Status:          m.Status,
			BooksAmount:     decimal.Zero,
			StatementAmount: decimal.Zero,
			BooksCgst:       decimal.Zero,
			StatementCgst:   decimal.Zero,
			BooksSgst:       decimal.Zero,
			StatementSgst:   decimal.Zero,
			BooksIgst:       decimal.Zero,
			StatementIgst:   decimal.Zero,
			AmountDiff:      m.InvoiceAmountDiff,
			CgstDiff:        m.CgstDiff,
			SgstDiff:        m.SgstDiff,
			IgstDiff:        m.IgstDiff,
			TotalTaxDiff:    m.TotalTaxDiff,
		}
		if m.BooksRecordId != nil {
			if r, ok := lookup(*m.BooksRecordId); ok {
				row.BooksAmount = r.InvoiceAmount
				row.BooksCgst = r.Cgst
				row.BooksSgst = r.Sgst
				row.BooksIgst = r.Igst
				row.BooksInvoiceDate = r.InvoiceDate.Format("2006-01-02")
				row.BooksVendorName = utils.DereferencePtr(r.VendorName, "")
			}
		}
		if m.StatementRecordId != nil {
			if r, ok := lookup(*m.StatementRecordId); ok {
				row.StatementAmount = r.InvoiceAmount
				row.StatementCgst = r.Cgst
				row.StatementSgst = r.Sgst
				row.StatementIgst = r.Igst
				row.StatementInvoiceDate = r.InvoiceDate.Format("2006-01-02")
				row.StatementVendorName = utils.DereferencePtr(r.VendorName, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}
