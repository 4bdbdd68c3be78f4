package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned when a reconciliation is requested while both record
// sets are empty. It distinguishes "nothing to reconcile" from an operation
// failure.
var ErrNoData = errors.New("no records uploaded; upload BOOKS and STATEMENT data before reconciling")

// ReconciliationMatch is the outcome for one composite key.
// Invariants: UNMATCHED_BOOKS has no statement ref, UNMATCHED_STATEMENT has no
// books ref, every other status carries both refs. The whole match set is
// deleted and regenerated on every run; id order is generation order.
type ReconciliationMatch struct {
	ID                int             `gorm:"primary_key" json:"id"`
	Gstin             string          `gorm:"size:15;index;not null" json:"gstin"`
	InvoiceNumber     string          `gorm:"size:255;not null" json:"invoice_number"`
	BooksRecordId     *int            `gorm:"index" json:"books_record_id"`
	StatementRecordId *int            `gorm:"index" json:"statement_record_id"`
	Status            MatchStatus     `gorm:"type:enum('MATCHED','AMOUNT_MISMATCH','TAX_MISMATCH','UNMATCHED_BOOKS','UNMATCHED_STATEMENT');index;not null" json:"status"`
	InvoiceAmountDiff decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"invoice_amount_diff"`
	CgstDiff          decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"cgst_diff"`
	SgstDiff          decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"sgst_diff"`
	IgstDiff          decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"igst_diff"`
	TotalTaxDiff      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_tax_diff"`
	ReconciledAt      time.Time       `gorm:"autoCreateTime" json:"reconciled_at"`
}
