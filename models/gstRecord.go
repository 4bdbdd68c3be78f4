package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GSTRecord is one ingested invoice line, either from the taxpayer's own
// ledger (BOOKS) or from the authority's purchase statement (STATEMENT).
// Records are created in batches by ingestion and never mutated afterwards;
// an upload of a record type fully replaces all prior records of that type.
type GSTRecord struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Gstin         string          `gorm:"size:15;index:idx_gst_records_key;not null" json:"gstin"`
	InvoiceNumber string          `gorm:"size:255;index:idx_gst_records_key;not null" json:"invoice_number"`
	InvoiceDate   time.Time       `gorm:"not null" json:"invoice_date"`
	InvoiceAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"invoice_amount"`
	Cgst          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cgst"`
	Sgst          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sgst"`
	Igst          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"igst"`
	TotalTax      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_tax"`
	VendorName    *string         `gorm:"size:255" json:"vendor_name"`
	RecordType    RecordType      `gorm:"type:enum('BOOKS','STATEMENT');index;not null" json:"record_type"`
	UploadedAt    time.Time       `gorm:"autoCreateTime" json:"uploaded_at"`
}

// NewGSTRecord is the payload for creating a single record manually.
// InvoiceDate is a date string so the same tolerant parsing applies as for
// uploads; TotalTax is derived server-side, never taken from the client.
type NewGSTRecord struct {
	Gstin         string          `json:"gstin" binding:"required,gstin"`
	InvoiceNumber string          `json:"invoice_number" binding:"required"`
	InvoiceDate   string          `json:"invoice_date" binding:"required"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount" binding:"required"`
	Cgst          decimal.Decimal `json:"cgst"`
	Sgst          decimal.Decimal `json:"sgst"`
	Igst          decimal.Decimal `json:"igst"`
	VendorName    *string         `json:"vendor_name"`
}

// Record builds the persistable record from the payload and the parsed date.
func (n *NewGSTRecord) Record(recordType RecordType, invoiceDate time.Time) *GSTRecord {
	return &GSTRecord{
		Gstin:         n.Gstin,
		InvoiceNumber: n.InvoiceNumber,
		InvoiceDate:   invoiceDate,
		InvoiceAmount: n.InvoiceAmount,
		Cgst:          n.Cgst,
		Sgst:          n.Sgst,
		Igst:          n.Igst,
		TotalTax:      n.Cgst.Add(n.Sgst).Add(n.Igst),
		VendorName:    n.VendorName,
		RecordType:    recordType,
	}
}
