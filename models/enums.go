package models

import "fmt"

// RecordType identifies which side of the reconciliation a record belongs to.
type RecordType string

const (
	RecordTypeBooks     RecordType = "BOOKS"
	RecordTypeStatement RecordType = "STATEMENT"
)

func ParseRecordType(s string) (RecordType, error) {
	switch s {
	case "BOOKS":
		return RecordTypeBooks, nil
	case "STATEMENT":
		return RecordTypeStatement, nil
	default:
		return "", fmt.Errorf("record type must be 'BOOKS' or 'STATEMENT', got %q", s)
	}
}

// MatchStatus is the reconciliation outcome for one (gstin, invoiceNumber) key.
type MatchStatus string

const (
	MatchStatusMatched            MatchStatus = "MATCHED"
	MatchStatusAmountMismatch     MatchStatus = "AMOUNT_MISMATCH"
	MatchStatusTaxMismatch        MatchStatus = "TAX_MISMATCH"
	MatchStatusUnmatchedBooks     MatchStatus = "UNMATCHED_BOOKS"
	MatchStatusUnmatchedStatement MatchStatus = "UNMATCHED_STATEMENT"
)

// AllMatchStatuses lists every reconciliation status.
var AllMatchStatuses = []MatchStatus{
	MatchStatusMatched,
	MatchStatusAmountMismatch,
	MatchStatusTaxMismatch,
	MatchStatusUnmatchedBooks,
	MatchStatusUnmatchedStatement,
}

func ParseMatchStatus(s string) (MatchStatus, error) {
	for _, status := range AllMatchStatuses {
		if s == string(status) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid match status %q", s)
}
