package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/gstrecon_backend/config"
	"bitbucket.org/mmdatafocus/gstrecon_backend/ingest"
	"bitbucket.org/mmdatafocus/gstrecon_backend/models"
	"bitbucket.org/mmdatafocus/gstrecon_backend/models/reports"
	"github.com/gin-gonic/gin"
)

// recordTypeAll widens the records endpoints to both sides at once.
const recordTypeAll = "ALL"

// createRecordHandler creates a single record manually, outside the upload
// flow. Unlike uploads this appends; it does not replace the record set.
func createRecordHandler(store func() models.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		recordType, err := models.ParseRecordType(c.Param("recordType"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var payload models.NewGSTRecord
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !payload.InvoiceAmount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invoice_amount must be greater than zero"})
			return
		}
		invoiceDate, err := ingest.ParseInvoiceDate(payload.InvoiceDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		payload.Gstin = strings.ToUpper(strings.TrimSpace(payload.Gstin))
		payload.InvoiceNumber = strings.TrimSpace(payload.InvoiceNumber)

		record := payload.Record(recordType, invoiceDate)
		if err := store().CreateRecord(c.Request.Context(), record); err != nil {
			config.LogError(logger, "handlers.go", "createRecordHandler", "CreateRecord", recordType, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving record"})
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func getRecordsHandler(store func() models.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		typeParam := c.Param("recordType")
		var records []*models.GSTRecord
		var err error
		if typeParam == recordTypeAll {
			records, err = store().FetchAllRecords(c.Request.Context())
		} else {
			var recordType models.RecordType
			recordType, err = models.ParseRecordType(typeParam)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "record type must be 'BOOKS', 'STATEMENT', or 'ALL'"})
				return
			}
			records, err = store().FetchAllOfType(c.Request.Context(), recordType)
		}
		if err != nil {
			config.LogError(logger, "handlers.go", "getRecordsHandler", "FetchRecords", typeParam, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching records"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// clearRecordsHandler deletes all records of a type; ALL also clears the match
// set, since matches reference records by id.
func clearRecordsHandler(store func() models.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		typeParam := c.Param("recordType")
		var deleted int64
		var err error
		if typeParam == recordTypeAll {
			deleted, err = store().DeleteAllRecords(ctx)
			if err == nil {
				_, err = store().DeleteAllMatches(ctx)
			}
		} else {
			var recordType models.RecordType
			recordType, err = models.ParseRecordType(typeParam)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "record type must be 'BOOKS', 'STATEMENT', or 'ALL'"})
				return
			}
			deleted, err = store().DeleteAllOfType(ctx, recordType)
		}
		if err != nil {
			config.LogError(logger, "handlers.go", "clearRecordsHandler", "DeleteRecords", typeParam, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error deleting records"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Deleted %d records", deleted)})
	}
}

// reconcileHandler recomputes the full match set from the currently stored
// records and atomically replaces the previous run's output.
func reconcileHandler(store func() models.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		s := store()

		books, err := s.FetchAllOfType(ctx, models.RecordTypeBooks)
		if err != nil {
			config.LogError(logger, "handlers.go", "reconcileHandler", "FetchAllOfType BOOKS", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error during reconciliation"})
			return
		}
		statement, err := s.FetchAllOfType(ctx, models.RecordTypeStatement)
		if err != nil {
			config.LogError(logger, "handlers.go", "reconcileHandler", "FetchAllOfType STATEMENT", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error during reconciliation"})
			return
		}
		if len(books) == 0 && len(statement) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrNoData.Error()})
			return
		}

		matches := models.Reconcile(books, statement)
		if err := s.ReplaceAllMatches(ctx, matches); err != nil {
			config.LogError(logger, "handlers.go", "reconcileHandler", "ReplaceAllMatches", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error during reconciliation"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":           "Reconciliation completed successfully",
			"matches_processed": len(matches),
		})
	}
}

func summaryHandler(store func() models.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		s := store()

		matches, err := s.FetchAllMatches(ctx, nil)
		if err != nil {
			config.LogError(logger, "handlers.go", "summaryHandler", "FetchAllMatches", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching summary"})
			return
		}
		booksCount, err := s.CountOfType(ctx, models.RecordTypeBooks)
		if err != nil {
			config.LogError(logger, "handlers.go", "summaryHandler", "CountOfType BOOKS", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching summary"})
			return
		}
		statementCount, err := s.CountOfType(ctx, models.RecordTypeStatement)
		if err != nil {
			config.LogError(logger, "handlers.go", "summaryHandler", "CountOfType STATEMENT", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching summary"})
			return
		}

		c.JSON(http.StatusOK, models.Summarize(matches, booksCount, statementCount))
	}
}

func matchesHandler(store func() models.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		s := store()

		var statusFilter *models.MatchStatus
		if statusParam := c.Query("status"); statusParam != "" {
			status, err := models.ParseMatchStatus(statusParam)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			statusFilter = &status
		}

		matches, err := s.FetchAllMatches(ctx, statusFilter)
		if err != nil {
			config.LogError(logger, "handlers.go", "matchesHandler", "FetchAllMatches", statusFilter, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching matches"})
			return
		}

		total := int64(len(matches))
		if statusFilter != nil {
			total, err = s.CountByStatus(ctx, *statusFilter)
			if err != nil {
				config.LogError(logger, "handlers.go", "matchesHandler", "CountByStatus", *statusFilter, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching matches"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"matches": matches, "total": total})
	}
}

// exportHandler streams the full reconciliation report as an xlsx workbook.
func exportHandler(store func() models.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		s := store()

		matches, err := s.FetchAllMatches(ctx, nil)
		if err != nil {
			config.LogError(logger, "handlers.go", "exportHandler", "FetchAllMatches", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error exporting data"})
			return
		}
		if len(matches) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no reconciliation results found"})
			return
		}

		var recordIds []int
		for _, m := range matches {
			if m.BooksRecordId != nil {
				recordIds = append(recordIds, *m.BooksRecordId)
			}
			if m.StatementRecordId != nil {
				recordIds = append(recordIds, *m.StatementRecordId)
			}
		}
		recordsById, err := s.FetchRecordsByIds(ctx, recordIds)
		if err != nil {
			config.LogError(logger, "handlers.go", "exportHandler", "FetchRecordsByIds", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error exporting data"})
			return
		}

		rows := models.BuildExportRows(matches, func(id int) (*models.GSTRecord, bool) {
			r, ok := recordsById[id]
			return r, ok
		})

		filename := fmt.Sprintf("gst_reconciliation_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := reports.WriteReconciliationWorkbook(c.Writer, rows); err != nil {
			// Headers are already out; log instead of sending a JSON error body.
			config.LogError(logger, "handlers.go", "exportHandler", "WriteReconciliationWorkbook", nil, err)
		}
	}
}
