package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"bitbucket.org/mmdatafocus/gstrecon_backend/config"
	"bitbucket.org/mmdatafocus/gstrecon_backend/ingest"
	"bitbucket.org/mmdatafocus/gstrecon_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const maxUploadSizeBytes int64 = 10 * 1024 * 1024

var spreadsheetExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// uploadHandler ingests a BOOKS or STATEMENT spreadsheet: parse the file into
// a grid, resolve headers, validate rows, then replace every stored record of
// that type with the accepted batch.
func uploadHandler(store func() models.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		recordType, err := models.ParseRecordType(c.Param("recordType"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !spreadsheetExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file must be Excel (.xlsx, .xls) or CSV (.csv)"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			config.LogError(logger, "uploads.go", "uploadHandler", "fileHeader.Open", fileHeader.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read uploaded file"})
			return
		}
		defer file.Close()

		grid, err := parseGrid(file, ext)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("error reading file: %v", err)})
			return
		}

		normalized, err := ingest.Normalize(grid, recordType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		records, rowErrors, err := ingest.Validate(normalized, recordType)
		if err != nil {
			var emptyBatch *ingest.EmptyBatchError
			if errors.As(err, &emptyBatch) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":      "no valid records found in file",
					"row_errors": previewRowErrors(emptyBatch.RowErrors),
				})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := store().ReplaceAllOfType(c.Request.Context(), recordType, records); err != nil {
			config.LogError(logger, "uploads.go", "uploadHandler", "ReplaceAllOfType", recordType, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving records"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    fmt.Sprintf("Successfully uploaded %d %s records", len(records), recordType),
			"count":      len(records),
			"row_errors": previewRowErrors(rowErrors),
		})
	}
}

// parseGrid reads the upload into named-cell rows. The first line is the
// header; short rows are padded with empty cells, long rows truncated.
func parseGrid(file io.Reader, ext string) (*ingest.Grid, error) {
	var rows [][]string
	var err error
	if ext == ".csv" {
		rows, err = readCSVRows(file)
	} else {
		rows, err = readExcelRows(file)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("file has no header row")
	}

	headers := rows[0]
	grid := &ingest.Grid{Columns: headers, Rows: make([]ingest.Row, 0, len(rows)-1)}
	for _, cells := range rows[1:] {
		row := make(ingest.Row, len(headers))
		for i, header := range headers {
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = ""
			}
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid, nil
}

func readExcelRows(file io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSVRows(file io.Reader) ([][]string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	// Strip a UTF-8 BOM; spreadsheet tools routinely emit one.
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func previewRowErrors(rowErrors []ingest.RowError) []ingest.RowError {
	if len(rowErrors) > ingest.ErrorPreviewLimit {
		return rowErrors[:ingest.ErrorPreviewLimit]
	}
	return rowErrors
}
