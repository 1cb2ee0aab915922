// Package quotelog appends audit rows to the CSV log of pushed quotes.
package quotelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var header = []string{
	"timestamp", "reference", "customer_name", "items_count",
	"subtotal", "currency", "status", "pdf_path", "qbo_estimate_id", "error",
}

// Row is one audit entry.
type Row struct {
	Timestamp    time.Time
	Reference    string
	CustomerName string
	ItemsCount   int
	Subtotal     float64
	Currency     string
	Status       string
	PDFPath      string
	EstimateID   string
	Error        string
}

const maxErrorLen = 200

// Append writes the row to the CSV file at path, creating the file (and its
// header) on first use. A file left without a trailing newline by an outside
// edit is repaired so the new row never glues onto the previous one.
func Append(path string, row Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	newFile, err := isNewOrEmpty(path)
	if err != nil {
		return err
	}
	if !newFile {
		if err := ensureTrailingNewline(path); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}

	errMsg := row.Error
	if len(errMsg) > maxErrorLen {
		errMsg = errMsg[:maxErrorLen]
	}
	record := []string{
		row.Timestamp.UTC().Truncate(time.Second).Format(time.RFC3339),
		row.Reference,
		row.CustomerName,
		strconv.Itoa(row.ItemsCount),
		strconv.FormatFloat(row.Subtotal, 'f', 2, 64),
		row.Currency,
		row.Status,
		row.PDFPath,
		row.EstimateID,
		errMsg,
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("failed to write log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}
	return nil
}

func isNewOrEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("failed to stat log file: %w", err)
	}
	return info.Size() == 0, nil
}

func ensureTrailingNewline(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(-1, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek log file: %w", err)
	}
	last := make([]byte, 1)
	if _, err := f.Read(last); err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	if last[0] != '\n' && last[0] != '\r' {
		if _, err := f.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to repair log file: %w", err)
		}
	}
	return nil
}
