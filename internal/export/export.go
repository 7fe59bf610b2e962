// Package export serializes application lists to CSV and JSON downloads.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"job-tracker/internal/dates"
)

// ErrNothingToExport is returned for an empty input list. No bytes are
// written in that case.
var ErrNothingToExport = errors.New("No data to export")

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type of a format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Row is one flat application record.
type Row struct {
	ID          string
	JobTitle    string
	Company     string
	DateApplied time.Time
	Location    string
	Status      string
	StatusLabel string
	Salary      float64
	JobURL      string
	Notes       string
	UserEmail   string
}

// Options tunes the CSV layout.
type Options struct {
	// IncludeUserEmail adds the owner column used by the all-users export.
	IncludeUserEmail bool
}

var baseHeaders = []string{
	"Job Title",
	"Company",
	"Date Applied",
	"Location",
	"Status",
	"Salary",
	"Job URL",
	"Notes",
}

// CSV writes rows with a header line. Fields containing a comma, quote or
// newline are quoted with embedded quotes doubled.
func CSV(w io.Writer, rows []Row, opts Options) error {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	headers := baseHeaders
	if opts.IncludeUserEmail {
		headers = append([]string{"User Email"}, baseHeaders...)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.JobTitle,
			r.Company,
			dateText(r.DateApplied),
			r.Location,
			r.StatusLabel,
			salaryText(r.Salary),
			r.JobURL,
			r.Notes,
		}
		if opts.IncludeUserEmail {
			record = append([]string{r.UserEmail}, record...)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	ID          string   `json:"id"`
	UserEmail   string   `json:"userEmail,omitempty"`
	JobTitle    string   `json:"jobTitle"`
	Company     string   `json:"company"`
	DateApplied string   `json:"dateApplied"`
	Location    string   `json:"location"`
	Status      string   `json:"status"`
	Salary      *float64 `json:"salary"`
	JobURL      string   `json:"jobUrl"`
	Notes       string   `json:"notes"`
}

// JSON writes rows as an array indented by two spaces.
func JSON(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	out := make([]jsonRow, 0, len(rows))
	for _, r := range rows {
		jr := jsonRow{
			ID:          r.ID,
			UserEmail:   r.UserEmail,
			JobTitle:    r.JobTitle,
			Company:     r.Company,
			DateApplied: dateText(r.DateApplied),
			Location:    r.Location,
			Status:      r.Status,
			JobURL:      r.JobURL,
			Notes:       r.Notes,
		}
		if r.Salary > 0 {
			s := r.Salary
			jr.Salary = &s
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

// Write dispatches on format.
func Write(w io.Writer, format Format, rows []Row, opts Options) error {
	if format == FormatJSON {
		return JSON(w, rows)
	}
	return CSV(w, rows, opts)
}

// Filename names a download, e.g. job-applications-2024-01-15.csv. The
// all-users export uses the "all-job-applications" prefix.
func Filename(prefix string, format Format, now time.Time) string {
	if prefix == "" {
		prefix = "job-applications"
	}
	return fmt.Sprintf("%s-%s.%s", prefix, now.UTC().Format("2006-01-02"), format)
}

// FormatFileSize renders a byte count with binary units: "0 Bytes",
// "1.5 KB", "2 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	const k = 1024.0
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(k)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	v := float64(bytes) / math.Pow(k, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizes[i]
}

func dateText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return dates.FormatShort(t)
}

func salaryText(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
