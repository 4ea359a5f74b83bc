// Package feed turns external data (CSV feeds and verification reports) into
// candidate records. Everything it reads is treated as untrusted.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Columns is the CSV layout written by Write and understood by Parse.
var Columns = []string{
	"id",
	"name",
	"description",
	"version",
	"effectiveDate",
	"expiryDate",
	"cost",
	"category",
	"revisionSummary",
	"sourceUrl",
	"lastVerified",
	"verifiedBy",
	"stressType",
}

// Row is one data row keyed by trimmed header name. Columns missing from the
// row are absent from the map.
type Row map[string]string

// ParseRows splits CSV text into lines and each line into fields keyed by the
// header. A double quote toggles quoted mode, so quoted fields may hold commas;
// inside quotes a doubled quote is one literal quote. Rows with more or fewer
// fields than the header are kept, extra fields dropped. A line that ends
// inside quotes is logged and skipped without affecting its neighbours.
func ParseRows(text string) []Row {
	var header []string
	var rows []Row
	for i, line := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitLine(line)
		if err != nil {
			log.Printf("feed: skipping malformed row at line %d: %v", i+1, err)
			continue
		}
		if header == nil {
			header = make([]string, len(fields))
			for j, name := range fields {
				header[j] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
			}
			continue
		}
		row := make(Row, len(header))
		for j, value := range fields {
			if j >= len(header) {
				break
			}
			row[header[j]] = strings.TrimSpace(value)
		}
		rows = append(rows, row)
	}
	return rows
}

var (
	lineBreak = regexp.MustCompile(`\r?\n`)

	errUnterminatedQuote = errors.New("unterminated quoted field")
)

func splitLine(line string) ([]string, error) {
	var fields []string
	var field strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			field.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	if inQuotes {
		return nil, errUnterminatedQuote
	}
	return append(fields, field.String()), nil
}

// Parse maps CSV text to candidate records. Rows without an id or name are
// dropped and later rows whose normalized name was already seen are ignored.
func Parse(text string) []standard.Standard {
	seen := make(map[string]struct{})
	var out []standard.Standard
	for _, row := range ParseRows(text) {
		item := row.Standard()
		if item.ID == "" {
			continue
		}
		key := standard.NormalizeName(item.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Standard converts a row to a record; header matching ignores case.
func (r Row) Standard() standard.Standard {
	get := func(column string) string {
		if value, ok := r[column]; ok {
			return value
		}
		for key, value := range r {
			if strings.EqualFold(key, column) {
				return value
			}
		}
		return ""
	}
	return standard.Standard{
		ID:              get("id"),
		Name:            get("name"),
		Description:     get("description"),
		Version:         get("version"),
		Category:        get("category"),
		StressType:      get("stressType"),
		Cost:            get("cost"),
		EffectiveDate:   get("effectiveDate"),
		ExpiryDate:      standard.ParseExpiry(get("expiryDate")),
		RevisionSummary: get("revisionSummary"),
		SourceURL:       get("sourceUrl"),
		LastVerified:    get("lastVerified"),
		VerifiedBy:      get("verifiedBy"),
	}
}

// Write serializes records as CSV with the Columns header. Line breaks inside
// a value become spaces so every record stays on one line for ParseRows.
func Write(w io.Writer, items []standard.Standard) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range items {
		record := []string{
			item.ID,
			item.Name,
			item.Description,
			item.Version,
			item.EffectiveDate,
			item.ExpiryDate.String(),
			item.Cost,
			item.Category,
			item.RevisionSummary,
			item.SourceURL,
			item.LastVerified,
			item.VerifiedBy,
			item.StressType,
		}
		for i, value := range record {
			record[i] = flattenLines.Replace(value)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", item.ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

var flattenLines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
