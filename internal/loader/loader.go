// Package loader streams coerced rows out of a source CSV extract.
//
// The loader never materializes the file: records are decoded, coerced,
// and handed to the batch manager one at a time, in source order, each
// tagged with its 1-based line number for error attribution. Extracts
// run to several hundred thousand rows, so memory stays flat regardless
// of file size.
package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/coerce"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/dataset"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

// Row is one coerced source record ready for insertion.
type Row struct {
	// Line is the 1-based line number of the record in the source file
	// (the header is line 1, the first data row line 2).
	Line int64

	// Values are the coerced values in the table's insert order,
	// including the trailing year when the table declares one.
	Values []any

	// Warnings are the coercion warnings this row produced.
	Warnings []collegedata.CoercionWarning
}

// Reader streams one table's rows out of a source file. Not safe for
// concurrent use; the pipeline is sequential by design.
type Reader struct {
	file    *os.File
	csv     *csv.Reader
	table   *dataset.Table
	year    int
	index   []int            // source column index per table column
	dedupAt int              // source index of the dedup column, -1 when none
	seen    map[string]struct{}
	dropAt  []int // positions in Values whose null drops the row
	read    int64 // data rows consumed, including dropped ones
}

// Open validates the source file's header against the table's required
// columns and returns a Reader positioned at the first data row.
// Source extracts are Windows-1252 encoded; the reader transcodes to
// UTF-8 on the fly.
func Open(path string, table *dataset.Table, year int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}

	decoded := charmap.Windows1252.NewDecoder().Reader(bufio.NewReaderSize(f, 64*1024))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source file %q is empty: %w", path, collegedata.ErrSourceFormat)
		}
		return nil, fmt.Errorf("failed to read header of %q: %v: %w", path, err, collegedata.ErrSourceFormat)
	}

	headerIndex := make(map[string]int, len(header))
	for i, name := range header {
		headerIndex[strings.TrimSpace(name)] = i
	}

	r := &Reader{
		file:    f,
		csv:     cr,
		table:   table,
		year:    year,
		dedupAt: -1,
		index:   make([]int, len(table.Columns)),
	}

	var missing []string
	for i, col := range table.Columns {
		idx, ok := headerIndex[col.Source]
		if !ok {
			missing = append(missing, col.Source)
			continue
		}
		r.index[i] = idx
	}
	if len(missing) > 0 {
		f.Close()
		return nil, fmt.Errorf("source file %q is missing expected column(s) %s: %w",
			path, strings.Join(missing, ", "), collegedata.ErrSourceFormat)
	}

	if table.DedupOn != "" {
		idx, ok := headerIndex[table.DedupOn]
		if !ok {
			f.Close()
			return nil, fmt.Errorf("source file %q is missing dedup column %s: %w",
				path, table.DedupOn, collegedata.ErrSourceFormat)
		}
		r.dedupAt = idx
		r.seen = make(map[string]struct{})
	}

	for _, src := range table.DropIfNull {
		for i, col := range table.Columns {
			if col.Source == src {
				r.dropAt = append(r.dropAt, i)
			}
		}
	}

	return r, nil
}

// Next returns the next row, skipping deduplicated and dropped records.
// Returns io.EOF when the file is exhausted.
func (r *Reader) Next() (*Row, error) {
	for {
		record, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("malformed CSV record: %v: %w", err, collegedata.ErrSourceFormat)
		}
		r.read++
		line, _ := r.csv.FieldPos(0)

		if r.dedupAt >= 0 {
			key := strings.TrimSpace(field(record, r.dedupAt))
			if !coerce.IsMissing(key) {
				if _, dup := r.seen[key]; dup {
					continue
				}
				r.seen[key] = struct{}{}
			}
		}

		row := &Row{Line: int64(line)}
		row.Values = make([]any, 0, len(r.table.Columns)+1)
		for i, col := range r.table.Columns {
			v, warning := coerce.Value(field(record, r.index[i]), col, int64(line))
			if warning != nil {
				row.Warnings = append(row.Warnings, *warning)
			}
			row.Values = append(row.Values, v)
		}

		if r.dropRow(row) {
			continue
		}

		if r.table.YearColumn {
			row.Values = append(row.Values, r.year)
		}
		return row, nil
	}
}

// dropRow reports whether a required identity column coerced to null.
func (r *Reader) dropRow(row *Row) bool {
	for _, pos := range r.dropAt {
		if row.Values[pos] == nil {
			return true
		}
	}
	return false
}

// RowsRead returns the number of data records consumed so far,
// including deduplicated and dropped ones.
func (r *Reader) RowsRead() int64 {
	return r.read
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// field tolerates ragged records: a short record reads as empty fields,
// which coerce to null like any other missing value.
func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

// CountDataRows estimates the number of data rows in the source file by
// counting newlines, excluding the header. Quoted embedded newlines make
// this an upper bound; it is used only to size progress displays.
func CountDataRows(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	var count int64
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		count += int64(bytes.Count(buf[:n], []byte{'\n'}))
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
	}
	if count > 0 {
		count-- // header
	}
	return count, nil
}
