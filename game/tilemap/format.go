package tilemap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseRows reads the map text format into rows of tile IDs.
// Blank lines are skipped; every other line is one map row.
func ParseRows(r io.Reader) ([][]int, error) {
	var rows [][]int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Split(line, ",")
		row := make([]int, len(tokens))
		for i, token := range tokens {
			token = strings.TrimSpace(token)
			id, err := strconv.Atoi(token)
			if err != nil {
				return nil, &MalformedMapError{Row: lineNo, Column: i + 1, Reason: fmt.Sprintf("%q is not an integer", token)}
			}
			if id < 0 {
				return nil, &MalformedMapError{Row: lineNo, Column: i + 1, Reason: fmt.Sprintf("negative tile id %d", id)}
			}
			row[i] = id
		}

		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, &MalformedMapError{
				Row:    lineNo,
				Reason: fmt.Sprintf("expected %d columns, got %d", len(rows[0]), len(row)),
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	if len(rows) == 0 {
		return nil, emptyMapError()
	}

	return rows, nil
}

// Parse reads a map and classifies it
func Parse(r io.Reader, cls Classification) (*Grid, error) {
	rows, err := ParseRows(r)
	if err != nil {
		return nil, err
	}
	return NewGrid(rows, cls)
}

// LoadFile reads a map file. Every failure is reported as *MapLoadError.
func LoadFile(path string, cls Classification) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MapLoadError{Path: path, Err: err}
	}
	defer f.Close()

	grid, err := Parse(f, cls)
	if err != nil {
		return nil, &MapLoadError{Path: path, Err: err}
	}
	return grid, nil
}

// Format writes rows in the map text format: comma-separated IDs, no
// trailing delimiter, every row newline-terminated.
func Format(w io.Writer, rows [][]int) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		for i, id := range row {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(strconv.Itoa(id)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveFile writes rows to path in the map text format
func SaveFile(path string, rows [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	if err := Format(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write map file: %w", err)
	}
	return f.Close()
}
