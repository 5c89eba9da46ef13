package ml

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spacesedan/sentiserve/internal/models"
)

const maxLineSize = 1024 * 1024

// LoadFromTextFile reads a headerless, tab separated file of `text<TAB>label` lines.
func LoadFromTextFile(path string) ([]models.SentimentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer f.Close()

	return LoadFromReader(f, path)
}

// LoadFromReader parses records from r. name is only used in error messages.
// Blank lines are skipped; every other line must have exactly two columns.
func LoadFromReader(r io.Reader, name string) ([]models.SentimentRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []models.SentimentRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, err := ParseRecord(line)
		if err != nil {
			return nil, &DataLoadError{Path: name, Line: lineNo, Err: err}
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, &DataLoadError{Path: name, Line: lineNo + 1, Err: err}
	}

	if len(records) == 0 {
		return nil, &DataLoadError{Path: name, Err: errors.New("no records found")}
	}
	return records, nil
}

// ParseRecord parses a single `text<TAB>label` line.
func ParseRecord(line string) (models.SentimentRecord, error) {
	cols := strings.Split(line, "\t")
	if len(cols) != 2 {
		return models.SentimentRecord{}, fmt.Errorf("expected 2 columns, got %d", len(cols))
	}

	label, err := ParseLabel(cols[1])
	if err != nil {
		return models.SentimentRecord{}, err
	}

	return models.SentimentRecord{Text: cols[0], Label: label}, nil
}

// ParseLabel accepts 0/1 and true/false.
func ParseLabel(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, errors.New("missing label")
	}
	label, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid label %q", raw)
	}
	return label, nil
}
