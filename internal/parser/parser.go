package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
)

// Options controls how sample sheets are read.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects among ',', ';', '\t'.
	Delimiter rune
	// SheetName selects a workbook sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects a workbook sheet by 1-based position when SheetName is empty.
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// DefaultOptions returns options that read the first sheet with delimiter sniffing.
func DefaultOptions() Options {
	return Options{SheetIndex: 1, MaxRows: 100000}
}

// Result is what one sample file yielded.
type Result struct {
	Records   []normalize.RawRecord
	Truncated int // non-blank data rows past MaxRows, left out
}

// Parser turns one sample file into raw records.
type Parser interface {
	CanParse(filename string) bool
	Parse(path string, opt Options) (*Result, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns the file's records.
func ParseFile(path string, opt Options) (*Result, error) {
	for _, p := range registry {
		if p.CanParse(path) {
			res, err := p.Parse(path, opt)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// Supported reports whether some registered parser accepts filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

func init() {
	// Register default parsers
	Register(csvParser{})
	Register(xlsxParser{})
	Register(jsonParser{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported sample file format")

// headerKeys trims headers and names blank ones after their column.
func headerKeys(row []string) []string {
	keys := make([]string, len(row))
	for i, h := range row {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column %d", i+1)
		}
		keys[i] = h
	}
	return keys
}

// textRecord pairs a header with a row of text cells. Blank cells are kept out.
func textRecord(row int, keys, cells []string) (normalize.RawRecord, bool) {
	rec := normalize.RawRecord{Row: row}
	for i, k := range keys {
		if i >= len(cells) {
			break
		}
		v := strings.TrimSpace(cells[i])
		if v == "" {
			continue
		}
		rec.Fields = append(rec.Fields, normalize.Field{Key: k, Value: normalize.String(v)})
	}
	return rec, len(rec.Fields) > 0
}
