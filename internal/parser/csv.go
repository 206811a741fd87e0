package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvParser) Parse(path string, opt Options) (*Result, error) {
	return ParseCSVFile(path, opt)
}

// ParseCSVFile reads a delimited sample sheet. The first row is the header.
func ParseCSVFile(path string, opt Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path, br)
	}
	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Result{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	keys := headerKeys(header)

	maxRows := opt.MaxRows
	res := &Result{}
	for row := 1; ; row++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		raw, ok := textRecord(row, keys, rec)
		if !ok {
			continue
		}
		if maxRows > 0 && row > maxRows {
			res.Truncated++
			continue
		}
		res.Records = append(res.Records, raw)
	}
	return res, nil
}

// sniffDelimiter picks the separator that occurs most in the header line.
func sniffDelimiter(path string, br *bufio.Reader) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	line, _ := br.Peek(4096)
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}
	best, n := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if c := strings.Count(string(line), string(d)); c > n {
			best, n = d, c
		}
	}
	return best
}
