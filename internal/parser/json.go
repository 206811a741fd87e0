package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
)

type jsonParser struct{}

func (jsonParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonParser) Parse(path string, opt Options) (*Result, error) {
	return ParseJSONFile(path, opt)
}

// ParseJSONFile reads an array of flat objects, keeping each object's key order.
// Nested values are ignored.
func ParseJSONFile(path string, opt Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	res := &Result{}
	for row := 1; dec.More(); row++ {
		rec, err := readObject(dec, row)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", row, err)
		}
		if len(rec.Fields) == 0 {
			continue
		}
		if opt.MaxRows > 0 && row > opt.MaxRows {
			res.Truncated++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func readObject(dec *json.Decoder, row int) (normalize.RawRecord, error) {
	rec := normalize.RawRecord{Row: row}
	if err := expectDelim(dec, '{'); err != nil {
		return rec, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := tok.(string)
		if !ok {
			return rec, fmt.Errorf("unexpected key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return rec, fmt.Errorf("value for %q: %w", key, err)
		}
		switch x := v.(type) {
		case string:
			if strings.TrimSpace(x) != "" {
				rec.Fields = append(rec.Fields, normalize.Field{Key: key, Value: normalize.String(x)})
			}
		case json.Number:
			if n, err := x.Float64(); err == nil {
				rec.Fields = append(rec.Fields, normalize.Field{Key: key, Value: normalize.Number(n)})
			}
		case bool:
			rec.Fields = append(rec.Fields, normalize.Field{Key: key, Value: normalize.String(strconv.FormatBool(x))})
		}
	}
	return rec, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.New("expected " + want.String())
	}
	return nil
}
