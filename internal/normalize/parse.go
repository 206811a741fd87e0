package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006", "02-01-2006", "02.01.2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"2 Jan 2006", "Jan 2, 2006", "January 2, 2006", "01-02-06", "1/2/06",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDate accepts text dates and Unix timestamps (seconds or milliseconds).
func parseDate(v Value) (time.Time, bool) {
	if v.IsNum {
		return unixTime(v.Num)
	}
	if t, ok := parseTimeMaybe(v.Text); ok {
		return t, true
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64); err == nil && n > 1e8 {
		return unixTime(n)
	}
	return time.Time{}, false
}

func unixTime(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return time.Time{}, false
	}
	if n > 1e11 {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Unix(int64(n), 0).UTC(), true
}

// Grouped thousands without a fraction. A single dot group ("1.500") stays a
// decimal point; set DecimalSeparator to read it as grouping.
var (
	commaGroups = regexp.MustCompile(`^-?[1-9]\d{0,2}(,\d{3})+$`)
	dotGroups   = regexp.MustCompile(`^-?[1-9]\d{0,2}(\.\d{3}){2,}$`)
)

// parseNumeric parses a locale-formatted number. A zero decimal separator
// auto-detects between '.' and ','.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if commaGroups.MatchString(raw) || dotGroups.MatchString(raw) {
			// "1,500" and "1.500.000" are digit grouping, never a fraction.
			dec, thou = '.', ','
			if dotGroups.MatchString(raw) {
				dec, thou = ',', '.'
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseMeasurement returns a finite, non-negative value or false.
func parseMeasurement(v Value, opt Options) (float64, bool) {
	var x float64
	if v.IsNum {
		x = v.Num
	} else {
		var ok bool
		x, ok = parseNumeric(v.Text, opt)
		if !ok {
			return 0, false
		}
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0, false
	}
	return x, true
}

func parseCoordinate(v Value, opt Options, limit float64) (float64, bool) {
	var x float64
	if v.IsNum {
		x = v.Num
	} else {
		s := strings.TrimSpace(v.Text)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			var ok bool
			f, ok = parseNumeric(s, opt)
			if !ok {
				return 0, false
			}
		}
		x = f
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) > limit {
		return 0, false
	}
	return x, true
}
