package normalize

import (
	"regexp"
	"strings"

	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// aliases maps common abbreviations in normalized header text to canonical
// parameter names. Registry names and labels are resolved before this table.
var aliases = map[string]string{
	"ph":                        standards.PH,
	"ph value":                  standards.PH,
	"temp":                      standards.Temperature,
	"water temperature":         standards.Temperature,
	"water temp":                standards.Temperature,
	"turb":                      standards.Turbidity,
	"ntu":                       standards.Turbidity,
	"tds":                       standards.TotalDissolvedSolids,
	"total dissolved solids":    standards.TotalDissolvedSolids,
	"dissolved solids":          standards.TotalDissolvedSolids,
	"ec":                        standards.Conductivity,
	"electrical conductivity":   standards.Conductivity,
	"specific conductance":      standards.Conductivity,
	"cond":                      standards.Conductivity,
	"do":                        standards.DissolvedOxygen,
	"dissolved oxygen":          standards.DissolvedOxygen,
	"oxygen":                    standards.DissolvedOxygen,
	"bod5":                      standards.BOD,
	"biochemical oxygen demand": standards.BOD,
	"biological oxygen demand":  standards.BOD,
	"chemical oxygen demand":    standards.COD,
	"total alkalinity":          standards.Alkalinity,
	"alk":                       standards.Alkalinity,
	"total hardness":            standards.Hardness,
	"th":                        standards.Hardness,
	"as":                        standards.Arsenic,
	"pb":                        standards.Lead,
	"hg":                        standards.Mercury,
	"cd":                        standards.Cadmium,
	"cr":                        standards.Chromium,
	"total chromium":            standards.Chromium,
	"ni":                        standards.Nickel,
	"cu":                        standards.Copper,
	"zn":                        standards.Zinc,
	"fe":                        standards.Iron,
	"total iron":                standards.Iron,
	"mn":                        standards.Manganese,
	"no3":                       standards.Nitrate,
	"no3-":                      standards.Nitrate,
	"nitrate nitrogen":          standards.Nitrate,
	"no2":                       standards.Nitrite,
	"no2-":                      standards.Nitrite,
	"nh3":                       standards.Ammonia,
	"nh4":                       standards.Ammonia,
	"ammonia nitrogen":          standards.Ammonia,
	"po4":                       standards.Phosphate,
	"total phosphate":           standards.Phosphate,
	"tc":                        standards.TotalColiform,
	"coliform":                  standards.TotalColiform,
	"total coliform":            standards.TotalColiform,
	"total coliforms":           standards.TotalColiform,
	"fc":                        standards.FecalColiform,
	"fecal coliform":            standards.FecalColiform,
	"faecal coliform":           standards.FecalColiform,
	"fecal coliforms":           standards.FecalColiform,
	"e.coli":                    standards.EColi,
	"e. coli":                   standards.EColi,
	"e coli":                    standards.EColi,
	"ecoli":                     standards.EColi,
}

// Metadata keys are never treated as parameters.
var (
	dateKeys      = []string{"date", "sample date", "sampling date", "timestamp", "datetime", "collection date"}
	locationKeys  = []string{"location", "site", "station", "location name", "site name", "station name", "sampling point"}
	latitudeKeys  = []string{"lat", "latitude"}
	longitudeKeys = []string{"lng", "lon", "long", "longitude"}
	regionKeys    = []string{"region", "district", "area"}
	stateKeys     = []string{"state", "province"}
	countryKeys   = []string{"country"}
	idKeys        = []string{"id", "sample id", "sample no", "sample number", "s no", "sno", "serial", "serial no"}
)

var metadataKeys = func() map[string]struct{} {
	m := map[string]struct{}{}
	for _, group := range [][]string{dateKeys, locationKeys, latitudeKeys, longitudeKeys, regionKeys, stateKeys, countryKeys, idKeys} {
		for _, k := range group {
			m[k] = struct{}{}
		}
	}
	return m
}()

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Arsenic (µg/L)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Lead [mg/L]
	{regexp.MustCompile(`(?i)^(.*?)[_\s-]+(mg/L|g/L|ug/L|µg/L|μg/L|ppm|ppb|NTU|°C|µS/cm|uS/cm|MPN/100mL|CFU/100mL)$`), 2},
}

// splitUnits separates a unit annotation from a header.
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

var unitCompanion = regexp.MustCompile(`^(.+?)[\s_-]+units?$`)

// normalizeHeader returns the unit-stripped, lower-cased header and its unit.
func normalizeHeader(key string) (string, string) {
	clean, unit := splitUnits(key)
	return strings.ToLower(strings.TrimSpace(clean)), unit
}

// fold collapses separators so "sample_date" and "Sample-Date" match "sample date".
func fold(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// canonicalName resolves a normalized header to a canonical parameter name,
// trying the registry's names and labels before the abbreviation table.
// The second result is false when nothing matched and the header is returned as-is.
func canonicalName(reg *standards.Registry, norm string) (string, bool) {
	// "e.coli" survives folding, "total.coliform" does not
	for _, key := range []string{norm, fold(norm), fold(strings.ReplaceAll(norm, ".", " "))} {
		if c, ok := reg.Resolve(key); ok {
			return c, true
		}
		if c, ok := aliases[key]; ok {
			return c, true
		}
	}
	return norm, false
}

func isMetadata(norm string) bool {
	_, ok := metadataKeys[fold(norm)]
	return ok
}

// companionBase returns the parameter a "<param> unit" key annotates.
func companionBase(reg *standards.Registry, norm string) (string, bool) {
	m := unitCompanion.FindStringSubmatch(norm)
	if len(m) < 2 {
		return "", false
	}
	base := strings.TrimSpace(m[1])
	if base == "" {
		return "", false
	}
	name, _ := canonicalName(reg, base)
	return name, true
}

func hintsMicro(text string) bool {
	t := strings.ToLower(text)
	for _, h := range []string{"µg", "μg", "ug", "micro", "ppb"} {
		if strings.Contains(t, h) {
			return true
		}
	}
	return false
}
