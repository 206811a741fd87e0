package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// Batch-level recommendations with fixed wording; report consumers match on them.
const (
	RecImmediateAction    = "Immediate action required"
	RecHeavyMetalTreat    = "Heavy metal treatment system implementation advised"
	RecRoutineMonitoring  = "Continue routine monitoring"
	RecIncreaseFrequency  = "Increase monitoring frequency for parameters with deteriorating trends"
	RecExpandCoverage     = "Expand parameter coverage to improve assessment reliability"
	RecDisinfect          = "Disinfect the source (chlorination or UV) and retest for microbial contamination"
	RecNutrientRunoff     = "Investigate agricultural or sewage runoff contributing to the nutrient load"
	RecAdjustPH           = "Adjust pH through neutralization treatment"
	RecFiltration         = "Apply filtration to reduce turbidity and dissolved solids"
	RecAeration           = "Improve aeration to raise dissolved oxygen levels"
	RecOrganicPollution   = "Investigate organic pollution sources upstream"
	RecPhysicalTreatment  = "Review physical treatment processes"
	RecTreatBeforeUse     = "Treat water before consumption"
	RecStopUse            = "Stop using this source for drinking until remediated"
	RecVerifyAbsentLimits = "Verify readings for parameters without a registered standard"
)

func sampleNarrative(a SampleAnalysis) (findings, recs []string) {
	names := make([]string, 0, len(a.Parameters))
	for name := range a.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	where := a.Location.Name
	if where == "" {
		where = "Unknown"
	}
	switch a.OverallStatus {
	case StatusCritical:
		findings = append(findings, fmt.Sprintf("Critical contamination detected at %s", where))
		recs = append(recs, RecImmediateAction, RecStopUse)
	case StatusUnsafe:
		findings = append(findings, fmt.Sprintf("Water quality at %s does not meet standards", where))
		recs = append(recs, RecTreatBeforeUse)
	default:
		findings = append(findings, fmt.Sprintf("All measured parameters at %s are within permissible limits", where))
		recs = append(recs, RecRoutineMonitoring)
	}

	unknown := 0
	for _, name := range names {
		c := a.Parameters[name]
		if c.Status == StatusUnknown {
			unknown++
			continue
		}
		if !exceeds(c) {
			continue
		}
		findings = append(findings, exceedanceFinding(c))
		recs = append(recs, treatmentFor(c))
	}
	if a.HMPI.Value > 1 {
		findings = append(findings, fmt.Sprintf("Heavy Metal Pollution Index %.2f exceeds the safe threshold of 1", a.HMPI.Value))
		recs = append(recs, RecHeavyMetalTreat)
	}
	if a.WQI.Used > 0 && (a.WQI.Status == IndexPoor || a.WQI.Status == IndexVeryPoor) {
		findings = append(findings, fmt.Sprintf("Water Quality Index %.1f is rated %s", a.WQI.Value, strings.ReplaceAll(string(a.WQI.Status), "_", " ")))
	}
	if unknown > 0 {
		recs = append(recs, RecVerifyAbsentLimits)
	}
	return dedupe(findings), dedupe(recs)
}

func exceedanceFinding(c ParameterClassification) string {
	std := c.Reading.Standard
	label := std.DisplayName()
	v := c.Reading.Value
	switch {
	case std.HasMin() && std.HasMax():
		return fmt.Sprintf("%s %s is outside the permissible range %s to %s", label, num(v), num(std.MinValue()), num(std.MaxValue()))
	case std.HasMin():
		return fmt.Sprintf("%s %s %s is below the minimum of %s %s", label, num(v), std.Unit, num(std.MinValue()), std.Unit)
	default:
		return fmt.Sprintf("%s %s %s exceeds the permissible limit of %s %s", label, num(v), std.Unit, num(std.MaxValue()), std.Unit)
	}
}

func treatmentFor(c ParameterClassification) string {
	std := c.Reading.Standard
	switch std.Category {
	case standards.CategoryHeavyMetal:
		return RecHeavyMetalTreat
	case standards.CategoryMicrobiological:
		return RecDisinfect
	case standards.CategoryNutrient:
		return RecNutrientRunoff
	}
	switch std.Name {
	case standards.PH:
		return RecAdjustPH
	case standards.Turbidity, standards.TotalDissolvedSolids, standards.Conductivity:
		return RecFiltration
	case standards.DissolvedOxygen:
		return RecAeration
	}
	if std.Category == standards.CategoryChemical {
		return RecOrganicPollution
	}
	return RecPhysicalTreatment
}

// batchNarrative builds batch-level findings and recommendations. Batch
// recommendations come first, followed by the per-sample ones.
func batchNarrative(b *BatchAnalysis) (findings, recs []string) {
	s := b.Summary
	findings = append(findings, fmt.Sprintf("%d of %d samples (%.1f%%) meet all standards", s.SafeSamples, s.TotalSamples, s.SafePercentage))
	if s.CriticalSamples > 0 {
		findings = append(findings, fmt.Sprintf("%d samples show critical contamination", s.CriticalSamples))
		recs = append(recs, RecImmediateAction)
	}

	hmpiExceeded := 0
	exceeded := map[string]int{}
	labels := map[string]string{}
	for _, a := range b.PerSample {
		if a.HMPI.Value > 1 {
			hmpiExceeded++
		}
		for name, c := range a.Parameters {
			if exceeds(c) {
				exceeded[name]++
				labels[name] = c.Reading.Standard.DisplayName()
			}
		}
	}
	if hmpiExceeded > 0 {
		findings = append(findings, fmt.Sprintf("Heavy Metal Pollution Index exceeds 1 in %d samples", hmpiExceeded))
		recs = append(recs, RecHeavyMetalTreat)
	}

	type kv struct {
		name  string
		count int
	}
	var top []kv
	for name, n := range exceeded {
		top = append(top, kv{name, n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].count != top[j].count {
			return top[i].count > top[j].count
		}
		return top[i].name < top[j].name
	})
	for i, p := range top {
		if i == 3 {
			break
		}
		findings = append(findings, fmt.Sprintf("%s exceeded its limit in %d of %d samples", labels[p.name], p.count, s.TotalSamples))
	}

	deteriorating := false
	for _, name := range sortedKeys(b.Trends) {
		t := b.Trends[name]
		if t.Direction == DirectionInsufficientData || t.Direction == DirectionStable {
			continue
		}
		label := name
		if std, ok := lookupLabel(b, name); ok {
			label = std
		}
		findings = append(findings, fmt.Sprintf("%s shows a %s trend (slope %.3g per sample)", label, t.Direction, t.Slope))
		if worsening(name, t.Direction) {
			deteriorating = true
		}
	}
	if deteriorating {
		recs = append(recs, RecIncreaseFrequency)
	}

	if b.DataQuality.Quality == QualityPoor || b.DataQuality.Quality == QualityFair {
		findings = append(findings, fmt.Sprintf("Data completeness is %.1f%% (%s)", b.DataQuality.Completeness, b.DataQuality.Quality))
		recs = append(recs, RecExpandCoverage)
	}
	if s.SafeSamples == s.TotalSamples {
		recs = append(recs, RecRoutineMonitoring)
	}
	for _, a := range b.PerSample {
		for _, r := range a.Recommendations {
			if r == RecRoutineMonitoring && s.SafeSamples != s.TotalSamples {
				continue
			}
			recs = append(recs, r)
		}
	}
	return dedupe(findings), dedupe(recs)
}

// worsening reports whether a trend direction moves the parameter towards its limit.
func worsening(name string, d Direction) bool {
	if name == standards.DissolvedOxygen {
		return d == DirectionDecreasing
	}
	if name == standards.PH {
		return d != DirectionStable && d != DirectionInsufficientData
	}
	return d == DirectionIncreasing
}

func lookupLabel(b *BatchAnalysis, name string) (string, bool) {
	for _, a := range b.PerSample {
		if c, ok := a.Parameters[name]; ok && c.Reading.Standard != nil {
			return c.Reading.Standard.DisplayName(), true
		}
	}
	return "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dedupe keeps the first occurrence of each string.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func num(v float64) string { return fmt.Sprintf("%.4g", v) }
