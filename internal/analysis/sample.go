package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
)

// AnalyzeSample classifies every reading of s, computes both indices and folds
// them into an overall status. Callers recomputing a single record use this
// directly; AnalyzeBatch calls it for each sample.
func (e *Engine) AnalyzeSample(s normalize.Sample) (SampleAnalysis, error) {
	return e.analyzeSample(0, s)
}

func (e *Engine) analyzeSample(index int, s normalize.Sample) (SampleAnalysis, error) {
	readings := make(map[string]normalize.ParameterReading, len(s.Readings))
	params := make(map[string]ParameterClassification, len(s.Readings))
	for name, r := range s.Readings {
		if r.Value < 0 || math.IsInf(r.Value, 0) {
			return SampleAnalysis{}, fmt.Errorf("%s=%v: %w", name, r.Value, ErrInvalidReading)
		}
		if r.Parameter == "" {
			r.Parameter = name
		}
		if r.Standard == nil {
			if std, ok := e.reg.Lookup(name); ok {
				r.Standard = &std
				r.Unit = std.Unit
			}
		}
		readings[name] = r
		params[name] = classifyReading(r)
	}

	a := SampleAnalysis{
		Index:      index,
		Row:        s.Row,
		SampleDate: s.SampleDate,
		Location:   s.Location,
		Parameters: params,
		HMPI:       CalculateHMPI(readings),
		WQI:        CalculateWQI(readings),
	}
	a.OverallStatus, a.RiskLevel = overallStatus(params, a.HMPI)
	a.Confidence = math.Min(a.HMPI.Confidence, a.WQI.Confidence)
	a.KeyFindings, a.Recommendations = sampleNarrative(a)
	return a, nil
}

func overallStatus(params map[string]ParameterClassification, hmpi IndexResult) (Status, RiskLevel) {
	unsafe := 0
	for _, c := range params {
		switch c.Status {
		case StatusCritical:
			return StatusCritical, RiskCritical
		case StatusUnsafe:
			unsafe++
		}
	}
	switch {
	case hmpi.Status == IndexCritical:
		return StatusCritical, RiskCritical
	case unsafe > 2 || hmpi.Status == IndexUnsafe:
		return StatusUnsafe, RiskHigh
	case unsafe >= 1:
		return StatusUnsafe, RiskMedium
	default:
		return StatusSafe, RiskLow
	}
}
