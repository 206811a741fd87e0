package analysis

import (
	"math"

	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// assessDataQuality grades the share of registry parameters the batch measured.
func assessDataQuality(reg *standards.Registry, samples []SampleAnalysis) DataQuality {
	possible := len(samples) * reg.Len()
	if possible == 0 {
		return DataQuality{Quality: QualityPoor, Reliability: ReliabilityLow}
	}
	filled := 0
	for _, a := range samples {
		for name, c := range a.Parameters {
			if _, ok := reg.Lookup(name); !ok {
				continue
			}
			if math.IsNaN(c.Reading.Value) || math.IsInf(c.Reading.Value, 0) {
				continue
			}
			filled++
		}
	}
	pct := float64(filled) / float64(possible) * 100
	return DataQuality{
		Quality:      qualityGrade(pct),
		Completeness: pct,
		Reliability:  reliabilityGrade(pct),
	}
}

func qualityGrade(pct float64) Quality {
	switch {
	case pct < 50:
		return QualityPoor
	case pct < 70:
		return QualityFair
	case pct < 90:
		return QualityGood
	default:
		return QualityExcellent
	}
}

func reliabilityGrade(pct float64) Reliability {
	switch {
	case pct < 50:
		return ReliabilityLow
	case pct < 70:
		return ReliabilityMedium
	default:
		return ReliabilityHigh
	}
}
