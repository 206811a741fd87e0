package analysis

import (
	"time"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
)

// Status is the compliance status of a parameter or a whole sample.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusUnsafe   Status = "unsafe"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

// severity orders statuses; unknown ranks below safe so it never masks a finding.
func (s Status) severity() int {
	switch s {
	case StatusSafe:
		return 1
	case StatusUnsafe:
		return 2
	case StatusCritical:
		return 3
	default:
		return 0
	}
}

// RiskLevel is the qualitative severity attached to a status.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
	RiskUnknown  RiskLevel = "unknown"
)

// IndexStatus grades an HMPI (safe/unsafe/critical) or WQI (very_poor..excellent) value.
type IndexStatus string

const (
	IndexSafe     IndexStatus = "safe"
	IndexUnsafe   IndexStatus = "unsafe"
	IndexCritical IndexStatus = "critical"

	IndexVeryPoor  IndexStatus = "very_poor"
	IndexPoor      IndexStatus = "poor"
	IndexFair      IndexStatus = "fair"
	IndexGood      IndexStatus = "good"
	IndexExcellent IndexStatus = "excellent"
)

// Direction is the sign of a fitted trend.
type Direction string

const (
	DirectionIncreasing       Direction = "increasing"
	DirectionDecreasing       Direction = "decreasing"
	DirectionStable           Direction = "stable"
	DirectionInsufficientData Direction = "insufficient_data"
)

// Quality grades batch completeness.
type Quality string

const (
	QualityPoor      Quality = "poor"
	QualityFair      Quality = "fair"
	QualityGood      Quality = "good"
	QualityExcellent Quality = "excellent"
)

// Reliability is a coarser completeness grade.
type Reliability string

const (
	ReliabilityLow    Reliability = "low"
	ReliabilityMedium Reliability = "medium"
	ReliabilityHigh   Reliability = "high"
)

// ParameterClassification is one reading judged against its standard.
type ParameterClassification struct {
	Reading   normalize.ParameterReading `json:"reading"`
	Status    Status                     `json:"status"`
	RiskLevel RiskLevel                  `json:"risk_level"`
	// Deviation is the signed distance past the bound (pH: distance to the nearer bound).
	Deviation float64 `json:"deviation"`
}

// IndexResult is a composite index for one sample.
type IndexResult struct {
	Value      float64     `json:"value"`
	Status     IndexStatus `json:"status"`
	Confidence float64     `json:"confidence"`
	// Used counts the parameters that contributed.
	Used int `json:"used"`
}

// SampleAnalysis is the immutable result for one sample.
type SampleAnalysis struct {
	Index           int                                `json:"index"`
	Row             int                                `json:"row,omitempty"`
	SampleDate      time.Time                          `json:"sample_date"`
	Location        normalize.Location                 `json:"location"`
	Parameters      map[string]ParameterClassification `json:"parameters"`
	HMPI            IndexResult                        `json:"hmpi"`
	WQI             IndexResult                        `json:"wqi"`
	OverallStatus   Status                             `json:"overall_status"`
	RiskLevel       RiskLevel                          `json:"risk_level"`
	Confidence      float64                            `json:"confidence"`
	KeyFindings     []string                           `json:"key_findings,omitempty"`
	Recommendations []string                           `json:"recommendations,omitempty"`
}

// TrendPoint is one dated observation of a parameter.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TrendResult is a least-squares fit over a parameter's series.
type TrendResult struct {
	Parameter  string    `json:"parameter"`
	Direction  Direction `json:"direction"`
	Slope      float64   `json:"slope"`
	Intercept  float64   `json:"intercept"`
	RSquared   float64   `json:"r_squared"`
	Confidence float64   `json:"confidence"`
	Points     int       `json:"points"`
}

// Summary holds batch counts and averages.
type Summary struct {
	TotalSamples       int     `json:"total_samples"`
	SafeSamples        int     `json:"safe_samples"`
	UnsafeSamples      int     `json:"unsafe_samples"`
	CriticalSamples    int     `json:"critical_samples"`
	SafePercentage     float64 `json:"safe_percentage"`
	UnsafePercentage   float64 `json:"unsafe_percentage"`
	CriticalPercentage float64 `json:"critical_percentage"`
	AvgHMPI            float64 `json:"avg_hmpi"`
	AvgWQI             float64 `json:"avg_wqi"`
}

// DataQuality grades how many standard parameters the batch actually measured.
type DataQuality struct {
	Quality      Quality     `json:"quality"`
	Completeness float64     `json:"completeness"`
	Reliability  Reliability `json:"reliability"`
}

// BatchAnalysis is the terminal artifact handed to reporting.
type BatchAnalysis struct {
	Summary         Summary                `json:"summary"`
	PerSample       []SampleAnalysis       `json:"per_sample"`
	Trends          map[string]TrendResult `json:"trends"`
	KeyFindings     []string               `json:"key_findings"`
	Recommendations []string               `json:"recommendations"`
	DataQuality     DataQuality            `json:"data_quality"`
	GeneratedAt     time.Time              `json:"generated_at"`
}
