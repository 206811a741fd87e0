package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

var reg = standards.Default()

func reading(name string, v float64) normalize.ParameterReading {
	r := normalize.ParameterReading{Parameter: name, Value: v}
	if std, ok := reg.Lookup(name); ok {
		r.Unit = std.Unit
		r.Standard = &std
	}
	return r
}

func readings(values map[string]float64) map[string]normalize.ParameterReading {
	out := make(map[string]normalize.ParameterReading, len(values))
	for name, v := range values {
		out[name] = reading(name, v)
	}
	return out
}

func TestClassifyUnknown(t *testing.T) {
	c := Classify(reg, "chlorophyll", 12)
	assert.Equal(t, StatusUnknown, c.Status)
	assert.Equal(t, RiskUnknown, c.RiskLevel)

	c = Classify(reg, standards.Lead, math.NaN())
	assert.Equal(t, StatusUnknown, c.Status)
	assert.Equal(t, RiskUnknown, c.RiskLevel)

	c = Classify(nil, standards.Lead, 0.5)
	assert.Equal(t, StatusUnknown, c.Status)
}

func TestClassifyPH(t *testing.T) {
	tests := []struct {
		value     float64
		status    Status
		risk      RiskLevel
		deviation float64
	}{
		{7.5, StatusSafe, RiskLow, 1.0},
		{7.0, StatusSafe, RiskLow, 0.5},
		{6.5, StatusUnsafe, RiskMedium, 0},
		{6.8, StatusUnsafe, RiskMedium, 0.3},
		{8.2, StatusUnsafe, RiskMedium, 0.3},
		{8.5, StatusUnsafe, RiskMedium, 0},
		{9.4, StatusUnsafe, RiskHigh, 0.9},
		{5.0, StatusUnsafe, RiskHigh, 1.5},
	}
	for _, tt := range tests {
		c := Classify(reg, standards.PH, tt.value)
		assert.Equal(t, tt.status, c.Status, "pH %v", tt.value)
		assert.Equal(t, tt.risk, c.RiskLevel, "pH %v", tt.value)
		assert.InDelta(t, tt.deviation, c.Deviation, 1e-9, "pH %v", tt.value)
	}
}

func TestClassifyDissolvedOxygen(t *testing.T) {
	tests := []struct {
		value  float64
		status Status
		risk   RiskLevel
	}{
		{3, StatusCritical, RiskCritical},
		{4.99, StatusCritical, RiskCritical},
		{5, StatusUnsafe, RiskHigh},
		{5.9, StatusUnsafe, RiskHigh},
		{6, StatusSafe, RiskLow},
		{9, StatusSafe, RiskLow},
	}
	for _, tt := range tests {
		c := Classify(reg, standards.DissolvedOxygen, tt.value)
		assert.Equal(t, tt.status, c.Status, "DO %v", tt.value)
		assert.Equal(t, tt.risk, c.RiskLevel, "DO %v", tt.value)
	}
	assert.InDelta(t, 2.0, Classify(reg, standards.DissolvedOxygen, 3).Deviation, 1e-9)
}

func TestClassifyMaxBounded(t *testing.T) {
	// lead max is 0.01
	tests := []struct {
		value  float64
		status Status
		risk   RiskLevel
	}{
		{0, StatusSafe, RiskLow},
		{0.007, StatusSafe, RiskLow},
		{0.009, StatusUnsafe, RiskMedium},
		{0.01, StatusUnsafe, RiskMedium},
		{0.015, StatusUnsafe, RiskHigh},
		{0.019, StatusUnsafe, RiskHigh},
		{0.02, StatusCritical, RiskCritical},
		{0.021, StatusCritical, RiskCritical},
	}
	for _, tt := range tests {
		c := Classify(reg, standards.Lead, tt.value)
		assert.Equal(t, tt.status, c.Status, "lead %v", tt.value)
		assert.Equal(t, tt.risk, c.RiskLevel, "lead %v", tt.value)
		assert.InDelta(t, tt.value-0.01, c.Deviation, 1e-12)
	}
}

func TestClassifyMaxBoundedIsMonotonic(t *testing.T) {
	for _, name := range []string{standards.Turbidity, standards.Arsenic, standards.Nitrate, standards.Hardness, standards.Zinc} {
		std, ok := reg.Lookup(name)
		require.True(t, ok)
		hi := std.MaxValue()
		prev := 0
		for v := 0.0; v <= 3*hi; v += hi / 50 {
			c := Classify(reg, name, v)
			sev := c.Status.severity()
			require.GreaterOrEqualf(t, sev, prev, "%s severity dropped at %v", name, v)
			prev = sev
		}
		assert.Equal(t, StatusCritical, Classify(reg, name, 3*hi).Status)
	}
}

func TestClassifyZeroLimitMicrobiology(t *testing.T) {
	assert.Equal(t, StatusSafe, Classify(reg, standards.EColi, 0).Status)
	c := Classify(reg, standards.EColi, 1)
	assert.Equal(t, StatusCritical, c.Status)
	assert.True(t, exceeds(c))
}

func TestClassifyUsesRegistryOverrides(t *testing.T) {
	limit := 0.05
	custom := standards.New(standards.ParameterStandard{Name: standards.Lead, Unit: "mg/L", Category: standards.CategoryHeavyMetal, Max: &limit})
	assert.Equal(t, StatusSafe, Classify(custom, standards.Lead, 0.02).Status)
	assert.Equal(t, StatusCritical, Classify(reg, standards.Lead, 0.03).Status)
}
