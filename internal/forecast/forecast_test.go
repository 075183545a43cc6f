package forecast

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	data := []float64{100, 200, 300, 400}
	if got := SMA(data, 3); !almostEqual(got, 300) {
		t.Fatalf("SMA = %v, want 300", got)
	}
	// Shorter than the window falls back to the plain mean.
	if got := SMA([]float64{100, 200}, 3); !almostEqual(got, 150) {
		t.Fatalf("SMA short = %v, want 150", got)
	}
	if got := SMA(nil, 3); got != 0 {
		t.Fatalf("SMA empty = %v, want 0", got)
	}
}

func TestEMA(t *testing.T) {
	// f = 0.3*200 + 0.7*100 = 130; then 0.3*300 + 0.7*130 = 181
	data := []float64{100, 200, 300}
	if got := EMA(data, 0.3); !almostEqual(got, 181) {
		t.Fatalf("EMA = %v, want 181", got)
	}
	if got := EMA([]float64{42}, 0.3); !almostEqual(got, 42) {
		t.Fatalf("EMA single = %v, want 42", got)
	}
}

func TestLinearTrend(t *testing.T) {
	// Perfect line y = 100x + 100 continues to 500 at x=4.
	data := []float64{100, 200, 300, 400}
	if got := LinearTrend(data, 1); !almostEqual(got, 500) {
		t.Fatalf("LinearTrend = %v, want 500", got)
	}

	// Steep decline clamps at zero.
	decline := []float64{300, 150, 10}
	if got := LinearTrend(decline, 1); got < 0 {
		t.Fatalf("LinearTrend went negative: %v", got)
	}

	// Flat series returns the mean.
	flat := []float64{250, 250, 250}
	if got := LinearTrend(flat, 1); !almostEqual(got, 250) {
		t.Fatalf("LinearTrend flat = %v, want 250", got)
	}
}

func TestSeasonalShortSeriesDegradesToAverage(t *testing.T) {
	data := []float64{100, 200, 300}
	res := Seasonal(data, 12)
	if !almostEqual(res.Forecast, 200) {
		t.Fatalf("Forecast = %v, want 200", res.Forecast)
	}
	if res.Seasonal != 0 {
		t.Fatalf("Seasonal = %v, want 0", res.Seasonal)
	}
}

func TestNextMonthNoData(t *testing.T) {
	res := NextMonth(nil, MethodAuto)
	if res.Method != MethodNoData || res.Confidence != ConfidenceLow {
		t.Fatalf("res = %+v", res)
	}
}

func TestNextMonthShortSeriesUsesAverage(t *testing.T) {
	res := NextMonth([]float64{100, 300}, MethodAuto)
	if res.Method != MethodAverage {
		t.Fatalf("method = %q, want average", res.Method)
	}
	if !almostEqual(res.Value, 200) {
		t.Fatalf("value = %v, want 200", res.Value)
	}
	if res.Confidence != ConfidenceLow {
		t.Fatalf("confidence = %q, want low", res.Confidence)
	}
}

func TestNextMonthAutoIsEnsemble(t *testing.T) {
	data := []float64{100, 110, 105, 115, 108}
	res := NextMonth(data, MethodAuto)
	if res.Method != MethodEnsemble {
		t.Fatalf("method = %q, want ensemble", res.Method)
	}

	// Fewer than six points means no seasonal component: three methods.
	want := (SMA(data, 3) + EMA(data, 0.3) + LinearTrend(data, 1)) / 3
	if !almostEqual(res.Value, want) {
		t.Fatalf("value = %v, want %v", res.Value, want)
	}
}

func TestNextMonthSingleMethod(t *testing.T) {
	data := []float64{100, 200, 300, 400}
	res := NextMonth(data, MethodLinear)
	if res.Method != MethodLinear {
		t.Fatalf("method = %q", res.Method)
	}
	if !almostEqual(res.Value, 500) {
		t.Fatalf("value = %v, want 500", res.Value)
	}
}

func TestConfidenceGrades(t *testing.T) {
	// Tight series: cv near zero.
	tight := NextMonth([]float64{100, 101, 99, 100}, MethodSMA)
	if tight.Confidence != ConfidenceHigh {
		t.Fatalf("tight confidence = %q, want high", tight.Confidence)
	}

	// Wild series: cv well above 0.5.
	wild := NextMonth([]float64{10, 500, 20, 700}, MethodSMA)
	if wild.Confidence != ConfidenceLow {
		t.Fatalf("wild confidence = %q, want low", wild.Confidence)
	}
}

func TestScoreProjectionLadder(t *testing.T) {
	cases := []struct {
		pct  float64
		want int
	}{
		{50, 20},
		{80, 20},
		{80.1, 40},
		{90.1, 60},
		{100.1, 80},
		{121, 100},
	}

	for _, tc := range cases {
		if got := scoreProjection(tc.pct); got != tc.want {
			t.Fatalf("scoreProjection(%v) = %d, want %d", tc.pct, got, tc.want)
		}
	}
}

func TestAssessRiskEmpty(t *testing.T) {
	report := AssessRisk(nil, 15, 30)
	if report.Level != RiskNone || report.Score != 0 {
		t.Fatalf("report = %+v", report)
	}
}

func TestAssessRiskProjectsDailyAverage(t *testing.T) {
	// Halfway through a 30-day month, already at 80% of budget: projected
	// 160% utilization, risk 100, level critical.
	usages := []BudgetUsage{{Category: "Food", Spent: 800, Budget: 1000}}
	report := AssessRisk(usages, 15, 30)

	if report.Score != 100 {
		t.Fatalf("score = %v, want 100", report.Score)
	}
	if report.Level != RiskCritical {
		t.Fatalf("level = %q, want critical", report.Level)
	}
	if len(report.HighRiskCategories) != 1 {
		t.Fatalf("high risk categories = %+v", report.HighRiskCategories)
	}
	if got := report.HighRiskCategories[0].Projected; !almostEqual(got, 1600) {
		t.Fatalf("projected = %v, want 1600", got)
	}
	if report.DaysRemaining != 15 {
		t.Fatalf("days remaining = %d, want 15", report.DaysRemaining)
	}
}

func TestAssessRiskSkipsZeroBudgets(t *testing.T) {
	usages := []BudgetUsage{
		{Category: "Misc", Spent: 50, Budget: 0},
		{Category: "Food", Spent: 10, Budget: 1000},
	}
	report := AssessRisk(usages, 15, 30)

	if report.Score != 20 {
		t.Fatalf("score = %v, want 20 (only the funded budget counts)", report.Score)
	}
	if report.Level != RiskLow {
		t.Fatalf("level = %q, want low", report.Level)
	}
}

func TestAssessRiskAllBudgetsUnfunded(t *testing.T) {
	usages := []BudgetUsage{
		{Category: "Misc", Spent: 50, Budget: 0},
		{Category: "Other", Spent: 10, Budget: 0},
	}
	report := AssessRisk(usages, 15, 30)

	if report.Level != RiskLow {
		t.Fatalf("level = %q, want low when budgets exist but none are funded", report.Level)
	}
	if report.Score != 0 {
		t.Fatalf("score = %v, want 0", report.Score)
	}
	if report.TotalBudgets != 2 {
		t.Fatalf("total budgets = %d, want 2", report.TotalBudgets)
	}
}

func TestInsightsFlagsLargeSwings(t *testing.T) {
	histories := []CategoryHistory{
		{Category: "Food", Current: 1500, Average: 1000},      // +50%
		{Category: "Transport", Current: 1050, Average: 1000}, // +5%, ignored
		{Category: "Fun", Current: 700, Average: 1000},        // -30%
		{Category: "New", Current: 500, Average: 0},           // no history, ignored
	}

	got := Insights(histories)
	if len(got) != 2 {
		t.Fatalf("insights = %+v, want 2 entries", got)
	}
	if got[0].Trend != "up" || got[1].Trend != "down" {
		t.Fatalf("trends = %q, %q", got[0].Trend, got[1].Trend)
	}
}

func TestInsightsExcludesExactTwentyPercent(t *testing.T) {
	histories := []CategoryHistory{
		{Category: "Food", Current: 1200, Average: 1000},     // +20% exactly
		{Category: "Transport", Current: 800, Average: 1000}, // -20% exactly
		{Category: "Fun", Current: 1201, Average: 1000},      // just over
	}

	got := Insights(histories)
	if len(got) != 1 || got[0].Category != "Fun" {
		t.Fatalf("insights = %+v, want only the swing beyond 20%%", got)
	}
}
