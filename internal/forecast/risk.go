package forecast

// Risk levels for the overall budget assessment.
const (
	RiskNone     = "none"
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// BudgetUsage is one budget's spending position mid-month.
type BudgetUsage struct {
	Category string
	Spent    float64
	Budget   float64
}

// CategoryRisk flags one budget projected to finish the month at 90% or
// more of its limit.
type CategoryRisk struct {
	Category  string  `json:"category"`
	Risk      int     `json:"risk"`
	Spent     float64 `json:"spent"`
	Budget    float64 `json:"budget"`
	Projected float64 `json:"projected"`
}

// RiskReport is the overall budget risk assessment.
type RiskReport struct {
	Score              float64        `json:"risk_score"`
	Level              string         `json:"risk_level"`
	HighRiskCategories []CategoryRisk `json:"high_risk_categories"`
	TotalBudgets       int            `json:"total_budgets"`
	DaysRemaining      int            `json:"days_remaining"`
}

// scoreProjection maps a projected end-of-month utilization percentage onto
// a 0-100 risk score.
func scoreProjection(projectedPct float64) int {
	switch {
	case projectedPct > 120:
		return 100
	case projectedPct > 100:
		return 80
	case projectedPct > 90:
		return 60
	case projectedPct > 80:
		return 40
	default:
		return 20
	}
}

// levelFor grades the averaged risk score.
func levelFor(avg float64) string {
	switch {
	case avg >= 80:
		return RiskCritical
	case avg >= 60:
		return RiskHigh
	case avg >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// AssessRisk projects each budget's month-end spend from its daily average
// so far and scores the overall risk. dayOfMonth is 1-based.
func AssessRisk(usages []BudgetUsage, dayOfMonth, daysInMonth int) RiskReport {
	daysRemaining := daysInMonth - dayOfMonth
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	report := RiskReport{
		Level:              RiskNone,
		TotalBudgets:       len(usages),
		DaysRemaining:      daysRemaining,
		HighRiskCategories: []CategoryRisk{},
	}
	if len(usages) == 0 {
		return report
	}

	var scores []int
	for _, u := range usages {
		if u.Budget == 0 {
			continue
		}

		var dailyAvg float64
		if dayOfMonth > 0 {
			dailyAvg = u.Spent / float64(dayOfMonth)
		}
		projected := u.Spent + dailyAvg*float64(daysRemaining)
		projectedPct := projected / u.Budget * 100

		risk := scoreProjection(projectedPct)
		scores = append(scores, risk)

		if risk >= 60 {
			report.HighRiskCategories = append(report.HighRiskCategories, CategoryRisk{
				Category:  u.Category,
				Risk:      risk,
				Spent:     u.Spent,
				Budget:    u.Budget,
				Projected: projected,
			})
		}
	}

	// Budgets exist but none are funded: score 0 grades as low, not none.
	if len(scores) == 0 {
		report.Level = RiskLow
		return report
	}

	var sum int
	for _, s := range scores {
		sum += s
	}
	report.Score = float64(sum) / float64(len(scores))
	report.Level = levelFor(report.Score)
	return report
}

// Insight marks a category whose current-month spend deviates more than 20%
// from its historical monthly average.
type Insight struct {
	Category  string  `json:"category"`
	Current   float64 `json:"current"`
	Average   float64 `json:"average"`
	ChangePct float64 `json:"change_pct"`
	Trend     string  `json:"trend"`
}

// CategoryHistory pairs a category's current-month total with its
// historical monthly average.
type CategoryHistory struct {
	Category string
	Current  float64
	Average  float64
}

// Insights returns the categories with notable month-over-average swings.
func Insights(histories []CategoryHistory) []Insight {
	var out []Insight
	for _, h := range histories {
		if h.Average <= 0 {
			continue
		}

		change := (h.Current - h.Average) / h.Average * 100
		if change <= 20 && change >= -20 {
			continue
		}

		trend := "up"
		if change < 0 {
			trend = "down"
		}
		out = append(out, Insight{
			Category:  h.Category,
			Current:   h.Current,
			Average:   h.Average,
			ChangePct: change,
			Trend:     trend,
		})
	}
	return out
}
