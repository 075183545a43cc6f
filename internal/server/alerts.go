package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"spendlens/internal/model"
)

// Alert thresholds: spend as a percentage of budget.
const (
	alertDangerPct  = 100
	alertWarningPct = 90
	alertInfoPct    = 75
)

var hundred = decimal.NewFromInt(100)

// computeAlerts turns the month's budgets into threshold alerts. Budgets
// below the info threshold produce no alert at all.
func (s *Server) computeAlerts(ctx context.Context, uid int64) ([]model.Alert, error) {
	now := s.now()
	budgets, err := s.store.Budgets(ctx, uid, now.Year(), now.Month())
	if err != nil {
		return nil, fmt.Errorf("loading budgets: %w", err)
	}

	alerts := []model.Alert{}
	for _, b := range budgets {
		spent, err := s.store.CategorySpend(ctx, uid, b.CategoryID, now.Year(), now.Month())
		if err != nil {
			return nil, fmt.Errorf("summing spend for %s: %w", b.Category, err)
		}
		if !b.Amount.IsPositive() {
			continue
		}

		pct := spent.Div(b.Amount).Mul(hundred).InexactFloat64()

		var level model.Severity
		var message string
		switch {
		case pct >= alertDangerPct:
			level = model.SeverityDanger
			message = fmt.Sprintf("You have exceeded your %s budget", b.Category)
		case pct >= alertWarningPct:
			level = model.SeverityWarning
			message = fmt.Sprintf("You are close to your %s budget limit", b.Category)
		case pct >= alertInfoPct:
			level = model.SeverityInfo
			message = fmt.Sprintf("You have used %.0f%% of your %s budget", pct, b.Category)
		default:
			continue
		}

		alerts = append(alerts, model.Alert{
			ID:           b.ID,
			Level:        level,
			Category:     b.Category,
			Message:      message,
			SpentAmount:  spent,
			BudgetAmount: b.Amount,
			Percentage:   pct,
			Remaining:    b.Amount.Sub(spent),
		})
	}
	return alerts, nil
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.computeAlerts(r.Context(), userID(r))
	if err != nil {
		s.log.Error().Err(err).Msg("computing alerts")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, model.AlertsResponse{Alerts: alerts})
}
