package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/bus"
	"spendlens/internal/forecast"
	"spendlens/internal/model"
	"spendlens/internal/store"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeBody(r, &creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		s.writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	id, err := s.store.CreateUser(r.Context(), creds.Username, creds.Password)
	if err != nil {
		s.log.Warn().Err(err).Str("username", creds.Username).Msg("register failed")
		s.writeError(w, http.StatusConflict, "could not create user")
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{"id": id, "username": creds.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeBody(r, &creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	uid, err := s.store.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, store.ErrBadCredentials) {
			s.writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.log.Error().Err(err).Msg("authenticating")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := s.store.CreateToken(r.Context(), uid, tokenTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("issuing token")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleLogout revokes the presented token and forgets the user's chat
// context.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := s.store.DeleteToken(r.Context(), token); err != nil {
		s.log.Error().Err(err).Msg("revoking token")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if s.chat != nil {
		s.chat.ClearContext(userID(r))
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	summary, err := s.store.Summary(r.Context(), userID(r), now.Year(), now.Month())
	if err != nil {
		s.log.Error().Err(err).Msg("building summary")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.Categories(r.Context(), userID(r))
	if err != nil {
		s.log.Error().Err(err).Msg("listing categories")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string       `json:"name"`
		Type model.TxType `json:"type"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Name == "" || !in.Type.Valid() {
		s.writeError(w, http.StatusBadRequest, "name and valid type required")
		return
	}

	id, err := s.store.CreateCategory(r.Context(), userID(r), in.Name, in.Type)
	if err != nil {
		s.log.Warn().Err(err).Msg("creating category")
		s.writeError(w, http.StatusConflict, "could not create category")
		return
	}

	s.writeJSON(w, http.StatusCreated, model.Category{ID: id, Name: in.Name, Type: in.Type})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	txs, err := s.store.Transactions(r.Context(), userID(r), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("listing transactions")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

type transactionInput struct {
	CategoryID  int64           `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        model.TxType    `json:"type"`
	Description string          `json:"description"`
	Date        *time.Time      `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !in.Amount.IsPositive() || !in.Type.Valid() || in.CategoryID == 0 {
		s.writeError(w, http.StatusBadRequest, "category_id, positive amount and valid type required")
		return
	}

	tx := &model.Transaction{
		UserID:      userID(r),
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}

	if err := s.store.AddTransaction(r.Context(), tx); err != nil {
		s.log.Error().Err(err).Msg("creating transaction")
		s.writeError(w, http.StatusInternalServerError, "could not create transaction")
		return
	}

	s.publish(bus.KindTransactionsChanged)
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var in struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !in.Amount.IsPositive() {
		s.writeError(w, http.StatusBadRequest, "positive amount required")
		return
	}

	if err := s.store.UpdateTransactionAmount(r.Context(), userID(r), id, in.Amount); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.log.Error().Err(err).Msg("updating transaction")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publish(bus.KindTransactionsChanged)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.log.Error().Err(err).Msg("deleting transaction")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publish(bus.KindTransactionsChanged)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	budgets, err := s.store.Budgets(r.Context(), userID(r), now.Year(), now.Month())
	if err != nil {
		s.log.Error().Err(err).Msg("listing budgets")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if budgets == nil {
		budgets = []model.Budget{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CategoryID int64           `json:"category_id"`
		Amount     decimal.Decimal `json:"amount"`
		Month      int             `json:"month"`
		Year       int             `json:"year"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.CategoryID == 0 || !in.Amount.IsPositive() {
		s.writeError(w, http.StatusBadRequest, "category_id and positive amount required")
		return
	}

	now := s.now()
	if in.Month == 0 {
		in.Month = int(now.Month())
	}
	if in.Year == 0 {
		in.Year = now.Year()
	}
	if in.Month < 1 || in.Month > 12 {
		s.writeError(w, http.StatusBadRequest, "month out of range")
		return
	}

	b := &model.Budget{
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		Month:      in.Month,
		Year:       in.Year,
	}
	if err := s.store.SetBudget(r.Context(), userID(r), b); err != nil {
		s.log.Error().Err(err).Msg("setting budget")
		s.writeError(w, http.StatusInternalServerError, "could not set budget")
		return
	}

	s.publish(bus.KindBudgetsChanged)
	s.writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		s.writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var in model.ChatRequest
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message cannot be empty")
		return
	}

	reply := s.chat.Process(r.Context(), userID(r), in.Message)
	s.writeJSON(w, http.StatusOK, model.ChatResponse{Reply: reply})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Type   model.TxType `json:"type"`
		Method string       `json:"method"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Type == "" {
		in.Type = model.TxExpense
	}
	if !in.Type.Valid() {
		s.writeError(w, http.StatusBadRequest, "type must be income or expense")
		return
	}
	if in.Method == "" {
		in.Method = forecast.MethodAuto
	}

	history, err := s.store.MonthlyHistory(r.Context(), userID(r), in.Type, 12)
	if err != nil {
		s.log.Error().Err(err).Msg("loading history")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	res := forecast.NextMonth(history, in.Method)
	s.writeJSON(w, http.StatusOK, model.ForecastResponse{
		Forecast:   res.Value,
		Method:     res.Method,
		Confidence: res.Confidence,
	})
}

func (s *Server) handleRiskAnalysis(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	usages, err := s.store.BudgetUsages(r.Context(), userID(r), now.Year(), now.Month())
	if err != nil {
		s.log.Error().Err(err).Msg("loading budget usages")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	report := forecast.AssessRisk(usages, now.Day(), daysInMonth(now))
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	histories, err := s.store.CategoryHistories(r.Context(), userID(r), now.Year(), now.Month())
	if err != nil {
		s.log.Error().Err(err).Msg("loading category histories")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	insights := forecast.Insights(histories)
	if insights == nil {
		insights = []forecast.Insight{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
