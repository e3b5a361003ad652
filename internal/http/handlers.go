package http

import (
	"log/slog"
	"net/http"
	"time"

	"finpulse/internal/core"
	"finpulse/internal/mlservice"
)

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	now, err := parseNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	statuses, err := s.budgets.Statuses(r.Context(), now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget status evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "budget status unavailable")
		return
	}

	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	now, err := parseNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reports, err := s.goals.Progress(r.Context(), now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal progress evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "goal progress unavailable")
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleCategoryAnalytics(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := "categories|" + r.URL.Query().Get("from") + "|" + r.URL.Query().Get("to")
	if cached, ok := s.categoriesCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	analyses, err := s.analytics.CategoryAnalyses(r.Context(), window)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category analytics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "category analytics unavailable")
		return
	}

	s.categoriesCache.Set(key, analyses)
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	bucket := core.TimeBucket(r.URL.Query().Get("bucket"))
	if bucket == "" {
		bucket = core.BucketMonthly
	}
	switch bucket {
	case core.BucketDaily, core.BucketWeekly, core.BucketMonthly:
	default:
		writeError(w, http.StatusBadRequest, "bucket must be daily, weekly or monthly")
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := "series|" + string(bucket) + "|" + r.URL.Query().Get("from") + "|" + r.URL.Query().Get("to")
	if cached, ok := s.seriesCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	points, err := s.analytics.TimeSeries(r.Context(), bucket, window)
	if err != nil {
		slog.ErrorContext(r.Context(), "Time series failed", "error", err)
		writeError(w, http.StatusInternalServerError, "time series unavailable")
		return
	}

	s.seriesCache.Set(key, points)
	writeJSON(w, http.StatusOK, points)
}

// insightsResponse is the deterministic insights output plus the optional
// external forecast.
type insightsResponse struct {
	core.FinancialInsights
	Forecast *mlservice.MonthPrediction `json:"forecast,omitempty"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	now, err := parseNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := "insights|" + core.DateOf(now).String()
	if cached, ok := s.insightsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	insights, err := s.analytics.Insights(r.Context(), now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Insights computation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "insights unavailable")
		return
	}

	resp := insightsResponse{FinancialInsights: insights}
	if s.predictor != nil {
		// The external forecast is enrichment only; an outage never blanks
		// the deterministic insights.
		txns, err := s.analytics.LedgerSnapshot(r.Context(), nil, nil)
		if err == nil {
			nextMonth := now.AddDate(0, 1, 0).Format("2006-01")
			forecast, err := s.predictor.PredictMonth(r.Context(), txns, nextMonth)
			if err != nil {
				slog.WarnContext(r.Context(), "Prediction unavailable", "error", err)
			} else {
				resp.Forecast = &forecast
			}
		}
	}

	s.insightsCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategoryForecast(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if s.predictor == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction service not configured")
		return
	}

	now, err := parseNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	targetMonth := r.URL.Query().Get("month")
	if targetMonth == "" {
		targetMonth = now.AddDate(0, 1, 0).Format("2006-01")
	} else if _, err := time.Parse("2006-01", targetMonth); err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	txns, err := s.analytics.LedgerSnapshot(r.Context(), nil, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "category forecast unavailable")
		return
	}

	forecasts, err := s.predictor.CategoryPredictions(r.Context(), txns, targetMonth)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category forecast failed", "error", err)
		writeError(w, http.StatusBadGateway, "prediction service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, forecasts)
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if s.predictor == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction service not configured")
		return
	}

	txns, err := s.analytics.LedgerSnapshot(r.Context(), nil, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "health score unavailable")
		return
	}
	budgets, err := s.budgets.Active(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "health score unavailable")
		return
	}
	goals, err := s.goals.All(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "health score unavailable")
		return
	}

	score, err := s.predictor.HealthScoreFor(r.Context(), txns, budgets, goals)
	if err != nil {
		slog.ErrorContext(r.Context(), "Health score request failed", "error", err)
		writeError(w, http.StatusBadGateway, "prediction service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, score)
}

type createTransactionRequest struct {
	Date     core.Date `json:"date"`
	Amount   string    `json:"amount"`
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Note     string    `json:"note"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	txn := core.Transaction{
		Date:     req.Date,
		Amount:   core.Money{Cents: cents},
		Type:     core.TransactionType(req.Type),
		Category: req.Category,
		Note:     req.Note,
	}
	if err := txn.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.analytics.RecordTransaction(r.Context(), txn)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, created)
}

type createBudgetRequest struct {
	Category       string  `json:"category"`
	Limit          string  `json:"limit"`
	Period         string  `json:"period"`
	AlertThreshold float64 `json:"alertThreshold"`
	Active         *bool   `json:"active"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req createBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limitCents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit: "+err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	threshold := req.AlertThreshold
	if threshold == 0 {
		threshold = 80
	}

	budget := core.Budget{
		Category:       req.Category,
		Limit:          core.Money{Cents: limitCents},
		Period:         core.BudgetPeriod(req.Period),
		AlertThreshold: threshold,
		Active:         active,
	}
	if err := budget.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.budgets.Create(r.Context(), budget)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save budget")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

type createGoalRequest struct {
	Title         string    `json:"title"`
	TargetAmount  string    `json:"targetAmount"`
	CurrentAmount string    `json:"currentAmount"`
	Deadline      core.Date `json:"deadline"`
	Category      string    `json:"category"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req createGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	targetCents, err := core.ParseDecimalToCents(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid targetAmount: "+err.Error())
		return
	}

	var current core.Money
	if req.CurrentAmount != "" {
		currentCents, err := core.ParseDecimalToCents(req.CurrentAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid currentAmount: "+err.Error())
			return
		}
		current = core.Money{Cents: currentCents}
	}

	goal := core.Goal{
		Title:         req.Title,
		TargetAmount:  core.Money{Cents: targetCents},
		CurrentAmount: current,
		Deadline:      req.Deadline,
		Category:      core.GoalCategory(req.Category),
		Status:        core.GoalActive,
	}
	if err := goal.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.goals.Create(r.Context(), goal)
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save goal")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
