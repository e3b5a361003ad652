package mlservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"finpulse/internal/core"
)

func TestPredictMonth(t *testing.T) {
	var gotPath string
	var gotBody predictionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(MonthPrediction{
			PredictedAmount:   1250.50,
			Confidence:        0.82,
			Trend:             "increasing",
			SeasonalFactor:    1.1,
			HistoricalAverage: 1100,
			PredictionRange:   []float64{1000, 1500},
			TargetMonth:       "2025-07",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	txns := []core.Transaction{
		{ID: uuid.New(), Date: core.NewDate(2025, 6, 1), Amount: core.Money{Cents: 4250}, Type: core.Expense, Category: "Groceries", Note: "weekly"},
		{ID: uuid.New(), Date: core.NewDate(2025, 6, 5), Amount: core.Money{Cents: 500000}, Type: core.Income, Category: "Salary"},
	}

	got, err := client.PredictMonth(context.Background(), txns, "2025-07")
	if err != nil {
		t.Fatalf("PredictMonth: %v", err)
	}

	if gotPath != "/api/predictions/predict-month" {
		t.Errorf("path = %s", gotPath)
	}
	if gotBody.TargetMonth != "2025-07" {
		t.Errorf("target month = %s", gotBody.TargetMonth)
	}
	if len(gotBody.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(gotBody.Transactions))
	}
	if gotBody.Transactions[0].Amount != -42.50 {
		t.Errorf("expense amount = %v, want -42.50", gotBody.Transactions[0].Amount)
	}
	if gotBody.Transactions[1].Amount != 5000 {
		t.Errorf("income amount = %v, want 5000", gotBody.Transactions[1].Amount)
	}
	if got.PredictedAmount != 1250.50 || got.Trend != "increasing" {
		t.Errorf("prediction = %+v", got)
	}
}

func TestCategoryPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/predictions/predict-categories" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(CategoryForecasts{
			Predictions: []CategoryForecast{
				{Category: "Groceries", PredictedAmount: 420, Confidence: 0.7, Trend: "stable", PercentageOfTotal: 33.6},
			},
			TotalPredicted: 1250,
			TargetMonth:    "2025-07",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.CategoryPredictions(context.Background(), nil, "2025-07")
	if err != nil {
		t.Fatalf("CategoryPredictions: %v", err)
	}
	if len(got.Predictions) != 1 || got.Predictions[0].Category != "Groceries" {
		t.Errorf("forecasts = %+v", got)
	}
}

func TestHealthScoreFor(t *testing.T) {
	var gotBody healthScoreRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health/calculate-score" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(HealthScore{
			OverallScore:    72.5,
			Grade:           "B",
			Strengths:       []string{"Consistent savings"},
			PriorityActions: []string{"Build emergency fund"},
			ScoreTrend:      "improving",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	budgets := []core.Budget{{
		Category:       "Dining",
		Limit:          core.Money{Cents: 50000},
		CurrentSpent:   core.Money{Cents: 20000},
		AlertThreshold: 80,
		Period:         core.Monthly,
	}}
	goals := []core.Goal{{
		Title:         "Emergency fund",
		TargetAmount:  core.Money{Cents: 600000},
		CurrentAmount: core.Money{Cents: 150000},
		Deadline:      core.NewDate(2026, 6, 1),
	}}

	got, err := client.HealthScoreFor(context.Background(), nil, budgets, goals)
	if err != nil {
		t.Fatalf("HealthScoreFor: %v", err)
	}
	if got.OverallScore != 72.5 || got.Grade != "B" {
		t.Errorf("score = %+v", got)
	}
	if gotBody.Budgets[0].MonthlyLimit != 500 {
		t.Errorf("budget limit = %v, want 500", gotBody.Budgets[0].MonthlyLimit)
	}
	if gotBody.Goals[0].Deadline != "2026-06-01" {
		t.Errorf("goal deadline = %s", gotBody.Goals[0].Deadline)
	}
}

func TestClientSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not trained", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.PredictMonth(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for 503 response")
	}
}
