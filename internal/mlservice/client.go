package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"finpulse/internal/core"
)

// Client talks to the external prediction service. Every failure is returned
// as a wrapped error; callers treat predictions as optional enrichment and
// never let an outage reach engine output.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// transactionPayload is the service's wire shape: signed amounts, negative
// for expenses.
type transactionPayload struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

type budgetPayload struct {
	Category       string  `json:"category"`
	MonthlyLimit   float64 `json:"monthlyLimit"`
	CurrentSpent   float64 `json:"currentSpent"`
	AlertThreshold float64 `json:"alertThreshold"`
}

type goalPayload struct {
	Title         string  `json:"title"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	Deadline      string  `json:"deadline,omitempty"`
}

type predictionRequest struct {
	Transactions []transactionPayload `json:"transactions"`
	TargetMonth  string               `json:"target_month,omitempty"`
}

type healthScoreRequest struct {
	Transactions []transactionPayload `json:"transactions"`
	Budgets      []budgetPayload      `json:"budgets"`
	Goals        []goalPayload        `json:"goals"`
}

// MonthPrediction is the service's forecast for one calendar month.
type MonthPrediction struct {
	PredictedAmount   float64   `json:"predicted_amount"`
	Confidence        float64   `json:"confidence"`
	Trend             string    `json:"trend"`
	SeasonalFactor    float64   `json:"seasonal_factor"`
	HistoricalAverage float64   `json:"historical_average"`
	PredictionRange   []float64 `json:"prediction_range"`
	TargetMonth       string    `json:"target_month"`
}

// CategoryForecast is one category's share of the monthly forecast.
type CategoryForecast struct {
	Category          string  `json:"category"`
	PredictedAmount   float64 `json:"predicted_amount"`
	Confidence        float64 `json:"confidence"`
	Trend             string  `json:"trend"`
	PercentageOfTotal float64 `json:"percentage_of_total"`
}

type CategoryForecasts struct {
	Predictions    []CategoryForecast `json:"predictions"`
	TotalPredicted float64            `json:"total_predicted"`
	TargetMonth    string             `json:"target_month"`
}

// HealthScore is the subset of the service's scoring response the API
// surfaces.
type HealthScore struct {
	OverallScore    float64  `json:"overall_score"`
	Grade           string   `json:"grade"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	PriorityActions []string `json:"priority_actions"`
	ScoreTrend      string   `json:"score_trend"`
}

// PredictMonth forecasts total expenses for targetMonth (YYYY-MM, optional).
func (c *Client) PredictMonth(ctx context.Context, txns []core.Transaction, targetMonth string) (MonthPrediction, error) {
	req := predictionRequest{
		Transactions: toPayload(txns),
		TargetMonth:  targetMonth,
	}
	var out MonthPrediction
	if err := c.post(ctx, "/api/predictions/predict-month", req, &out); err != nil {
		return MonthPrediction{}, fmt.Errorf("predict month: %w", err)
	}
	return out, nil
}

// CategoryPredictions forecasts per-category expenses for targetMonth.
func (c *Client) CategoryPredictions(ctx context.Context, txns []core.Transaction, targetMonth string) (CategoryForecasts, error) {
	req := predictionRequest{
		Transactions: toPayload(txns),
		TargetMonth:  targetMonth,
	}
	var out CategoryForecasts
	if err := c.post(ctx, "/api/predictions/predict-categories", req, &out); err != nil {
		return CategoryForecasts{}, fmt.Errorf("predict categories: %w", err)
	}
	return out, nil
}

// HealthScoreFor scores the user's overall financial health from a full
// snapshot.
func (c *Client) HealthScoreFor(ctx context.Context, txns []core.Transaction, budgets []core.Budget, goals []core.Goal) (HealthScore, error) {
	req := healthScoreRequest{
		Transactions: toPayload(txns),
		Budgets:      make([]budgetPayload, 0, len(budgets)),
		Goals:        make([]goalPayload, 0, len(goals)),
	}
	for _, b := range budgets {
		req.Budgets = append(req.Budgets, budgetPayload{
			Category:       b.Category,
			MonthlyLimit:   b.Limit.Units(),
			CurrentSpent:   b.CurrentSpent.Units(),
			AlertThreshold: b.AlertThreshold,
		})
	}
	for _, g := range goals {
		req.Goals = append(req.Goals, goalPayload{
			Title:         g.Title,
			TargetAmount:  g.TargetAmount.Units(),
			CurrentAmount: g.CurrentAmount.Units(),
			Deadline:      g.Deadline.String(),
		})
	}

	var out HealthScore
	if err := c.post(ctx, "/api/health/calculate-score", req, &out); err != nil {
		return HealthScore{}, fmt.Errorf("health score: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call prediction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("prediction service returned %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toPayload(txns []core.Transaction) []transactionPayload {
	out := make([]transactionPayload, 0, len(txns))
	for _, t := range txns {
		amount := t.Amount.Units()
		if t.Type == core.Expense {
			amount = -amount
		}
		out = append(out, transactionPayload{
			Date:        t.Date.String(),
			Amount:      amount,
			Category:    t.CategoryOrDefault(),
			Description: t.Note,
		})
	}
	return out
}
