package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradinganalysis/src/model"

	"github.com/shopspring/decimal"
)

func candleHistory(n int) []model.CandleView {
	views := make([]model.CandleView, 0, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := decimal.NewFromInt(int64(28000 + i))
		views = append(views, model.CandleView{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Open:      price,
			High:      price.Add(decimal.NewFromInt(10)),
			Low:       price.Sub(decimal.NewFromInt(10)),
			Close:     price.Add(decimal.NewFromInt(5)),
			Volume:    decimal.NewFromInt(100),
		})
	}
	return views
}

// completionResponse wraps content in an OpenAI-style chat completion body.
func completionResponse(t *testing.T, content string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	if err != nil {
		t.Fatalf("failed to marshal completion response: %v", err)
	}
	return body
}

const validPredictionJSON = `{
	"next_candle": {"direction": "BULLISH", "confidence": 72},
	"third_candle": {"direction": "BULLISH", "confidence": 61},
	"fifth_candle": {"direction": "NEUTRAL", "confidence": 44},
	"tenth_candle": {"direction": "BEARISH", "confidence": 51},
	"probability_text": "EMA 9 above EMA 21, RSI rising from 48",
	"risk_text": "Momentum fading near resistance"
}`

func TestGenerateSignalFromCandles(t *testing.T) {
	var gotAuth string
	var gotRequest chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write(completionResponse(t, validPredictionJSON))
	}))
	defer server.Close()

	client := NewLiaraAIClientWithBaseURL(server.URL, "test-key", "openai/gpt-4o-mini", 5*time.Second)

	prediction, err := client.GenerateSignalFromCandles(context.Background(), candleHistory(100))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
	if gotRequest.Model != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected model %q", gotRequest.Model)
	}
	if gotRequest.ResponseFormat == nil || gotRequest.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %+v", gotRequest.ResponseFormat)
	}

	if prediction.NextCandle.Direction != model.DirectionBullish || prediction.NextCandle.Confidence != 72 {
		t.Fatalf("unexpected next candle prediction %+v", prediction.NextCandle)
	}
	if prediction.TenthCandle.Direction != model.DirectionBearish {
		t.Fatalf("unexpected tenth candle prediction %+v", prediction.TenthCandle)
	}
	if prediction.ProbabilityText == "" || prediction.RiskText == "" {
		t.Fatalf("expected explanation texts to be set, got %+v", prediction)
	}
}

func TestGenerateSignalFromCandlesNotEnoughHistory(t *testing.T) {
	client := NewLiaraAIClientWithBaseURL("http://localhost:1", "test-key", "m", time.Second)

	_, err := client.GenerateSignalFromCandles(context.Background(), candleHistory(99))
	if !errors.Is(err, ErrNotEnoughCandles) {
		t.Fatalf("expected ErrNotEnoughCandles, got %v", err)
	}
}

func TestGenerateSignalFromCandlesIncompletePrediction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(completionResponse(t, `{"next_candle": {"direction": "SIDEWAYS", "confidence": 72}}`))
	}))
	defer server.Close()

	client := NewLiaraAIClientWithBaseURL(server.URL, "test-key", "m", 5*time.Second)

	_, err := client.GenerateSignalFromCandles(context.Background(), candleHistory(100))
	if !errors.Is(err, ErrIncompletePrediction) {
		t.Fatalf("expected ErrIncompletePrediction, got %v", err)
	}
}

func TestGenerateSignalFromCandlesAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewLiaraAIClientWithBaseURL(server.URL, "test-key", "m", 5*time.Second)

	if _, err := client.GenerateSignalFromCandles(context.Background(), candleHistory(100)); err == nil {
		t.Fatal("expected error on HTTP failure")
	}
}

func TestChatReply(t *testing.T) {
	var gotRequest chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write(completionResponse(t, "BTC looks range-bound on the 15m chart."))
	}))
	defer server.Close()

	client := NewLiaraAIClientWithBaseURL(server.URL, "test-key", "m", 5*time.Second)

	history := []model.ChatMessage{
		{Owner: model.ChatOwnerUser, MessageText: "what do you think about BTC?"},
		{Owner: model.ChatOwnerAI, MessageText: "it is consolidating"},
	}

	reply := client.ChatReply(context.Background(), "BTC-USDT", history, "and now?")
	if reply != "BTC looks range-bound on the 15m chart." {
		t.Fatalf("unexpected reply %q", reply)
	}

	// system prompt, two history messages, new user message
	if len(gotRequest.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(gotRequest.Messages))
	}
	if gotRequest.Messages[0].Role != "system" {
		t.Fatalf("expected system role first, got %q", gotRequest.Messages[0].Role)
	}
	if gotRequest.Messages[1].Role != "user" || gotRequest.Messages[2].Role != "assistant" {
		t.Fatalf("history roles mapped wrong: %q, %q", gotRequest.Messages[1].Role, gotRequest.Messages[2].Role)
	}
	if gotRequest.Messages[3].Content != "and now?" {
		t.Fatalf("expected new user message last, got %q", gotRequest.Messages[3].Content)
	}
}

func TestChatReplyFallbackOnFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewLiaraAIClientWithBaseURL(server.URL, "test-key", "m", 5*time.Second)

	reply := client.ChatReply(context.Background(), "BTC-USDT", nil, "hello")
	if reply != chatFallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
	if calls == 0 {
		t.Fatal("expected the API to be called")
	}
}
