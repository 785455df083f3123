package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradinganalysis/src/model"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// signalHistorySize is how many candles the analysis prompt expects.
const signalHistorySize = 100

const signalSystemPrompt = `You are a technical analysis AI for financial markets, specializing in cryptocurrency on a 15-minute timeframe. Your analysis must be objective, data-driven, and contain no financial advice.

You will receive a JSON array of the last 100 15-minute candles for a crypto asset. Synthesize trend (EMA 9/21/50), momentum (RSI 14) and price action signals, then provide four predictions: next candle (15m), 3rd next candle (45m), 5th next candle (1h15m) and 10th next candle (2.5h).

Your output MUST be a single valid JSON object and nothing else, with this shape:

{
  "next_candle": {"direction": "BULLISH" or "BEARISH" or "NEUTRAL", "confidence": <0-100>},
  "third_candle": {"direction": "...", "confidence": <0-100>},
  "fifth_candle": {"direction": "...", "confidence": <0-100>},
  "tenth_candle": {"direction": "...", "confidence": <0-100>},
  "probability_text": "concise reasons for the predictions, naming the key indicators",
  "risk_text": "concise primary risks or conflicting signals"
}

Now, analyze the following candle data:
`

const chatFallbackReply = "Sorry, I'm having trouble connecting to my brain right now. Please try again later."

type chatMessagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string               `json:"model"`
	Messages       []chatMessagePayload `json:"messages"`
	ResponseFormat *responseFormat      `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// TimeframePrediction is one direction/confidence pair from the AI.
type TimeframePrediction struct {
	Direction  string `json:"direction"`
	Confidence int    `json:"confidence"`
}

func (p TimeframePrediction) valid() bool {
	switch p.Direction {
	case model.DirectionBullish, model.DirectionBearish, model.DirectionNeutral:
	default:
		return false
	}
	return p.Confidence >= 0 && p.Confidence <= 100
}

// SignalPrediction is the parsed multi-timeframe AI response.
type SignalPrediction struct {
	NextCandle      TimeframePrediction `json:"next_candle"`
	ThirdCandle     TimeframePrediction `json:"third_candle"`
	FifthCandle     TimeframePrediction `json:"fifth_candle"`
	TenthCandle     TimeframePrediction `json:"tenth_candle"`
	ProbabilityText string              `json:"probability_text"`
	RiskText        string              `json:"risk_text"`
}

// Complete reports whether every prediction and both explanation fields
// are present and in range. An incomplete prediction is a failed generation.
func (p *SignalPrediction) Complete() bool {
	if !p.NextCandle.valid() || !p.ThirdCandle.valid() || !p.FifthCandle.valid() || !p.TenthCandle.valid() {
		return false
	}
	return p.ProbabilityText != "" && p.RiskText != ""
}

// LiaraAIClient talks to the Liara OpenAI-compatible chat-completions API.
type LiaraAIClient struct {
	http  *resty.Client
	model string
}

func NewLiaraAIClient() (*LiaraAIClient, error) {
	config := GetConfig()
	if config.LiaraAPIKey == "" || config.LiaraBaseURL == "" {
		return nil, errors.New("LIARA_API_KEY and LIARA_BASE_URL must be set")
	}
	return NewLiaraAIClientWithBaseURL(config.LiaraBaseURL, config.LiaraAPIKey, config.LiaraModel, config.LiaraTimeout), nil
}

// NewLiaraAIClientWithBaseURL builds a client against a custom base URL.
// Used by tests to point at an httptest server.
func NewLiaraAIClientWithBaseURL(baseURL, apiKey, aiModel string, timeout time.Duration) *LiaraAIClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(apiKey)

	return &LiaraAIClient{
		http:  httpClient,
		model: aiModel,
	}
}

func (c *LiaraAIClient) complete(ctx context.Context, request chatCompletionRequest) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", fmt.Errorf("chat completion HTTP %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(resp.Body(), &completion); err != nil {
		return "", fmt.Errorf("unmarshal chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// GenerateSignalFromCandles sends the candle history to the AI and parses
// the multi-timeframe prediction it returns. A transport error, malformed
// body or incomplete prediction all surface as errors so the caller can
// retry a bounded number of times; no partial result is ever returned.
func (c *LiaraAIClient) GenerateSignalFromCandles(ctx context.Context, candles []model.CandleView) (*SignalPrediction, error) {
	if len(candles) < signalHistorySize {
		return nil, ErrNotEnoughCandles
	}

	candlesJSON, err := json.Marshal(candles)
	if err != nil {
		return nil, fmt.Errorf("marshal candles: %w", err)
	}

	content, err := c.complete(ctx, chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessagePayload{
			{Role: "user", Content: signalSystemPrompt + string(candlesJSON)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		logger.WithError(err).Error("AI signal generation failed")
		return nil, err
	}

	var prediction SignalPrediction
	if err := json.Unmarshal([]byte(content), &prediction); err != nil {
		logger.WithError(err).Error("Failed to parse AI signal response")
		return nil, fmt.Errorf("parse AI signal response: %w", err)
	}

	if !prediction.Complete() {
		logger.WithField("content", content).Error("AI returned an incomplete signal prediction")
		return nil, ErrIncompletePrediction
	}

	return &prediction, nil
}

// ChatReply answers a user message about a symbol, using the stored chat
// history as conversation context. An API failure degrades to a friendly
// fallback reply instead of an error: chat availability must not depend on
// the AI backend being up.
func (c *LiaraAIClient) ChatReply(ctx context.Context, symbolName string, history []model.ChatMessage, userMessage string) string {
	systemPrompt := fmt.Sprintf(
		"You are a helpful and expert trading assistant AI. The user is currently viewing the chart for the symbol '%s'. "+
			"Answer the user's questions concisely and directly based on general market knowledge, technical analysis principles, "+
			"and the context of the conversation. Do not provide financial advice. Be friendly and professional.",
		symbolName,
	)

	messages := make([]chatMessagePayload, 0, len(history)+2)
	messages = append(messages, chatMessagePayload{Role: "system", Content: systemPrompt})
	for _, message := range history {
		role := "assistant"
		if message.Owner == model.ChatOwnerUser {
			role = "user"
		}
		messages = append(messages, chatMessagePayload{Role: role, Content: message.MessageText})
	}
	messages = append(messages, chatMessagePayload{Role: "user", Content: userMessage})

	content, err := c.complete(ctx, chatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		logger.WithError(err).WithField("symbol", symbolName).Error("Chat AI request failed")
		return chatFallbackReply
	}

	return content
}
