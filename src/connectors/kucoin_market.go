package connectors

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// Interval15Min is the kline type the ingestion pipeline runs on.
const Interval15Min = "15min"

// kucoinMarketResponse is the generic KuCoin envelope. Kline rows come back
// as string arrays: [time, open, close, high, low, volume, turnover].
type kucoinMarketResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg,omitempty"`
	Data json.RawMessage `json:"data"`
}

// Kline is one parsed OHLCV row from the exchange, in the order the
// provider returned it. Callers must not assume any sort order.
type Kline struct {
	Timestamp time.Time
	Open      decimal.Decimal
	Close     decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Volume    decimal.Decimal
}

// KucoinMarketClient fetches public market data from the KuCoin REST API.
// No credentials are needed for the candles endpoint.
type KucoinMarketClient struct {
	http *resty.Client
}

func NewKucoinMarketClient() *KucoinMarketClient {
	config := GetConfig()
	return NewKucoinMarketClientWithBaseURL(config.KucoinBaseURL, config.KucoinTimeout)
}

// NewKucoinMarketClientWithBaseURL builds a client against a custom base URL.
// Used by tests to point at an httptest server.
func NewKucoinMarketClientWithBaseURL(baseURL string, timeout time.Duration) *KucoinMarketClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &KucoinMarketClient{http: httpClient}
}

// GetKlineData fetches kline (candle) data for a symbol. Any transport
// error, non-2xx status, API error code or malformed payload is logged and
// yields nil: a failed fetch means "no data this cycle", never a raised
// error. No retry happens here, the next scheduled cycle retries naturally.
// Docs: https://docs.kucoin.com/#get-klines
func (c *KucoinMarketClient) GetKlineData(ctx context.Context, symbol, interval string) []Kline {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("type", interval).
		SetQueryParam("symbol", symbol).
		Get("/api/v1/market/candles")
	if err != nil {
		logger.WithError(err).WithField("symbol", symbol).Error("KuCoin kline request failed")
		return nil
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		logger.WithFields(logger.Fields{
			"symbol": symbol,
			"status": resp.StatusCode(),
			"body":   string(resp.Body()),
		}).Error("KuCoin kline request returned non-2xx status")
		return nil
	}

	var apiResp kucoinMarketResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		logger.WithError(err).WithField("symbol", symbol).Error("Failed to unmarshal KuCoin kline response")
		return nil
	}

	if apiResp.Code != "" && apiResp.Code != "200000" {
		logger.WithFields(logger.Fields{
			"symbol": symbol,
			"code":   apiResp.Code,
			"msg":    apiResp.Msg,
		}).Error("KuCoin API returned error code")
		return nil
	}

	var rows [][]string
	if err := json.Unmarshal(apiResp.Data, &rows); err != nil {
		logger.WithError(err).WithField("symbol", symbol).Error("Failed to unmarshal KuCoin kline rows")
		return nil
	}

	klines := make([]Kline, 0, len(rows))
	for _, row := range rows {
		kline, err := parseKlineRow(row)
		if err != nil {
			logger.WithError(err).WithFields(logger.Fields{
				"symbol": symbol,
				"row":    row,
			}).Error("Failed to parse KuCoin kline row")
			return nil
		}
		klines = append(klines, kline)
	}

	logger.WithFields(logger.Fields{
		"symbol": symbol,
		"rows":   len(klines),
	}).Debug("KuCoin kline data fetched")

	return klines
}

func parseKlineRow(row []string) (Kline, error) {
	if len(row) < 6 {
		return Kline{}, errShortKlineRow
	}

	epoch, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return Kline{}, err
	}

	fields := make([]decimal.Decimal, 5)
	for i, raw := range row[1:6] {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return Kline{}, err
		}
		fields[i] = value
	}

	return Kline{
		Timestamp: time.Unix(epoch, 0).UTC(),
		Open:      fields[0],
		Close:     fields[1],
		High:      fields[2],
		Low:       fields[3],
		Volume:    fields[4],
	}, nil
}
