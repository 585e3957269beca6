package eventservices

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jdelgado-dev/binance-futures-web/src/eventmodels"
)

const (
	orderEndpoint      = "/fapi/v1/order"
	serverTimeEndpoint = "/fapi/v1/time"

	recvWindowMillis = 5000
)

// BinanceBroker talks to the Binance USDT-M futures REST API. Requests that
// touch the account are signed with HMAC-SHA256 over the encoded query.
type BinanceBroker struct {
	baseURL   string
	apiKey    string
	apiSecret string
	symbols   map[string]eventmodels.SymbolSpec
	client    *http.Client
}

func NewBinanceBroker(baseURL, apiKey, apiSecret string, symbols map[string]eventmodels.SymbolSpec) *BinanceBroker {
	return &BinanceBroker{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		symbols:   symbols,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PlaceOrder submits a validated order. Quantity and prices are rounded to the
// symbol's declared precision before encoding; Binance rejects values with too
// many decimals.
func (b *BinanceBroker) PlaceOrder(ctx context.Context, req *eventmodels.OrderRequest) (*eventmodels.OrderDTO, error) {
	spec, found := b.symbols[req.Symbol]
	if !found {
		return nil, fmt.Errorf("PlaceOrder: no symbol spec for %s", req.Symbol)
	}

	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("quantity", formatDecimal(req.Quantity, spec.QuantityPrecision))

	switch req.Type {
	case eventmodels.OrderTypeMarket:
		params.Set("type", "MARKET")
	case eventmodels.OrderTypeLimit:
		if req.Price == nil {
			return nil, fmt.Errorf("PlaceOrder: limit order requires a price")
		}

		params.Set("type", "LIMIT")
		params.Set("timeInForce", "GTC")
		params.Set("price", formatDecimal(*req.Price, spec.PricePrecision))
	case eventmodels.OrderTypeStopLimit:
		if req.Price == nil || req.StopPrice == nil {
			return nil, fmt.Errorf("PlaceOrder: stop-limit order requires a price and a stop price")
		}

		// Binance futures calls a stop-limit order "STOP"
		params.Set("type", "STOP")
		params.Set("timeInForce", "GTC")
		params.Set("price", formatDecimal(*req.Price, spec.PricePrecision))
		params.Set("stopPrice", formatDecimal(*req.StopPrice, spec.PricePrecision))
	default:
		return nil, fmt.Errorf("PlaceOrder: unsupported order type: %s", req.Type)
	}

	clientOrderID := req.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}
	params.Set("newClientOrderId", clientOrderID)

	log.Infof("PlaceOrder: submitting %s %s %s order for %s", req.Side, req.Type, params.Get("quantity"), req.Symbol)

	var dto eventmodels.OrderDTO
	if err := b.signedRequest(ctx, http.MethodPost, orderEndpoint, params, &dto); err != nil {
		return nil, fmt.Errorf("PlaceOrder: failed to place order: %w", err)
	}

	log.Infof("PlaceOrder: placed order %d with status %s", dto.OrderID, dto.Status)

	return &dto, nil
}

// FetchOrder looks up the current status of an order.
func (b *BinanceBroker) FetchOrder(ctx context.Context, symbol string, orderID int64) (*eventmodels.OrderDTO, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", strconv.FormatInt(orderID, 10))

	var dto eventmodels.OrderDTO
	if err := b.signedRequest(ctx, http.MethodGet, orderEndpoint, params, &dto); err != nil {
		return nil, fmt.Errorf("FetchOrder: failed to fetch order %d: %w", orderID, err)
	}

	return &dto, nil
}

// FetchServerTime validates connectivity and credentials-independent reachability
// of the exchange. Used as the startup health check.
func (b *BinanceBroker) FetchServerTime(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+serverTimeEndpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("FetchServerTime: failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return 0, eventmodels.ExchangeError{Message: fmt.Sprintf("failed to reach exchange: %v", err)}
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, fmt.Errorf("FetchServerTime: failed to read response body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return 0, parseExchangeError(res.StatusCode, body)
	}

	var resp struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("FetchServerTime: failed to parse response: %w", err)
	}

	return resp.ServerTime, nil
}

func (b *BinanceBroker) signedRequest(ctx context.Context, method, endpoint string, params url.Values, out interface{}) error {
	params.Set("recvWindow", strconv.Itoa(recvWindowMillis))
	params.Set("timestamp", strconv.FormatInt(time.Now().UTC().UnixMilli(), 10))

	// the signature covers the payload exactly as sent and goes last
	payload := params.Encode()
	encoded := payload + "&signature=" + signPayload(payload, b.apiSecret)

	var httpReq *http.Request
	var err error

	switch method {
	case http.MethodGet:
		httpReq, err = http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s?%s", b.baseURL, endpoint, encoded), nil)
	default:
		httpReq, err = http.NewRequestWithContext(ctx, method, b.baseURL+endpoint, strings.NewReader(encoded))
		if httpReq != nil {
			httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("signedRequest: failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-MBX-APIKEY", b.apiKey)

	res, err := b.client.Do(httpReq)
	if err != nil {
		return eventmodels.ExchangeError{Message: fmt.Sprintf("failed to reach exchange: %v", err)}
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("signedRequest: failed to read response body: %w", err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return parseExchangeError(res.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("signedRequest: failed to parse response: %w", err)
	}

	return nil
}

func parseExchangeError(status int, body []byte) error {
	var apiErr struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}

	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
		return eventmodels.ExchangeError{HTTPStatus: status, Code: apiErr.Code, Message: apiErr.Msg}
	}

	return eventmodels.ExchangeError{HTTPStatus: status, Message: strings.TrimSpace(string(body))}
}

func signPayload(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func formatDecimal(value float64, precision int) string {
	if precision < 0 {
		precision = 0
	}

	s := strconv.FormatFloat(value, 'f', precision, 64)
	if !strings.Contains(s, ".") {
		return s
	}

	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
