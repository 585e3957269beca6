package eventmodels

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// OrderRequest is a fully typed order, parsed from the submission form and
// validated before the broker is ever called.
type OrderRequest struct {
	Symbol        string
	Side          OrderSide
	Type          OrderType
	Quantity      float64
	Price         *float64
	StopPrice     *float64
	ClientOrderID string
}

// orderForm is the raw form payload. All fields arrive as strings; each one is
// converted by its own parser below so that a bad field names itself in the
// resulting ValidationError.
type orderForm struct {
	Symbol    string `schema:"symbol"`
	Side      string `schema:"side"`
	Type      string `schema:"type"`
	Quantity  string `schema:"quantity"`
	Price     string `schema:"price"`
	StopPrice string `schema:"stop_price"`
}

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func NewOrderRequestFromForm(values url.Values) (*OrderRequest, error) {
	var form orderForm
	if err := formDecoder.Decode(&form, values); err != nil {
		return nil, ValidationError{Field: "form", Reason: err.Error()}
	}

	req := &OrderRequest{
		Symbol: strings.ToUpper(strings.TrimSpace(form.Symbol)),
		Side:   OrderSide(strings.ToUpper(strings.TrimSpace(form.Side))),
		Type:   OrderType(strings.ToLower(strings.TrimSpace(form.Type))),
	}

	quantity, err := parsePositiveFloat("quantity", form.Quantity)
	if err != nil {
		return nil, err
	}
	req.Quantity = quantity

	if req.Price, err = parseOptionalPositiveFloat("price", form.Price); err != nil {
		return nil, err
	}

	if req.StopPrice, err = parseOptionalPositiveFloat("stop_price", form.StopPrice); err != nil {
		return nil, err
	}

	return req, nil
}

func parsePositiveFloat(field, value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ValidationError{Field: field, Reason: "is required"}
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, ValidationError{Field: field, Reason: "must be a number"}
	}

	if f <= 0 {
		return 0, ValidationError{Field: field, Reason: "must be positive"}
	}

	return f, nil
}

func parseOptionalPositiveFloat(field, value string) (*float64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	f, err := parsePositiveFloat(field, value)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// Validate checks the request against the symbol whitelist and the per-type
// required fields. It has no side effects.
func (req *OrderRequest) Validate(symbols map[string]SymbolSpec) error {
	if req.Symbol == "" {
		return ValidationError{Field: "symbol", Reason: "is required"}
	}

	if _, found := symbols[req.Symbol]; !found {
		return ValidationError{Field: "symbol", Reason: "is not in the allowed symbol list"}
	}

	switch req.Side {
	case OrderSideBuy, OrderSideSell:
	default:
		return ValidationError{Field: "side", Reason: "must be BUY or SELL"}
	}

	if req.Quantity <= 0 {
		return ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	switch req.Type {
	case OrderTypeMarket:
	case OrderTypeLimit:
		if req.Price == nil {
			return ValidationError{Field: "price", Reason: "is required for limit orders"}
		}
	case OrderTypeStopLimit:
		if req.Price == nil {
			return ValidationError{Field: "price", Reason: "is required for stop-limit orders"}
		}
		if req.StopPrice == nil {
			return ValidationError{Field: "stop_price", Reason: "is required for stop-limit orders"}
		}
	default:
		return ValidationError{Field: "type", Reason: "must be market, limit or stop_limit"}
	}

	return nil
}
