package eventmodels

import (
	"context"
	"strconv"
	"time"
)

// Broker places and looks up orders on the exchange. Implemented by
// eventservices.BinanceBroker in production and by a mock in handler tests.
type Broker interface {
	PlaceOrder(ctx context.Context, req *OrderRequest) (*OrderDTO, error)
	FetchOrder(ctx context.Context, symbol string, orderID int64) (*OrderDTO, error)
	FetchServerTime(ctx context.Context) (int64, error)
}

// OrderDTO mirrors the exchange's order response for /fapi/v1/order.
type OrderDTO struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"timeInForce"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Price         string `json:"price"`
	StopPrice     string `json:"stopPrice"`
	AvgPrice      string `json:"avgPrice"`
	Time          int64  `json:"time"`
	TransactTime  int64  `json:"transactTime"`
	UpdateTime    int64  `json:"updateTime"`
}

// Timestamp falls back across the exchange's three timestamp fields; not every
// endpoint populates all of them.
func (dto *OrderDTO) Timestamp() time.Time {
	for _, ms := range []int64{dto.Time, dto.TransactTime, dto.UpdateTime} {
		if ms > 0 {
			return time.UnixMilli(ms).UTC()
		}
	}

	return time.Time{}
}

// OrderResult is the application-level outcome of a single submission. It is
// created per request and lives no longer than the rendered response and its
// log line.
type OrderResult struct {
	Accepted        bool
	ExchangeOrderID string
	ErrorMessage    string
	Raw             *OrderDTO
}

func NewOrderResult(dto *OrderDTO) OrderResult {
	return OrderResult{
		Accepted:        true,
		ExchangeOrderID: strconv.FormatInt(dto.OrderID, 10),
		Raw:             dto,
	}
}

func NewOrderResultFromError(err error) OrderResult {
	return OrderResult{
		Accepted:     false,
		ErrorMessage: err.Error(),
	}
}
