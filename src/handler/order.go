package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/jdelgado-dev/binance-futures-web/src/eventmodels"
	"github.com/jdelgado-dev/binance-futures-web/src/tradelog"
)

//go:embed templates/*.html
var templatesFS embed.FS

// OrderHandler orchestrates validate -> broker -> trade log -> view. All of
// its collaborators are injected at construction; it holds no lock across the
// exchange call.
type OrderHandler struct {
	broker    eventmodels.Broker
	tradeLog  *tradelog.TradeLog
	symbols   map[string]eventmodels.SymbolSpec
	templates *template.Template
}

func NewOrderHandler(broker eventmodels.Broker, tradeLog *tradelog.TradeLog, symbols map[string]eventmodels.SymbolSpec) (*OrderHandler, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("NewOrderHandler: failed to parse templates: %w", err)
	}

	return &OrderHandler{
		broker:    broker,
		tradeLog:  tradeLog,
		symbols:   symbols,
		templates: templates,
	}, nil
}

type indexView struct {
	Symbols []string
	Error   string
}

type resultView struct {
	Result eventmodels.OrderResult
	Order  *eventmodels.OrderDTO
}

func (h *OrderHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", indexView{Symbols: h.symbolNames()})
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Errorf("PlaceOrder: failed to parse form: %v", err)
		h.renderIndexError(w, http.StatusBadRequest, "could not parse the submitted form")
		return
	}

	// raw values so a rejected submission still names what was asked for
	symbol := r.PostForm.Get("symbol")
	orderType := r.PostForm.Get("type")

	req, err := eventmodels.NewOrderRequestFromForm(r.PostForm)
	if err == nil {
		err = req.Validate(h.symbols)
	}

	if err != nil {
		var vErr eventmodels.ValidationError
		if !errors.As(err, &vErr) {
			log.Errorf("PlaceOrder: unexpected validation failure: %v", err)
		}

		h.logEntry(tradelog.Entry{
			Action:    "place_order",
			Symbol:    symbol,
			OrderType: orderType,
			Result:    "error",
			Detail:    err.Error(),
		})

		h.renderIndexError(w, http.StatusBadRequest, err.Error())
		return
	}

	dto, err := h.broker.PlaceOrder(r.Context(), req)
	if err != nil {
		log.Errorf("PlaceOrder: %v", err)

		h.logEntry(tradelog.Entry{
			Action:    "place_order",
			Symbol:    req.Symbol,
			OrderType: string(req.Type),
			Result:    "error",
			Detail:    exchangeMessage(err),
		})

		rejected := eventmodels.NewOrderResultFromError(errors.New(exchangeMessage(err)))
		h.render(w, exchangeStatus(err), "order_result.html", resultView{Result: rejected})
		return
	}

	result := eventmodels.NewOrderResult(dto)

	h.logEntry(tradelog.Entry{
		Action:    "place_order",
		Symbol:    req.Symbol,
		OrderType: string(req.Type),
		Result:    "ok",
		Detail:    fmt.Sprintf("order_id=%s status=%s", result.ExchangeOrderID, dto.Status),
	})

	h.render(w, http.StatusOK, "order_result.html", resultView{Result: result, Order: dto})
}

func (h *OrderHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Errorf("CheckStatus: failed to parse form: %v", err)
		h.renderIndexError(w, http.StatusBadRequest, "could not parse the submitted form")
		return
	}

	symbol := r.PostForm.Get("symbol")
	if _, found := h.symbols[symbol]; !found {
		h.logEntry(tradelog.Entry{Action: "check_status", Symbol: symbol, Result: "error", Detail: "symbol is not in the allowed symbol list"})
		h.renderIndexError(w, http.StatusBadRequest, "symbol is not in the allowed symbol list")
		return
	}

	orderID, err := strconv.ParseInt(r.PostForm.Get("order_id"), 10, 64)
	if err != nil {
		h.logEntry(tradelog.Entry{Action: "check_status", Symbol: symbol, Result: "error", Detail: "order_id must be a number"})
		h.renderIndexError(w, http.StatusBadRequest, "order_id must be a number")
		return
	}

	dto, err := h.broker.FetchOrder(r.Context(), symbol, orderID)
	if err != nil {
		log.Errorf("CheckStatus: %v", err)
		h.logEntry(tradelog.Entry{Action: "check_status", Symbol: symbol, Result: "error", Detail: exchangeMessage(err)})

		rejected := eventmodels.NewOrderResultFromError(errors.New(exchangeMessage(err)))
		h.render(w, exchangeStatus(err), "order_result.html", resultView{Result: rejected})
		return
	}

	h.logEntry(tradelog.Entry{
		Action: "check_status",
		Symbol: symbol,
		Result: "ok",
		Detail: fmt.Sprintf("order_id=%d status=%s", dto.OrderID, dto.Status),
	})

	h.render(w, http.StatusOK, "order_result.html", resultView{Result: eventmodels.NewOrderResult(dto), Order: dto})
}

func (h *OrderHandler) Logs(w http.ResponseWriter, r *http.Request) {
	entries := h.tradeLog.Tail(tradelog.MaxLiveEntries)

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.String())
	}

	h.render(w, http.StatusOK, "live_log.html", struct{ Lines []string }{Lines: lines})
}

func (h *OrderHandler) symbolNames() []string {
	names := make([]string, 0, len(h.symbols))
	for name := range h.symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (h *OrderHandler) renderIndexError(w http.ResponseWriter, status int, message string) {
	h.render(w, status, "index.html", indexView{Symbols: h.symbolNames(), Error: message})
}

func (h *OrderHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render: failed to execute template %s: %v", name, err)
	}
}

func (h *OrderHandler) logEntry(e tradelog.Entry) {
	if err := h.tradeLog.Append(e); err != nil {
		log.Errorf("logEntry: %v", err)
	}
}

func exchangeMessage(err error) string {
	var exErr eventmodels.ExchangeError
	if errors.As(err, &exErr) {
		return exErr.Message
	}

	return err.Error()
}

// exchangeStatus maps an exchange 4xx rejection of the submitted values to a
// 400 response; transport failures and exchange 5xx surface as 502.
func exchangeStatus(err error) int {
	var exErr eventmodels.ExchangeError
	if errors.As(err, &exErr) && exErr.HTTPStatus >= 400 && exErr.HTTPStatus < 500 {
		return http.StatusBadRequest
	}

	return http.StatusBadGateway
}
