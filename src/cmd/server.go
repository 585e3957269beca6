package server

import (
	"github.com/gorilla/mux"

	"github.com/jdelgado-dev/binance-futures-web/src/handler"
)

func Setup(h *handler.OrderHandler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", h.Index).Methods("GET")
	router.HandleFunc("/order", h.PlaceOrder).Methods("POST")
	router.HandleFunc("/status", h.CheckStatus).Methods("POST")
	router.HandleFunc("/logs", h.Logs).Methods("GET")

	return router
}
