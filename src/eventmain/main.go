package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	server "github.com/jdelgado-dev/binance-futures-web/src/cmd"
	"github.com/jdelgado-dev/binance-futures-web/src/eventmodels"
	"github.com/jdelgado-dev/binance-futures-web/src/eventservices"
	"github.com/jdelgado-dev/binance-futures-web/src/handler"
	"github.com/jdelgado-dev/binance-futures-web/src/tradelog"
	"github.com/jdelgado-dev/binance-futures-web/src/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the futures testnet order web server",
	Run: func(cmd *cobra.Command, args []string) {
		port, err := cmd.Flags().GetString("port")
		if err != nil {
			log.Fatalf("error getting port: %v", err)
		}

		run(port)
	},
}

func main() {
	serveCmd.Flags().String("port", "", "override SERVER_PORT")

	if err := serveCmd.Execute(); err != nil {
		log.Fatalf("main: %v", err)
	}
}

func run(portOverride string) {
	log.SetOutput(os.Stdout)

	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Fatalf("main: %v", err)
	}

	cfg, err := eventmodels.LoadConfig()
	if err != nil {
		log.Fatalf("main: %v", err)
	}

	if portOverride != "" {
		cfg.ServerPort = portOverride
	}

	broker := eventservices.NewBinanceBroker(cfg.BaseURL, cfg.APIKey, cfg.APISecret, cfg.Symbols)

	// fail fast if the exchange is unreachable rather than surfacing it on the
	// first order submission
	checkCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	serverTime, err := broker.FetchServerTime(checkCtx)
	cancel()
	if err != nil {
		log.Fatalf("main: exchange connection check failed: %v", err)
	}

	log.Infof("connected to %s, exchange server time %v", cfg.BaseURL, time.UnixMilli(serverTime).UTC())

	tradeLog, err := tradelog.Open(cfg.TradeLogFile)
	if err != nil {
		log.Fatalf("main: %v", err)
	}

	orderHandler, err := handler.NewOrderHandler(broker, tradeLog, cfg.Symbols)
	if err != nil {
		tradeLog.Close()
		log.Fatalf("main: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: server.Setup(orderHandler),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main: server failed: %v", err)
		}
	}()

	log.Infof("listening on :%s", cfg.ServerPort)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("main: shutdown: %v", err)
	}

	if err := tradeLog.Close(); err != nil {
		log.Errorf("main: %v", err)
	}
}
