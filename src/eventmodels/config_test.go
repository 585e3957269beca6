package eventmodels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing api key is a configuration error", func(t *testing.T) {
		t.Setenv("BINANCE_API_KEY", "")
		t.Setenv("BINANCE_API_SECRET", "secret")

		_, err := LoadConfig()

		var cfgErr ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("missing api secret is a configuration error", func(t *testing.T) {
		t.Setenv("BINANCE_API_KEY", "key")
		t.Setenv("BINANCE_API_SECRET", "")

		_, err := LoadConfig()

		var cfgErr ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("BINANCE_API_KEY", "key")
		t.Setenv("BINANCE_API_SECRET", "secret")
		t.Setenv("BINANCE_BASE_URL", "")
		t.Setenv("SERVER_PORT", "")
		t.Setenv("TRADE_LOG_FILE", "")
		t.Setenv("SYMBOLS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

		cfg, err := LoadConfig()
		require.Nil(t, err)

		assert.Equal(t, DefaultTestnetBaseURL, cfg.BaseURL)
		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "trading_bot.log", cfg.TradeLogFile)
		assert.Contains(t, cfg.Symbols, "BTCUSDT")
	})
}

func TestLoadSymbols(t *testing.T) {
	t.Run("missing file falls back to BTCUSDT", func(t *testing.T) {
		symbols, err := LoadSymbols(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Nil(t, err)
		assert.Equal(t, 3, symbols["BTCUSDT"].QuantityPrecision)
		assert.Equal(t, 2, symbols["BTCUSDT"].PricePrecision)
	})

	t.Run("parses declared symbols", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "symbols.yaml")
		content := "symbols:\n  - symbol: BTCUSDT\n    quantityPrecision: 3\n    pricePrecision: 2\n  - symbol: ETHUSDT\n    quantityPrecision: 2\n    pricePrecision: 2\n"
		require.Nil(t, os.WriteFile(path, []byte(content), 0644))

		symbols, err := LoadSymbols(path)

		assert.Nil(t, err)
		assert.Len(t, symbols, 2)
		assert.Equal(t, 2, symbols["ETHUSDT"].QuantityPrecision)
	})

	t.Run("empty symbol list is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "symbols.yaml")
		require.Nil(t, os.WriteFile(path, []byte("symbols: []\n"), 0644))

		_, err := LoadSymbols(path)
		assert.NotNil(t, err)
	})

	t.Run("entry without symbol is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "symbols.yaml")
		require.Nil(t, os.WriteFile(path, []byte("symbols:\n  - quantityPrecision: 3\n"), 0644))

		_, err := LoadSymbols(path)
		assert.NotNil(t, err)
	})
}
