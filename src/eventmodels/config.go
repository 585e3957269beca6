package eventmodels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jdelgado-dev/binance-futures-web/src/utils"
)

const DefaultTestnetBaseURL = "https://testnet.binancefuture.com"

// SymbolSpec declares a tradable symbol along with the precision used when
// encoding quantities and prices for the exchange.
type SymbolSpec struct {
	Symbol            string `yaml:"symbol"`
	QuantityPrecision int    `yaml:"quantityPrecision"`
	PricePrecision    int    `yaml:"pricePrecision"`
}

type SymbolsConfigYAML struct {
	Symbols []SymbolSpec `yaml:"symbols"`
}

// Config is resolved once at startup and passed into constructors explicitly.
type Config struct {
	APIKey       string
	APISecret    string
	BaseURL      string
	ServerPort   string
	TradeLogFile string
	Symbols      map[string]SymbolSpec
}

func LoadConfig() (*Config, error) {
	apiKey, err := utils.GetEnv("BINANCE_API_KEY")
	if err != nil {
		return nil, ConfigurationError{Message: "BINANCE_API_KEY not set"}
	}

	apiSecret, err := utils.GetEnv("BINANCE_API_SECRET")
	if err != nil {
		return nil, ConfigurationError{Message: "BINANCE_API_SECRET not set"}
	}

	symbolsFile := utils.GetEnvOrDefault("SYMBOLS_FILE", "symbols.yaml")
	symbols, err := LoadSymbols(symbolsFile)
	if err != nil {
		return nil, ConfigurationError{Message: fmt.Sprintf("failed to load symbols file: %v", err)}
	}

	return &Config{
		APIKey:       apiKey,
		APISecret:    apiSecret,
		BaseURL:      utils.GetEnvOrDefault("BINANCE_BASE_URL", DefaultTestnetBaseURL),
		ServerPort:   utils.GetEnvOrDefault("SERVER_PORT", "8080"),
		TradeLogFile: utils.GetEnvOrDefault("TRADE_LOG_FILE", "trading_bot.log"),
		Symbols:      symbols,
	}, nil
}

// LoadSymbols reads the symbol whitelist from a yaml file. A missing file is
// not an error: the service falls back to BTCUSDT with the exchange's
// precision for that pair.
func LoadSymbols(path string) (map[string]SymbolSpec, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSymbols(), nil
		}

		return nil, fmt.Errorf("LoadSymbols: failed to read %s: %w", path, err)
	}

	var cfg SymbolsConfigYAML
	if err := yaml.Unmarshal(bytes, &cfg); err != nil {
		return nil, fmt.Errorf("LoadSymbols: failed to parse %s: %w", path, err)
	}

	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("LoadSymbols: %s declares no symbols", path)
	}

	symbols := make(map[string]SymbolSpec, len(cfg.Symbols))
	for _, spec := range cfg.Symbols {
		if spec.Symbol == "" {
			return nil, fmt.Errorf("LoadSymbols: %s contains an entry with no symbol", path)
		}

		symbols[spec.Symbol] = spec
	}

	return symbols, nil
}

func DefaultSymbols() map[string]SymbolSpec {
	return map[string]SymbolSpec{
		"BTCUSDT": {Symbol: "BTCUSDT", QuantityPrecision: 3, PricePrecision: 2},
	}
}
