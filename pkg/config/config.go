package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"` // kafka or clickhouse
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers         []string `yaml:"brokers"`
		TickTopic       string   `yaml:"tick_topic"`
		PredictionTopic string   `yaml:"prediction_topic"`
		RequiredAcks    int      `yaml:"required_acks"`
		Compression     string   `yaml:"compression"`
		Producer        struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Bybit struct {
		BaseURL   string        `yaml:"base_url"`
		Category  string        `yaml:"category"`
		Symbols   []string      `yaml:"symbols"`
		Timeframe string        `yaml:"timeframe"`
		Limit     int           `yaml:"limit"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"bybit"`
	Binance struct {
		Enabled   bool   `yaml:"enabled"`
		APIKey    string `yaml:"api_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"binance"`
	Stream struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	OpenAI struct {
		APIKey         string        `yaml:"api_key"`
		BaseURL        string        `yaml:"base_url"`
		Model          string        `yaml:"model"`
		EmbeddingModel string        `yaml:"embedding_model"`
		Temperature    float64       `yaml:"temperature"`
		MaxTokens      int           `yaml:"max_tokens"`
		Timeout        time.Duration `yaml:"timeout"`
		RetryAttempts  int           `yaml:"retry_attempts"`
	} `yaml:"openai"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		AnalysisTTL   time.Duration `yaml:"analysis_ttl"`
		PredictionTTL time.Duration `yaml:"prediction_ttl"`
		MarketTTL     time.Duration `yaml:"market_ttl"`
		MacroTTL      time.Duration `yaml:"macro_ttl"`
	} `yaml:"cache"`
	MarketData struct {
		CoinGeckoURL     string `yaml:"coingecko_url"`
		CryptoCompareURL string `yaml:"cryptocompare_url"`
		CryptoCompareKey string `yaml:"cryptocompare_key"`
		FearGreedURL     string `yaml:"fear_greed_url"`
		NewsLimit        int    `yaml:"news_limit"`
	} `yaml:"market_data"`
	Macro struct {
		FredAPIKey         string   `yaml:"fred_api_key"`
		AlphaVantageAPIKey string   `yaml:"alpha_vantage_api_key"`
		PolygonAPIKey      string   `yaml:"polygon_api_key"`
		FinnhubAPIKey      string   `yaml:"finnhub_api_key"`
		StockSymbols       []string `yaml:"stock_symbols"`
	} `yaml:"macro"`
	Similarity struct {
		IndexKey string  `yaml:"index_key"`
		TopK     int     `yaml:"top_k"`
		MinScore float64 `yaml:"min_score"`
		MaxItems int     `yaml:"max_items"`
	} `yaml:"similarity"`
	Webhook struct {
		URL     string        `yaml:"url"`
		Secret  string        `yaml:"secret"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"webhook"`
	FTP struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		User     string        `yaml:"user"`
		Password string        `yaml:"password"`
		Dir      string        `yaml:"dir"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"ftp"`
	Analysis struct {
		Symbol          string        `yaml:"symbol"`
		CandleLimit     int           `yaml:"candle_limit"`
		PredictionCount int           `yaml:"prediction_count"`
		Horizons        []string      `yaml:"horizons"`
		RunInterval     time.Duration `yaml:"run_interval"`
	} `yaml:"analysis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment
// variables, and validates the merged result. Secrets normally arrive
// through the environment, so validation must run after the overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Bybit.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		c.Webhook.Secret = v
	}
	if v := os.Getenv("FTP_PASSWORD"); v != "" {
		c.FTP.Password = v
	}
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Macro.FredAPIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Macro.AlphaVantageAPIKey = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Macro.PolygonAPIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Macro.FinnhubAPIKey = v
	}
	if v := os.Getenv("CRYPTOCOMPARE_API_KEY"); v != "" {
		c.MarketData.CryptoCompareKey = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.Binance.SecretKey = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Bybit.Symbols) == 0 {
		return fmt.Errorf("bybit.symbols cannot be empty")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Webhook.URL != "" && c.Webhook.Secret == "" {
		return fmt.Errorf("webhook.secret is required when webhook.url is set")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be kafka or clickhouse, got %q", c.Backend.Type)
	}
	return nil
}
