package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseURL         string
	DatabasePath        string // SQLite file used when no DSN is configured
	RedisURL            string
	JWTSecret           string
	JWTTTL              time.Duration
	HealthAdminKey      string
	FrontendURLEndsWith string
	DevPassword         string
	Prediction          PredictionConfig
}

// PredictionConfig configures the model server, artifacts and cache.
type PredictionConfig struct {
	ModelServerURL string
	ArtifactDir    string
	ModelRateLimit int
	Timeout        time.Duration
	CacheTTL       time.Duration
	SeqLength      int
	PlainTickers   []string // scaled inputs only
	PCATickers     []string // scaled + PCA-reduced inputs
	EndpointRate   int      // requests per second on GET /predict
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_PATH", "advisor.db")
	viper.SetDefault("JWT_TTL", "24h")
	viper.SetDefault("MODEL_SERVER_URL", "http://localhost:8501")
	viper.SetDefault("MODEL_ARTIFACT_DIR", "saved_artifacts")
	viper.SetDefault("MODEL_RATE_LIMIT", 10)
	viper.SetDefault("PREDICTION_TIMEOUT", "10s")
	viper.SetDefault("PREDICTION_CACHE_TTL", "1h")
	viper.SetDefault("PREDICTION_SEQ_LENGTH", 30)
	viper.SetDefault("PREDICTION_PLAIN_TICKERS", "APP,PEP,TSLA")
	viper.SetDefault("PREDICTION_PCA_TICKERS", "BKNG,META,NVDA,PLTR")
	viper.SetDefault("PREDICT_RATE_LIMIT", 5)

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		DatabaseURL:         dbURL,
		DatabasePath:        viper.GetString("DATABASE_PATH"),
		RedisURL:            viper.GetString("REDIS_URL"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		JWTTTL:              viper.GetDuration("JWT_TTL"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		Prediction: PredictionConfig{
			ModelServerURL: strings.TrimRight(viper.GetString("MODEL_SERVER_URL"), "/"),
			ArtifactDir:    viper.GetString("MODEL_ARTIFACT_DIR"),
			ModelRateLimit: viper.GetInt("MODEL_RATE_LIMIT"),
			Timeout:        viper.GetDuration("PREDICTION_TIMEOUT"),
			CacheTTL:       viper.GetDuration("PREDICTION_CACHE_TTL"),
			SeqLength:      viper.GetInt("PREDICTION_SEQ_LENGTH"),
			PlainTickers:   tickerList(viper.GetString("PREDICTION_PLAIN_TICKERS")),
			PCATickers:     tickerList(viper.GetString("PREDICTION_PCA_TICKERS")),
			EndpointRate:   viper.GetInt("PREDICT_RATE_LIMIT"),
		},
	}, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func tickerList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
