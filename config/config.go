package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port         string
	Environment  string // "development", "production"
	FrontendDist string
	CORSOrigins  []string
	LogDir       string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Security/JWT
	JWTSecret      string
	JWTExpiresIn   time.Duration
	CookieSameSite string // "strict", "lax", "none"
	CookieSecure   bool

	// Realtime
	WSPingPeriod time.Duration
	WSSendBuffer int
}

var defaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:5174"}

func LoadConfig() Config {
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")
	isProduction := env == "production"

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "chat")
	dbURL := getEnv("DATABASE_URL", fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		dbHost,
		dbUser,
		dbPassword,
		dbName,
		dbPort,
	))

	sameSite := strings.ToLower(getEnv("COOKIE_SAMESITE", ""))
	if sameSite == "" {
		sameSite = "lax"
		if isProduction {
			sameSite = "strict"
		}
	}

	secure := isProduction
	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok {
		secure = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	return Config{
		Port:         getEnv("PORT", "5001"),
		Environment:  env,
		FrontendDist: getEnv("FRONTEND_DIST", "../frontend/dist"),
		CORSOrigins:  parseOrigins(os.Getenv("CORS_ORIGINS")),
		LogDir:       getEnv("LOG_DIR", "logs"),

		DatabaseURL: dbURL,
		DBHost:      dbHost,
		DBPort:      dbPort,
		DBUser:      dbUser,
		DBPassword:  dbPassword,
		DBName:      dbName,

		// An empty secret is allowed: the realtime handshake then relies on
		// the client-asserted identity only.
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiresIn:   mustParseDuration(getEnv("JWT_EXPIRES_IN", "168h"), 7*24*time.Hour),
		CookieSameSite: sameSite,
		CookieSecure:   secure,

		WSPingPeriod: mustParseDuration(getEnv("WS_PING_PERIOD", "25s"), 25*time.Second),
		WSSendBuffer: mustParseInt(getEnv("WS_SEND_BUFFER", "16"), 16),
	}
}

// IsProduction reports whether the server runs with production defaults.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseOrigins(raw string) []string {
	var origins []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			origins = append(origins, s)
		}
	}
	if len(origins) == 0 {
		return append([]string(nil), defaultCORSOrigins...)
	}
	return origins
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustParseDuration(str string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(str)
	if err != nil {
		log.Printf("Invalid duration '%s', defaulting to %s", str, fallback)
		return fallback
	}
	return d
}

func mustParseInt(str string, fallback int) int {
	i, err := strconv.Atoi(str)
	if err != nil {
		log.Printf("Invalid integer '%s', defaulting to %d", str, fallback)
		return fallback
	}
	return i
}
