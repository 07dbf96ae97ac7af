package main

import "time"

type Config struct {
	Port           int           `env:"PORT,default=8080"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RedisURL       string        `env:"REDIS_URL"`
	JWTSecret      string        `env:"JWT_SECRET,default=dev-secret-change-me"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,default=24h"`
	CORSOrigins    string        `env:"CORS_ORIGINS,default=*"`
	ViewerID       string        `env:"VIEWER_ID,default=current_user"`
	ViewerName     string        `env:"VIEWER_NAME,default=You"`
	WriteRateLimit float64       `env:"WRITE_RATE_LIMIT,default=5"`
	WriteBurst     int           `env:"WRITE_BURST,default=10"`
	SeedDemoData   bool          `env:"SEED_DEMO_DATA,default=true"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
}
