package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	APIBaseURL      string        `env:"API_BASE_URL,default=http://localhost:8080/api" validate:"required,url"`
	APIToken        string        `env:"API_TOKEN"`
	ViewerID        string        `env:"VIEWER_ID,default=current_user" validate:"required"`
	ViewerName      string        `env:"VIEWER_NAME,default=You" validate:"required"`
	PollInterval    time.Duration `env:"POLL_INTERVAL,default=10s" validate:"gt=0"`
	SplashDelay     time.Duration `env:"SPLASH_DELAY,default=2s" validate:"gte=0"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=10s" validate:"gt=0"`
	IdentityTimeout time.Duration `env:"IDENTITY_TIMEOUT,default=2s" validate:"gt=0"`
	Live            bool          `env:"LIVE,default=false"`
	ViewHeight      int           `env:"VIEW_HEIGHT,default=20" validate:"gt=0"`
	NoColor         bool          `env:"NO_COLOR,default=false"`
	LogFile         string        `env:"LOG_FILE,default=dash.log"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
