package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/hucha-app/hucha/internal/gcal"
)

// LoadCalendarConfig loads Google Calendar configuration from Viper and
// environment variables. Precedence:
// 1. Viper configuration (from config file or HUCHA_ env vars)
// 2. Direct environment variables (GOOGLE_CALENDAR_*)
// 3. Default values
func LoadCalendarConfig() (*gcal.Config, error) {
	config := gcal.Config{
		TokenFile:     DefaultTokenPath(),
		RetryDelay:    time.Second,
		RetryAttempts: 3,
	}

	if v := viper.GetString("calendar.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("calendar.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("calendar.token_file"); v != "" {
		config.TokenFile = ExpandPath(v)
	}
	if v := viper.GetString("calendar.calendar_id"); v != "" {
		config.CalendarID = v
	}

	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_CALENDAR_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_CALENDAR_CLIENT_SECRET")
	}
	if config.CalendarID == "" {
		config.CalendarID = os.Getenv("GOOGLE_CALENDAR_ID")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
