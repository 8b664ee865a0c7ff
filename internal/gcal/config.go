// Package gcal integrates the ledger with Google Calendar.
package gcal

import (
	"fmt"
	"time"
)

// Config holds Google Calendar client configuration.
type Config struct {
	ClientID      string
	ClientSecret  string
	TokenFile     string
	CalendarID    string
	RetryDelay    time.Duration
	RetryAttempts int
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("no authentication method configured: client id and secret are required")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}
	return nil
}

// CalendarOrDefault returns the configured calendar id, defaulting to the
// user's primary calendar.
func (c *Config) CalendarOrDefault() string {
	if c.CalendarID == "" {
		return "primary"
	}
	return c.CalendarID
}
