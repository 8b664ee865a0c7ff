package gcal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Provider calendar color ids: red for expenses, green for everything else.
const (
	colorExpense = "11"
	colorDefault = "10"
)

// monthlyRule repeats an event on the same day of month. Short months
// skip the occurrence for anchor days 29-31, which matches how the
// ledger itself projects recurring transactions.
const monthlyRule = "RRULE:FREQ=MONTHLY"

// Client implements service.Calendar against the Google Calendar API.
type Client struct {
	service    *calendar.Service
	logger     *slog.Logger
	calendarID string
	retryOpts  service.RetryOptions
}

// NewClient creates a calendar client from an OAuth2 token.
func NewClient(ctx context.Context, config Config, token *oauth2.Token, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if token == nil {
		return nil, common.ErrCalendarSession
	}

	tokenSource := oauthClientConfig(config).TokenSource(ctx, token)
	svc, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		service:    svc,
		calendarID: config.CalendarOrDefault(),
		logger:     logger,
		retryOpts: service.RetryOptions{
			MaxAttempts:  config.RetryAttempts,
			InitialDelay: config.RetryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// CreateEvent creates a one-hour event for the transaction and returns
// the provider event id. Recurring transactions get a monthly recurrence
// rule; the returned id is then the series-master id.
func (c *Client) CreateEvent(ctx context.Context, txn *model.Transaction) (string, error) {
	event := c.buildEvent(txn)

	var created *calendar.Event
	err := common.WithRetry(ctx, func() error {
		var callErr error
		created, callErr = c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
		if callErr != nil {
			return fmt.Errorf("%w: %v", common.ErrCalendarAPI, callErr)
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return "", err
	}

	c.logger.Info("calendar event created",
		"event", created.Id,
		"transaction", txn.ID,
		"recurring", txn.Recurring)
	return created.Id, nil
}

// UpdateEvent rewrites an event from the transaction's current state.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, txn *model.Transaction) error {
	event := c.buildEvent(txn)

	return common.WithRetry(ctx, func() error {
		if _, callErr := c.service.Events.Update(c.calendarID, eventID, event).Context(ctx).Do(); callErr != nil {
			return fmt.Errorf("%w: %v", common.ErrCalendarAPI, callErr)
		}
		return nil
	}, c.retryOpts)
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	return common.WithRetry(ctx, func() error {
		if callErr := c.service.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); callErr != nil {
			return fmt.Errorf("%w: %v", common.ErrCalendarAPI, callErr)
		}
		return nil
	}, c.retryOpts)
}

// ListEvents returns the events between start and end, recurring series
// expanded into single instances ordered by start time.
func (c *Client) ListEvents(ctx context.Context, start, end time.Time) ([]service.Event, error) {
	var listed *calendar.Events
	err := common.WithRetry(ctx, func() error {
		var callErr error
		listed, callErr = c.service.Events.List(c.calendarID).
			TimeMin(start.Format(time.RFC3339)).
			TimeMax(end.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		if callErr != nil {
			return fmt.Errorf("%w: %v", common.ErrCalendarAPI, callErr)
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	events := make([]service.Event, 0, len(listed.Items))
	for _, item := range listed.Items {
		event, convErr := convertEvent(item)
		if convErr != nil {
			c.logger.Warn("skipping unparseable calendar event", "event", item.Id, "error", convErr)
			continue
		}
		events = append(events, event)
	}

	c.logger.Debug("listed calendar events", "count", len(events))
	return events, nil
}

func (c *Client) buildEvent(txn *model.Transaction) *calendar.Event {
	start := txn.Date
	end := start.Add(time.Hour)

	colorID := colorDefault
	if txn.Kind == model.KindExpense {
		colorID = colorExpense
	}

	event := &calendar.Event{
		Summary:     txn.Description,
		Description: fmt.Sprintf("Category: %s | Amount: $%s", txn.Category, txn.Amount.StringFixed(2)),
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
		},
		ColorId: colorID,
	}

	if txn.Recurring {
		event.Recurrence = []string{monthlyRule}
	}

	return event
}

func convertEvent(item *calendar.Event) (service.Event, error) {
	event := service.Event{
		ID:      item.Id,
		Summary: item.Summary,
	}

	switch {
	case item.Start == nil:
		return event, fmt.Errorf("event has no start")
	case item.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return event, fmt.Errorf("invalid start time: %w", err)
		}
		event.Start = start
	case item.Start.Date != "":
		start, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			return event, fmt.Errorf("invalid start date: %w", err)
		}
		event.Start = start
		event.AllDay = true
	default:
		return event, fmt.Errorf("event has no usable start")
	}

	if item.End != nil {
		switch {
		case item.End.DateTime != "":
			if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				event.End = end
			}
		case item.End.Date != "":
			if end, err := time.Parse("2006-01-02", item.End.Date); err == nil {
				event.End = end
			}
		}
	}

	return event, nil
}
