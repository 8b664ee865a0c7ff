package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha/internal/reconcile"
	"github.com/hucha-app/hucha/internal/recur"
	"github.com/hucha-app/hucha/internal/service"
)

// calendarDayHandler projects the ledger onto one day and reconciles it
// with the group's external calendar events for that day.
func (s *Server) calendarDayHandler(c *gin.Context) {
	profile := profileFromContext(c)

	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	txns, err := s.storage.GetTransactions(c.Request.Context(), profile.GroupID, profile.ID, service.TransactionFilter{})
	if err != nil {
		s.serverError(c, err)
		return
	}

	var events []service.Event
	if s.calendar != nil {
		// The fetch window is widened so recurring instances that spill
		// across month boundaries are not missed.
		events, err = s.calendar.ListEvents(c.Request.Context(), date.AddDate(0, -1, 0), date.AddDate(0, 1, 0))
		if err != nil {
			s.logger.Warn("calendar listing failed, rendering without events", "error", err)
			events = nil
		}
	}

	var dayEvents []service.Event
	for _, e := range events {
		if sameDay(e.Start, date) {
			dayEvents = append(dayEvents, e)
		}
	}

	result := reconcile.Reconcile(recur.ProjectDay(txns, date), dayEvents)

	annotated := make([]gin.H, len(result.Transactions))
	for i, a := range result.Transactions {
		resp := transactionResponse(a.Transaction)
		resp["synced"] = a.Synced
		annotated[i] = resp
	}
	standalone := make([]gin.H, len(result.Standalone))
	for i, e := range result.Standalone {
		standalone[i] = eventResponse(e)
	}

	c.JSON(http.StatusOK, gin.H{
		"date":         date.Format(dateLayout),
		"transactions": annotated,
		"events":       standalone,
	})
}

func (s *Server) upcomingHandler(c *gin.Context) {
	profile := profileFromContext(c)

	horizon := recur.DefaultHorizonDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		horizon = n
	}

	txns, err := s.storage.GetTransactions(c.Request.Context(), profile.GroupID, profile.ID, service.TransactionFilter{})
	if err != nil {
		s.serverError(c, err)
		return
	}

	agenda := recur.Upcoming(txns, time.Now(), horizon)
	c.JSON(http.StatusOK, gin.H{
		"urgent": transactionsResponse(agenda.Urgent),
		"later":  transactionsResponse(agenda.Later),
	})
}

func (s *Server) remindersHandler(c *gin.Context) {
	profile := profileFromContext(c)

	txns, err := s.storage.GetTransactions(c.Request.Context(), profile.GroupID, profile.ID, service.TransactionFilter{})
	if err != nil {
		s.serverError(c, err)
		return
	}

	due := recur.DueSoon(txns, time.Now())
	c.JSON(http.StatusOK, gin.H{"reminders": transactionsResponse(due)})
}

func eventResponse(e service.Event) gin.H {
	return gin.H{
		"id":      e.ID,
		"summary": e.Summary,
		"start":   e.Start.Format(time.RFC3339),
		"end":     e.End.Format(time.RFC3339),
		"all_day": e.AllDay,
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
