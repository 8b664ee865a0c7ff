package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/recur"
	"github.com/hucha-app/hucha/internal/service"
)

const dateLayout = "2006-01-02"

type transactionRequest struct {
	Description string `json:"description" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Category    string `json:"category"`
	Date        string `json:"date" binding:"required"`
	Currency    string `json:"currency"`
	Kind        string `json:"kind" binding:"required"`
	Shared      bool   `json:"shared"`
	Recurring   bool   `json:"recurring"`
	SyncToCal   bool   `json:"sync_to_calendar"`
}

func (r *transactionRequest) toModel(profile model.Profile) (model.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return model.Transaction{}, errors.New("amount must be a decimal string")
	}
	if !amount.IsPositive() {
		return model.Transaction{}, errors.New("amount must be positive")
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return model.Transaction{}, errors.New("date must be YYYY-MM-DD")
	}

	currency := r.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	txn := model.Transaction{
		Description:  r.Description,
		Amount:       amount,
		Category:     r.Category,
		Date:         date,
		PaidBy:       profile.ID,
		Currency:     currency,
		Kind:         model.TransactionKind(r.Kind),
		Shared:       r.Shared,
		Recurring:    r.Recurring,
		CalendarLink: model.NoLink(),
	}
	if txn.Shared {
		txn.GroupID = profile.GroupID
	}
	// Past-dated entries are recorded as already settled.
	if date.Before(startOfToday()) {
		txn.Status = model.StatusPaid
	} else {
		txn.Status = model.StatusPending
	}
	return txn, nil
}

func (s *Server) listTransactionsHandler(c *gin.Context) {
	profile := profileFromContext(c)

	filter := service.TransactionFilter{}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		filter.StartDate = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		filter.EndDate = &t
	}
	if v := c.Query("kind"); v != "" {
		filter.Kind = model.TransactionKind(v)
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}

	txns, err := s.storage.GetTransactions(c.Request.Context(), profile.GroupID, profile.ID, filter)
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactionsResponse(txns)})
}

func (s *Server) createTransactionHandler(c *gin.Context) {
	profile := profileFromContext(c)

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := req.toModel(profile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn.ID = uuid.NewString()
	txn.CreatedAt = time.Now()
	if req.SyncToCal && s.calendar == nil {
		txn.CalendarLink = model.PendingLink()
	}
	if err := txn.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.storage.SaveTransaction(c.Request.Context(), &txn); err != nil {
		s.serverError(c, err)
		return
	}

	// The calendar write is best effort: a failure downgrades the link to
	// pending for the sync sweep instead of failing the request.
	if req.SyncToCal && s.calendar != nil {
		eventID, err := s.calendar.CreateEvent(c.Request.Context(), &txn)
		if err != nil {
			s.logger.Warn("calendar event creation failed", "transaction", txn.ID, "error", err)
			txn.CalendarLink = model.PendingLink()
		} else {
			txn.CalendarLink = model.LinkTo(eventID)
		}
		if err := s.storage.UpdateCalendarLink(c.Request.Context(), txn.ID, txn.CalendarLink); err != nil {
			s.serverError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, transactionResponse(txn))
}

// visibleTransaction fetches a stored transaction and answers 404 when it
// does not exist or the caller cannot see it: rows belong to their group,
// and individual (groupless) rows only to their payer.
func (s *Server) visibleTransaction(c *gin.Context, id string, profile model.Profile) (*model.Transaction, bool) {
	txn, err := s.storage.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		s.notFoundOrError(c, err)
		return nil, false
	}
	if !canSee(profile, txn) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	return txn, true
}

func canSee(profile model.Profile, txn *model.Transaction) bool {
	if txn.GroupID != "" {
		return txn.GroupID == profile.GroupID
	}
	return txn.PaidBy == profile.ID
}

func (s *Server) getTransactionHandler(c *gin.Context) {
	profile := profileFromContext(c)
	id := c.Param("id")
	if model.IsVirtualID(id) {
		s.getVirtualTransactionHandler(c, id)
		return
	}

	txn, ok := s.visibleTransaction(c, id, profile)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, transactionResponse(*txn))
}

// getVirtualTransactionHandler re-projects the occurrence a virtual id
// refers to, since virtual transactions are never stored.
func (s *Server) getVirtualTransactionHandler(c *gin.Context, id string) {
	profile := profileFromContext(c)
	sourceID, day, ok := model.ParseVirtualID(id)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed occurrence id"})
		return
	}

	source, err := s.storage.GetTransactionByID(c.Request.Context(), sourceID)
	if err != nil || !canSee(profile, source) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	for _, txn := range recur.ProjectDay([]model.Transaction{*source}, day) {
		if txn.ID == id {
			c.JSON(http.StatusOK, transactionResponse(txn))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func (s *Server) updateTransactionHandler(c *gin.Context) {
	profile := profileFromContext(c)
	id := c.Param("id")
	if model.IsVirtualID(id) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": common.ErrVirtualReadOnly.Error()})
		return
	}

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prev, ok := s.visibleTransaction(c, id, profile)
	if !ok {
		return
	}

	txn, err := req.toModel(profile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn.ID = prev.ID
	txn.CreatedAt = prev.CreatedAt
	txn.PaidBy = prev.PaidBy
	txn.Status = prev.Status
	txn.CalendarLink = prev.CalendarLink
	if err := txn.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.storage.UpdateTransaction(c.Request.Context(), &txn); err != nil {
		s.notFoundOrError(c, err)
		return
	}

	if txn.CalendarLink.Linked() && s.calendar != nil {
		if err := s.calendar.UpdateEvent(c.Request.Context(), txn.CalendarLink.EventID, &txn); err != nil {
			s.logger.Warn("calendar event update failed", "transaction", txn.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, transactionResponse(txn))
}

func (s *Server) deleteTransactionHandler(c *gin.Context) {
	profile := profileFromContext(c)
	id := c.Param("id")
	if model.IsVirtualID(id) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": common.ErrVirtualReadOnly.Error()})
		return
	}

	prev, ok := s.visibleTransaction(c, id, profile)
	if !ok {
		return
	}

	if err := s.storage.DeleteTransaction(c.Request.Context(), id); err != nil {
		s.notFoundOrError(c, err)
		return
	}

	if prev.CalendarLink.Linked() && s.calendar != nil {
		if err := s.calendar.DeleteEvent(c.Request.Context(), prev.CalendarLink.EventID); err != nil {
			s.logger.Warn("calendar event deletion failed", "event", prev.CalendarLink.EventID, "error", err)
		}
	}

	c.JSON(http.StatusNoContent, nil)
}

// payTransactionHandler marks a transaction paid. Paying a virtual
// occurrence promotes it into a stored paid transaction for that day.
func (s *Server) payTransactionHandler(c *gin.Context) {
	profile := profileFromContext(c)
	id := c.Param("id")

	if model.IsVirtualID(id) {
		sourceID, day, ok := model.ParseVirtualID(id)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed occurrence id"})
			return
		}
		source, ok := s.visibleTransaction(c, sourceID, profile)
		if !ok {
			return
		}
		promoted := recur.Promote(source, day)
		if err := s.storage.SaveTransaction(c.Request.Context(), &promoted); err != nil {
			s.serverError(c, err)
			return
		}
		c.JSON(http.StatusCreated, transactionResponse(promoted))
		return
	}

	if _, ok := s.visibleTransaction(c, id, profile); !ok {
		return
	}
	if err := s.storage.UpdateTransactionStatus(c.Request.Context(), id, model.StatusPaid); err != nil {
		s.notFoundOrError(c, err)
		return
	}
	txn, err := s.storage.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		s.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionResponse(*txn))
}

func (s *Server) notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	s.serverError(c, err)
}

func transactionResponse(t model.Transaction) gin.H {
	resp := gin.H{
		"id":          t.ID,
		"description": t.Description,
		"amount":      t.Amount.String(),
		"category":    t.Category,
		"date":        t.Date.Format(dateLayout),
		"paid_by":     t.PaidBy,
		"currency":    t.Currency,
		"kind":        t.Kind,
		"status":      t.Status,
		"shared":      t.Shared,
		"recurring":   t.Recurring,
		"virtual":     t.IsVirtual(),
		"calendar": gin.H{
			"state":    t.CalendarLink.State,
			"event_id": t.CalendarLink.EventID,
		},
	}
	if t.GroupID != "" {
		resp["group_id"] = t.GroupID
	}
	if t.SourceID != "" {
		resp["source_id"] = t.SourceID
	}
	return resp
}

func transactionsResponse(txns []model.Transaction) []gin.H {
	out := make([]gin.H, len(txns))
	for i, t := range txns {
		out[i] = transactionResponse(t)
	}
	return out
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
