package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha/internal/analysis"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
)

func (s *Server) summaryHandler(c *gin.Context) {
	txns, ok := s.groupTransactions(c)
	if !ok {
		return
	}

	sum := analysis.Summarize(txns, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"income":   sum.Income.String(),
		"expenses": sum.Expenses.String(),
		"savings":  sum.Savings.String(),
		"balance":  sum.Balance.String(),
	})
}

func (s *Server) categoryTotalsHandler(c *gin.Context) {
	txns, ok := s.groupTransactions(c)
	if !ok {
		return
	}

	totals := analysis.ByCategory(txns, time.Now())
	out := make([]gin.H, len(totals))
	for i, t := range totals {
		out[i] = gin.H{"category": t.Category, "total": t.Total.String(), "count": t.Count}
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (s *Server) memberTotalsHandler(c *gin.Context) {
	txns, ok := s.groupTransactions(c)
	if !ok {
		return
	}

	totals := analysis.ByMember(txns, time.Now())
	out := make([]gin.H, len(totals))
	for i, t := range totals {
		out[i] = gin.H{"profile_id": t.ProfileID, "total": t.Total.String(), "count": t.Count}
	}

	split := analysis.SplitShared(txns, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"members":    out,
		"shared":     split.Shared.String(),
		"individual": split.Individual.String(),
	})
}

func (s *Server) monthlySeriesHandler(c *gin.Context) {
	year := time.Now().Year()
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
			return
		}
		year = n
	}

	txns, ok := s.groupTransactions(c)
	if !ok {
		return
	}

	series := analysis.MonthlySeries(txns, year, time.Now())
	out := make([]gin.H, len(series))
	for i, p := range series {
		out[i] = gin.H{
			"month":    int(p.Month),
			"income":   p.Income.String(),
			"expenses": p.Expenses.String(),
			"savings":  p.Savings.String(),
		}
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "months": out})
}

func (s *Server) comparisonHandler(c *gin.Context) {
	txns, ok := s.groupTransactions(c)
	if !ok {
		return
	}

	cmp := analysis.CompareMonths(txns, time.Now(), time.Now())
	c.JSON(http.StatusOK, gin.H{
		"current":       cmp.Current.String(),
		"previous":      cmp.Previous.String(),
		"delta":         cmp.Delta.String(),
		"delta_percent": cmp.DeltaPercent.String(),
	})
}

func (s *Server) groupTransactions(c *gin.Context) ([]model.Transaction, bool) {
	profile := profileFromContext(c)
	txns, err := s.storage.GetTransactions(c.Request.Context(), profile.GroupID, profile.ID, service.TransactionFilter{})
	if err != nil {
		s.serverError(c, err)
		return nil, false
	}
	return txns, true
}
