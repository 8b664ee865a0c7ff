// Package api exposes the ledger over HTTP with JWT-authenticated JSON
// endpoints. The server is stateless: every request resolves its profile
// from the token and reads through storage, so multiple clients and the
// CLI can share one database.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha/internal/service"
)

// Server wires the HTTP routes to storage and the optional calendar client.
type Server struct {
	storage   service.Storage
	calendar  service.Calendar
	logger    *slog.Logger
	router    *gin.Engine
	jwtSecret []byte
}

// NewServer builds the router. calendar may be nil; calendar-backed
// endpoints then report the missing session.
func NewServer(storage service.Storage, calendar service.Calendar, jwtSecret []byte, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		storage:   storage,
		calendar:  calendar,
		logger:    logger,
		jwtSecret: jwtSecret,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/register", s.registerHandler)
	router.POST("/login", s.loginHandler)

	auth := router.Group("/api")
	auth.Use(s.jwtAuthMiddleware())
	{
		auth.GET("/me", s.meHandler)

		auth.GET("/transactions", s.listTransactionsHandler)
		auth.POST("/transactions", s.createTransactionHandler)
		auth.GET("/transactions/:id", s.getTransactionHandler)
		auth.PUT("/transactions/:id", s.updateTransactionHandler)
		auth.DELETE("/transactions/:id", s.deleteTransactionHandler)
		auth.POST("/transactions/:id/pay", s.payTransactionHandler)

		auth.GET("/calendar/day", s.calendarDayHandler)
		auth.GET("/upcoming", s.upcomingHandler)
		auth.GET("/reminders", s.remindersHandler)

		auth.GET("/analytics/summary", s.summaryHandler)
		auth.GET("/analytics/categories", s.categoryTotalsHandler)
		auth.GET("/analytics/members", s.memberTotalsHandler)
		auth.GET("/analytics/monthly", s.monthlySeriesHandler)
		auth.GET("/analytics/comparison", s.comparisonHandler)

		auth.GET("/categories", s.listCategoriesHandler)
		auth.POST("/categories", s.createCategoryHandler)
		auth.PUT("/categories/:id", s.updateCategoryHandler)
		auth.DELETE("/categories/:id", s.deleteCategoryHandler)

		auth.GET("/members", s.listMembersHandler)
		auth.POST("/members/:id/approve", s.approveMemberHandler)
		auth.DELETE("/members/:id", s.removeMemberHandler)
	}

	s.router = router
	return s
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
