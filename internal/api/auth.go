package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
)

const tokenTTL = 24 * time.Hour

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	GroupID  string `json:"group_id"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.storage.GetProfileByEmail(c.Request.Context(), email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		s.serverError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.serverError(c, err)
		return
	}

	profile := model.Profile{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		GroupID:      req.GroupID,
		PasswordHash: string(hash),
		Status:       model.MemberActive,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	// Joining an existing group starts as a pending request; creating a
	// fresh profile without a group (or founding one) makes you its admin.
	if req.GroupID != "" {
		existing, err := s.storage.GetProfilesByGroup(c.Request.Context(), req.GroupID)
		if err != nil {
			s.serverError(c, err)
			return
		}
		if len(existing) > 0 {
			profile.Status = model.MemberPending
			profile.Role = model.RoleMember
		}
	}

	if err := s.storage.SaveProfile(c.Request.Context(), &profile); err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profileResponse(profile))
}

func (s *Server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	profile, err := s.storage.GetProfileByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": profile.ID,
		"exp": time.Now().Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed, "profile": profileResponse(*profile)})
}

func (s *Server) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(authHeader, "Bearer "), func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		profileID, _ := claims["sub"].(string)
		if profileID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}

		profile, err := s.storage.GetProfile(c.Request.Context(), profileID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown profile"})
			c.Abort()
			return
		}

		c.Set("profile", *profile)
		c.Next()
	}
}

// profileFromContext returns the authenticated profile set by the
// middleware.
func profileFromContext(c *gin.Context) model.Profile {
	v, _ := c.Get("profile")
	profile, _ := v.(model.Profile)
	return profile
}

func (s *Server) meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, profileResponse(profileFromContext(c)))
}

func (s *Server) serverError(c *gin.Context, err error) {
	s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func profileResponse(p model.Profile) gin.H {
	return gin.H{
		"id":        p.ID,
		"name":      p.Name,
		"email":     p.Email,
		"color":     p.Color,
		"hex_color": p.HexColor,
		"group_id":  p.GroupID,
		"status":    p.Status,
		"role":      p.Role,
	}
}
