package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
)

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (s *Server) listCategoriesHandler(c *gin.Context) {
	profile := profileFromContext(c)

	cats, err := s.storage.GetCategories(c.Request.Context(), profile.GroupID)
	if err != nil {
		s.serverError(c, err)
		return
	}

	out := make([]gin.H, len(cats))
	for i, cat := range cats {
		out[i] = categoryResponse(cat)
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (s *Server) createCategoryHandler(c *gin.Context) {
	profile := profileFromContext(c)
	if !profile.InGroup() {
		c.JSON(http.StatusConflict, gin.H{"error": common.ErrNoGroup.Error()})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat := model.Category{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Icon:      req.Icon,
		Color:     req.Color,
		GroupID:   profile.GroupID,
		CreatedAt: time.Now(),
	}
	if err := s.storage.SaveCategory(c.Request.Context(), &cat); err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, categoryResponse(cat))
}

// groupCategory reports whether a category id belongs to the caller's
// group, answering 404 when it does not.
func (s *Server) groupCategory(c *gin.Context, id string, profile model.Profile) bool {
	cats, err := s.storage.GetCategories(c.Request.Context(), profile.GroupID)
	if err != nil {
		s.serverError(c, err)
		return false
	}
	for _, cat := range cats {
		if cat.ID == id {
			return true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	return false
}

func (s *Server) updateCategoryHandler(c *gin.Context) {
	profile := profileFromContext(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.groupCategory(c, c.Param("id"), profile) {
		return
	}

	cat := model.Category{
		ID:      c.Param("id"),
		Name:    req.Name,
		Icon:    req.Icon,
		Color:   req.Color,
		GroupID: profile.GroupID,
	}
	if err := s.storage.UpdateCategory(c.Request.Context(), &cat); err != nil {
		s.notFoundOrError(c, err)
		return
	}

	c.JSON(http.StatusOK, categoryResponse(cat))
}

// deleteCategoryHandler removes a category without touching the
// transactions that reference its name; they keep it and dangle.
func (s *Server) deleteCategoryHandler(c *gin.Context) {
	if !s.groupCategory(c, c.Param("id"), profileFromContext(c)) {
		return
	}
	if err := s.storage.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		s.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func categoryResponse(cat model.Category) gin.H {
	return gin.H{
		"id":       cat.ID,
		"name":     cat.Name,
		"icon":     cat.Icon,
		"color":    cat.Color,
		"group_id": cat.GroupID,
	}
}
