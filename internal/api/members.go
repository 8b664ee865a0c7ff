package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
)

func (s *Server) listMembersHandler(c *gin.Context) {
	profile := profileFromContext(c)
	if !profile.InGroup() {
		c.JSON(http.StatusOK, gin.H{"members": []gin.H{profileResponse(profile)}})
		return
	}

	members, err := s.storage.GetProfilesByGroup(c.Request.Context(), profile.GroupID)
	if err != nil {
		s.serverError(c, err)
		return
	}

	out := make([]gin.H, len(members))
	for i, m := range members {
		out[i] = profileResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

func (s *Server) approveMemberHandler(c *gin.Context) {
	admin, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	memberID := c.Param("id")
	member, err := s.storage.GetProfile(c.Request.Context(), memberID)
	if err != nil {
		s.notFoundOrError(c, err)
		return
	}
	if member.GroupID != admin.GroupID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := s.storage.ApproveMember(c.Request.Context(), memberID); err != nil {
		s.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": model.MemberActive})
}

func (s *Server) removeMemberHandler(c *gin.Context) {
	admin, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	memberID := c.Param("id")
	if memberID == admin.ID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "admins cannot remove themselves"})
		return
	}

	member, err := s.storage.GetProfile(c.Request.Context(), memberID)
	if err != nil {
		s.notFoundOrError(c, err)
		return
	}
	if member.GroupID != admin.GroupID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := s.storage.RemoveMember(c.Request.Context(), memberID); err != nil {
		s.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (s *Server) requireAdmin(c *gin.Context) (model.Profile, bool) {
	profile := profileFromContext(c)
	if !profile.InGroup() {
		c.JSON(http.StatusConflict, gin.H{"error": common.ErrNoGroup.Error()})
		return model.Profile{}, false
	}
	if profile.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return model.Profile{}, false
	}
	return profile, true
}
