package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/pixology/pixology-server/internal/errs"
	"github.com/pixology/pixology-server/internal/model"
)

type favoriteReq struct {
	Favorite *bool `json:"favorite"`
}

func (s *Server) ownerOf(c *gin.Context) uuid.UUID {
	id, _ := OwnerIDFromCtx(c.Request.Context())
	return id
}

// projectID parses the :id segment; an unparsable id cannot name a project, so it is a 404.
func (s *Server) projectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

func favoriteFilter(c *gin.Context) (*bool, error) {
	raw := strings.TrimSpace(c.Query("favorite"))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errs.Validationf("invalid favorite %q", raw)
	}
	return &v, nil
}

func bind[T any](c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return req, false
	}
	return req, true
}

// --- static ---

func (s *Server) createStatic(c *gin.Context) {
	req, ok := bind[model.SaveProjectRequest](c)
	if !ok {
		return
	}
	out, err := s.projects.CreateStatic(c.Request.Context(), s.ownerOf(c), req)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) updateStatic(c *gin.Context) {
	id, ok := s.projectID(c)
	if !ok {
		return
	}
	req, ok := bind[model.SaveProjectRequest](c)
	if !ok {
		return
	}
	out, err := s.projects.UpdateStatic(c.Request.Context(), id, s.ownerOf(c), req)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getDetail(c *gin.Context) {
	id, ok := s.projectID(c)
	if !ok {
		return
	}
	out, found, err := s.projects.GetDetail(c.Request.Context(), id, s.ownerOf(c))
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- any kind ---

func (s *Server) list(c *gin.Context) {
	fav, err := favoriteFilter(c)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	out, err := s.projects.List(c.Request.Context(), s.ownerOf(c), fav, c.Query("kind"))
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) deleteProject(c *gin.Context) {
	id, ok := s.projectID(c)
	if !ok {
		return
	}
	if err := s.projects.Delete(c.Request.Context(), id, s.ownerOf(c)); err != nil {
		writeError(c, s.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setFavorite(c *gin.Context) {
	id, ok := s.projectID(c)
	if !ok {
		return
	}
	req, ok := bind[favoriteReq](c)
	if !ok {
		return
	}
	if req.Favorite == nil {
		writeError(c, s.log, errs.Validationf("favorite is required"))
		return
	}
	out, err := s.projects.SetFavorite(c.Request.Context(), id, s.ownerOf(c), *req.Favorite)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- animations ---

func (s *Server) createAnimation(c *gin.Context) {
	req, ok := bind[model.SaveAnimationRequest](c)
	if !ok {
		return
	}
	out, err := s.projects.CreateAnimation(c.Request.Context(), s.ownerOf(c), req)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) listAnimations(c *gin.Context) {
	fav, err := favoriteFilter(c)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	out, err := s.projects.List(c.Request.Context(), s.ownerOf(c), fav, "animation")
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getAnimationDetail(c *gin.Context) {
	id, ok := s.projectID(c)
	if !ok {
		return
	}
	out, found, err := s.projects.GetAnimationDetail(c.Request.Context(), id, s.ownerOf(c))
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) updateAnimation(c *gin.Context) {
	id, ok := s.projectID(c)
	if !ok {
		return
	}
	req, ok := bind[model.SaveAnimationRequest](c)
	if !ok {
		return
	}
	out, err := s.projects.UpdateAnimation(c.Request.Context(), id, s.ownerOf(c), req)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
