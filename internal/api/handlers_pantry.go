package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type pantryAddRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) pantryItems(c *gin.Context) {
	items, err := s.Pantry.Items(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if items == nil {
		items = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) pantryAdd(c *gin.Context) {
	var req pantryAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	added, err := s.Pantry.Add(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	code := http.StatusOK
	if added {
		code = http.StatusCreated
	}
	c.JSON(code, gin.H{"added": added})
}

func (s *Server) pantryRemove(c *gin.Context) {
	if err := s.Pantry.Remove(c.Request.Context(), userID(c), c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) pantryAvailable(c *gin.Context) {
	items, err := s.Pantry.Available(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if items == nil {
		items = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
