package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/friends"
	"github.com/hammamikhairi/simmr/internal/storylog"
)

type rsvpRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// submitStoryLog takes a multipart form with an "image" file plus
// "recipe_id" and "story_summary" fields.
func (s *Server) submitStoryLog(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "unreadable image")
		return
	}
	defer file.Close()

	entry, err := s.StoryLogs.Submit(
		c.Request.Context(),
		userID(c),
		c.PostForm("recipe_id"),
		c.PostForm("story_summary"),
		file,
	)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) listStoryLogs(c *gin.Context) {
	tab, err := storylog.ParseTab(c.Query("tab"))
	if err != nil {
		s.fail(c, err)
		return
	}
	logs, err := s.StoryLogs.List(c.Request.Context(), userID(c), tab)
	if err != nil {
		s.fail(c, err)
		return
	}
	if logs == nil {
		logs = []domain.StoryLog{}
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Server) createGroup(c *gin.Context) {
	var req friends.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	gs, err := s.Friends.CreateSession(c.Request.Context(), userID(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gs)
}

func (s *Server) listGroups(c *gin.Context) {
	out, err := s.Friends.SessionsFor(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if out == nil {
		out = []domain.GroupSession{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listInvites(c *gin.Context) {
	out, err := s.Friends.Invites(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if out == nil {
		out = []domain.Invite{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) rsvp(c *gin.Context) {
	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "accept is required")
		return
	}
	inv, err := s.Friends.Respond(c.Request.Context(), c.Param("id"), userID(c), *req.Accept)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
