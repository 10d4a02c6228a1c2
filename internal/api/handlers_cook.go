package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/story"
)

type startRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
	Tone     string `json:"tone"`
}

type commandRequest struct {
	Text string `json:"text" binding:"required"`
}

// cookView is the state a client needs to render a cook-along.
type cookView struct {
	Session   *domain.Session `json:"session"`
	Step      *domain.Step    `json:"step,omitempty"`
	Total     int             `json:"total_steps"`
	Completed bool            `json:"completed"`
}

func (s *Server) startCooking(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	var tone domain.StoryTone
	if req.Tone != "" {
		tone = story.ToneOrDefault(req.Tone)
	}

	ctx := c.Request.Context()
	session, err := s.Engine.StartSession(ctx, userID(c), req.RecipeID, tone)
	if err != nil {
		s.fail(c, err)
		return
	}
	view, err := s.view(ctx, session.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) cookState(c *gin.Context) {
	id, ok := s.owned(c)
	if !ok {
		return
	}
	view, err := s.view(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// cookAction runs fn on the caller's session and returns the new state.
func (s *Server) cookAction(fn func(context.Context, string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.owned(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := fn(ctx, id); err != nil {
			s.fail(c, err)
			return
		}
		view, err := s.view(ctx, id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// next and skip treat finishing the last step as success.
func (s *Server) next(ctx context.Context, id string) error {
	_, err := s.Engine.Advance(ctx, id)
	if errors.Is(err, domain.ErrNoMoreSteps) {
		return nil
	}
	return err
}

func (s *Server) skip(ctx context.Context, id string) error {
	_, err := s.Engine.Skip(ctx, id)
	if errors.Is(err, domain.ErrNoMoreSteps) {
		return nil
	}
	return err
}

func (s *Server) previous(ctx context.Context, id string) error {
	_, err := s.Engine.Previous(ctx, id)
	return err
}

func (s *Server) repeat(ctx context.Context, id string) error {
	_, err := s.Engine.Repeat(ctx, id)
	return err
}

func (s *Server) resume(ctx context.Context, id string) error {
	_, err := s.Engine.Resume(ctx, id)
	return err
}

// cookCommand parses a free-text voice command and applies it.
func (s *Server) cookCommand(c *gin.Context) {
	id, ok := s.owned(c)
	if !ok {
		return
	}
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	ctx := c.Request.Context()
	session, err := s.Engine.Status(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	intent, err := s.Parser.Parse(ctx, req.Text, session)
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.dispatcher.Handle(ctx, id, intent)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"intent":  intent.Type.String(),
		"reply":   out.Reply,
		"summary": out.Summary,
		"state": cookView{
			Session:   out.Session,
			Step:      out.Step,
			Total:     out.Total,
			Completed: out.Session.Status == domain.SessionCompleted,
		},
	})
}

func (s *Server) cookSummary(c *gin.Context) {
	id, ok := s.owned(c)
	if !ok {
		return
	}
	summary, err := s.Engine.Summary(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// owned returns the :id session when it belongs to the caller. It writes
// the error response itself and reports false otherwise.
func (s *Server) owned(c *gin.Context) (string, bool) {
	id := c.Param("id")
	session, err := s.Engine.Status(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return "", false
	}
	if session.UserID != userID(c) {
		s.fail(c, domain.ErrUnauthorized)
		return "", false
	}
	return id, true
}

func (s *Server) view(ctx context.Context, id string) (*cookView, error) {
	session, err := s.Engine.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.Engine.StepCount(ctx, id)
	if err != nil {
		return nil, err
	}
	v := &cookView{
		Session:   session,
		Total:     total,
		Completed: session.Status == domain.SessionCompleted,
	}
	if session.Status == domain.SessionActive || session.Status == domain.SessionPaused {
		step, _, err := s.Engine.CurrentStep(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNoMoreSteps) {
			return nil, err
		}
		v.Step = step
	}
	return v, nil
}
