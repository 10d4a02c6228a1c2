// Package api serves simmr over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/simmr/internal/auth"
	"github.com/hammamikhairi/simmr/internal/conversation"
	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/engine"
	"github.com/hammamikhairi/simmr/internal/friends"
	"github.com/hammamikhairi/simmr/internal/logger"
	"github.com/hammamikhairi/simmr/internal/pantry"
	"github.com/hammamikhairi/simmr/internal/storylog"
)

// Deps are the services the API serves.
type Deps struct {
	Auth      *auth.Service
	Recipes   domain.RecipeSource
	Catalogue domain.RecipeWriter
	Pantry    *pantry.Service
	Engine    *engine.Engine
	Parser    domain.IntentParser
	StoryLogs *storylog.Service
	Friends   *friends.Service
	Log       *logger.Logger
}

// Options tune the HTTP surface.
type Options struct {
	AllowOrigins   []string
	MaxUploadBytes int64
	// SeedFile is the JSON catalogue reloaded by the admin endpoint. Empty
	// reloads the built-in catalogue.
	SeedFile string
}

// Server holds the services and the gin router built on them.
type Server struct {
	Deps
	opts       Options
	dispatcher *conversation.Dispatcher
	log        *logger.Logger
	router     *gin.Engine
}

// NewServer builds the router.
func NewServer(deps Deps, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if deps.Parser == nil {
		deps.Parser = conversation.NewKeywordParser(deps.Log)
	}
	s := &Server{
		Deps:       deps,
		opts:       opts,
		dispatcher: conversation.NewDispatcher(deps.Engine, deps.Log),
		log:        deps.Log,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.log))

	if len(s.opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// ── Public ──────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
	}

	// ── Signed in ───────────────────────────────────────────────
	api := r.Group("/")
	api.Use(AuthMiddleware(s.Auth.Tokens()))
	{
		api.GET("/me", s.me)

		api.GET("/categories", s.categories)
		api.GET("/recipes", s.listRecipes)
		api.GET("/recipes/sections", s.sections)
		api.GET("/recipes/:id", s.getRecipe)

		api.GET("/pantry", s.pantryItems)
		api.POST("/pantry", s.pantryAdd)
		api.DELETE("/pantry/:name", s.pantryRemove)
		api.GET("/pantry/available", s.pantryAvailable)

		api.POST("/cook", s.startCooking)
		api.GET("/cook/:id", s.cookState)
		api.POST("/cook/:id/next", s.cookAction(s.next))
		api.POST("/cook/:id/skip", s.cookAction(s.skip))
		api.POST("/cook/:id/previous", s.cookAction(s.previous))
		api.POST("/cook/:id/repeat", s.cookAction(s.repeat))
		api.POST("/cook/:id/pause", s.cookAction(s.Engine.Pause))
		api.POST("/cook/:id/resume", s.cookAction(s.resume))
		api.POST("/cook/:id/abandon", s.cookAction(s.Engine.Abandon))
		api.POST("/cook/:id/command", s.cookCommand)
		api.GET("/cook/:id/summary", s.cookSummary)

		api.POST("/story-logs", s.submitStoryLog)
		api.GET("/story-logs", s.listStoryLogs)

		api.POST("/groups", s.createGroup)
		api.GET("/groups", s.listGroups)
		api.GET("/invites", s.listInvites)
		api.POST("/groups/:id/rsvp", s.rsvp)
	}

	admin := r.Group("/admin")
	admin.Use(AuthMiddleware(s.Auth.Tokens()), RequireRole(domain.RoleAdmin))
	{
		admin.GET("/recipes/reload", s.reloadRecipes)
	}

	return r
}
