// Package httpapi exposes the project and user services over REST.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pixology/pixology-server/internal/service"
)

// Server wires services into gin handlers.
type Server struct {
	auth     service.AuthService
	projects service.ProjectService
	owner    OwnerResolver
	metrics  *Metrics
	log      *zap.Logger
	origins  []string
	checks   []healthCheck
}

type healthCheck struct {
	name  string
	check func(context.Context) error
}

// New constructs an HTTP API with injected services. An empty origins list allows any origin.
func New(auth service.AuthService, projects service.ProjectService, owner OwnerResolver, metrics *Metrics, log *zap.Logger, origins []string) *Server {
	return &Server{auth: auth, projects: projects, owner: owner, metrics: metrics, log: log, origins: origins}
}

// WithHealthCheck adds a dependency checked by /api/health.
func (s *Server) WithHealthCheck(name string, check func(context.Context) error) *Server {
	s.checks = append(s.checks, healthCheck{name: name, check: check})
	return s
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recover(s.log), Instrument(s.metrics), Logging(s.log), cors.New(s.corsConfig()))

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	api.GET("/health", s.health)

	users := api.Group("/users")
	users.POST("/register", s.register)
	users.POST("/login", s.login)

	pg := api.Group("/projects", RequireOwner(s.owner, s.log))
	pg.POST("", s.createStatic)
	pg.GET("", s.list)
	pg.GET("/:id", s.getDetail)
	pg.PUT("/:id", s.updateStatic)
	pg.DELETE("/:id", s.deleteProject)
	pg.PATCH("/:id/favorite", s.setFavorite)

	pg.POST("/animations", s.createAnimation)
	pg.GET("/animations", s.listAnimations)
	pg.GET("/animations/:id", s.getAnimationDetail)
	pg.PUT("/animations/:id", s.updateAnimation)

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	for _, o := range s.origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(s.origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = s.origins
	return cfg
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	results := make(gin.H, len(s.checks))
	for _, hc := range s.checks {
		if err := hc.check(ctx); err != nil {
			s.log.Warn("health check failed", zap.String("check", hc.name), zap.Error(err))
			results[hc.name] = "down"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		results[hc.name] = "up"
	}
	c.JSON(code, gin.H{"status": status, "checks": results})
}
