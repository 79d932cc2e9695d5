package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hacplanner/adapters/report"
	"hacplanner/app"
	"hacplanner/internal"
)

// Server exposes the planning services over HTTP.
type Server struct {
	router        *gin.Engine
	planner       *app.PlannerService
	bulk          *app.BulkService
	interrogation *app.InterrogationService
	renderer      *report.Renderer
	log           *internal.Logger
}

// NewServer wires the HTTP server. bulk may be nil when no roster is
// configured.
func NewServer(planner *app.PlannerService, bulk *app.BulkService, interrogation *app.InterrogationService, ginMode string, log *internal.Logger) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	s := &Server{
		router:        gin.Default(),
		planner:       planner,
		bulk:          bulk,
		interrogation: interrogation,
		renderer:      report.NewRenderer(),
		log:           log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/plans", s.handleCreatePlan)
	s.router.GET("/plans/:id", s.handleGetPlan)
	s.router.GET("/plans/:id/report", s.handleGetReport)
	s.router.POST("/plans/:id/interrogate", s.handleInterrogate)
	if s.bulk != nil {
		s.router.POST("/bulk", s.handleBulk)
	}
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
