package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hacplanner/app"
	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/internal/errors"
	"hacplanner/internal/quality"
)

// createPlanRequest is the POST /plans body.
type createPlanRequest struct {
	Concern         string            `json:"concern" binding:"required"`
	Narrative       string            `json:"narrative" binding:"required"`
	DomainHint      string            `json:"domain_hint,omitempty"`
	Mode            string            `json:"mode,omitempty"`
	Strict          bool              `json:"strict,omitempty"`
	TimeoutSeconds  int               `json:"timeout_seconds,omitempty"`
	PromptOverrides map[string]string `json:"prompt_overrides,omitempty"`
}

func (s *Server) handleCreatePlan(c *gin.Context) {
	var body createPlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errors.CodeInvalidInput})
		return
	}

	result, err := s.planner.GeneratePlan(c.Request.Context(), app.PlanRequest{
		Concern:         body.Concern,
		Narrative:       body.Narrative,
		DomainHint:      archetype.Domain(body.DomainHint),
		Mode:            plan.GenerationMode(body.Mode),
		Strict:          body.Strict,
		Timeout:         time.Duration(body.TimeoutSeconds) * time.Second,
		PromptOverrides: body.PromptOverrides,
	})
	if err != nil {
		// A blocked plan still returns its verdict so the caller can see why.
		if errors.GetCode(err) == errors.CodeQualityGate && result != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  err.Error(),
				"code":   errors.CodeQualityGate,
				"result": result,
			})
			return
		}
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleGetPlan(c *gin.Context) {
	id, err := core.ParsePlanID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errors.CodeInvalidInput})
		return
	}

	p, err := s.planner.LoadPlan(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleGetReport(c *gin.Context) {
	id, err := core.ParsePlanID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errors.CodeInvalidInput})
		return
	}

	p, err := s.planner.LoadPlan(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}

	// The verdict is recomputed for the report; it is derived state.
	verdict := quality.NewDefaultEngine(p.Metadata.Mode).Assess(p)

	switch c.Query("format") {
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", s.renderer.HTML(p, &verdict))
	default:
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(s.renderer.Markdown(p, &verdict)))
	}
}

// interrogateRequest is the POST /plans/:id/interrogate body.
type interrogateRequest struct {
	Mode           string `json:"mode,omitempty"`
	Question       string `json:"question,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

func (s *Server) handleInterrogate(c *gin.Context) {
	id, err := core.ParsePlanID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errors.CodeInvalidInput})
		return
	}

	// Summarize and validate modes take an empty body.
	var body interrogateRequest
	if err := c.ShouldBindJSON(&body); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errors.CodeInvalidInput})
		return
	}

	result, err := s.interrogation.Interrogate(c.Request.Context(), app.InterrogationRequest{
		PlanID:   id,
		Mode:     app.InterrogationMode(body.Mode),
		Question: body.Question,
		Timeout:  time.Duration(body.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bulkRequest is the POST /bulk body.
type bulkRequest struct {
	Mode           string            `json:"mode,omitempty"`
	Narratives     map[string]string `json:"narratives" binding:"required"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
}

func (s *Server) handleBulk(c *gin.Context) {
	var body bulkRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errors.CodeInvalidInput})
		return
	}

	result, err := s.bulk.Run(c.Request.Context(), app.BulkRequest{
		Mode:       plan.GenerationMode(body.Mode),
		Narratives: body.Narratives,
		Timeout:    time.Duration(body.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// renderError maps application errors to HTTP statuses by their code.
func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case errors.GetCode(err) == errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.GetCode(err) == errors.CodeQualityGate:
		status = http.StatusUnprocessableEntity
	case core.IsGenerationError(err):
		status = http.StatusBadGateway
	}

	if s.log != nil && status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
