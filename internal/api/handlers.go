package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/deliverypulse/pulse/core"
	"github.com/deliverypulse/pulse/schema"
	"github.com/gin-gonic/gin"
)

const maxBodySize = 8 << 20 // 8MB

// runRequest is the body accepted by every scoring endpoint.
type runRequest struct {
	WeekEnding string          `json:"week_ending" binding:"required"`
	Rows       json.RawMessage `json:"rows" binding:"required"`
	Prior      json.RawMessage `json:"prior,omitempty"`
}

type scoreResponse struct {
	WeekEnding string                  `json:"week_ending"`
	Summary    schema.PortfolioSummary `json:"summary"`
	Entities   []schema.ScoredEntity   `json:"entities"`
	Warnings   []string                `json:"warnings"`
}

type risksResponse struct {
	WeekEnding string                `json:"week_ending"`
	Risks      []schema.RankedRisk   `json:"risks"`
	Positives  []schema.ScoredEntity `json:"positives"`
	Warnings   []string              `json:"warnings"`
}

type briefResponse struct {
	WeekEnding string   `json:"week_ending"`
	Brief      string   `json:"brief"`
	Warnings   []string `json:"warnings"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleScore(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, scoreResponse{
		WeekEnding: res.Snapshot.WeekEnding,
		Summary:    res.Summary,
		Entities:   res.Snapshot.Entities,
		Warnings:   warningTexts(res.Warnings),
	})
}

func (s *Server) handleRisks(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, risksResponse{
		WeekEnding: res.Snapshot.WeekEnding,
		Risks:      res.Risks,
		Positives:  res.Positives,
		Warnings:   warningTexts(res.Warnings),
	})
}

func (s *Server) handleBrief(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	text, err := res.Brief()
	if err != nil {
		returnError(c, err)
		return
	}
	c.JSON(http.StatusOK, briefResponse{
		WeekEnding: res.Snapshot.WeekEnding,
		Brief:      text,
		Warnings:   warningTexts(res.Warnings),
	})
}

// run binds the request and executes the pipeline. On failure the error
// response has already been written.
func (s *Server) run(c *gin.Context) (*core.Result, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		returnErrorCode(c, err, http.StatusBadRequest)
		return nil, false
	}

	opts := s.opts
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			returnErrorCode(c, errors.New("limit must be a non-negative integer"), http.StatusBadRequest)
			return nil, false
		}
		opts.RiskLimit = limit
		opts.PositiveLimit = limit
	}

	res, err := core.RunJSON(req.WeekEnding, req.Rows, req.Prior, opts)
	if err != nil {
		returnError(c, err)
		return nil, false
	}
	for _, w := range res.Warnings {
		s.logger.Warnw("pipeline warning", "path", c.FullPath(), "warning", w.Error())
	}
	return res, true
}

// returnError maps pipeline errors onto status codes.
func returnError(c *gin.Context, err error) {
	var (
		ve *schema.ValidationError
		re *schema.RenderError
	)
	switch {
	case errors.As(err, &ve):
		returnErrorCode(c, err, http.StatusUnprocessableEntity)
	case errors.As(err, &re):
		returnErrorCode(c, err, http.StatusInternalServerError)
	default:
		returnErrorCode(c, err, http.StatusBadRequest)
	}
}

func returnErrorCode(c *gin.Context, err error, code int) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func warningTexts(warnings []error) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}
