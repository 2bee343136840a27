package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/presta-matcher/internal/analyzer"
	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/search"
	"github.com/spigell/presta-matcher/internal/server/middleware"
)

// errorResponse is the payload of every non-search failure.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type analyzeResponse struct {
	Query          string                  `json:"query"`
	Keywords       analyzer.Keywords       `json:"keywords"`
	SearchAnalysis analyzer.SearchAnalysis `json:"searchAnalysis"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleSearch answers 200 even when the search itself failed; the outcome
// is carried by the success field.
func (s *Server) handleSearch(c *gin.Context) {
	var req search.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithRequest(s.logger, middleware.RequestID(c)).Debug("rejecting search body", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.ID = middleware.RequestID(c)

	c.JSON(http.StatusOK, s.searcher.Search(c.Request.Context(), req))
}

func (s *Server) handleAnalyze(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "query parameter q is required"})
		return
	}

	keywords, analysis := analyzer.Analyze(query)
	c.JSON(http.StatusOK, analyzeResponse{
		Query:          query,
		Keywords:       keywords,
		SearchAnalysis: analysis,
	})
}
