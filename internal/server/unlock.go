package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flexiworks/cetpredict/internal/export"
	unlockdomain "github.com/flexiworks/cetpredict/internal/unlock/domain"
)

type unlockRequest struct {
	queryRequest
	OrderID string `json:"orderId"`
}

func (s *Server) UnlockEligible(c *gin.Context) {
	result, query, ok := s.unlock(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"round":           result.Round,
		"eligibleCount":   result.EligibleCount,
		"groupedEligible": result.GroupedEligible,
		"nearMiss":        result.NearMiss,
		"rank":            query.Rank,
	})
}

func (s *Server) ExportCSV(c *gin.Context) {
	result, query, ok := s.unlock(c)
	if !ok {
		return
	}

	data, err := s.exports.GenerateCSV(c.Request.Context(), export.Report{
		Round:    result.Round,
		Course:   query.Course,
		Category: query.Category,
		Rank:     query.Rank,
		Grouped:  result.GroupedEligible,
		NearMiss: result.NearMiss,
	})
	if err != nil {
		s.log.Error("csv generation failed", zap.Error(err))
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="college_report.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (s *Server) ExportPDF(c *gin.Context) {
	result, query, ok := s.unlock(c)
	if !ok {
		return
	}

	reader, err := s.exports.GeneratePDF(c.Request.Context(), export.Report{
		Round:    result.Round,
		Course:   query.Course,
		Category: query.Category,
		Rank:     query.Rank,
		Grouped:  result.GroupedEligible,
		NearMiss: result.NearMiss,
	})
	if err != nil {
		s.log.Error("pdf generation failed", zap.Error(err))
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="college_report.pdf"`)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, nil)
}

// unlock binds the shared unlock-shaped request, runs the gated computation
// and reports whether the caller may proceed.
func (s *Server) unlock(c *gin.Context) (unlockdomain.Result, resolvedQuery, bool) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return unlockdomain.Result{}, resolvedQuery{}, false
	}

	query, err := req.toQuery()
	if err != nil {
		AbortWithError(c, err)
		return unlockdomain.Result{}, resolvedQuery{}, false
	}

	result, err := s.unlockSvc.Unlock(c.Request.Context(), query, strings.TrimSpace(req.OrderID))
	if err != nil {
		AbortWithError(c, err)
		return unlockdomain.Result{}, resolvedQuery{}, false
	}

	return result, resolvedQuery{Course: query.Course, Category: query.Category, Rank: query.Rank}, true
}

type resolvedQuery struct {
	Course   string
	Category string
	Rank     int
}
