package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	cutoffdomain "github.com/flexiworks/cetpredict/internal/cutoff/domain"
)

// queryRequest is the client query shape. Rank arrives as either a JSON
// number or a string, depending on the form field.
type queryRequest struct {
	Round    string `json:"round"`
	Course   string `json:"course"`
	Category string `json:"category"`
	Branch   string `json:"branch"`
	Rank     any    `json:"rank"`
}

func (r queryRequest) toQuery() (cutoffdomain.Query, error) {
	rank, err := parseRank(r.Rank)
	if err != nil {
		return cutoffdomain.Query{}, err
	}
	return cutoffdomain.Query{
		Round:    strings.TrimSpace(r.Round),
		Course:   strings.TrimSpace(r.Course),
		Category: strings.TrimSpace(r.Category),
		Branch:   strings.TrimSpace(r.Branch),
		Rank:     rank,
	}, nil
}

func parseRank(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, cutoffdomain.ErrMissingParameter
	case float64:
		if v != float64(int(v)) {
			return 0, cutoffdomain.ErrInvalidRank
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, cutoffdomain.ErrMissingParameter
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, cutoffdomain.ErrInvalidRank
		}
		return parsed, nil
	default:
		return 0, cutoffdomain.ErrInvalidRank
	}
}

func (s *Server) ListOptions(c *gin.Context) {
	round := strings.TrimSpace(c.Query("round"))

	options, err := s.cutoffSvc.Options(c.Request.Context(), round)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}

func (s *Server) PredictEligibleCount(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	query, err := req.toQuery()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	count, err := s.cutoffSvc.CountEligible(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordEligibilityQuery(c.Request.Context(), query.Round)
	c.JSON(http.StatusOK, gin.H{
		"eligibleCount": count,
		"locked":        true,
	})
}
