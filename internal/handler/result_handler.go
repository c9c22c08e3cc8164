package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rtagency/mocktest-backend/internal/middleware"
	"github.com/rtagency/mocktest-backend/internal/response"
	"github.com/rtagency/mocktest-backend/internal/service"
)

// ResultHandler serves graded results, the post-test review, and the
// wrong-answer notebook.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListResults godoc
// GET /api/v1/results
// Returns the calling user's result history, newest first.
func (h *ResultHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)

	results, err := h.resultService.ListMyResults(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetResult godoc
// GET /api/v1/results/:result_id
// Returns one graded result. Results are owner-scoped.
func (h *ResultHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resultID, ok := paramUUID(c, "result_id")
	if !ok {
		return
	}

	result, err := h.resultService.GetResult(c.Request.Context(), resultID, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetLatestForTest godoc
// GET /api/v1/tests/:test_id/result
// Returns the calling user's most recent result for a test. Used after a
// reload when the attempt already finalized.
func (h *ResultHandler) GetLatestForTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	result, err := h.resultService.GetLatestForTest(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetReview godoc
// GET /api/v1/results/:result_id/review
// Returns the result together with the full paper so the client can
// show each question with the candidate's answer against the key.
func (h *ResultHandler) GetReview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resultID, ok := paramUUID(c, "result_id")
	if !ok {
		return
	}

	review, err := h.resultService.GetReview(c.Request.Context(), resultID, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result":    review.Result,
		"test":      review.Test,
		"questions": review.Questions,
	})
}

// GetNotebook godoc
// GET /api/v1/results/notebook
// Returns every question the user got wrong across all attempts,
// grouped per test, for revision.
func (h *ResultHandler) GetNotebook(c *gin.Context) {
	claims := middleware.GetClaims(c)

	entries, err := h.resultService.GetNotebook(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"notebook": entries})
}

// paramUUID parses a path parameter as a UUID, failing the request on error.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return v, true
}
