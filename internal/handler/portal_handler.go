package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rtagency/mocktest-backend/internal/middleware"
	"github.com/rtagency/mocktest-backend/internal/response"
	"github.com/rtagency/mocktest-backend/internal/service"
	"github.com/rtagency/mocktest-backend/internal/session"
	"github.com/rtagency/mocktest-backend/internal/validator"
)

// PortalHandler handles candidate-facing endpoints: catalog browsing,
// pre-test gates, and the attempt lifecycle over REST. The WebSocket stream
// covers in-test interaction; these endpoints cover everything around it.
type PortalHandler struct {
	catalogService *service.CatalogService
	attemptService *service.AttemptService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(catalogService *service.CatalogService, attemptService *service.AttemptService) *PortalHandler {
	return &PortalHandler{
		catalogService: catalogService,
		attemptService: attemptService,
	}
}

// ─── Catalog ────────────────────────────────────────────────────────

// ListPacks godoc
// GET /api/v1/packs
// Returns active packs. Public: browsing needs no account.
func (h *PortalHandler) ListPacks(c *gin.Context) {
	packs, err := h.catalogService.ListPacks(c.Request.Context(), true)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"packs": packs})
}

// GetPack godoc
// GET /api/v1/packs/:pack_id
// Returns one pack with its published tests.
func (h *PortalHandler) GetPack(c *gin.Context) {
	packID, ok := paramInt64(c, "pack_id")
	if !ok {
		return
	}

	pack, err := h.catalogService.GetPack(c.Request.Context(), packID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	tests, err := h.catalogService.ListTests(c.Request.Context(), packID, true)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"pack": pack, "tests": tests})
}

// ─── Pre-test gates ─────────────────────────────────────────────────

// CompleteCountdown godoc
// POST /api/v1/tests/:test_id/countdown
// Records that the candidate sat through the pre-test countdown.
func (h *PortalHandler) CompleteCountdown(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	if err := h.attemptService.CompleteCountdown(c.Request.Context(), claims.UserID, testID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// VisitInstructions godoc
// POST /api/v1/tests/:test_id/instructions
// Records that the candidate opened the instructions page.
func (h *PortalHandler) VisitInstructions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	if err := h.attemptService.VisitInstructions(c.Request.Context(), claims.UserID, testID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Attempt lifecycle ──────────────────────────────────────────────

// StartAttempt godoc
// POST /api/v1/tests/:test_id/attempt
// Starts (or resumes) an attempt and returns the paper with the opening
// state. In-test interaction then moves to the WebSocket stream.
func (h *PortalHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	sess, paper, err := h.attemptService.StartAttempt(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"paper": paper,
		"state": sess.State(),
	})
}

// GetPaper godoc
// GET /api/v1/tests/:test_id/paper
// Returns the answer-stripped paper for an active attempt, so a reloaded
// client can redraw questions without restarting.
func (h *PortalHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	if _, err := h.attemptService.GetAttempt(claims.UserID, testID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	paper, err := h.catalogService.GetPaper(c.Request.Context(), testID)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// GetAttemptState godoc
// GET /api/v1/tests/:test_id/attempt/state
// Returns the live attempt state. Covers page reload before the WebSocket
// reconnects.
func (h *PortalHandler) GetAttemptState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	sess, err := h.attemptService.GetAttempt(claims.UserID, testID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": sess.State()})
}

// SubmitAttempt godoc
// POST /api/v1/tests/:test_id/attempt/submit
// Finalizes the attempt over REST. The WebSocket submit action is
// equivalent; this endpoint covers clients whose socket already dropped.
func (h *PortalHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), claims.UserID, testID, req.Confirmed)
	if err != nil {
		failAttemptError(c, err)
		return
	}
	if result == nil {
		// Declined confirmation.
		response.Success(c, http.StatusOK, gin.H{"submitted": false})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submitted": true, "result": result})
}

// ─── Helpers ────────────────────────────────────────────────────────

// paramInt64 parses a path parameter as int64, failing the request on error.
func paramInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return v, true
}

// failAttemptError maps attempt and entitlement errors to HTTP responses.
func failAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrTestNotPublished):
		response.Fail(c, http.StatusForbidden, response.ErrTestNotPublished)
	case errors.Is(err, service.ErrNotPurchased):
		response.Fail(c, http.StatusForbidden, response.ErrNotPurchased)
	case errors.Is(err, service.ErrGateNotPassed):
		response.Fail(c, http.StatusForbidden, response.ErrGateNotPassed)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrNoActiveAttempt):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
	case errors.Is(err, session.ErrFinalized):
		response.Fail(c, http.StatusConflict, response.ErrAttemptFinalized)
	case errors.Is(err, session.ErrSubmitPending):
		response.Fail(c, http.StatusConflict, response.ErrSubmitPending)
	case errors.Is(err, session.ErrPersistence):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrResultNotSaved)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
