package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rtagency/mocktest-backend/internal/middleware"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/response"
	"github.com/rtagency/mocktest-backend/internal/service"
	"github.com/rtagency/mocktest-backend/internal/validator"
)

// IssueHandler takes question issue reports from candidates and serves the
// admin review queue.
type IssueHandler struct {
	issueService *service.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issueService *service.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

// ReportIssue godoc
// POST /api/v1/issues
func (h *IssueHandler) ReportIssue(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateIssueRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	report, err := h.issueService.Report(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrIssueCooldown):
			response.Fail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"issue": report})
}

// ListIssues godoc
// GET /api/v1/admin/issues
// Optional status filter plus the usual pagination parameters.
func (h *IssueHandler) ListIssues(c *gin.Context) {
	status := model.IssueStatus(c.Query("status"))

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 50)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	issues, total, err := h.issueService.List(c.Request.Context(), status, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"issues": issues}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// ResolveIssue godoc
// PUT /api/v1/admin/issues/:issue_id
func (h *IssueHandler) ResolveIssue(c *gin.Context) {
	issueID, ok := paramInt64(c, "issue_id")
	if !ok {
		return
	}

	var req model.ResolveIssueRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	found, err := h.issueService.Resolve(c.Request.Context(), issueID, req.Status)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !found {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
