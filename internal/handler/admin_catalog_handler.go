package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/response"
	"github.com/rtagency/mocktest-backend/internal/service"
	"github.com/rtagency/mocktest-backend/internal/validator"
)

// AdminCatalogHandler handles admin-side management of packs, tests, and
// questions, plus the dashboard.
type AdminCatalogHandler struct {
	catalogService *service.CatalogService
	adminService   *service.AdminService
	resultService  *service.ResultService
}

// NewAdminCatalogHandler creates a new AdminCatalogHandler.
func NewAdminCatalogHandler(catalogService *service.CatalogService, adminService *service.AdminService, resultService *service.ResultService) *AdminCatalogHandler {
	return &AdminCatalogHandler{
		catalogService: catalogService,
		adminService:   adminService,
		resultService:  resultService,
	}
}

// GetDashboard godoc
// GET /api/v1/admin/dashboard
func (h *AdminCatalogHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboard(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// ─── Packs ──────────────────────────────────────────────────────────

// ListPacks godoc
// GET /api/v1/admin/packs
// Returns all packs, inactive included.
func (h *AdminCatalogHandler) ListPacks(c *gin.Context) {
	packs, err := h.catalogService.ListPacks(c.Request.Context(), false)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"packs": packs})
}

// CreatePack godoc
// POST /api/v1/admin/packs
func (h *AdminCatalogHandler) CreatePack(c *gin.Context) {
	var req model.CreatePackRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pack, err := h.catalogService.CreatePack(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"pack": pack})
}

// UpdatePack godoc
// PUT /api/v1/admin/packs/:pack_id
// Partial update: omitted fields keep their current value.
func (h *AdminCatalogHandler) UpdatePack(c *gin.Context) {
	packID, ok := paramInt64(c, "pack_id")
	if !ok {
		return
	}

	var req model.UpdatePackRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pack, err := h.catalogService.UpdatePack(c.Request.Context(), packID, &req)
	if err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pack": pack})
}

// DeletePack godoc
// DELETE /api/v1/admin/packs/:pack_id
func (h *AdminCatalogHandler) DeletePack(c *gin.Context) {
	packID, ok := paramInt64(c, "pack_id")
	if !ok {
		return
	}

	if err := h.catalogService.DeletePack(c.Request.Context(), packID); err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Tests ──────────────────────────────────────────────────────────

// ListTests godoc
// GET /api/v1/admin/packs/:pack_id/tests
// Returns every test in the pack, drafts and archived included.
func (h *AdminCatalogHandler) ListTests(c *gin.Context) {
	packID, ok := paramInt64(c, "pack_id")
	if !ok {
		return
	}

	tests, err := h.catalogService.ListTests(c.Request.Context(), packID, false)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// CreateTest godoc
// POST /api/v1/admin/tests
// Creates a draft test. Duration defaults from the exam profile when
// the payload leaves it out.
func (h *AdminCatalogHandler) CreateTest(c *gin.Context) {
	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.catalogService.CreateTest(c.Request.Context(), &req)
	if err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// GetTest godoc
// GET /api/v1/admin/tests/:test_id
func (h *AdminCatalogHandler) GetTest(c *gin.Context) {
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	test, err := h.catalogService.GetTest(c.Request.Context(), testID)
	if err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// UpdateTest godoc
// PUT /api/v1/admin/tests/:test_id
func (h *AdminCatalogHandler) UpdateTest(c *gin.Context) {
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.catalogService.UpdateTest(c.Request.Context(), testID, &req)
	if err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// PublishTest godoc
// POST /api/v1/admin/tests/:test_id/publish
// Publishing requires at least one question and warms the paper cache.
func (h *AdminCatalogHandler) PublishTest(c *gin.Context) {
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	if err := h.catalogService.PublishTest(c.Request.Context(), testID); err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ArchiveTest godoc
// POST /api/v1/admin/tests/:test_id/archive
func (h *AdminCatalogHandler) ArchiveTest(c *gin.Context) {
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	if err := h.catalogService.ArchiveTest(c.Request.Context(), testID); err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// DeleteTest godoc
// DELETE /api/v1/admin/tests/:test_id
func (h *AdminCatalogHandler) DeleteTest(c *gin.Context) {
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteTest(c.Request.Context(), testID); err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// GetTestResults godoc
// GET /api/v1/admin/tests/:test_id/results?page=&per_page=
// Returns one page of candidate outcomes for the test, best score first.
func (h *AdminCatalogHandler) GetTestResults(c *gin.Context) {
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 50)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	results, total, err := h.resultService.ListTestResults(c.Request.Context(), testID, perPage, (page-1)*perPage)
	if err != nil {
		failCatalogError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// ─── Questions ──────────────────────────────────────────────────────

// GetQuestions godoc
// GET /api/v1/admin/tests/:test_id/questions
// Returns the full question set, correct answers included.
func (h *AdminCatalogHandler) GetQuestions(c *gin.Context) {
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	questions, err := h.catalogService.GetQuestions(c.Request.Context(), testID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ReplaceQuestions godoc
// PUT /api/v1/admin/tests/:test_id/questions
// Replaces the whole question set in one transaction.
func (h *AdminCatalogHandler) ReplaceQuestions(c *gin.Context) {
	testID, ok := paramInt64(c, "test_id")
	if !ok {
		return
	}

	var req struct {
		Questions []model.AddQuestionRequest `json:"questions" binding:"required,dive"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.catalogService.ReplaceQuestions(c.Request.Context(), testID, req.Questions); err != nil {
		failCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": len(req.Questions)})
}

// failCatalogError maps catalog errors to HTTP responses.
func failCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrExamTypeMismatch):
		response.Fail(c, http.StatusConflict, response.ErrExamTypeMismatch)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrTestNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrTestNotPublished)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
