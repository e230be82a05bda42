package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/finhelm/taxengine/internal/domain"
	"github.com/finhelm/taxengine/internal/output"
	"github.com/finhelm/taxengine/internal/pipeline"
	"github.com/finhelm/taxengine/internal/report"
)

// tenantID scopes every report operation. Defaults keep single-tenant
// deployments working without headers.
func tenantID(c *gin.Context) string {
	if t := c.GetHeader("X-Tenant-ID"); t != "" {
		return t
	}
	return "default"
}

func auditContext(c *gin.Context) report.AuditContext {
	user := c.GetHeader("X-User-ID")
	if user == "" {
		user = "anonymous"
	}
	return report.AuditContext{
		UserID:    user,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var invalid *domain.InvalidInputError
	var integrity *domain.IntegrityViolationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCancelled):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "path": invalid.Path, "code": invalid.Code})
	case errors.As(err, &integrity):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "integrity violation",
			"problems": integrity.Problems,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *APIHandler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store is not configured"})
		return false
	}
	return true
}

// GET /api/v1/health
func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.store != nil})
}

// POST /api/v1/calculate
// Runs the pipeline. When report_id is set the result content is also
// written to the version store: a fresh report gets version 1, an existing
// one a recalculated version.
func (h *APIHandler) handleCalculate(c *gin.Context) {
	var req struct {
		TaxReturn  *domain.TaxReturn          `json:"tax_return" binding:"required"`
		Prior      domain.PriorYearCarryovers `json:"prior"`
		UseCache   bool                       `json:"use_cache"`
		Strict     bool                       `json:"strict"`
		ReportID   string                     `json:"report_id"`
		ReportType string                     `json:"report_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.pipeline.Calculate(c.Request.Context(), pipeline.Request{
		Return:   req.TaxReturn,
		Prior:    req.Prior,
		UseCache: req.UseCache,
		Strict:   req.Strict,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	body := gin.H{"result": res}
	if req.ReportID != "" {
		if !h.requireStore(c) {
			return
		}
		version, err := h.storeResult(c, req.ReportID, req.ReportType, res)
		if err != nil {
			writeError(c, err)
			return
		}
		body["report_version"] = version
	}
	c.JSON(http.StatusOK, body)
}

func (h *APIHandler) storeResult(c *gin.Context, reportID, reportType string, res *pipeline.Result) (*report.ReportVersion, error) {
	if reportType == "" {
		reportType = "tax_calculation"
	}
	ctx := c.Request.Context()
	content := output.BuildReportContent(res)

	_, err := h.store.GetLatestVersion(ctx, reportID, tenantID(c))
	if errors.Is(err, domain.ErrNotFound) {
		return h.store.CreateReport(ctx, report.CreateParams{
			ReportID:   reportID,
			ReportType: reportType,
			TenantID:   tenantID(c),
			Content:    content,
			CreatedBy:  auditContext(c).UserID,
			Reason:     "calculation",
			Audit:      auditContext(c),
		})
	}
	if err != nil {
		return nil, err
	}
	return h.store.UpdateReport(ctx, report.UpdateParams{
		ReportID:   reportID,
		TenantID:   tenantID(c),
		Content:    content,
		CreatedBy:  auditContext(c).UserID,
		ChangeType: report.ChangeRecalculated,
		Reason:     "recalculation",
		Audit:      auditContext(c),
	})
}

// POST /api/v1/reports
func (h *APIHandler) handleCreateReport(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	var req struct {
		ReportID   string         `json:"report_id" binding:"required"`
		ReportType string         `json:"report_type" binding:"required"`
		Content    map[string]any `json:"content" binding:"required"`
		Reason     string         `json:"reason"`
		SnapshotID string         `json:"snapshot_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	version, err := h.store.CreateReport(c.Request.Context(), report.CreateParams{
		ReportID:   req.ReportID,
		ReportType: req.ReportType,
		TenantID:   tenantID(c),
		Content:    req.Content,
		CreatedBy:  auditContext(c).UserID,
		Reason:     req.Reason,
		SnapshotID: req.SnapshotID,
		Audit:      auditContext(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, version)
}

// PUT /api/v1/reports/:id
func (h *APIHandler) handleUpdateReport(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	var req struct {
		Content    map[string]any `json:"content" binding:"required"`
		ChangeType string         `json:"change_type"`
		Reason     string         `json:"reason"`
		SnapshotID string         `json:"snapshot_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	changeType := report.ChangeType(req.ChangeType)
	if req.ChangeType == "" {
		changeType = report.ChangeUpdated
	}
	switch changeType {
	case report.ChangeUpdated, report.ChangeRecalculated, report.ChangeAmended, report.ChangeFinalized:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown change_type: " + req.ChangeType})
		return
	}

	version, err := h.store.UpdateReport(c.Request.Context(), report.UpdateParams{
		ReportID:   c.Param("id"),
		TenantID:   tenantID(c),
		Content:    req.Content,
		CreatedBy:  auditContext(c).UserID,
		ChangeType: changeType,
		Reason:     req.Reason,
		SnapshotID: req.SnapshotID,
		Audit:      auditContext(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, version)
}

// GET /api/v1/reports/:id/versions
func (h *APIHandler) handleVersionHistory(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	versions, err := h.store.GetVersionHistory(c.Request.Context(), c.Param("id"), tenantID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(versions) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report_id": c.Param("id"), "versions": versions})
}

// GET /api/v1/reports/:id/versions/:num
func (h *APIHandler) handleGetVersion(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil || num < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "version number must be a positive integer"})
		return
	}
	version, err := h.store.GetVersion(c.Request.Context(), c.Param("id"), num, tenantID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, version)
}

// GET /api/v1/reports/:id/audit?limit=N
func (h *APIHandler) handleAuditTrail(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}
	entries, err := h.store.GetAuditTrail(c.Request.Context(), c.Param("id"), tenantID(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report_id": c.Param("id"), "entries": entries})
}

// GET /api/v1/reports/:id/verify
func (h *APIHandler) handleVerify(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	err := report.VerifyChainIntegrity(c.Request.Context(), h.store, c.Param("id"), tenantID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report_id": c.Param("id"), "status": "verified"})
}

// GET /api/v1/reports/:id/diff?from=N&to=M
func (h *APIHandler) handleDiff(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	from, errFrom := strconv.Atoi(c.Query("from"))
	to, errTo := strconv.Atoi(c.Query("to"))
	if errFrom != nil || errTo != nil || from < 1 || to < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be positive version numbers"})
		return
	}

	ctx := c.Request.Context()
	oldVersion, err := h.store.GetVersion(ctx, c.Param("id"), from, tenantID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	newVersion, err := h.store.GetVersion(ctx, c.Param("id"), to, tenantID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	changes := report.CompareVersions(oldVersion, newVersion)
	if changes == nil {
		changes = []report.Change{}
	}
	c.JSON(http.StatusOK, gin.H{
		"report_id": c.Param("id"),
		"from":      from,
		"to":        to,
		"changes":   changes,
	})
}
