package report

import "context"

// CreateParams describes the first version of a new report.
type CreateParams struct {
	ReportID   string
	ReportType string
	TenantID   string
	Content    map[string]any
	CreatedBy  string
	Reason     string
	SnapshotID string
	Audit      AuditContext
}

// UpdateParams describes a new version appended to an existing report.
type UpdateParams struct {
	ReportID   string
	TenantID   string
	Content    map[string]any
	CreatedBy  string
	ChangeType ChangeType
	Reason     string
	SnapshotID string
	Audit      AuditContext
}

// Store is the immutable version store. Implementations must enforce
// uniqueness on (report_id, version_number, tenant_id): concurrent writers
// race on it and the loser gets domain.ErrAlreadyExists, which callers treat
// as a signal to re-read the latest version and retry.
type Store interface {
	// CreateReport inserts version 1 and emits a report_created audit entry.
	// Returns domain.ErrAlreadyExists if the report already has a version 1.
	CreateReport(ctx context.Context, p CreateParams) (*ReportVersion, error)

	// UpdateReport reads the latest version and appends the next one, linked
	// through previous_version_id. Returns domain.ErrNotFound if the report
	// has no versions for the tenant.
	UpdateReport(ctx context.Context, p UpdateParams) (*ReportVersion, error)

	// GetVersion fetches one version by number, tenant-scoped.
	GetVersion(ctx context.Context, reportID string, versionNumber int, tenantID string) (*ReportVersion, error)

	// GetLatestVersion fetches the highest-numbered version, tenant-scoped.
	GetLatestVersion(ctx context.Context, reportID, tenantID string) (*ReportVersion, error)

	// GetVersionHistory returns all versions ordered by version_number
	// ascending, tenant-scoped.
	GetVersionHistory(ctx context.Context, reportID, tenantID string) ([]*ReportVersion, error)

	// GetAuditTrail returns audit entries for the report, newest first,
	// capped at limit (<=0 means no cap).
	GetAuditTrail(ctx context.Context, reportID, tenantID string, limit int) ([]AuditEntry, error)
}
