// Package report implements the immutable report version store: every write
// creates a new version linked to its predecessor, every version carries a
// content hash and an integrity hash, and an audit entry records who did
// what. Versions are never updated or deleted.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finhelm/taxengine/pkg/hashutil"
)

// ChangeType labels what an update did. The audit action derives from it.
type ChangeType string

const (
	ChangeCreated      ChangeType = "created"
	ChangeUpdated      ChangeType = "updated"
	ChangeRecalculated ChangeType = "recalculated"
	ChangeAmended      ChangeType = "amended"
	ChangeFinalized    ChangeType = "finalized"
)

// ReportVersion is one immutable snapshot of a report's content.
type ReportVersion struct {
	VersionID         string         `json:"version_id"`
	ReportID          string         `json:"report_id"`
	VersionNumber     int            `json:"version_number"`
	ReportType        string         `json:"report_type"`
	TenantID          string         `json:"tenant_id"`
	Content           map[string]any `json:"content"`
	ContentHash       string         `json:"content_hash"`
	CreatedAt         time.Time      `json:"created_at"`
	CreatedBy         string         `json:"created_by"`
	ChangeType        ChangeType     `json:"change_type"`
	ChangeReason      string         `json:"change_reason,omitempty"`
	SnapshotID        string         `json:"snapshot_id,omitempty"`
	PreviousVersionID string         `json:"previous_version_id,omitempty"`
	IntegrityHash     string         `json:"integrity_hash"`
}

// AuditEntry records one action against a report.
type AuditEntry struct {
	AuditID   string         `json:"audit_id"`
	ReportID  string         `json:"report_id"`
	VersionID string         `json:"version_id"`
	TenantID  string         `json:"tenant_id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	UserID    string         `json:"user_id"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// AuditContext carries the actor metadata attached to every audit entry.
type AuditContext struct {
	UserID    string
	IPAddress string
	UserAgent string
	Details   map[string]any
}

// ContentHash is the canonical-JSON SHA-256 of the content document.
func ContentHash(content map[string]any) (string, error) {
	return hashutil.Hash(content)
}

// IntegrityHash binds the version's identifying fields and content hash so
// any post-hoc mutation of a stored row is detectable.
func IntegrityHash(v *ReportVersion) string {
	payload := fmt.Sprintf("%s|%s|%d|%s|%s",
		v.VersionID, v.ReportID, v.VersionNumber, v.ContentHash,
		v.CreatedAt.UTC().Format(time.RFC3339Nano))
	return hashutil.HashString(payload)
}

// newVersion assembles a sealed version. The caller supplies linkage; hashes
// are derived here so no caller can produce an unsealed row.
func newVersion(reportID, reportType, tenantID string, versionNumber int, content map[string]any,
	createdBy string, changeType ChangeType, changeReason, snapshotID, previousVersionID string) (*ReportVersion, error) {

	contentHash, err := ContentHash(content)
	if err != nil {
		return nil, err
	}
	// Microsecond precision so the integrity hash still recomputes after a
	// round trip through TIMESTAMPTZ storage.
	createdAt := time.Now().UTC().Truncate(time.Microsecond)
	v := &ReportVersion{
		VersionID:         uuid.NewString(),
		ReportID:          reportID,
		VersionNumber:     versionNumber,
		ReportType:        reportType,
		TenantID:          tenantID,
		Content:           content,
		ContentHash:       contentHash,
		CreatedAt:         createdAt,
		CreatedBy:         createdBy,
		ChangeType:        changeType,
		ChangeReason:      changeReason,
		SnapshotID:        snapshotID,
		PreviousVersionID: previousVersionID,
	}
	v.IntegrityHash = IntegrityHash(v)
	return v, nil
}

// newAuditEntry builds the audit row for a version write.
func newAuditEntry(v *ReportVersion, action string, actor AuditContext) AuditEntry {
	return AuditEntry{
		AuditID:   uuid.NewString(),
		ReportID:  v.ReportID,
		VersionID: v.VersionID,
		TenantID:  v.TenantID,
		Timestamp: time.Now().UTC(),
		Action:    action,
		UserID:    actor.UserID,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		Details:   actor.Details,
	}
}
