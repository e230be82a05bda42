package report

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finhelm/taxengine/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// PostgresStore implements Store against Postgres. The UNIQUE constraint on
// (report_id, version_number, tenant_id) is the arbiter for concurrent
// writers; the loser receives domain.ErrAlreadyExists.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects and pings the database.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// InitSchema creates the version and audit tables if they do not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init report schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateReport(ctx context.Context, p CreateParams) (*ReportVersion, error) {
	v, err := newVersion(p.ReportID, p.ReportType, p.TenantID, 1, p.Content,
		p.CreatedBy, ChangeCreated, p.Reason, p.SnapshotID, "")
	if err != nil {
		return nil, err
	}
	if err := s.insertVersion(ctx, v, newAuditEntry(v, "report_created", p.Audit)); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *PostgresStore) UpdateReport(ctx context.Context, p UpdateParams) (*ReportVersion, error) {
	changeType := p.ChangeType
	if changeType == "" {
		changeType = ChangeUpdated
	}
	latest, err := s.GetLatestVersion(ctx, p.ReportID, p.TenantID)
	if err != nil {
		return nil, err
	}
	v, err := newVersion(p.ReportID, latest.ReportType, p.TenantID, latest.VersionNumber+1,
		p.Content, p.CreatedBy, changeType, p.Reason, p.SnapshotID, latest.VersionID)
	if err != nil {
		return nil, err
	}
	if err := s.insertVersion(ctx, v, newAuditEntry(v, "report_"+string(changeType), p.Audit)); err != nil {
		return nil, err
	}
	return v, nil
}

// insertVersion writes the version row and its audit entry in one
// transaction so the audit trail never references a missing version.
func (s *PostgresStore) insertVersion(ctx context.Context, v *ReportVersion, audit AuditEntry) error {
	contentJSON, err := json.Marshal(v.Content)
	if err != nil {
		return fmt.Errorf("marshal report content: %w", err)
	}
	var detailsJSON []byte
	if audit.Details != nil {
		detailsJSON, err = json.Marshal(audit.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO report_versions (
			version_id, report_id, version_number, report_type, tenant_id,
			content_json, content_hash, created_at, created_by,
			change_type, change_reason, snapshot_id, previous_version_id, integrity_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''), $14)`,
		v.VersionID, v.ReportID, v.VersionNumber, v.ReportType, v.TenantID,
		contentJSON, v.ContentHash, v.CreatedAt, v.CreatedBy,
		string(v.ChangeType), v.ChangeReason, v.SnapshotID, v.PreviousVersionID, v.IntegrityHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert report version: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO report_audit_trail (
			audit_id, report_id, version_id, tenant_id, timestamp,
			action, user_id, ip_address, user_agent, details_json
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)`,
		audit.AuditID, audit.ReportID, audit.VersionID, audit.TenantID, audit.Timestamp,
		audit.Action, audit.UserID, audit.IPAddress, audit.UserAgent, detailsJSON)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit version insert: %w", err)
	}
	return nil
}

const versionColumns = `
	version_id, report_id, version_number, report_type, tenant_id,
	content_json, content_hash, created_at, created_by,
	change_type, change_reason, COALESCE(snapshot_id, ''), COALESCE(previous_version_id, ''), integrity_hash`

func (s *PostgresStore) GetVersion(ctx context.Context, reportID string, versionNumber int, tenantID string) (*ReportVersion, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+versionColumns+`
		FROM report_versions
		WHERE report_id = $1 AND version_number = $2 AND tenant_id = $3`,
		reportID, versionNumber, tenantID)
	return scanVersion(row)
}

func (s *PostgresStore) GetLatestVersion(ctx context.Context, reportID, tenantID string) (*ReportVersion, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+versionColumns+`
		FROM report_versions
		WHERE report_id = $1 AND tenant_id = $2
		ORDER BY version_number DESC
		LIMIT 1`,
		reportID, tenantID)
	return scanVersion(row)
}

func (s *PostgresStore) GetVersionHistory(ctx context.Context, reportID, tenantID string) ([]*ReportVersion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+versionColumns+`
		FROM report_versions
		WHERE report_id = $1 AND tenant_id = $2
		ORDER BY version_number ASC`,
		reportID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query version history: %w", err)
	}
	defer rows.Close()

	var versions []*ReportVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate version history: %w", err)
	}
	return versions, nil
}

func (s *PostgresStore) GetAuditTrail(ctx context.Context, reportID, tenantID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT audit_id, report_id, version_id, tenant_id, timestamp,
		       action, user_id, COALESCE(ip_address, ''), COALESCE(user_agent, ''), details_json
		FROM report_audit_trail
		WHERE report_id = $1 AND tenant_id = $2
		ORDER BY timestamp DESC
		LIMIT $3`,
		reportID, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var ts time.Time
		var detailsJSON []byte
		if err := rows.Scan(&e.AuditID, &e.ReportID, &e.VersionID, &e.TenantID, &ts,
			&e.Action, &e.UserID, &e.IPAddress, &e.UserAgent, &detailsJSON); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Timestamp = ts.UTC()
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit trail: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*ReportVersion, error) {
	var v ReportVersion
	var contentJSON []byte
	var createdAt time.Time
	var changeType string
	err := row.Scan(&v.VersionID, &v.ReportID, &v.VersionNumber, &v.ReportType, &v.TenantID,
		&contentJSON, &v.ContentHash, &createdAt, &v.CreatedBy,
		&changeType, &v.ChangeReason, &v.SnapshotID, &v.PreviousVersionID, &v.IntegrityHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan report version: %w", err)
	}
	v.CreatedAt = createdAt.UTC()
	v.ChangeType = ChangeType(changeType)
	if err := json.Unmarshal(contentJSON, &v.Content); err != nil {
		return nil, fmt.Errorf("decode report content: %w", err)
	}
	return &v, nil
}
