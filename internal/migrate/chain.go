package migrate

// DefaultChain is the revision history for the report store schema.
func DefaultChain() []Migration {
	return []Migration{
		{
			Revision: "a1f30c9d2b11",
			Message:  "create report_versions",
			UpSQL: `
CREATE TABLE IF NOT EXISTS report_versions (
    version_id          TEXT PRIMARY KEY,
    report_id           TEXT NOT NULL,
    version_number      INTEGER NOT NULL,
    report_type         TEXT NOT NULL,
    tenant_id           TEXT NOT NULL,
    content_json        JSONB NOT NULL,
    content_hash        TEXT NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL,
    created_by          TEXT NOT NULL,
    change_type         TEXT NOT NULL,
    change_reason       TEXT,
    snapshot_id         TEXT,
    previous_version_id TEXT,
    integrity_hash      TEXT NOT NULL,
    UNIQUE (report_id, version_number, tenant_id)
);
CREATE INDEX IF NOT EXISTS idx_report_versions_report
    ON report_versions (report_id, version_number);
CREATE INDEX IF NOT EXISTS idx_report_versions_tenant
    ON report_versions (tenant_id, report_id);
CREATE INDEX IF NOT EXISTS idx_report_versions_snapshot
    ON report_versions (snapshot_id);`,
			DownSQL: `DROP TABLE IF EXISTS report_versions;`,
		},
		{
			Revision: "b27e415c80fa",
			Message:  "create report_audit_trail",
			UpSQL: `
CREATE TABLE IF NOT EXISTS report_audit_trail (
    audit_id     TEXT PRIMARY KEY,
    report_id    TEXT NOT NULL,
    version_id   TEXT NOT NULL REFERENCES report_versions (version_id),
    tenant_id    TEXT NOT NULL,
    timestamp    TIMESTAMPTZ NOT NULL,
    action       TEXT NOT NULL,
    user_id      TEXT NOT NULL,
    ip_address   TEXT,
    user_agent   TEXT,
    details_json JSONB
);
CREATE INDEX IF NOT EXISTS idx_report_audit_report
    ON report_audit_trail (report_id);
CREATE INDEX IF NOT EXISTS idx_report_audit_tenant_time
    ON report_audit_trail (tenant_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_report_audit_user_time
    ON report_audit_trail (user_id, timestamp);`,
			DownSQL: `DROP TABLE IF EXISTS report_audit_trail;`,
		},
	}
}
