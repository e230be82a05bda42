package report

import (
	"context"
	"sort"
	"sync"

	"github.com/finhelm/taxengine/internal/domain"
)

type memoryKey struct {
	reportID string
	tenantID string
}

// MemoryStore is an in-process Store used by tests and by deployments that
// do not configure a database. Versions are deep-copied on the way in and
// out so callers cannot mutate stored content.
type MemoryStore struct {
	mu       sync.Mutex
	versions map[memoryKey][]*ReportVersion
	audits   map[memoryKey][]AuditEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		versions: make(map[memoryKey][]*ReportVersion),
		audits:   make(map[memoryKey][]AuditEntry),
	}
}

func (s *MemoryStore) CreateReport(ctx context.Context, p CreateParams) (*ReportVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	v, err := newVersion(p.ReportID, p.ReportType, p.TenantID, 1, copyContent(p.Content),
		p.CreatedBy, ChangeCreated, p.Reason, p.SnapshotID, "")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey{p.ReportID, p.TenantID}
	if len(s.versions[key]) > 0 {
		return nil, domain.ErrAlreadyExists
	}
	s.versions[key] = append(s.versions[key], v)
	s.audits[key] = append(s.audits[key], newAuditEntry(v, "report_created", p.Audit))
	return copyVersion(v), nil
}

func (s *MemoryStore) UpdateReport(ctx context.Context, p UpdateParams) (*ReportVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	changeType := p.ChangeType
	if changeType == "" {
		changeType = ChangeUpdated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey{p.ReportID, p.TenantID}
	chain := s.versions[key]
	if len(chain) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := chain[len(chain)-1]

	v, err := newVersion(p.ReportID, latest.ReportType, p.TenantID, latest.VersionNumber+1,
		copyContent(p.Content), p.CreatedBy, changeType, p.Reason, p.SnapshotID, latest.VersionID)
	if err != nil {
		return nil, err
	}
	s.versions[key] = append(chain, v)
	s.audits[key] = append(s.audits[key], newAuditEntry(v, "report_"+string(changeType), p.Audit))
	return copyVersion(v), nil
}

func (s *MemoryStore) GetVersion(ctx context.Context, reportID string, versionNumber int, tenantID string) (*ReportVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.versions[memoryKey{reportID, tenantID}] {
		if v.VersionNumber == versionNumber {
			return copyVersion(v), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) GetLatestVersion(ctx context.Context, reportID, tenantID string) (*ReportVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	chain := s.versions[memoryKey{reportID, tenantID}]
	if len(chain) == 0 {
		return nil, domain.ErrNotFound
	}
	return copyVersion(chain[len(chain)-1]), nil
}

func (s *MemoryStore) GetVersionHistory(ctx context.Context, reportID, tenantID string) ([]*ReportVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	chain := s.versions[memoryKey{reportID, tenantID}]
	out := make([]*ReportVersion, len(chain))
	for i, v := range chain {
		out[i] = copyVersion(v)
	}
	return out, nil
}

func (s *MemoryStore) GetAuditTrail(ctx context.Context, reportID, tenantID string, limit int) ([]AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.audits[memoryKey{reportID, tenantID}]
	out := make([]AuditEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyContent(content map[string]any) map[string]any {
	if content == nil {
		return nil
	}
	out := make(map[string]any, len(content))
	for k, v := range content {
		switch t := v.(type) {
		case map[string]any:
			out[k] = copyContent(t)
		case []any:
			cp := make([]any, len(t))
			for i, e := range t {
				if m, ok := e.(map[string]any); ok {
					cp[i] = copyContent(m)
				} else {
					cp[i] = e
				}
			}
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

func copyVersion(v *ReportVersion) *ReportVersion {
	cp := *v
	cp.Content = copyContent(v.Content)
	return &cp
}
