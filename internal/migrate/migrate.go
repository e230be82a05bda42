// Package migrate is the linear schema migration subsystem behind the admin
// CLI: a fixed revision chain, a single-row version table, and upgrade /
// downgrade / stamp operations over it.
package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finhelm/taxengine/internal/domain"
)

// Migration is one revision in the chain. DownSQL may be empty for
// irreversible migrations.
type Migration struct {
	Revision string
	Message  string
	UpSQL    string
	DownSQL  string
}

// Backend is the storage side of the migrator: it executes migration SQL and
// tracks the current revision.
type Backend interface {
	EnsureVersionTable(ctx context.Context) error
	CurrentRevision(ctx context.Context) (string, error)
	SetRevision(ctx context.Context, revision string) error
	ExecSQL(ctx context.Context, sql string) error
}

// Status summarizes where the schema stands.
type Status struct {
	Current string   `json:"current"`
	Head    string   `json:"head"`
	Pending []string `json:"pending"`
}

// UpToDate reports whether nothing is pending.
func (s Status) UpToDate() bool { return len(s.Pending) == 0 }

// Migrator walks an ordered migration chain against a backend.
type Migrator struct {
	backend Backend
	chain   []Migration
}

// New creates a migrator over the given chain. The chain order is the
// upgrade order.
func New(backend Backend, chain []Migration) *Migrator {
	return &Migrator{backend: backend, chain: chain}
}

// Head returns the newest revision, or "" for an empty chain.
func (m *Migrator) Head() string {
	if len(m.chain) == 0 {
		return ""
	}
	return m.chain[len(m.chain)-1].Revision
}

// History returns the full chain, oldest first.
func (m *Migrator) History() []Migration {
	out := make([]Migration, len(m.chain))
	copy(out, m.chain)
	return out
}

// Current returns the applied revision, "" when the schema is unversioned.
func (m *Migrator) Current(ctx context.Context) (string, error) {
	if err := m.backend.EnsureVersionTable(ctx); err != nil {
		return "", err
	}
	return m.backend.CurrentRevision(ctx)
}

// index returns the chain position of revision, -1 for "".
func (m *Migrator) index(revision string) (int, error) {
	if revision == "" {
		return -1, nil
	}
	for i, mig := range m.chain {
		if mig.Revision == revision {
			return i, nil
		}
	}
	return 0, fmt.Errorf("revision %q: %w", revision, domain.ErrNotFound)
}

// Status reports current, head, and the pending revisions between them.
func (m *Migrator) Status(ctx context.Context) (*Status, error) {
	current, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := m.index(current)
	if err != nil {
		return nil, err
	}
	st := &Status{Current: current, Head: m.Head()}
	for _, mig := range m.chain[idx+1:] {
		st.Pending = append(st.Pending, mig.Revision)
	}
	return st, nil
}

// Upgrade applies pending migrations up to target; empty target means head.
func (m *Migrator) Upgrade(ctx context.Context, target string) error {
	if target == "" {
		target = m.Head()
	}
	current, err := m.Current(ctx)
	if err != nil {
		return err
	}
	curIdx, err := m.index(current)
	if err != nil {
		return err
	}
	tgtIdx, err := m.index(target)
	if err != nil {
		return err
	}
	if tgtIdx <= curIdx {
		return nil
	}
	for _, mig := range m.chain[curIdx+1 : tgtIdx+1] {
		if err := m.backend.ExecSQL(ctx, mig.UpSQL); err != nil {
			return fmt.Errorf("upgrade to %s: %w", mig.Revision, err)
		}
		if err := m.backend.SetRevision(ctx, mig.Revision); err != nil {
			return err
		}
	}
	return nil
}

// Downgrade reverts migrations down to target, which must name a revision
// at or below current. Reverting past an irreversible migration fails.
func (m *Migrator) Downgrade(ctx context.Context, target string) error {
	current, err := m.Current(ctx)
	if err != nil {
		return err
	}
	curIdx, err := m.index(current)
	if err != nil {
		return err
	}
	tgtIdx, err := m.index(target)
	if err != nil {
		return err
	}
	if tgtIdx >= curIdx {
		return nil
	}
	for i := curIdx; i > tgtIdx; i-- {
		mig := m.chain[i]
		if strings.TrimSpace(mig.DownSQL) == "" {
			return fmt.Errorf("revision %s is irreversible", mig.Revision)
		}
		if err := m.backend.ExecSQL(ctx, mig.DownSQL); err != nil {
			return fmt.Errorf("downgrade from %s: %w", mig.Revision, err)
		}
		prev := ""
		if i > 0 {
			prev = m.chain[i-1].Revision
		}
		if err := m.backend.SetRevision(ctx, prev); err != nil {
			return err
		}
	}
	return nil
}

// Stamp records a revision without executing any SQL. Used to adopt an
// existing schema into version tracking.
func (m *Migrator) Stamp(ctx context.Context, revision string) error {
	if _, err := m.index(revision); err != nil {
		return err
	}
	if err := m.backend.EnsureVersionTable(ctx); err != nil {
		return err
	}
	return m.backend.SetRevision(ctx, revision)
}

// Check reports whether the schema is at head.
func (m *Migrator) Check(ctx context.Context) (bool, error) {
	st, err := m.Status(ctx)
	if err != nil {
		return false, err
	}
	return st.UpToDate(), nil
}

// NewRevision allocates a skeleton for a new migration. The caller appends
// the SQL and adds it to the chain source.
func NewRevision(message string) Migration {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return Migration{Revision: id, Message: message}
}
