package report

import (
	"context"
	"fmt"

	"github.com/finhelm/taxengine/internal/domain"
)

// VerifyChainIntegrity checks the full version chain of a report: every
// stored integrity hash must recompute from the stored fields, version
// numbers must form the dense sequence 1..N, and previous_version_id must
// link each version to its predecessor (with none on version 1). Any
// deviation is returned as an IntegrityViolationError listing every problem
// found; a report with no versions is a NotFound.
func VerifyChainIntegrity(ctx context.Context, store Store, reportID, tenantID string) error {
	versions, err := store.GetVersionHistory(ctx, reportID, tenantID)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return domain.ErrNotFound
	}

	var problems []string
	for i, v := range versions {
		contentHash, err := ContentHash(v.Content)
		if err != nil {
			problems = append(problems, fmt.Sprintf("version %d: content not hashable: %v", v.VersionNumber, err))
		} else if contentHash != v.ContentHash {
			problems = append(problems, fmt.Sprintf("version %d: content_hash mismatch", v.VersionNumber))
		}
		if IntegrityHash(v) != v.IntegrityHash {
			problems = append(problems, fmt.Sprintf("version %d: integrity_hash does not recompute", v.VersionNumber))
		}
		if v.VersionNumber != i+1 {
			problems = append(problems, fmt.Sprintf("position %d: expected version_number %d, found %d", i, i+1, v.VersionNumber))
		}
		if i == 0 {
			if v.PreviousVersionID != "" {
				problems = append(problems, "version 1: unexpected previous_version_id")
			}
		} else if v.PreviousVersionID != versions[i-1].VersionID {
			problems = append(problems, fmt.Sprintf("version %d: previous_version_id does not link to version %d", v.VersionNumber, versions[i-1].VersionNumber))
		}
	}

	if len(problems) > 0 {
		return &domain.IntegrityViolationError{ReportID: reportID, TenantID: tenantID, Problems: problems}
	}
	return nil
}
