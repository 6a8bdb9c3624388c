package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"
)

const reportErrorLimit = 20

// GenerateMigrationReport renders the operator report for a payout migration:
// counts, churn rate, a monitoring checklist and the rollback plan.
func GenerateMigrationReport(stats MigrationStats) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	rule := strings.Repeat("=", 64)
	line := func(format string, args ...any) {
		_, _ = fmt.Fprintf(buf, format+"\n", args...)
	}

	line("%s", rule)
	line("PAYOUT SCHEMA MIGRATION REPORT")
	line("%s", rule)
	line("Run ID:            %d", stats.RunID)
	line("Status:            %s", stats.Status)
	if stats.DryRun {
		line("Mode:              DRY RUN (no quotes were written)")
	}
	if !stats.StartedAt.IsZero() {
		line("Started:           %s", stats.StartedAt.Format("2006-01-02 15:04:05 MST"))
		line("Finished:          %s", stats.FinishedAt.Format("2006-01-02 15:04:05 MST"))
		line("Duration:          %s", stats.FinishedAt.Sub(stats.StartedAt).Round(time.Millisecond))
	}
	line("")
	line("Quotes examined:   %d", stats.Total)
	line("Migrated:          %d", stats.Migrated)
	line("Already canonical: %d", stats.Skipped)
	line("Failed:            %d", stats.Failed)
	line("Heuristic rows:    %d", stats.Fallbacks)
	line("Hash changes:      %d", stats.HashChanges)
	line("Edge churn rate:   %.2f%%", stats.ChurnRate())
	line("")

	if len(stats.Errors) > 0 {
		line("ERRORS (%d)", len(stats.Errors))
		for i, detail := range stats.Errors {
			if i == reportErrorLimit {
				line("  ... %d more", len(stats.Errors)-reportErrorLimit)
				break
			}
			line("  - [%s] %s", detail.ErrorType, detail.Message)
		}
		line("")
	}

	line("MONITORING CHECKLIST")
	line("  [ ] Downstream edge recomputation queued for %d changed line hashes", stats.HashChanges)
	line("  [ ] Line-hash keyed caches invalidated for migrated quotes")
	line("  [ ] Next ingestion run reports expected new_quotes (no duplicate markets)")
	line("  [ ] %d heuristic_fallback rows reviewed (conversion_method = heuristic_fallback)", stats.Fallbacks)
	line("  [ ] Failed quotes (%d) inspected via the migration run error list", stats.Failed)
	line("")
	line("ROLLBACK PLAN")
	line("  1. Legacy fields are never deleted: each migrated payout_schema keeps")
	line("     over/under and the full legacy document under provider_format.original.")
	line("  2. To revert a quote, write provider_format.original back as payout_schema")
	line("     and recompute line_hash from it.")
	line("  3. Batches commit independently; revert using the migration run id %d", stats.RunID)
	line("     and the quotes' updated_at window.")
	line("%s", rule)

	return buf.String()
}
