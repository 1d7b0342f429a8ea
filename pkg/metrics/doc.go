/*
Package metrics provides Prometheus metrics collection and exposition for
the lithoglyph Engine.

Metrics are registered at package init against the default Prometheus
registry. Engine packages update these counters/histograms inline;
Handler returns an HTTP handler for /metrics, which no lgctl command
serves.

# Metrics Catalog

lithoglyph_commits_total{result}:
  - Type: Counter
  - Description: Commit attempts by result (ok, journal_error, block_error, superblock_error)

lithoglyph_commit_duration_seconds:
  - Type: Histogram
  - Description: Time from commit() call to phase 6 completion

lithoglyph_corruption_total:
  - Type: Counter
  - Description: Blocks that failed checksum validation

lithoglyph_blocks_allocated_total / lithoglyph_blocks_freed_total:
  - Type: Counter
  - Description: Allocator churn

lithoglyph_file_growth_total:
  - Type: Counter
  - Description: Number of times the block file was extended

lithoglyph_journal_records_total:
  - Type: Counter
  - Description: Journal records appended across all commits

lithoglyph_replay_records_total:
  - Type: Gauge
  - Description: Records replayed the last time a database was opened

lithoglyph_proof_verify_total{proof_type, result}:
  - Type: Counter
  - Description: proof_verify calls by proof type and outcome (ok, failed)

# Usage

	timer := metrics.NewTimer()
	// ... perform a commit ...
	timer.ObserveDuration(metrics.CommitDuration)
	metrics.CommitsTotal.WithLabelValues("ok").Inc()

# Design Patterns

Metrics are package-level vars registered once in init(); MustRegister
panics on duplicate registration so a second import path mistake fails
fast rather than silently double-counting.
*/
package metrics
