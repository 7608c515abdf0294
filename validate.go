package pmm

import "fmt"

import humanize "github.com/dustin/go-humanize"

// DiagnosticReport re-runs Validate and renders alloc.Report as
// human-readable lines, one per problem plus a summary, the way the
// teacher's wider codebase (bogn, tools/) uses go-humanize for
// operator-facing byte counts instead of raw integers.
func (m *Manager) DiagnosticReport() []string {
	rpt, ok := m.ValidateReport()
	if !ok {
		return []string{"manager is not bound"}
	}
	lines := make([]string, 0, len(rpt.Problems)+1)
	for _, p := range rpt.Problems {
		lines = append(lines, fmt.Sprintf("block %d: %s", p.Block, p.Msg))
	}
	lines = append(lines, fmt.Sprintf(
		"free=%s allocated-chunks=%d",
		humanize.Bytes(rpt.FreeSize), rpt.AllocatedChunks,
	))
	return lines
}
