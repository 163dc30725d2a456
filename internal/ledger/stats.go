package ledger

import (
	"github.com/lawvn/lawfetch/internal/model"
)

// Stats aggregates the ledger for the stats command and run summaries.
func (l *Ledger) Stats() model.LedgerStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := model.LedgerStats{
		Completed:      len(l.done),
		Failed:         len(l.failures),
		ByErrorKind:    make(map[model.ErrorKind]int),
		RetryHistogram: make(map[int]int),
	}
	for _, entry := range l.failures {
		stats.ByErrorKind[entry.ErrorKind]++
		stats.RetryHistogram[entry.RetryCount]++
		if stats.Oldest.IsZero() || entry.LastAttemptAt.Before(stats.Oldest) {
			stats.Oldest = entry.LastAttemptAt
		}
		if entry.LastAttemptAt.After(stats.Newest) {
			stats.Newest = entry.LastAttemptAt
		}
	}
	return stats
}
