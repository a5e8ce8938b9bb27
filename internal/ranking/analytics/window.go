package analytics

import (
	"sort"
	"time"

	"golang-stock-ranking/internal/entity"
	"golang-stock-ranking/pkg/utils"
)

// Window is an inclusive calendar date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow returns the window of the given number of days ending at end.
// It reports false when days is not positive or end is unknown.
func ResolveWindow(end time.Time, days int) (Window, bool) {
	if days <= 0 || end.IsZero() {
		return Window{}, false
	}
	end = utils.TruncateToDate(end)
	return Window{Start: utils.AddDays(end, -days), End: end}, true
}

// InstrumentIDs returns the distinct instrument ids of records in the order
// they first appear.
func InstrumentIDs(records []entity.StockAnalysisResult) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.InstrumentID]; ok {
			continue
		}
		seen[r.InstrumentID] = struct{}{}
		ids = append(ids, r.InstrumentID)
	}
	return ids
}

// GroupByInstrument groups records by instrument id, each group sorted by
// target date ascending.
func GroupByInstrument(records []entity.StockAnalysisResult) map[string][]entity.StockAnalysisResult {
	groups := make(map[string][]entity.StockAnalysisResult)
	for _, r := range records {
		groups[r.InstrumentID] = append(groups[r.InstrumentID], r)
	}
	for id := range groups {
		h := groups[id]
		sort.SliceStable(h, func(i, j int) bool {
			return h[i].Date().Before(h[j].Date())
		})
	}
	return groups
}
