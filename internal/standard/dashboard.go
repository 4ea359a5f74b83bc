package standard

import "time"

// Stats is the dashboard summary of a collection.
type Stats struct {
	Total            int     `json:"total"`
	Expired          int     `json:"expired"`
	ExpiringThisYear int     `json:"expiringThisYear"`
	RenewalCostTWD   float64 `json:"renewalCostTwd"`
	RenewalCostLabel string  `json:"renewalCostLabel"`
}

// Summarize counts expired and soon-expiring standards and estimates the cost
// of renewing everything that expires by the end of now's year.
func Summarize(items []Standard, now time.Time) Stats {
	stats := Stats{Total: len(items)}
	for _, item := range items {
		if item.ExpiryDate.Expired(now) {
			stats.Expired++
		}
		if item.ExpiryDate.ExpiringBy(now) {
			stats.ExpiringThisYear++
			stats.RenewalCostTWD += CostInTWD(item.Cost)
		}
	}
	stats.RenewalCostLabel = FormatTWD(stats.RenewalCostTWD)
	return stats
}
