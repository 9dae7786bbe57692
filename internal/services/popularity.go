package services

import "time"

// RecentSalesWindow is the trailing horizon of the recent-sales window. Sale
// events older than this are pruned on every mutation and by the daily sweep.
const RecentSalesWindow = 30 * 24 * time.Hour

// Popularity blends a recency signal with lifetime volume. The weights sum
// to 1.0 so the score stays on the same scale as the raw quantities.
const (
	recentSalesWeight   = 0.7
	lifetimeSalesWeight = 0.3
)

// PopularityScore computes a product's ranking signal from the quantity sold
// inside the recent-sales window and the lifetime quantity sold. It is
// monotonic non-decreasing in both inputs.
func PopularityScore(recentQuantity, totalQuantitySold int) float64 {
	return float64(recentQuantity)*recentSalesWeight + float64(totalQuantitySold)*lifetimeSalesWeight
}
