package notification

import "time"

// Stats is a derived aggregate over a notification collection.
// Recomputed on demand, never persisted.
type Stats struct {
	Total     int             `json:"total"`
	ByType    map[Type]int    `json:"by_type"`
	ByChannel map[Channel]int `json:"by_channel"`
	Read      int             `json:"read"`
	Unread    int             `json:"unread"`
	Dismissed int             `json:"dismissed"`

	// OpenRate is the fraction of notifications read or dismissed.
	OpenRate float64 `json:"open_rate"`
	// DismissalRate is the fraction of notifications dismissed.
	DismissalRate float64 `json:"dismissal_rate"`
	// DeliveryRate is the fraction delivered or read.
	DeliveryRate float64 `json:"delivery_rate"`
}

// ComputeStats aggregates counts and rates over ns. All rates are zero
// for an empty input.
func ComputeStats(ns []Notification) Stats {
	stats := Stats{
		Total:     len(ns),
		ByType:    make(map[Type]int),
		ByChannel: make(map[Channel]int),
	}

	opened := 0
	delivered := 0
	for i := range ns {
		n := &ns[i]
		stats.ByType[n.Type]++
		stats.ByChannel[n.Channel]++

		if n.IsRead {
			stats.Read++
		} else {
			stats.Unread++
		}
		if n.IsDismissed || n.DismissedAt != nil {
			stats.Dismissed++
		}
		if n.IsRead || n.IsDismissed || n.DismissedAt != nil {
			opened++
		}
		if n.DeliveredAt != nil || n.IsRead {
			delivered++
		}
	}

	if stats.Total > 0 {
		total := float64(stats.Total)
		stats.OpenRate = float64(opened) / total
		stats.DismissalRate = float64(stats.Dismissed) / total
		stats.DeliveryRate = float64(delivered) / total
	}
	return stats
}

// Engagement summarizes how users interact with delivered notifications.
type Engagement struct {
	OpenRate      float64       `json:"open_rate"`
	DismissalRate float64       `json:"dismissal_rate"`
	// AvgTimeToRead is the mean delay between sending and reading,
	// over notifications that have both timestamps.
	AvgTimeToRead time.Duration `json:"avg_time_to_read"`
}

// ComputeEngagement derives engagement rates and the average response
// time over ns.
func ComputeEngagement(ns []Notification) Engagement {
	stats := ComputeStats(ns)

	var total time.Duration
	counted := 0
	for i := range ns {
		n := &ns[i]
		if n.ReadAt == nil || n.SentAt == nil {
			continue
		}
		if d := n.ReadAt.Sub(*n.SentAt); d >= 0 {
			total += d
			counted++
		}
	}

	eng := Engagement{
		OpenRate:      stats.OpenRate,
		DismissalRate: stats.DismissalRate,
	}
	if counted > 0 {
		eng.AvgTimeToRead = total / time.Duration(counted)
	}
	return eng
}
