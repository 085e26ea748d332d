package model

// QuotaUsage is the external API cost spent on one UTC calendar day.
type QuotaUsage struct {
	Date  string `json:"date"`
	Used  int64  `json:"quotaUsed"`
	Limit int64  `json:"quotaLimit"`
}

func (q QuotaUsage) Remaining() int64 {
	return q.Limit - q.Used
}

// Ratio returns Used/Limit, or 0 when no limit is configured.
func (q QuotaUsage) Ratio() float64 {
	if q.Limit <= 0 {
		return 0
	}
	return float64(q.Used) / float64(q.Limit)
}

// OverThreshold reports whether usage is strictly above ratio*Limit.
func (q QuotaUsage) OverThreshold(ratio float64) bool {
	if q.Limit <= 0 {
		return false
	}
	return float64(q.Used) > float64(q.Limit)*ratio
}
