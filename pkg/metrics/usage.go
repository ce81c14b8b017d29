package metrics

// ForecastUsage describes where a schedule's forecast came from.
type ForecastUsage struct {
	Source   string `json:"source"`
	Days     int    `json:"days"`
	CacheHit bool   `json:"cacheHit"`
}

// IsZero reports whether usage data is absent.
func (u ForecastUsage) IsZero() bool {
	return u.Source == "" && u.Days == 0 && !u.CacheHit
}
