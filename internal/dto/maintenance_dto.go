package dto

// ArchiveRequest configures the stale-announcement archive sweep.
type ArchiveRequest struct {
	Days   int  `json:"days" validate:"omitempty,gt=0"`
	DryRun bool `json:"dry_run"`
}

// ArchiveResponse reports the outcome of an archive sweep.
type ArchiveResponse struct {
	Candidates int    `json:"candidates"`
	Archived   int    `json:"archived"`
	DryRun     bool   `json:"dry_run"`
	CutoffDays int    `json:"cutoff_days"`
	IDs        []uint `json:"ids,omitempty"`
}

// CacheStatsResponse reports the state of the reference-data cache keys.
type CacheStatsResponse struct {
	Keys []CacheKeyStat `json:"keys"`
}

// CacheKeyStat describes one cached reference dataset.
type CacheKeyStat struct {
	Key     string  `json:"key"`
	Present bool    `json:"present"`
	Items   int     `json:"items"`
	TTLSecs float64 `json:"ttl_seconds"`
}
