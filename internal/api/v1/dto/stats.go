package dto

import "media-transcriber/internal/app/api/provider"

// StatsResponse combines the manager counters with per-provider metrics.
type StatsResponse struct {
	Manager   provider.ManagerStats `json:"manager"`
	Providers provider.OverallStats `json:"providers"`
}
