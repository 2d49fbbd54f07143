package api

// UpdateManifest ответ GET /update.json
type UpdateManifest struct {
	LatestVersion string `json:"latest_version"`
	URL           string `json:"url"`
	Notes         string `json:"notes"`
}
