// pkg/registry/schema.go
package registry

// CategoryRegistry maps job-category names to the board's tag codes.
type CategoryRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Categories  []Category `json:"categories"`
}

type Category struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	DisplayName string `json:"displayName,omitempty"`
}
