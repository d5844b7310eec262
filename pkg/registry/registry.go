// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"wanted-applier/internal/models"
)

// MaxYears is the largest experience filter the board accepts.
const MaxYears = 30

// Default returns the built-in categories.
func Default() *CategoryRegistry {
	return &CategoryRegistry{
		Version: "1",
		Categories: []Category{
			{Name: "JAVA", Code: "660", DisplayName: "Java Developer"},
			{Name: "NODE", Code: "518", DisplayName: "Node.js Developer"},
			{Name: "PYTHON", Code: "899", DisplayName: "Python Developer"},
			{Name: "WEB", Code: "873", DisplayName: "Web Developer"},
		},
	}
}

// LoadRegistry reads extra categories from path and merges them over the
// defaults. Entries with a known name replace the built-in code.
func LoadRegistry(path string) (*CategoryRegistry, error) {
	file, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}

	reg := Default()
	for _, c := range file.Categories {
		reg.put(c)
	}
	if file.Version != "" {
		reg.Version = file.Version
	}
	reg.LastUpdated = file.LastUpdated
	return reg, nil
}

// ReadFile reads a registry file as is, without the defaults.
func ReadFile(path string) (*CategoryRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg CategoryRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry to path, creating its directory.
func (r *CategoryRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks every category has a name and a numeric code, and that
// neither repeats.
func (r *CategoryRegistry) Validate() error {
	names := make(map[string]bool, len(r.Categories))
	codes := make(map[string]string, len(r.Categories))
	for _, c := range r.Categories {
		if c.Name == "" || !isCode(c.Code) {
			return fmt.Errorf("category %q needs a name and a numeric code", c.Name)
		}
		name := strings.ToUpper(c.Name)
		if names[name] {
			return fmt.Errorf("duplicate category name: %s", name)
		}
		names[name] = true
		if prev, dup := codes[c.Code]; dup {
			return fmt.Errorf("categories %s and %s share code %s", prev, name, c.Code)
		}
		codes[c.Code] = name
	}
	return nil
}

// Put adds c or replaces the category with the same name.
func (r *CategoryRegistry) Put(c Category) {
	r.put(c)
}

func (r *CategoryRegistry) put(c Category) {
	c.Name = strings.ToUpper(c.Name)
	for i := range r.Categories {
		if r.Categories[i].Name == c.Name {
			r.Categories[i] = c
			return
		}
	}
	r.Categories = append(r.Categories, c)
}

// Resolve looks a category up by name (case-insensitive) or by tag code. A
// numeric key not in the registry is accepted as a raw tag code.
func (r *CategoryRegistry) Resolve(key string) (Category, error) {
	key = strings.TrimSpace(key)
	for _, c := range r.Categories {
		if strings.EqualFold(c.Name, key) || c.Code == key {
			return c, nil
		}
	}
	if isCode(key) {
		return Category{Code: key}, nil
	}
	return Category{}, fmt.Errorf("unknown job category %q", key)
}

// Criteria turns the configured searches into search criteria ordered by tag
// code. Two keys resolving to the same category are rejected.
func (r *CategoryRegistry) Criteria(searches map[string]int) ([]models.Criterion, error) {
	seen := make(map[string]string, len(searches))
	out := make([]models.Criterion, 0, len(searches))

	for key, years := range searches {
		c, err := r.Resolve(key)
		if err != nil {
			return nil, err
		}
		if years < 0 || years > MaxYears {
			return nil, fmt.Errorf("category %s: years must be between 0 and %d, got %d", key, MaxYears, years)
		}
		if prev, dup := seen[c.Code]; dup {
			return nil, fmt.Errorf("categories %q and %q both select tag %s", prev, key, c.Code)
		}
		seen[c.Code] = key
		out = append(out, models.Criterion{Category: c.Code, Name: c.Name, Years: years})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func isCode(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}
