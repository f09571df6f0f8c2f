// Package services holds the catalog intake, answer verification and storage services.
// File: services/catalog_service.go
package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ctf-catalog/logger"
	"ctf-catalog/models"
	"gopkg.in/yaml.v3"
)

// ErrDataUnavailable means the collection list could not be obtained at intake.
var ErrDataUnavailable = errors.New("catalog data unavailable")

// Stats are the aggregates shown in the hero counters.
type Stats struct {
	TotalChallenges int `json:"totalChallenges"`
	CollectionCount int `json:"collectionCount"`
}

// ComputeStats derives the hero statistics from a catalog.
func ComputeStats(cat *models.Catalog) Stats {
	if cat == nil {
		return Stats{}
	}
	return Stats{TotalChallenges: cat.TotalChallenges(), CollectionCount: cat.Count()}
}

// ------------------- intake -------------------

// LoadCatalog reads the collection list from a JSON or YAML file.
// The file may hold either a bare list of collections or {"collections": [...]}.
func LoadCatalog(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error.Printf("[LoadCatalog] cannot read %s: %v", path, err)
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	cat, err := DecodeCatalog(data, filepath.Ext(path))
	if err != nil {
		logger.Error.Printf("[LoadCatalog] cannot decode %s: %v", path, err)
		return nil, err
	}
	logger.Info.Printf("[LoadCatalog] loaded %d collections from %s", cat.Count(), path)
	return cat, nil
}

// DecodeCatalog decodes catalog bytes; ext selects YAML for ".yaml"/".yml", JSON otherwise.
func DecodeCatalog(data []byte, ext string) (*models.Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty source", ErrDataUnavailable)
	}

	var cat models.Catalog
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var list []models.Collection
		if err := yaml.Unmarshal(trimmed, &list); err == nil {
			cat.Collections = list
			break
		}
		if err := yaml.Unmarshal(trimmed, &cat); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
	default:
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &cat.Collections); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
			}
		} else if err := json.Unmarshal(trimmed, &cat); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
	}
	if cat.Collections == nil {
		// a document without a list at all is missing data, not an empty catalog
		return nil, fmt.Errorf("%w: no collection list", ErrDataUnavailable)
	}
	return &cat, nil
}

// ------------------- store -------------------

// Snapshot is one immutable catalog with its derived index and stats.
type Snapshot struct {
	Catalog *models.Catalog
	Index   *models.ChallengeIndex
	Stats   Stats
	// Err is set when intake failed; Catalog is then empty.
	Err error
}

// NewSnapshot indexes a catalog.
func NewSnapshot(cat *models.Catalog) *Snapshot {
	return &Snapshot{Catalog: cat, Index: models.NewChallengeIndex(cat), Stats: ComputeStats(cat)}
}

// FailedSnapshot is what pages render when intake failed.
func FailedSnapshot(err error) *Snapshot {
	empty := &models.Catalog{}
	return &Snapshot{Catalog: empty, Index: models.NewChallengeIndex(empty), Err: err}
}

// CatalogSource loads a catalog; the file loader is the production source.
type CatalogSource func() (*models.Catalog, error)

// FileSource reads the catalog from path on every call.
func FileSource(path string) CatalogSource {
	return func() (*models.Catalog, error) { return LoadCatalog(path) }
}

// CatalogStore owns the current snapshot. Pages take a snapshot at creation and keep it for
// their lifetime; Reload replaces the snapshot wholesale for pages created afterwards.
type CatalogStore struct {
	mu      sync.RWMutex
	source  CatalogSource
	current *Snapshot
}

// NewCatalogStore performs the initial intake. A failed intake is recorded in the snapshot,
// not returned, so the server still starts and pages show the error panel.
func NewCatalogStore(source CatalogSource) *CatalogStore {
	s := &CatalogStore{source: source}
	if _, err := s.Reload(); err != nil {
		s.current = FailedSnapshot(err)
	}
	return s
}

// Current returns the active snapshot.
func (s *CatalogStore) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps in an already loaded catalog.
func (s *CatalogStore) Replace(cat *models.Catalog) *Snapshot {
	snap := NewSnapshot(cat)
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	logger.Info.Printf("[CatalogStore.Replace] catalog replaced: %d collections, %d challenges",
		snap.Stats.CollectionCount, snap.Stats.TotalChallenges)
	return snap
}

// Reload re-reads the source. On failure the previous snapshot stays active.
func (s *CatalogStore) Reload() (*Snapshot, error) {
	cat, err := s.source()
	if err != nil {
		logger.Warn.Printf("[CatalogStore.Reload] keeping previous catalog: %v", err)
		return nil, err
	}
	return s.Replace(cat), nil
}
