package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"smartfetch/domain/core/aggregates"
)

// DatasetFingerprint identifies a specific synthetic dataset build. Two
// deployments generating from the same seed and count must produce equal
// checksums, which is how identical catalogs are confirmed across hosts.
type DatasetFingerprint struct {
	Checksum      string    `json:"checksum"`
	Seed          uint64    `json:"seed"`
	ResourceCount int       `json:"resource_count"`
	TagCount      int       `json:"tag_count"`
	ComputedAt    time.Time `json:"computed_at"`
}

// resourcePair is the deterministic unit the checksum is computed over
type resourcePair struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

// FingerprintCatalog computes a sha256 checksum over the ordered (id, tag)
// pairs of the catalog plus the generation parameters.
func FingerprintCatalog(catalog *aggregates.Catalog, seed uint64) (*DatasetFingerprint, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	resources := catalog.ListAll()
	pairs := make([]resourcePair, 0, len(resources))
	for _, resource := range resources {
		pairs = append(pairs, resourcePair{
			ID:  resource.ID().String(),
			Tag: resource.Tag().String(),
		})
	}

	data := struct {
		Seed  uint64         `json:"seed"`
		Count int            `json:"count"`
		Pairs []resourcePair `json:"pairs"`
	}{
		Seed:  seed,
		Count: len(pairs),
		Pairs: pairs,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fingerprint input: %w", err)
	}

	hash := sha256.Sum256(jsonData)

	return &DatasetFingerprint{
		Checksum:      hex.EncodeToString(hash[:]),
		Seed:          seed,
		ResourceCount: len(pairs),
		TagCount:      len(catalog.UniqueTags()),
		ComputedAt:    time.Now(),
	}, nil
}

// Matches reports whether two fingerprints identify the same dataset
func (f *DatasetFingerprint) Matches(other *DatasetFingerprint) bool {
	if other == nil {
		return false
	}
	return f.Checksum == other.Checksum
}

// Short returns a truncated checksum suitable for log lines
func (f *DatasetFingerprint) Short() string {
	if len(f.Checksum) <= 12 {
		return f.Checksum
	}
	return f.Checksum[:12]
}
