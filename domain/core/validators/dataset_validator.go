package validators

import (
	"fmt"
	"sort"
	"strings"

	"smartfetch/domain/config"
	"smartfetch/domain/core/entities"
)

// TagCount records the per-tag outcome of the distribution check
type TagCount struct {
	Pass  bool `json:"pass"`
	Count int  `json:"count"`
}

// ValidationReport aggregates the dataset integrity checks into a single
// structured result with a printable summary.
type ValidationReport struct {
	TotalCountPass  bool                `json:"total_count_pass"`
	ActualCount     int                 `json:"actual_count"`
	ExpectedCount   int                 `json:"expected_count"`
	TagDistribution map[string]TagCount `json:"tag_distribution"`
	UniqueIDs       bool                `json:"unique_ids"`
	SingleTags      bool                `json:"single_tags"`
	VocabularyPass  bool                `json:"vocabulary_pass"`
	OverallPass     bool                `json:"overall_pass"`
}

// Summary generates a human-readable multi-line report
func (r *ValidationReport) Summary() string {
	lines := []string{
		fmt.Sprintf("Total Count: %s (%d/%d)", passLabel(r.TotalCountPass), r.ActualCount, r.ExpectedCount),
		fmt.Sprintf("Unique IDs: %s", passLabel(r.UniqueIDs)),
		fmt.Sprintf("Single Tags: %s", passLabel(r.SingleTags)),
		fmt.Sprintf("Vocabulary: %s", passLabel(r.VocabularyPass)),
		"",
		"Tag Distribution:",
	}

	tags := make([]string, 0, len(r.TagDistribution))
	for tag := range r.TagDistribution {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		tc := r.TagDistribution[tag]
		lines = append(lines, fmt.Sprintf("  %s: %s (%d resources)", tag, passLabel(tc.Pass), tc.Count))
	}

	lines = append(lines, "", fmt.Sprintf("Overall: %s", passLabel(r.OverallPass)))
	return strings.Join(lines, "\n")
}

func passLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

// DatasetValidator validates the integrity of a generated dataset
type DatasetValidator struct {
	expectedCount int
	minPerTag     int
}

// NewDatasetValidator creates a validator with explicit expectations
func NewDatasetValidator(expectedCount, minPerTag int) *DatasetValidator {
	return &DatasetValidator{
		expectedCount: expectedCount,
		minPerTag:     minPerTag,
	}
}

// NewFullDatasetValidator creates a validator for the full synthetic dataset
// (500 resources, at least 40 per tag).
func NewFullDatasetValidator() *DatasetValidator {
	cfg := config.FullDatasetDomainConfig()
	return NewDatasetValidator(cfg.FullDatasetCount, cfg.MinPerTagAtFullCount)
}

// ValidateTotalCount verifies the exact resource count matches the expectation
func (v *DatasetValidator) ValidateTotalCount(resources []*entities.Resource) (bool, int) {
	actual := len(resources)
	return actual == v.expectedCount, actual
}

// ValidateTagDistribution checks each tag carries the minimum required entries
func (v *DatasetValidator) ValidateTagDistribution(resources []*entities.Resource) map[string]TagCount {
	counts := make(map[string]int)
	for _, resource := range resources {
		counts[resource.Tag().String()]++
	}

	distribution := make(map[string]TagCount, len(counts))
	for tag, count := range counts {
		distribution[tag] = TagCount{Pass: count >= v.minPerTag, Count: count}
	}
	return distribution
}

// ValidateUniqueIDs checks all resource ids are unique
func (v *DatasetValidator) ValidateUniqueIDs(resources []*entities.Resource) bool {
	seen := make(map[string]struct{}, len(resources))
	for _, resource := range resources {
		id := resource.ID().String()
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// ValidateSingleTags verifies each resource carries exactly one non-empty tag
func (v *DatasetValidator) ValidateSingleTags(resources []*entities.Resource) bool {
	for _, resource := range resources {
		if resource.Tag().IsZero() {
			return false
		}
	}
	return true
}

// ValidateVocabulary verifies every tag belongs to the closed vocabulary
func (v *DatasetValidator) ValidateVocabulary(resources []*entities.Resource) bool {
	for _, resource := range resources {
		if !config.InVocabulary(resource.Tag().String()) {
			return false
		}
	}
	return true
}

// ValidateComprehensive runs all checks and returns the aggregated report
func (v *DatasetValidator) ValidateComprehensive(resources []*entities.Resource) *ValidationReport {
	totalCountPass, actualCount := v.ValidateTotalCount(resources)
	tagDistribution := v.ValidateTagDistribution(resources)
	uniqueIDs := v.ValidateUniqueIDs(resources)
	singleTags := v.ValidateSingleTags(resources)
	vocabularyPass := v.ValidateVocabulary(resources)

	tagsPass := true
	for _, tc := range tagDistribution {
		if !tc.Pass {
			tagsPass = false
			break
		}
	}

	return &ValidationReport{
		TotalCountPass:  totalCountPass,
		ActualCount:     actualCount,
		ExpectedCount:   v.expectedCount,
		TagDistribution: tagDistribution,
		UniqueIDs:       uniqueIDs,
		SingleTags:      singleTags,
		VocabularyPass:  vocabularyPass,
		OverallPass:     totalCountPass && tagsPass && uniqueIDs && singleTags && vocabularyPass,
	}
}
