// Package generator produces the synthetic resource catalog. Generation is
// fully deterministic: the same count, seed, and vocabulary always yield the
// identical dataset, which is what makes catalog fingerprints comparable
// across deployments.
package generator

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"smartfetch/domain/core/entities"
	"smartfetch/domain/core/valueobjects"
)

// Generator builds resources from a seeded faker
type Generator struct {
	vocabulary []string
	logger     *zap.Logger
}

// NewGenerator creates a generator over the tag vocabulary
func NewGenerator(vocabulary []string, logger *zap.Logger) *Generator {
	return &Generator{
		vocabulary: vocabulary,
		logger:     logger,
	}
}

// Generate builds count resources from the seed
func (g *Generator) Generate(count int, seed uint64) ([]*entities.Resource, error) {
	if count < 1 {
		return nil, fmt.Errorf("resource count must be positive, got %d", count)
	}
	if len(g.vocabulary) == 0 {
		return nil, fmt.Errorf("tag vocabulary is empty")
	}

	faker := gofakeit.New(seed)

	resources := make([]*entities.Resource, 0, count)
	for i := 0; i < count; i++ {
		id, err := valueobjects.NewResourceIDFromString(faker.UUID())
		if err != nil {
			return nil, fmt.Errorf("generating resource %d: %w", i, err)
		}

		tagName := faker.RandomString(g.vocabulary)
		tag, err := valueobjects.NewTag(tagName)
		if err != nil {
			return nil, fmt.Errorf("generating resource %d: %w", i, err)
		}

		name := faker.Slogan()
		description := fmt.Sprintf(
			"%s A practical pick for anyone interested in %s.",
			faker.Sentence(8),
			tagName,
		)

		resource, err := entities.NewResource(id, name, description, tag)
		if err != nil {
			return nil, fmt.Errorf("generating resource %d: %w", i, err)
		}
		resources = append(resources, resource)
	}

	g.logger.Info("synthetic catalog generated",
		zap.Int("count", count),
		zap.Uint64("seed", seed),
		zap.Int("vocabulary", len(g.vocabulary)),
	)

	return resources, nil
}
