// Package main implements the dataset integrity checker. It regenerates the
// synthetic catalog from a seed, runs the full set of dataset checks and
// prints the catalog fingerprint so identical builds can be confirmed across
// hosts. A failing dataset exits non-zero.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	domaincfg "smartfetch/domain/config"
	"smartfetch/domain/core/aggregates"
	"smartfetch/domain/core/validators"
	"smartfetch/domain/versioning"
	"smartfetch/infrastructure/generator"
)

func main() {
	defaults := domaincfg.DefaultDomainConfig()

	count := flag.Int("count", defaults.DefaultResourceCount, "number of resources to generate")
	seed := flag.Uint64("seed", defaults.DatasetSeed, "generation seed")
	minPerTag := flag.Int("min-per-tag", 1, "minimum resources required per tag")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	gen := generator.NewGenerator(domaincfg.TagVocabulary, logger)
	resources, err := gen.Generate(*count, *seed)
	if err != nil {
		log.Fatalf("Failed to generate dataset: %v", err)
	}

	validator := validators.NewDatasetValidator(*count, *minPerTag)
	if *count == defaults.FullDatasetCount {
		validator = validators.NewFullDatasetValidator()
	}

	report := validator.ValidateComprehensive(resources)
	fmt.Println(report.Summary())

	if !report.OverallPass {
		os.Exit(1)
	}

	catalog, err := aggregates.NewCatalog(resources)
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}

	fingerprint, err := versioning.FingerprintCatalog(catalog, *seed)
	if err != nil {
		log.Fatalf("Failed to fingerprint catalog: %v", err)
	}

	fmt.Printf("\nFingerprint: %s (seed=%d, count=%d)\n", fingerprint.Checksum, fingerprint.Seed, fingerprint.ResourceCount)
}
