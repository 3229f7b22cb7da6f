package config

import (
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
)

// Validate checks what the CUE schema cannot express: unique repository
// ids, supported URLs and a parseable version constraint. All problems are
// reported together as CodeInvalidConfig.
//
// A repositoryId that matches no repository is not an error; the
// remote-version step then queries every configured repository.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.CodeInvalidInput, "configuration is nil")
	}

	var problems []string
	seen := map[string]bool{}
	for i, r := range cfg.Repositories {
		if r.ID == "" {
			problems = append(problems, fmt.Sprintf("repositories[%d]: id is empty", i))
			continue
		}
		if seen[r.ID] {
			problems = append(problems, fmt.Sprintf("repositories[%d]: duplicate id %q", i, r.ID))
		}
		seen[r.ID] = true

		if _, err := r.Scheme(); err != nil {
			problems = append(problems, fmt.Sprintf("repositories[%d]: %v", i, err))
		}
	}

	if _, err := cfg.VersionConstraint(); err != nil {
		problems = append(problems, fmt.Sprintf("remoteVersion.constraint: %v", err))
	}

	if cfg.Manifest.DirectArtifactsFile != "" && cfg.Manifest.ArtifactsFile == "" {
		problems = append(problems, "manifest.directArtifactsFile requires manifest.artifactsFile")
	}

	if len(problems) > 0 {
		return errors.New(errors.CodeInvalidConfig,
			fmt.Sprintf("configuration validation failed: %s", strings.Join(problems, "; ")))
	}
	return nil
}
