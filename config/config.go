// Package config loads forge-mvn configuration from CUE files, a .env file
// and environment variables.
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	cfg, err := loader.Load(ctx, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.LocalRepository)
//
// Sources are applied in order: defaults, the CUE file, the .env file and
// finally the process environment. Callers apply command line flags on top.
package config

import (
	"github.com/input-output-hk/catalyst-forge-libs/maven/artifact"
	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
	"github.com/input-output-hk/catalyst-forge-libs/maven/version"
)

// Config is the complete forge-mvn configuration.
type Config struct {
	// LocalRepository is the Maven local repository, also the manifest base
	// directory.
	LocalRepository string `json:"localRepository"`

	Repositories []repository.Remote `json:"repositories"`

	RemoteVersion RemoteVersion `json:"remoteVersion"`
	Manifest      Manifest      `json:"manifest"`
	S3            S3            `json:"s3"`
}

// S3 configures access to s3:// repositories.
type S3 struct {
	Region string `json:"region"`

	// Endpoint points at an S3 compatible service such as MinIO or
	// LocalStack and switches to path-style addressing.
	Endpoint string `json:"endpoint"`
}

// RemoteVersion configures the remote-version step.
type RemoteVersion struct {
	GroupID        string `json:"groupId"`
	ArtifactID     string `json:"artifactId"`
	RepositoryID   string `json:"repositoryId"`
	PropertyPrefix string `json:"propertyPrefix"`
	Constraint     string `json:"constraint"`

	// PropertiesFile optionally receives the properties in .properties format.
	PropertiesFile string `json:"propertiesFile"`
}

// Coordinate returns the configured artifact coordinate.
func (r RemoteVersion) Coordinate() artifact.Coordinate {
	return artifact.Coordinate{GroupID: r.GroupID, ArtifactID: r.ArtifactID}
}

// Manifest configures the dependency-manifest step.
type Manifest struct {
	ExcludeTransitive bool   `json:"excludeTransitive"`
	OutputFile        string `json:"outputFile"`

	// ProjectDir is where mvn dependency:list runs.
	ProjectDir string `json:"projectDir"`

	// MavenOpts is passed to mvn as MAVEN_OPTS.
	MavenOpts string `json:"mavenOpts"`

	// Retries is how often a failing mvn run is repeated.
	Retries int `json:"retries"`

	// ArtifactsFile and DirectArtifactsFile are pre-computed dependency
	// lists used instead of running mvn.
	ArtifactsFile       string `json:"artifactsFile"`
	DirectArtifactsFile string `json:"directArtifactsFile"`
}

// Local returns the local repository.
func (c *Config) Local() repository.Local {
	return repository.Local{Basedir: c.LocalRepository}
}

// VersionConstraint parses the configured remote version constraint.
func (c *Config) VersionConstraint() (version.Constraint, error) {
	return version.ParseConstraint(c.RemoteVersion.Constraint)
}
