package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/maven/remoteversion"
)

const (
	// DefaultFileName is looked up in the working directory.
	DefaultFileName = "forge-mvn.cue"

	// XDGFileName is looked up in the XDG configuration directories.
	XDGFileName = "forge-mvn/config.cue"

	// DotEnvFileName is read from the working directory when present.
	DotEnvFileName = ".env"
)

// Environment variables overriding the configuration file.
const (
	EnvLocalRepository   = "FORGE_MVN_LOCAL_REPOSITORY"
	EnvRepositoryID      = "FORGE_MVN_REPOSITORY_ID"
	EnvPropertyPrefix    = "FORGE_MVN_PROPERTY_PREFIX"
	EnvExcludeTransitive = "FORGE_MVN_EXCLUDE_TRANSITIVE"
	EnvOutputFile        = "FORGE_MVN_OUTPUT_FILE"
	EnvS3Region          = "FORGE_MVN_S3_REGION"
	EnvS3Endpoint        = "FORGE_MVN_S3_ENDPOINT"
)

// schema constrains configuration files. Fields are optional so partial
// files and environment-only setups are valid.
const schema = `
#Repository: {
	id:        string & != ""
	url:       string & =~ "^[a-zA-Z][a-zA-Z0-9+.-]*://"
	username?: string
	password?: string
}

#Config: {
	localRepository?: string
	repositories?: [...#Repository]
	remoteVersion?: {
		groupId?:        string
		artifactId?:     string
		repositoryId?:   string
		propertyPrefix?: string & =~ "^[A-Za-z_][A-Za-z0-9_.-]*$"
		constraint?:     string
		propertiesFile?: string
	}
	manifest?: {
		excludeTransitive?:   bool
		outputFile?:          string
		projectDir?:          string
		mavenOpts?:           string
		retries?:             int & >=0
		artifactsFile?:       string
		directArtifactsFile?: string
	}
	s3?: {
		region?:   string
		endpoint?: string & =~ "^https?://"
	}
}
`

// Loader locates and loads configuration.
type Loader struct {
	fs         fs.Filesystem
	workDir    string
	lookupEnv  func(string) (string, bool)
	searchXDG  func(string) (string, error)
	homeDir    func() (string, error)
	logger     *slog.Logger
	skipDotEnv bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFilesystem sets the filesystem configuration and .env files are read from.
func WithFilesystem(filesystem fs.Filesystem) LoaderOption {
	return func(l *Loader) {
		l.fs = filesystem
	}
}

// WithWorkDir sets the directory searched for forge-mvn.cue and .env.
func WithWorkDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.workDir = dir
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.lookupEnv = lookup
	}
}

// WithXDGSearch replaces the XDG configuration search.
func WithXDGSearch(search func(string) (string, error)) LoaderOption {
	return func(l *Loader) {
		l.searchXDG = search
	}
}

// WithHomeDir replaces os.UserHomeDir when deriving the default local repository.
func WithHomeDir(home func() (string, error)) LoaderOption {
	return func(l *Loader) {
		l.homeDir = home
	}
}

// WithoutDotEnv disables reading the .env file.
func WithoutDotEnv() LoaderOption {
	return func(l *Loader) {
		l.skipDotEnv = true
	}
}

// WithLogger configures the loader with a logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader reading from the OS filesystem and environment.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		workDir:   ".",
		lookupEnv: os.LookupEnv,
		searchXDG: xdg.SearchConfigFile,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fs == nil {
		l.fs = billy.NewBaseOSFS()
	}
	return l
}

// Load builds the configuration. An explicit path must exist; otherwise
// forge-mvn.cue in the working directory and then the XDG configuration
// directories are tried, and no file at all is not an error.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	cfg := &Config{}

	file, err := l.locate(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		if l.logger != nil {
			l.logger.DebugContext(ctx, "loading configuration", "path", file)
		}
		if cfg, err = l.loadFile(file); err != nil {
			return nil, err
		}
	}

	env, err := l.environment()
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}

	if err := l.applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) locate(path string) (string, error) {
	if path != "" {
		exists, err := l.fs.Exists(path)
		if err != nil {
			return "", errors.WrapWithContext(err, errors.CodeConfigLoadFailed,
				"failed to access configuration file", map[string]interface{}{"path": path})
		}
		if !exists {
			return "", errors.Newf(errors.CodeConfigLoadFailed, "configuration file %s does not exist", path)
		}
		return path, nil
	}

	local := filepath.Join(l.workDir, DefaultFileName)
	if exists, err := l.fs.Exists(local); err == nil && exists {
		return local, nil
	}

	if l.searchXDG != nil {
		if found, err := l.searchXDG(XDGFileName); err == nil {
			return found, nil
		}
	}
	return "", nil
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeConfigLoadFailed,
			"failed to read configuration file", map[string]interface{}{"path": path})
	}
	return Decode(data, path)
}

// Decode compiles CUE source, checks it against the configuration schema
// and decodes it. filename is used in error messages.
func Decode(src []byte, filename string) (*Config, error) {
	details := map[string]interface{}{"path": filename}
	cueCtx := cuecontext.New()

	def := cueCtx.CompileString(schema).LookupPath(cue.ParsePath("#Config"))
	if def.Err() != nil {
		return nil, errors.Wrap(def.Err(), errors.CodeInternal, "invalid configuration schema")
	}

	value := cueCtx.CompileBytes(src, cue.Filename(filename))
	if value.Err() != nil {
		return nil, errors.WrapWithContext(value.Err(), errors.CodeConfigLoadFailed,
			"failed to compile configuration", details)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"configuration does not match schema", details)
	}

	cfg := &Config{}
	if err := unified.Decode(cfg); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeConfigLoadFailed,
			"failed to decode configuration", details)
	}
	return cfg, nil
}

// environment merges the .env file under the process environment.
func (l *Loader) environment() (func(string) (string, bool), error) {
	dotenv := map[string]string{}
	if !l.skipDotEnv {
		p := filepath.Join(l.workDir, DotEnvFileName)
		data, err := l.fs.ReadFile(p)
		switch {
		case err == nil:
			if dotenv, err = godotenv.Parse(bytes.NewReader(data)); err != nil {
				return nil, errors.WrapWithContext(err, errors.CodeConfigLoadFailed,
					"failed to parse .env file", map[string]interface{}{"path": p})
			}
		case !fs.IsNotExist(err):
			return nil, errors.WrapWithContext(err, errors.CodeConfigLoadFailed,
				"failed to read .env file", map[string]interface{}{"path": p})
		}
	}

	return func(key string) (string, bool) {
		if v, ok := l.lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLocalRepository); ok && v != "" {
		cfg.LocalRepository = v
	}
	if v, ok := lookup(EnvRepositoryID); ok {
		cfg.RemoteVersion.RepositoryID = v
	}
	if v, ok := lookup(EnvPropertyPrefix); ok && v != "" {
		cfg.RemoteVersion.PropertyPrefix = v
	}
	if v, ok := lookup(EnvOutputFile); ok {
		cfg.Manifest.OutputFile = v
	}
	if v, ok := lookup(EnvS3Region); ok && v != "" {
		cfg.S3.Region = v
	}
	if v, ok := lookup(EnvS3Endpoint); ok && v != "" {
		cfg.S3.Endpoint = v
	}
	if v, ok := lookup(EnvExcludeTransitive); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapWithContext(err, errors.CodeInvalidConfig,
				"invalid boolean in environment", map[string]interface{}{"variable": EnvExcludeTransitive})
		}
		cfg.Manifest.ExcludeTransitive = b
	}
	return nil
}

func (l *Loader) applyDefaults(cfg *Config) error {
	if cfg.RemoteVersion.PropertyPrefix == "" {
		cfg.RemoteVersion.PropertyPrefix = remoteversion.DefaultPropertyPrefix
	}
	if cfg.LocalRepository == "" {
		home, err := l.homeDir()
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "cannot determine default local repository")
		}
		cfg.LocalRepository = filepath.Join(home, ".m2", "repository")
	}
	return nil
}
