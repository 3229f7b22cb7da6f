package artifact

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/executor"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
)

// Provider returns the resolved dependencies of a project.
type Provider interface {
	Artifacts(ctx context.Context) (Set, error)
}

// ListProvider reads artifacts from dependency list files produced earlier,
// for example by a previous mvn dependency:list run.
type ListProvider struct {
	fs         fs.Filesystem
	allFile    string
	directFile string
}

// NewListProvider creates a provider reading allFile (every dependency) and
// directFile (direct dependencies only). An empty directFile yields no
// direct dependencies.
func NewListProvider(filesystem fs.Filesystem, allFile, directFile string) *ListProvider {
	if filesystem == nil {
		filesystem = billy.NewBaseOSFS()
	}
	return &ListProvider{fs: filesystem, allFile: allFile, directFile: directFile}
}

// Artifacts implements Provider.
func (p *ListProvider) Artifacts(_ context.Context) (Set, error) {
	all, err := p.read(p.allFile)
	if err != nil {
		return Set{}, err
	}
	direct, err := p.read(p.directFile)
	if err != nil {
		return Set{}, err
	}
	return newSet(direct, all), nil
}

func (p *ListProvider) read(path string) ([]Artifact, error) {
	if path == "" {
		return nil, nil
	}
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeArtifactResolution, "failed to read dependency list",
			map[string]interface{}{"path": path})
	}
	return ParseList(bytes.NewReader(data))
}

// MavenProvider resolves dependencies by running mvn dependency:list in a
// project directory.
type MavenProvider struct {
	exec       executor.Executor
	projectDir string
	mvn        string
	args       []string
	env        map[string]string
	retries    int
	retryDelay time.Duration
	logger     *slog.Logger
}

// MavenOption configures a MavenProvider.
type MavenOption func(*MavenProvider)

// WithExecutor replaces the command executor.
func WithExecutor(e executor.Executor) MavenOption {
	return func(p *MavenProvider) {
		p.exec = e
	}
}

// WithMavenCommand sets the mvn executable, for example a ./mvnw wrapper.
func WithMavenCommand(mvn string) MavenOption {
	return func(p *MavenProvider) {
		p.mvn = mvn
	}
}

// WithMavenArgs adds arguments to every mvn invocation, such as
// "-s settings.xml" or "-Dmaven.repo.local=...".
func WithMavenArgs(args ...string) MavenOption {
	return func(p *MavenProvider) {
		p.args = append(p.args, args...)
	}
}

// WithMavenEnv sets an environment variable for every mvn invocation,
// such as MAVEN_OPTS.
func WithMavenEnv(key, value string) MavenOption {
	return func(p *MavenProvider) {
		if p.env == nil {
			p.env = map[string]string{}
		}
		p.env[key] = value
	}
}

// WithRetries retries a failing mvn run up to retries times. Runs where mvn
// could not be started are not retried.
func WithRetries(retries int, delay time.Duration) MavenOption {
	return func(p *MavenProvider) {
		p.retries = retries
		p.retryDelay = delay
	}
}

// WithLogger configures the provider with a logger. mvn output is logged at
// debug level. A nil logger disables logging.
func WithLogger(logger *slog.Logger) MavenOption {
	return func(p *MavenProvider) {
		p.logger = logger
	}
}

// NewMavenProvider creates a provider for the project in projectDir.
func NewMavenProvider(projectDir string, opts ...MavenOption) *MavenProvider {
	p := &MavenProvider{projectDir: projectDir, mvn: "mvn"}
	for _, opt := range opts {
		opt(p)
	}
	if p.exec == nil {
		p.exec = executor.New(p.logger)
	}
	return p
}

// Artifacts implements Provider. It runs mvn twice, once for the full
// dependency set and once with transitive dependencies excluded.
func (p *MavenProvider) Artifacts(ctx context.Context) (Set, error) {
	tmp, err := os.MkdirTemp("", "forge-mvn-")
	if err != nil {
		return Set{}, errors.Wrap(err, errors.CodeIO, "failed to create temporary directory")
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	all, err := p.list(ctx, filepath.Join(tmp, "all.txt"), false)
	if err != nil {
		return Set{}, err
	}
	direct, err := p.list(ctx, filepath.Join(tmp, "direct.txt"), true)
	if err != nil {
		return Set{}, err
	}
	return newSet(direct, all), nil
}

func (p *MavenProvider) list(ctx context.Context, outputFile string, excludeTransitive bool) ([]Artifact, error) {
	args := append([]string{}, p.args...)
	args = append(args,
		"--batch-mode",
		"--quiet",
		"dependency:list",
		"-DoutputAbsoluteArtifactFilename=true",
		"-DoutputFile="+outputFile,
		"-DappendOutput=false",
	)
	if excludeTransitive {
		args = append(args, "-DexcludeTransitive=true")
	}

	if p.logger != nil {
		p.logger.InfoContext(ctx, "listing dependencies", "project", p.projectDir, "excludeTransitive", excludeTransitive)
	}
	if _, err := p.exec.Execute(ctx, p.mvn, args, p.executeOptions(ctx)...); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeArtifactResolution, "failed to list dependencies",
			map[string]interface{}{"project": p.projectDir})
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeArtifactResolution, "failed to read dependency list",
			map[string]interface{}{"path": outputFile})
	}
	return ParseList(bytes.NewReader(data))
}

func (p *MavenProvider) executeOptions(ctx context.Context) []executor.Option {
	opts := []executor.Option{executor.WithWorkingDir(p.projectDir)}
	for k, v := range p.env {
		opts = append(opts, executor.WithEnvVar(k, v))
	}
	if p.retries > 0 {
		opts = append(opts, executor.WithRetry(p.retries, p.retryDelay, retryable))
	}
	if p.logger != nil {
		w := &logWriter{ctx: ctx, logger: p.logger.With("program", p.mvn)}
		opts = append(opts, executor.WithOutput(w, w))
	}
	return opts
}

// retryable reports whether mvn ran and failed, as opposed to not starting.
func retryable(res *executor.Result, _ error) bool {
	return res != nil && res.ExitCode > 0
}

// logWriter logs every complete output line at debug level.
type logWriter struct {
	ctx    context.Context
	logger *slog.Logger

	mu  sync.Mutex
	buf []byte
}

func (w *logWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, b...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimRight(string(w.buf[:i]), "\r"); line != "" {
			w.logger.DebugContext(w.ctx, line)
		}
		w.buf = w.buf[i+1:]
	}
	return len(b), nil
}

func newSet(direct, all []Artifact) Set {
	Sort(direct)
	Sort(all)
	return Set{Direct: direct, All: all}
}
