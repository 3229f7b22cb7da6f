// Package credentials resolves repository passwords.
//
// A password value in the repository configuration is either a literal or a
// reference:
//
//	env:NAME           value of environment variable NAME
//	aws-sm:SECRET_ID   value of an AWS Secrets Manager secret
//
// Secret values are never logged; only references are.
package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
)

const (
	// EnvPrefix marks a reference to an environment variable.
	EnvPrefix = "env:"

	// SecretsManagerPrefix marks a reference to an AWS Secrets Manager secret.
	SecretsManagerPrefix = "aws-sm:"
)

// Resolver turns a credential reference into its value.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, ref string) (string, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// Env resolves references against the process environment.
type Env struct {
	lookup func(string) (string, bool)
}

// NewEnv returns an environment resolver backed by os.LookupEnv.
func NewEnv() *Env {
	return &Env{lookup: os.LookupEnv}
}

// Resolve implements Resolver. An unset variable is an error; an empty one is not.
func (e *Env) Resolve(_ context.Context, name string) (string, error) {
	v, ok := e.lookup(name)
	if !ok {
		return "", errors.New(errors.CodeCredentials, fmt.Sprintf("environment variable %s is not set", name))
	}
	return v, nil
}

// Chain dispatches references to the resolver registered for their prefix.
// Values without a known prefix are returned unchanged.
type Chain struct {
	resolvers map[string]Resolver
	logger    *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger configures the chain with a logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithResolver registers r for values starting with prefix.
func WithResolver(prefix string, r Resolver) Option {
	return func(c *Chain) {
		c.resolvers[prefix] = r
	}
}

// NewChain creates a chain with the environment resolver registered. AWS
// Secrets Manager support is added with WithResolver(SecretsManagerPrefix, ...)
// so that AWS configuration is only loaded when it is needed.
func NewChain(opts ...Option) *Chain {
	c := &Chain{
		resolvers: map[string]Resolver{EnvPrefix: NewEnv()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve implements Resolver.
func (c *Chain) Resolve(ctx context.Context, value string) (string, error) {
	for prefix, r := range c.resolvers {
		if !strings.HasPrefix(value, prefix) {
			continue
		}
		ref := strings.TrimPrefix(value, prefix)
		if c.logger != nil {
			c.logger.DebugContext(ctx, "resolving credential", "reference", prefix+ref)
		}
		secret, err := r.Resolve(ctx, ref)
		if err != nil {
			return "", errors.WrapWithContext(err, errors.CodeCredentials, "failed to resolve credential",
				map[string]interface{}{"reference": prefix + ref})
		}
		return secret, nil
	}
	return value, nil
}

// BasicAuth resolves the username and password of a remote repository.
// ok is false when the repository carries no username.
func BasicAuth(ctx context.Context, r Resolver, remote repository.Remote) (user, pass string, ok bool, err error) {
	if remote.Username == "" {
		return "", "", false, nil
	}
	if r == nil {
		return remote.Username, remote.Password, true, nil
	}
	pass, err = r.Resolve(ctx, remote.Password)
	if err != nil {
		return "", "", false, err
	}
	return remote.Username, pass, true, nil
}
