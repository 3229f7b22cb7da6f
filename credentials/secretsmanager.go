package credentials

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

// AWS error code constants
const (
	ResourceNotFoundException = "ResourceNotFoundException"
	AccessDeniedException     = "AccessDeniedException"
)

var (
	// ErrSecretNotFound is returned when the referenced secret does not exist.
	ErrSecretNotFound = stderrors.New("secret not found")

	// ErrSecretEmpty is returned when a secret exists but carries no value.
	ErrSecretEmpty = stderrors.New("secret value is empty")

	// ErrAccessDenied is returned when the AWS credentials may not read the secret.
	ErrAccessDenied = stderrors.New("access denied to secret")
)

// ManagerAPI is the subset of the Secrets Manager client used here.
type ManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManager resolves secret ids against AWS Secrets Manager.
type SecretsManager struct {
	api    ManagerAPI
	logger *slog.Logger
}

// NewSecretsManager loads the default AWS configuration and returns a resolver.
func NewSecretsManager(ctx context.Context, logger *slog.Logger) (*SecretsManager, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSecretsManagerWithAPI(secretsmanager.NewFromConfig(cfg), logger), nil
}

// NewSecretsManagerWithAPI returns a resolver using the given API client.
func NewSecretsManagerWithAPI(api ManagerAPI, logger *slog.Logger) *SecretsManager {
	return &SecretsManager{api: api, logger: logger}
}

// Resolve implements Resolver.
func (s *SecretsManager) Resolve(ctx context.Context, secretID string) (string, error) {
	if secretID == "" {
		return "", fmt.Errorf("secret id cannot be empty")
	}

	output, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &secretID})
	if err != nil {
		var apiErr smithy.APIError
		if stderrors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case ResourceNotFoundException:
				return "", fmt.Errorf("GetSecret %s: %w", secretID, ErrSecretNotFound)
			case AccessDeniedException:
				return "", fmt.Errorf("GetSecret %s: %w", secretID, ErrAccessDenied)
			}
			return "", fmt.Errorf("GetSecret operation failed: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to retrieve secret", "secret_name", secretID, "error", err)
		}
		return "", fmt.Errorf("GetSecret operation failed: %w", err)
	}

	switch {
	case output.SecretString != nil:
		return *output.SecretString, nil
	case output.SecretBinary != nil:
		return string(output.SecretBinary), nil
	default:
		return "", fmt.Errorf("GetSecret %s: %w", secretID, ErrSecretEmpty)
	}
}
