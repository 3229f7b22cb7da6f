// Package errors provides the error handling system shared by the Maven build
// steps. It extends Go's standard error handling with structured error codes
// and context preservation so callers can decide whether a failure should
// abort a build step or only be reported.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Permission errors.

	// CodeUnauthorized indicates the request lacks valid authentication credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeConfigLoadFailed indicates a configuration file could not be read or decoded.
	CodeConfigLoadFailed ErrorCode = "CONFIG_LOAD_FAILED"

	// Infrastructure errors.

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeIO indicates a local filesystem operation failed.
	CodeIO ErrorCode = "IO_ERROR"

	// Repository errors.

	// CodeMetadataResolution indicates repository metadata could not be retrieved or decoded.
	CodeMetadataResolution ErrorCode = "METADATA_RESOLUTION_FAILED"

	// CodeArtifactResolution indicates the resolved artifact set could not be obtained.
	CodeArtifactResolution ErrorCode = "ARTIFACT_RESOLUTION_FAILED"

	// CodeInvalidArtifactPath indicates a resolved artifact lies outside the local repository.
	CodeInvalidArtifactPath ErrorCode = "INVALID_ARTIFACT_PATH"

	// CodeCredentials indicates repository credentials could not be resolved.
	CodeCredentials ErrorCode = "CREDENTIALS_UNAVAILABLE"

	// Execution errors.

	// CodeExecutionFailed indicates an external command failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeManifestWrite indicates the dependency manifest could not be persisted.
	CodeManifestWrite ErrorCode = "MANIFEST_WRITE_FAILED"

	// System errors.

	// CodeInternal indicates an internal system error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
