package metadata

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/maven/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
)

func TestHTTPTransport(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		switch r.URL.Path {
		case "/maven2/com/acme/app/maven-metadata.xml":
			_, _ = io.WriteString(w, sampleMetadata)
		case "/private/com/acme/app/maven-metadata.xml":
			user, pass, ok := r.BasicAuth()
			if !ok || user != "deploy" || pass != "s3cret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, sampleMetadata)
		case "/broken/com/acme/app/maven-metadata.xml":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	resolver := credentials.ResolverFunc(func(_ context.Context, ref string) (string, error) {
		if ref == "env:NEXUS" {
			return "s3cret", nil
		}
		return ref, nil
	})
	transport := NewHTTPTransport(srv.Client(), resolver)
	ctx := context.Background()
	path := repository.MetadataPath("com.acme", "app")

	t.Run("fetches fresh", func(t *testing.T) {
		data, err := transport.Fetch(ctx, repository.Remote{ID: "central", URL: srv.URL + "/maven2/"}, path)
		require.NoError(t, err)
		assert.Equal(t, sampleMetadata, string(data))
		assert.Equal(t, "no-cache", gotHeaders.Get("Cache-Control"))
		assert.Equal(t, DefaultUserAgent, gotHeaders.Get("User-Agent"))
	})

	t.Run("basic auth with resolved password", func(t *testing.T) {
		remote := repository.Remote{ID: "private", URL: srv.URL + "/private", Username: "deploy", Password: "env:NEXUS"}
		_, err := transport.Fetch(ctx, remote, path)
		require.NoError(t, err)
	})

	t.Run("unauthorized", func(t *testing.T) {
		_, err := transport.Fetch(ctx, repository.Remote{ID: "private", URL: srv.URL + "/private"}, path)
		require.Error(t, err)
		assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := transport.Fetch(ctx, repository.Remote{ID: "other", URL: srv.URL + "/other"}, path)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := transport.Fetch(ctx, repository.Remote{ID: "broken", URL: srv.URL + "/broken"}, path)
		require.Error(t, err)
		assert.False(t, stderrors.Is(err, ErrNotFound))
		assert.Equal(t, errors.CodeNetwork, errors.GetCode(err))
	})
}

func TestFileTransport(t *testing.T) {
	mem := billy.NewInMemoryFS()
	require.NoError(t, mem.WriteFile("/srv/maven/com/acme/app/maven-metadata.xml", []byte(sampleMetadata), 0o644))

	transport := NewFileTransport(mem)
	ctx := context.Background()

	data, err := transport.Fetch(ctx, repository.Remote{ID: "file", URL: "file:///srv/maven"}, "com/acme/app/maven-metadata.xml")
	require.NoError(t, err)
	assert.Equal(t, sampleMetadata, string(data))

	_, err = transport.Fetch(ctx, repository.Remote{ID: "file", URL: "file:///srv/maven"}, "com/acme/other/maven-metadata.xml")
	assert.ErrorIs(t, err, ErrNotFound)
}

// mockS3API implements S3API for testing
type mockS3API struct {
	getObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *mockS3API) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getObjectFunc != nil {
		return m.getObjectFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("GetObject not implemented")
}

func TestS3Transport(t *testing.T) {
	var gotBucket, gotKey string
	api := &mockS3API{getObjectFunc: func(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		gotBucket, gotKey = aws.ToString(params.Bucket), aws.ToString(params.Key)
		switch gotBucket {
		case "missing":
			return nil, &types.NoSuchKey{Message: aws.String("no such key")}
		case "denied":
			return nil, &smithy.GenericAPIError{Code: "AccessDenied"}
		case "flaky":
			return nil, stderrors.New("connection reset")
		}
		return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(sampleMetadata))}, nil
	}}
	transport := NewS3Transport(WithS3API(api))
	ctx := context.Background()
	path := repository.MetadataPath("com.acme", "app")

	data, err := transport.Fetch(ctx, repository.Remote{ID: "s3", URL: "s3://artifacts/maven/releases"}, path)
	require.NoError(t, err)
	assert.Equal(t, sampleMetadata, string(data))
	assert.Equal(t, "artifacts", gotBucket)
	assert.Equal(t, "maven/releases/com/acme/app/maven-metadata.xml", gotKey)

	_, err = transport.Fetch(ctx, repository.Remote{ID: "s3", URL: "s3://missing"}, path)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "com/acme/app/maven-metadata.xml", gotKey)

	_, err = transport.Fetch(ctx, repository.Remote{ID: "s3", URL: "s3://denied/maven"}, path)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))

	_, err = transport.Fetch(ctx, repository.Remote{ID: "s3", URL: "s3://flaky/maven"}, path)
	assert.Equal(t, errors.CodeNetwork, errors.GetCode(err))

	_, err = transport.Fetch(ctx, repository.Remote{ID: "s3", URL: "s3:///maven"}, path)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestS3TransportConcurrentClient(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent/credentials")
	transport := NewS3Transport(WithS3Region("eu-west-1"), WithS3Endpoint("http://localhost:4566"))

	const workers = 8
	clients := make([]S3API, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i], errs[i] = transport.client(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, clients[i])
		assert.Same(t, clients[0], clients[i])
	}
	client, ok := clients[0].(*s3.Client)
	require.True(t, ok)
	assert.Equal(t, "eu-west-1", client.Options().Region)
	assert.Equal(t, "http://localhost:4566", aws.ToString(client.Options().BaseEndpoint))
	assert.True(t, client.Options().UsePathStyle)
}

func TestTransportsFor(t *testing.T) {
	ts := Transports{"https": NewHTTPTransport(nil, nil)}

	_, err := ts.For(repository.Remote{ID: "a", URL: "https://repo"})
	require.NoError(t, err)

	_, err = ts.For(repository.Remote{ID: "b", URL: "ftp://repo"})
	assert.Error(t, err)
}
