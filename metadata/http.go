package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/maven/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
)

// DefaultUserAgent is sent with every metadata request.
const DefaultUserAgent = "forge-mvn"

// HTTPTransport fetches metadata over http and https. Requests carry
// no-cache headers so intermediaries revalidate with the origin.
type HTTPTransport struct {
	client      *http.Client
	credentials credentials.Resolver
	userAgent   string
}

// NewHTTPTransport creates an HTTP transport. A nil client uses
// http.DefaultClient; a nil resolver sends passwords verbatim.
func NewHTTPTransport(client *http.Client, resolver credentials.Resolver) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client, credentials: resolver, userAgent: DefaultUserAgent}
}

// Fetch implements Transport.
func (t *HTTPTransport) Fetch(ctx context.Context, remote repository.Remote, path string) ([]byte, error) {
	url := strings.TrimRight(remote.URL, "/") + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "failed to build metadata request")
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", t.userAgent)

	user, pass, ok, err := credentials.BasicAuth(ctx, t.credentials, remote)
	if err != nil {
		return nil, err
	}
	if ok {
		req.SetBasicAuth(user, pass)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeNetwork, "metadata request failed",
			map[string]interface{}{"url": url})
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("GET %s: %w", url, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Newf(errors.CodeUnauthorized, "GET %s: %s", url, resp.Status)
	default:
		return nil, errors.Newf(errors.CodeNetwork, "GET %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeNetwork, "failed to read metadata response",
			map[string]interface{}{"url": url})
	}
	return body, nil
}
