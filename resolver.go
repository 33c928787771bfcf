package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// maxUserPayload caps how much of a user-detail response we buffer.
const maxUserPayload = 1 << 20

var _ UserResolver = (*HTTPResolver)(nil)

// HTTPResolver fetches canonical user records over the backend REST API.
// Responses are accepted in any of the known envelope shapes; see
// UnwrapUser for the fallback chain.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	scheme  string
	logger  Logger
}

// HTTPResolverOption customizes resolver construction.
type HTTPResolverOption func(*HTTPResolver)

// WithHTTPClient overrides the http.Client used for detail fetches.
func WithHTTPClient(client *http.Client) HTTPResolverOption {
	return func(r *HTTPResolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithAuthScheme overrides the Authorization scheme (default "Bearer").
func WithAuthScheme(scheme string) HTTPResolverOption {
	return func(r *HTTPResolver) {
		if scheme != "" {
			r.scheme = scheme
		}
	}
}

// WithResolverLogger overrides the resolver's logger.
func WithResolverLogger(logger Logger) HTTPResolverOption {
	return func(r *HTTPResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewHTTPResolver validates the base URL and returns a resolver.
func NewHTTPResolver(baseURL string, opts ...HTTPResolverOption) (*HTTPResolver, error) {
	if err := validation.Validate(baseURL, validation.Required, is.URL); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid resolver base URL")
	}

	r := &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		scheme:  "Bearer",
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r, nil
}

// Resolve issues GET /users/{id} and unwraps the response. A response that
// decodes but carries no identity yields (nil, nil); transport failures and
// non-2xx statuses yield an error the manager absorbs.
func (r *HTTPResolver) Resolve(ctx context.Context, id, token string) (*User, error) {
	endpoint := fmt.Sprintf("%s/users/%s", r.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "building user detail request")
	}

	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", r.scheme+" "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user detail request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, goerrors.New(
			fmt.Sprintf("user detail request returned %d", resp.StatusCode),
			goerrors.CategoryInternal,
		).WithMetadata(map[string]any{"status": resp.StatusCode, "user_id": id})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserPayload))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "reading user detail response")
	}

	user, err := DecodeUser(body)
	if errors.Is(err, ErrNoIdentity) {
		r.logger.Debug("user detail response carried no identity for %s", id)
		return nil, nil
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "decoding user detail response")
	}

	return user, nil
}
