// Package gateway forwards client requests to the products, customers and
// orders services and relays their responses unchanged.
package gateway

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// forwardedHeaders are copied from the client request to the backend.
var forwardedHeaders = []string{"Content-Type", "Accept", "Authorization"}

type ServiceProxy struct {
	baseURL string
	client  *http.Client
}

func NewServiceProxy(baseURL string, client *http.Client) *ServiceProxy {
	return &ServiceProxy{
		baseURL: baseURL,
		client:  client,
	}
}

func (p *ServiceProxy) BaseURL() string {
	return p.baseURL
}

// ForwardRequest replays r against path on the backend, keeping the method,
// body and query string. The caller owns the returned response body.
func (p *ServiceProxy) ForwardRequest(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	target := p.baseURL + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		return nil, err
	}

	for _, name := range forwardedHeaders {
		if v := r.Header.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}
	if id := middleware.GetReqID(ctx); id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}

	return p.client.Do(req)
}
