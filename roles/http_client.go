package roles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to the membership system's role endpoints: the bot gateway
// exposes them under <base>/members/{principal}/roles with bearer auth.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a role client for the gateway at baseURL.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// RemoveRoles strips the named roles from the principal. Roles the principal
// does not hold are ignored by the gateway.
func (c *HTTPClient) RemoveRoles(ctx context.Context, principal string, roleNames []string) error {
	body, err := json.Marshal(map[string]interface{}{"roles": roleNames})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, c.memberRolesURL(principal), body)
}

// GrantRole grants a single role to the principal.
func (c *HTTPClient) GrantRole(ctx context.Context, principal, roleName string) error {
	body, err := json.Marshal(map[string]interface{}{"role": roleName})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, c.memberRolesURL(principal), body)
}

func (c *HTTPClient) memberRolesURL(principal string) string {
	return c.baseURL + "/members/" + url.PathEscape(principal) + "/roles"
}

func (c *HTTPClient) do(ctx context.Context, method, u string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrRoleNotProvisioned
	default:
		return fmt.Errorf("%s %s: unexpected status %d", method, u, resp.StatusCode)
	}
}
