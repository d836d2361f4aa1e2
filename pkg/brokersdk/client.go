package brokersdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single SDK request. Authenticate may legitimately
// hold the connection for a silent and an interactive phase back to back,
// each of which the broker caps at sixty seconds, so the default leaves
// headroom beyond both.
const DefaultTimeout = 150 * time.Second

// Client is a client for the keybridge broker daemon. All operations talk to
// the daemon's local HTTP surface; none of them contact the identity provider
// directly.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// ClientName identifies the host application to the daemon. When set it
	// is sent as X-Client-Name on every request so the daemon's rate limits
	// and logs can tell callers on the same machine apart.
	ClientName string
}

// NewClient creates a new broker client for the daemon at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}
