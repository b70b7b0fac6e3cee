package client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
)

// LocalAddress is the node NewLocal connects to.
const LocalAddress = "http://localhost:9200"

// TransportConfig carries the vendor settings for a remote cluster.
type TransportConfig struct {
	Username string
	Password string
	APIKey   string
	CloudID  string
	CACert   []byte

	// Sniff discovers the remaining cluster nodes from the seed addresses.
	Sniff         bool
	SniffInterval time.Duration

	MaxRetries          int
	DisableRetry        bool
	CompressRequestBody bool

	// HTTPTransport replaces the vendor's default round tripper.
	HTTPTransport http.RoundTripper
}

func (tc TransportConfig) vendorConfig(addresses []string) elasticsearch.Config {
	return elasticsearch.Config{
		Addresses:             addresses,
		Username:              tc.Username,
		Password:              tc.Password,
		APIKey:                tc.APIKey,
		CloudID:               tc.CloudID,
		CACert:                tc.CACert,
		DiscoverNodesOnStart:  tc.Sniff,
		DiscoverNodesInterval: tc.SniffInterval,
		MaxRetries:            tc.MaxRetries,
		DisableRetry:          tc.DisableRetry,
		CompressRequestBody:   tc.CompressRequestBody,
		Transport:             tc.HTTPTransport,
	}
}

// NewLocal builds a client for the node running on this host.
func NewLocal(opts ...Option) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{LocalAddress},
	})
	if err != nil {
		return nil, fmt.Errorf("new local client: %w", err)
	}
	return Wrap(es, opts...), nil
}

// NewTransport builds a client for a remote cluster reachable through the
// given seed addresses.
func NewTransport(addresses []string, tc TransportConfig, opts ...Option) (*Client, error) {
	if len(addresses) == 0 && tc.CloudID == "" {
		return nil, fmt.Errorf("new transport client: no addresses or cloud id: %w", apperrors.ErrInvalidInput)
	}
	es, err := elasticsearch.NewClient(tc.vendorConfig(addresses))
	if err != nil {
		return nil, fmt.Errorf("new transport client: %w", err)
	}
	return Wrap(es, opts...), nil
}

// Wrap adopts an already configured vendor client.
func Wrap(es *elasticsearch.Client, opts ...Option) *Client {
	return newClient(es, es, opts)
}

// NewWithTransport adopts any vendor transport, such as an
// elastictransport.Client or a test double.
func NewWithTransport(t esapi.Transport, opts ...Option) *Client {
	return newClient(t, nil, opts)
}
