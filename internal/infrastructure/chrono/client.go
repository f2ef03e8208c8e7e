package chrono

import (
	"net/http"
	"strings"
	"time"

	"github.com/narora21/chrono-patient-uploader/internal/core/ports"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/resilience"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://app.drchrono.com"

// Client talks to the DrChrono REST API. All calls go through the resilience
// executor, so HTTP 429 responses are retried with backoff before they
// surface as domain.RateLimitError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     ports.TokenSource
	executor   *resilience.Executor
}

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

func New(baseURL string, tokens ports.TokenSource, options Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	executor := options.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		executor:   executor,
	}
}

// listPayload tolerates both envelope shapes the API has used for
// collections: {"results": [...]} and {"data": [...]}.
type listPayload[T any] struct {
	Results []T    `json:"results"`
	Data    []T    `json:"data"`
	Next    string `json:"next"`
}

func (p listPayload[T]) items() []T {
	if p.Results != nil {
		return p.Results
	}
	return p.Data
}
