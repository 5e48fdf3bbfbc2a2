package uploadlink

import (
	"net/http"
	"time"

	"github.com/wundergraph/graphql-go-upload/pkg/httpclient"
)

const (
	ClientNameHeader    = "apollographql-client-name"
	ClientVersionHeader = "apollographql-client-version"

	AcceptGraphQLResponse = "application/graphql-response+json,application/json;q=0.9"
)

// httpConfig is the merged configuration of one request.
type httpConfig struct {
	method                string
	timeout               time.Duration
	credentials           string
	header                http.Header
	includeQuery          bool
	includeExtensions     bool
	includeEmptyVariables bool
}

// selectHTTPConfig merges, from lowest to highest precedence, the fallback
// configuration, the link options, the client awareness headers and the
// operation context.
func (l *Link) selectHTTPConfig(ctx Context) httpConfig {
	config := httpConfig{
		method:       http.MethodPost,
		includeQuery: true,
		header: http.Header{
			httpclient.AcceptHeader:      []string{AcceptGraphQLResponse},
			httpclient.ContentTypeHeader: []string{httpclient.ContentTypeJSON},
		},
	}

	config.applyFetchOptions(&l.opts.fetchOptions)
	if l.opts.credentials != "" {
		config.credentials = l.opts.credentials
	}
	setHeaders(config.header, l.opts.headers)
	if l.opts.includeExtensions != nil {
		config.includeExtensions = *l.opts.includeExtensions
	}

	if ctx.ClientAwareness != nil {
		if ctx.ClientAwareness.Name != "" {
			config.header.Set(ClientNameHeader, ctx.ClientAwareness.Name)
		}
		if ctx.ClientAwareness.Version != "" {
			config.header.Set(ClientVersionHeader, ctx.ClientAwareness.Version)
		}
	}

	config.applyFetchOptions(ctx.FetchOptions)
	if ctx.Credentials != "" {
		config.credentials = ctx.Credentials
	}
	setHeaders(config.header, ctx.Headers)
	if ctx.HTTP != nil {
		if ctx.HTTP.IncludeQuery != nil {
			config.includeQuery = *ctx.HTTP.IncludeQuery
		}
		if ctx.HTTP.IncludeExtensions != nil {
			config.includeExtensions = *ctx.HTTP.IncludeExtensions
		}
		if ctx.HTTP.IncludeEmptyVariables != nil {
			config.includeEmptyVariables = *ctx.HTTP.IncludeEmptyVariables
		}
	}

	return config
}

func (c *httpConfig) applyFetchOptions(options *FetchOptions) {
	if options == nil {
		return
	}
	if options.Method != "" {
		c.method = options.Method
	}
	if options.Timeout > 0 {
		c.timeout = options.Timeout
	}
}

// setHeaders overrides header with headers. Names are case insensitive.
func setHeaders(header http.Header, headers map[string]string) {
	for name, value := range headers {
		header.Set(name, value)
	}
}

func (l *Link) selectURI(ctx Context) string {
	if ctx.URI != "" {
		return ctx.URI
	}
	return l.opts.uri
}
