// Package httpclient is the transport boundary of the upload link. A Fetcher
// sends one Request and returns the fully read Response.
package httpclient

import (
	"context"
	"io"
	"net/http"
)

const (
	ContentEncodingHeader = "Content-Encoding"
	AcceptEncodingHeader  = "Accept-Encoding"
	AcceptHeader          = "Accept"
	ContentTypeHeader     = "Content-Type"

	EncodingGzip    = "gzip"
	EncodingDeflate = "deflate"
	EncodingBrotli  = "br"

	ContentTypeJSON = "application/json"
)

// Credentials policies, named after the fetch API.
const (
	CredentialsOmit       = "omit"
	CredentialsSameOrigin = "same-origin"
	CredentialsInclude    = "include"
)

type Request struct {
	Method      string
	URL         string
	Header      http.Header
	Body        io.Reader
	Credentials string
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

//go:generate mockgen -destination=../mocks/mock_httpclient/fetcher.go -package=mock_httpclient github.com/wundergraph/graphql-go-upload/pkg/httpclient Fetcher

// Fetcher performs a single request. Implementations must abort the request
// when ctx is done.
type Fetcher interface {
	Fetch(ctx context.Context, request *Request) (*Response, error)
}

// FetcherFunc adapts a plain function to a Fetcher.
type FetcherFunc func(ctx context.Context, request *Request) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, request *Request) (*Response, error) {
	return f(ctx, request)
}
