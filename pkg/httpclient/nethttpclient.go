package httpclient

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
)

var (
	DefaultNetHttpClient = &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 1024,
			TLSHandshakeTimeout: 0 * time.Second,
		},
	}
)

// contentTyper is implemented by bodies that know their own content type,
// multipart forms report their boundary this way.
type contentTyper interface {
	ContentType() string
}

// NetHTTPFetcher is the default Fetcher, backed by net/http.
type NetHTTPFetcher struct {
	Client *http.Client
}

func NewNetHTTPFetcher(client *http.Client) *NetHTTPFetcher {
	if client == nil {
		client = DefaultNetHttpClient
	}
	return &NetHTTPFetcher{Client: client}
}

func (f *NetHTTPFetcher) Fetch(ctx context.Context, request *Request) (*Response, error) {
	client := f.Client
	if client == nil {
		client = DefaultNetHttpClient
	}
	return Do(client, ctx, request)
}

func Do(client *http.Client, ctx context.Context, input *Request) (*Response, error) {
	method := input.Method
	if method == "" {
		method = http.MethodPost
	}

	request, err := http.NewRequestWithContext(ctx, method, input.URL, input.Body)
	if err != nil {
		return nil, err
	}

	for key, values := range input.Header {
		for _, value := range values {
			if value == "" {
				continue
			}
			request.Header.Add(key, value)
		}
	}

	if request.Header.Get(ContentTypeHeader) == "" {
		if typed, ok := input.Body.(contentTyper); ok {
			request.Header.Set(ContentTypeHeader, typed.ContentType())
		}
	}
	if request.Header.Get(AcceptEncodingHeader) == "" {
		request.Header.Set(AcceptEncodingHeader, EncodingGzip)
		request.Header.Add(AcceptEncodingHeader, EncodingDeflate)
		request.Header.Add(AcceptEncodingHeader, EncodingBrotli)
	}

	if input.Credentials == CredentialsOmit && client.Jar != nil {
		withoutJar := *client
		withoutJar.Jar = nil
		client = &withoutJar
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	respReader, err := respBodyReader(response)
	if err != nil {
		return nil, err
	}
	defer respReader.Close()

	body, err := io.ReadAll(respReader)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: response.StatusCode,
		Header:     response.Header,
		Body:       body,
	}, nil
}

func respBodyReader(resp *http.Response) (io.ReadCloser, error) {
	switch resp.Header.Get(ContentEncodingHeader) {
	case EncodingGzip:
		return gzip.NewReader(resp.Body)
	case EncodingDeflate:
		return flate.NewReader(resp.Body), nil
	case EncodingBrotli:
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return resp.Body, nil
	}
}
