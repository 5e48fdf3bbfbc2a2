package uploadlink

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/tidwall/gjson"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/wundergraph/graphql-go-upload/pkg/httpclient"
	"github.com/wundergraph/graphql-go-upload/pkg/serialize"
)

// SerializationError is returned when the payload or a query parameter
// cannot be encoded. No request is sent in that case.
type SerializationError = serialize.Error

// Result is a GraphQL response. Response is the HTTP response it was read
// from, with status code and headers.
type Result struct {
	Data       json.RawMessage      `json:"data,omitempty"`
	Errors     gqlerror.List        `json:"errors,omitempty"`
	Extensions map[string]any       `json:"extensions,omitempty"`
	Response   *httpclient.Response `json:"-"`
}

// ServerError is returned for non success status codes and for responses
// that are neither data nor errors. Result is set when the body was a
// GraphQL result.
type ServerError struct {
	StatusCode int
	Body       []byte
	Result     *Result
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Partial reports whether the server returned data next to errors. The
// result is delivered before the error in that case.
func (e *ServerError) Partial() bool {
	if e.Result == nil || len(e.Result.Errors) == 0 {
		return false
	}
	data := gjson.ParseBytes(e.Result.Data)
	return data.Exists() && data.Type != gjson.Null
}

// GraphQLErrorMessages returns the messages of the GraphQL errors contained
// in the response body.
func (e *ServerError) GraphQLErrorMessages() []string {
	var messages []string
	_, _ = jsonparser.ArrayEach(e.Body, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err != nil || dataType != jsonparser.Object {
			return
		}
		message, err := jsonparser.GetString(value, "message")
		if err != nil {
			return
		}
		messages = append(messages, message)
	}, "errors")
	return messages
}

// ServerParseError is returned when a successful response is not JSON.
type ServerParseError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ServerParseError) Error() string {
	return fmt.Sprintf("unable to parse server response: %s", e.Err)
}

func (e *ServerParseError) Unwrap() error {
	return e.Err
}

func parseAndCheckHTTPResponse(response *httpclient.Response, operationName string) (*Result, error) {
	if response.StatusCode >= 300 {
		serverErr := &ServerError{
			StatusCode: response.StatusCode,
			Body:       response.Body,
			Message:    fmt.Sprintf("Response not successful: Received status code %d", response.StatusCode),
		}
		if gjson.ValidBytes(response.Body) && gjson.ParseBytes(response.Body).IsObject() {
			result := &Result{Response: response}
			if err := json.Unmarshal(response.Body, result); err == nil {
				serverErr.Result = result
			}
		}
		return nil, serverErr
	}

	if !gjson.ValidBytes(response.Body) {
		return nil, &ServerParseError{
			StatusCode: response.StatusCode,
			Body:       response.Body,
			Err:        fmt.Errorf("invalid JSON: %q", truncate(response.Body, 64)),
		}
	}

	parsed := gjson.ParseBytes(response.Body)
	if !parsed.IsObject() || (!parsed.Get("data").Exists() && !parsed.Get("errors").Exists()) {
		return nil, &ServerError{
			StatusCode: response.StatusCode,
			Body:       response.Body,
			Message:    fmt.Sprintf("Server response was missing for query '%s'.", operationName),
		}
	}

	result := &Result{Response: response}
	if err := json.Unmarshal(response.Body, result); err != nil {
		return nil, &ServerParseError{
			StatusCode: response.StatusCode,
			Body:       response.Body,
			Err:        err,
		}
	}
	return result, nil
}

func truncate(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
