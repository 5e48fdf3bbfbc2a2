package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/wundergraph/graphql-go-upload/pkg/upload"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildVariables(t *testing.T) {
	t.Run("assignments", func(t *testing.T) {
		variables, err := buildVariables(`{"input":{"title":"docs"}}`, []string{
			"input.count=3",
			"input.tags=[\"a\",\"b\"]",
			"input.author=jens",
		}, nil)
		require.NoError(t, err)

		data, err := json.Marshal(variables)
		require.NoError(t, err)
		assert.JSONEq(t, `{"input":{"title":"docs","count":3,"tags":["a","b"],"author":"jens"}}`, string(data))
	})

	t.Run("large numbers keep their digits", func(t *testing.T) {
		variables, err := buildVariables(`{"id":9007199254740993}`, nil, nil)
		require.NoError(t, err)
		data, err := json.Marshal(variables)
		require.NoError(t, err)
		assert.Equal(t, `{"id":9007199254740993}`, string(data))
	})

	t.Run("same local file is one reference", func(t *testing.T) {
		path := writeFile(t, "a.txt", "a")
		variables, err := buildVariables(`{"files":[null,null]}`, nil, []string{
			"files.0=" + path,
			"files.1=" + path,
			"single=" + path,
		})
		require.NoError(t, err)

		files := variables["files"].([]any)
		first, ok := files[0].(*upload.FileRef)
		require.True(t, ok)
		assert.Same(t, first, files[1])
		assert.Same(t, first, variables["single"])
		assert.Equal(t, path, first.URI())
	})

	t.Run("different local files", func(t *testing.T) {
		variables, err := buildVariables("", nil, []string{"a=./a.txt", "b=./b.txt"})
		require.NoError(t, err)
		assert.NotSame(t, variables["a"], variables["b"])
	})

	t.Run("no variables", func(t *testing.T) {
		variables, err := buildVariables("", nil, nil)
		require.NoError(t, err)
		assert.Nil(t, variables)
	})

	t.Run("variables must be an object", func(t *testing.T) {
		_, err := buildVariables(`[1]`, nil, nil)
		assert.EqualError(t, err, "--variables must be a JSON object")

		_, err = buildVariables(`{`, nil, nil)
		assert.Error(t, err)
	})

	t.Run("assignment without path", func(t *testing.T) {
		_, err := buildVariables("", []string{"=1"}, nil)
		assert.EqualError(t, err, `--var "=1": expected path=value`)

		_, err = buildVariables("", nil, []string{"./a.txt"})
		assert.EqualError(t, err, `--file "./a.txt": expected path=value`)
	})
}

func TestSetPath(t *testing.T) {
	variables := map[string]any{
		"list": []any{nil, map[string]any{}},
	}
	require.NoError(t, setPath(variables, "list.1.file", "x"))
	assert.Equal(t, map[string]any{"file": "x"}, variables["list"].([]any)[1])

	assert.EqualError(t, setPath(variables, "list.5", "x"), `list.5: no index "5"`)
	assert.EqualError(t, setPath(variables, "list.0.file", "x"), `list.0.file: "file" is not inside an object or array`)
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"Authorization: Bearer token", "X-Trace:abc:def"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer token",
		"X-Trace":       "abc:def",
	}, headers)

	headers, err = parseHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, headers)

	_, err = parseHeaders([]string{"no colon"})
	assert.EqualError(t, err, `--header "no colon": expected "Name: value"`)
}

func TestSendCommand(t *testing.T) {
	t.Run("uploads files", func(t *testing.T) {
		var (
			operations string
			fileMap    string
			content    string
			auth       string
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			operations = r.MultipartForm.Value["operations"][0]
			fileMap = r.MultipartForm.Value["map"][0]
			file, err := r.MultipartForm.File["1"][0].Open()
			assert.NoError(t, err)
			data, _ := io.ReadAll(file)
			_ = file.Close()
			content = string(data)
			_, _ = w.Write([]byte(`{"data":{"upload":{"id":"1"}}}`))
		}))
		defer server.Close()

		path := writeFile(t, "report.csv", "a,b\n")
		out := &bytes.Buffer{}
		cmd := newSendCmd(viper.New())
		cmd.SetOutput(out)
		cmd.SetArgs([]string{
			"--endpoint", server.URL,
			"--query", "mutation ($files: [Upload!]!) { upload(files: $files) { id } }",
			"--variables", `{"files":[null,null]}`,
			"--file", "files.0=" + path,
			"--file", "files.1=" + path,
			"--header", "Authorization: Bearer token",
		})
		require.NoError(t, cmd.Execute())

		assert.Equal(t, "Bearer token", auth)
		assert.Equal(t, `{"1":["variables.files.0","variables.files.1"]}`, fileMap)
		assert.Equal(t, "[null,null]", gjson.Get(operations, "variables.files").Raw)
		assert.Equal(t, "a,b\n", content)
		assert.Equal(t, "{\n  \"data\": {\n    \"upload\": {\n      \"id\": \"1\"\n    }\n  }\n}\n", out.String())
	})

	t.Run("yaml output from config file", func(t *testing.T) {
		var method string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			_, _ = w.Write([]byte(`{"data":{"viewer":{"name":"jens"}}}`))
		}))
		defer server.Close()

		config := writeFile(t, "config.yaml", "endpoint: "+server.URL+"\noutput: yaml\nget: true\n")
		conf := viper.New()
		conf.SetConfigFile(config)
		require.NoError(t, conf.ReadInConfig())

		out := &bytes.Buffer{}
		cmd := newSendCmd(conf)
		cmd.SetOutput(out)
		cmd.SetArgs([]string{"--query", "{ viewer { name } }"})
		require.NoError(t, cmd.Execute())

		assert.Equal(t, http.MethodGet, method)
		assert.Equal(t, "data:\n  viewer:\n    name: jens\n", out.String())
	})

	t.Run("server errors are returned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
		}))
		defer server.Close()

		cmd := newSendCmd(viper.New())
		cmd.SetOutput(&bytes.Buffer{})
		cmd.SetArgs([]string{"--endpoint", server.URL, "--query", "{ a }"})
		assert.EqualError(t, cmd.Execute(), "Response not successful: Received status code 400")
	})

	t.Run("query is required", func(t *testing.T) {
		cmd := newSendCmd(viper.New())
		cmd.SetOutput(&bytes.Buffer{})
		cmd.SetArgs([]string{"--endpoint", "http://localhost"})
		assert.EqualError(t, cmd.Execute(), "either --query or --query-file is required")
	})

	t.Run("unknown output", func(t *testing.T) {
		cmd := newSendCmd(viper.New())
		cmd.SetOutput(&bytes.Buffer{})
		cmd.SetArgs([]string{"--query", "{ a }", "--output", "xml"})
		assert.EqualError(t, cmd.Execute(), `unknown output format "xml"`)
	})
}
