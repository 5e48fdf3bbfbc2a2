package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jensneuse/abstractlogger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/wundergraph/graphql-go-upload/pkg/upload"
	"github.com/wundergraph/graphql-go-upload/pkg/uploadlink"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

var sendScalarFlags = []string{
	"endpoint", "query", "query-file", "operation-name", "variables",
	"client-name", "client-version", "get", "include-extensions",
	"timeout", "output", "verbose",
}

type sendConfig struct {
	endpoint          string
	query             string
	queryFile         string
	operationName     string
	variables         string
	vars              []string
	files             []string
	headers           []string
	clientName        string
	clientVersion     string
	get               bool
	includeExtensions bool
	timeout           time.Duration
	output            string
	verbose           bool
}

func newSendCmd(conf *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "send sends one GraphQL operation",
		Long: `send sends one GraphQL operation to the endpoint and prints the response.

Local files are attached with --file at a dot separated path inside the variables.
Giving the same local file at several paths uploads it once.`,
		Example: `send --endpoint http://localhost:4000/graphql \
  --query 'mutation ($avatar: Upload!) { setAvatar(file: $avatar) { url } }' \
  --file avatar=./me.png`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadSendConfig(cmd, conf)
			log, sync, err := newLogger(config.verbose)
			if err != nil {
				return err
			}
			defer sync()
			return runSend(context.Background(), config, cmd.OutOrStdout(), log)
		},
	}

	flags := cmd.Flags()
	flags.String("endpoint", uploadlink.DefaultURI, "GraphQL endpoint")
	flags.String("query", "", "GraphQL document to send")
	flags.String("query-file", "", "file holding the GraphQL document to send")
	flags.String("operation-name", "", "operation to execute if the document holds several")
	flags.String("variables", "", "variables as a JSON object")
	flags.StringArray("var", nil, "set a variable, path=value; JSON values are decoded, anything else is sent as a string")
	flags.StringArray("file", nil, "upload a local file at a variable path, path=localfile")
	flags.StringArray("header", nil, `add a request header, "Name: value"`)
	flags.String("client-name", "", "client name sent to the server")
	flags.String("client-version", "", "client version sent to the server")
	flags.Bool("get", false, "use GET for queries without files")
	flags.Bool("include-extensions", false, "send the extensions field")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("output", outputJSON, "response format, json or yaml")
	flags.Bool("verbose", false, "log requests to stderr")

	for _, name := range sendScalarFlags {
		_ = conf.BindPFlag(name, flags.Lookup(name))
	}

	return cmd
}

func loadSendConfig(cmd *cobra.Command, conf *viper.Viper) sendConfig {
	return sendConfig{
		endpoint:          conf.GetString("endpoint"),
		query:             conf.GetString("query"),
		queryFile:         conf.GetString("query-file"),
		operationName:     conf.GetString("operation-name"),
		variables:         conf.GetString("variables"),
		vars:              stringsFlag(cmd, conf, "var"),
		files:             stringsFlag(cmd, conf, "file"),
		headers:           stringsFlag(cmd, conf, "header"),
		clientName:        conf.GetString("client-name"),
		clientVersion:     conf.GetString("client-version"),
		get:               conf.GetBool("get"),
		includeExtensions: conf.GetBool("include-extensions"),
		timeout:           conf.GetDuration("timeout"),
		output:            conf.GetString("output"),
		verbose:           conf.GetBool("verbose"),
	}
}

// stringsFlag reads a repeatable flag, falling back to a list in the config file.
func stringsFlag(cmd *cobra.Command, conf *viper.Viper, name string) []string {
	if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
		values, _ := cmd.Flags().GetStringArray(name)
		return values
	}
	if conf.IsSet(name) {
		return conf.GetStringSlice(name)
	}
	return nil
}

func newLogger(verbose bool) (abstractlogger.Logger, func(), error) {
	if !verbose {
		return abstractlogger.NoopLogger, func() {}, nil
	}
	logger, err := zap.NewDevelopmentConfig().Build()
	if err != nil {
		return nil, nil, errors.Wrap(err, "create logger")
	}
	return abstractlogger.NewZapLogger(logger, abstractlogger.DebugLevel), func() { _ = logger.Sync() }, nil
}

func runSend(ctx context.Context, config sendConfig, out io.Writer, log abstractlogger.Logger) error {
	if config.output != outputJSON && config.output != outputYAML {
		return errors.Errorf("unknown output format %q", config.output)
	}

	query := config.query
	if config.queryFile != "" {
		data, err := os.ReadFile(config.queryFile)
		if err != nil {
			return errors.Wrap(err, "read query file")
		}
		query = string(data)
	}
	if strings.TrimSpace(query) == "" {
		return errors.New("either --query or --query-file is required")
	}

	variables, err := buildVariables(config.variables, config.vars, config.files)
	if err != nil {
		return err
	}
	headers, err := parseHeaders(config.headers)
	if err != nil {
		return err
	}

	options := []uploadlink.Options{
		uploadlink.WithURI(config.endpoint),
		uploadlink.WithHeaders(headers),
		uploadlink.WithIncludeExtensions(config.includeExtensions),
		uploadlink.WithFetchOptions(uploadlink.FetchOptions{Timeout: config.timeout}),
		uploadlink.WithLogger(log),
	}
	if config.get {
		options = append(options, uploadlink.WithGETForQueries())
	}

	op := &uploadlink.Operation{
		Query:         query,
		OperationName: config.operationName,
		Variables:     variables,
	}
	if config.clientName != "" || config.clientVersion != "" {
		op.Context.ClientAwareness = &uploadlink.ClientAwareness{
			Name:    config.clientName,
			Version: config.clientVersion,
		}
	}

	result, err := uploadlink.New(options...).Execute(ctx, op)
	if result != nil {
		if writeErr := writeResult(out, result, config.output); writeErr != nil {
			return writeErr
		}
	}
	return err
}

// buildVariables merges the --variables object, the --var assignments and
// the --file references. Every local file becomes one FileRef, however many
// paths point at it.
func buildVariables(variablesJSON string, assignments, files []string) (map[string]any, error) {
	doc := strings.TrimSpace(variablesJSON)
	if doc == "" {
		doc = "{}"
	}
	if !gjson.Valid(doc) || !gjson.Parse(doc).IsObject() {
		return nil, errors.New("--variables must be a JSON object")
	}

	var err error
	for _, assignment := range assignments {
		path, value, splitErr := splitAssignment("--var", assignment)
		if splitErr != nil {
			return nil, splitErr
		}
		if gjson.Valid(value) {
			doc, err = sjson.SetRaw(doc, path, value)
		} else {
			doc, err = sjson.Set(doc, path, value)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "--var %s", assignment)
		}
	}

	type fileAssignment struct {
		path  string
		local string
	}
	fileAssignments := make([]fileAssignment, 0, len(files))
	for _, each := range files {
		path, local, splitErr := splitAssignment("--file", each)
		if splitErr != nil {
			return nil, splitErr
		}
		if doc, err = sjson.SetRaw(doc, path, "null"); err != nil {
			return nil, errors.Wrapf(err, "--file %s", each)
		}
		fileAssignments = append(fileAssignments, fileAssignment{path: path, local: local})
	}

	variables := map[string]any{}
	decoder := json.NewDecoder(strings.NewReader(doc))
	decoder.UseNumber()
	if err := decoder.Decode(&variables); err != nil {
		return nil, errors.Wrap(err, "decode variables")
	}

	refs := map[string]*upload.FileRef{}
	for _, file := range fileAssignments {
		key, err := filepath.Abs(file.local)
		if err != nil {
			return nil, errors.Wrapf(err, "--file %s", file.local)
		}
		ref, ok := refs[key]
		if !ok {
			ref = upload.NewFileRef(file.local, "", "")
			refs[key] = ref
		}
		if err := setPath(variables, file.path, ref); err != nil {
			return nil, err
		}
	}

	if len(variables) == 0 {
		return nil, nil
	}
	return variables, nil
}

func splitAssignment(flag, assignment string) (path, value string, err error) {
	i := strings.IndexByte(assignment, '=')
	if i <= 0 {
		return "", "", errors.Errorf("%s %q: expected path=value", flag, assignment)
	}
	return assignment[:i], assignment[i+1:], nil
}

func setPath(variables map[string]any, path string, value any) error {
	keys := strings.Split(path, ".")
	var parent any = variables
	for i, key := range keys {
		last := i == len(keys)-1
		switch node := parent.(type) {
		case map[string]any:
			if last {
				node[key] = value
				return nil
			}
			parent = node[key]
		case []any:
			index, err := strconv.Atoi(key)
			if err != nil || index < 0 || index >= len(node) {
				return errors.Errorf("%s: no index %q", path, key)
			}
			if last {
				node[index] = value
				return nil
			}
			parent = node[index]
		default:
			return errors.Errorf("%s: %q is not inside an object or array", path, key)
		}
	}
	return nil
}

func parseHeaders(headers []string) (map[string]string, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(headers))
	for _, header := range headers {
		i := strings.IndexByte(header, ':')
		if i <= 0 {
			return nil, errors.Errorf("--header %q: expected \"Name: value\"", header)
		}
		out[strings.TrimSpace(header[:i])] = strings.TrimSpace(header[i+1:])
	}
	return out, nil
}

func writeResult(out io.Writer, result *uploadlink.Result, format string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	if format == outputYAML {
		var doc yaml.MapSlice
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return errors.Wrap(err, "convert result to yaml")
		}
		if data, err = yaml.Marshal(doc); err != nil {
			return errors.Wrap(err, "encode result")
		}
		_, err = out.Write(data)
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}
