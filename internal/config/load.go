package config

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/planetlabs/orcopts/internal/logger"
	"github.com/planetlabs/orcopts/internal/storage"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	FormatProperties = "properties"
	FormatYAML       = "yaml"
	FormatJSON       = "json"
)

var ErrUnknownFormat = errors.New("unknown source format")

//go:embed writer_config.schema.json
var schemaText string

const schemaURL = "https://planetlabs.github.io/orcopts/writer-config.schema.json"

var documentSchema = jsonschema.MustCompileString(schemaURL, schemaText)

type LoadOptions struct {
	// Source is a path or URL. When empty only the environment is read.
	Source string

	// Format is one of properties, yaml, or json. When empty it is
	// inferred from the source extension.
	Format string

	// Prefix is stripped from every key, for example "hive.orc.".
	Prefix string

	// EnvPrefix enables environment overrides such as
	// ORC_WRITER_STRIPE_MIN_SIZE for EnvPrefix "ORC".
	EnvPrefix string

	Logger *zap.Logger
}

func FormatFromName(name string) (string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".properties", ".props":
		return FormatProperties, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: could not infer a format for %q", ErrUnknownFormat, name)
	}
}

func validateDocument(data []byte) error {
	var doc any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse json: %w", err)
	}
	if err := documentSchema.Validate(doc); err != nil {
		return fmt.Errorf("invalid json document: %w", err)
	}
	return nil
}

// Load reads raw writer properties from a source and the environment.
// Keys are returned without the configured prefix and values are left
// unparsed for Bind.
func Load(ctx context.Context, options LoadOptions) (map[string]string, error) {
	log := logger.OrNop(options.Logger)
	v := viper.New()
	var documentKeys []string

	if options.Source != "" {
		format := strings.ToLower(options.Format)
		if format == "" {
			inferred, err := FormatFromName(options.Source)
			if err != nil {
				return nil, err
			}
			format = inferred
		}

		if format != FormatProperties && format != FormatYAML && format != FormatJSON {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, options.Format)
		}

		data, err := storage.ReadAll(ctx, options.Source)
		if err != nil {
			return nil, err
		}
		log.Debug("read property source", zap.String("source", options.Source), zap.String("format", format), zap.Int("bytes", len(data)))

		if format == FormatJSON {
			if err := validateDocument(data); err != nil {
				return nil, fmt.Errorf("trouble reading %s: %w", options.Source, err)
			}
		}

		v.SetConfigType(format)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("trouble reading %s: %w", options.Source, err)
		}
		documentKeys = v.AllKeys()
	}

	if options.EnvPrefix != "" {
		v.SetEnvPrefix(options.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		for _, key := range Keys() {
			if err := v.BindEnv(options.Prefix + key); err != nil {
				return nil, err
			}
		}
	}

	// viper treats a null leaf as unset, so a key like "compression-level: ~"
	// would otherwise vanish without an error
	slices.Sort(documentKeys)
	for _, key := range documentKeys {
		if !v.IsSet(key) {
			return nil, &BindingError{Key: key, Err: fmt.Errorf("%w: value is null", ErrInvalidProperty)}
		}
	}

	raw := map[string]string{}
	for _, key := range v.AllKeys() {
		if !v.IsSet(key) {
			continue
		}
		raw[key] = v.GetString(key)
	}

	props, err := TrimPrefix(strings.ToLower(options.Prefix), raw)
	if err != nil {
		return nil, err
	}
	for key, value := range props {
		log.Debug("resolved property", zap.String("key", key), zap.String("value", value))
	}

	return props, nil
}

// LoadWriterConfig loads properties and binds them onto a default config.
func LoadWriterConfig(ctx context.Context, options LoadOptions) (*WriterConfig, error) {
	props, err := Load(ctx, options)
	if err != nil {
		return nil, err
	}
	config := NewWriterConfig()
	if err := config.Bind(props); err != nil {
		return nil, err
	}
	return config, nil
}
