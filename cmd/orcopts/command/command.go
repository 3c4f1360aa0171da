package command

import (
	"context"
	"fmt"

	"github.com/planetlabs/orcopts/internal/config"
	"go.uber.org/zap"
)

type CLI struct {
	LogLevel string `help:"Log level.  Possible values: ${enum}." enum:"debug, info, warn, error" default:"warn"`

	Describe DescribeCmd `cmd:"" help:"Describe the writer options derived from a property source."`
	Defaults DefaultsCmd `cmd:"" help:"Print the default writer properties."`
	Validate ValidateCmd `cmd:"" help:"Validate a property source."`
	Version  VersionCmd  `cmd:"" help:"Print the version of this program."`
}

type CommandError struct {
	err error
}

func NewCommandError(format string, a ...any) *CommandError {
	return &CommandError{err: fmt.Errorf(format, a...)}
}

func (e *CommandError) Error() string {
	return e.err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.err
}

// SourceFlags are shared by commands that read writer properties.
type SourceFlags struct {
	Source     string            `arg:"" optional:"" name:"source" help:"Path or URL for a property source (.properties, .yaml, or .json)."`
	FormatType string            `help:"Format of the property source.  Inferred from the extension when not set."`
	Prefix     string            `help:"Prefix carried by every property key (e.g. hive.orc.)."`
	EnvPrefix  string            `help:"Read overrides from environment variables with this prefix (e.g. ORC for ORC_WRITER_STRIPE_MIN_SIZE)."`
	Set        map[string]string `help:"Override a property.  May be repeated." placeholder:"KEY=VALUE"`
}

func (f *SourceFlags) sourceName() string {
	if f.Source == "" {
		return "<defaults>"
	}
	return f.Source
}

// properties returns the raw property values with the prefix removed.
// Values from --set take precedence over the source and environment.
func (f *SourceFlags) properties(ctx context.Context, log *zap.Logger) (map[string]string, error) {
	props := map[string]string{}
	if f.Source != "" || f.EnvPrefix != "" {
		loaded, err := config.Load(ctx, config.LoadOptions{
			Source:    f.Source,
			Format:    f.FormatType,
			Prefix:    f.Prefix,
			EnvPrefix: f.EnvPrefix,
			Logger:    log,
		})
		if err != nil {
			return nil, err
		}
		props = loaded
	}

	overrides, err := config.TrimPrefix(f.Prefix, f.Set)
	if err != nil {
		return nil, err
	}
	for key, value := range overrides {
		log.Debug("property override", zap.String("key", key), zap.String("value", value))
		props[key] = value
	}
	return props, nil
}
