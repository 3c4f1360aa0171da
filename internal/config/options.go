package config

import (
	"errors"
	"fmt"

	"github.com/planetlabs/orcopts/internal/orc"
)

var ErrUnsupportedStreamLayout = errors.New("unsupported stream layout type")

func streamLayoutFactory(layoutType StreamLayoutType) (orc.StreamLayoutFactory, error) {
	switch layoutType {
	case ByStreamSize:
		return orc.StreamSizeLayoutFactory{}, nil
	case ByColumnSize:
		return orc.ColumnSizeLayoutFactory{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStreamLayout, layoutType)
	}
}

// ToWriterOptionsBuilder returns a new builder seeded from the config.
// Sizes are checked when the builder's Build is called.
func (c *WriterConfig) ToWriterOptionsBuilder() (*orc.WriterOptionsBuilder, error) {
	factory, err := streamLayoutFactory(c.streamLayoutType)
	if err != nil {
		return nil, err
	}

	builder := orc.NewWriterOptionsBuilder().
		WithFlushPolicy(c.stripeMinSize, c.stripeMaxSize, c.stripeMaxRowCount).
		WithRowGroupMaxRowCount(c.rowGroupMaxRowCount).
		WithDictionaryMaxMemory(c.dictionaryMaxMemory).
		WithMaxStringStatisticsLimit(c.stringStatisticsLimit).
		WithMaxCompressionBufferSize(c.maxCompressionBufferSize).
		WithStreamLayoutFactory(factory).
		WithCompressionLevel(c.compressionLevel).
		WithIntegerDictionaryEncodingEnabled(c.integerDictionaryEncodingEnabled).
		WithStringDictionaryEncodingEnabled(c.stringDictionaryEncodingEnabled).
		WithStringDictionarySortingEnabled(c.stringDictionarySortingEnabled).
		WithFlatMapWriterEnabled(c.flatMapWriterEnabled)

	if c.stripeCacheEnabled {
		cache := orc.NewStripeCacheOptions(c.stripeCacheMode, c.stripeCacheMaxSize)
		builder.WithStripeCacheOptions(&cache)
	}

	return builder, nil
}

// WriterOptions builds a fresh orc.WriterOptions from the current settings.
func (c *WriterConfig) WriterOptions() (*orc.WriterOptions, error) {
	builder, err := c.ToWriterOptionsBuilder()
	if err != nil {
		return nil, err
	}
	options, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid writer config: %w", err)
	}
	return options, nil
}
