// Package orc holds the options consumed by the stripe writer.
package orc

import (
	"errors"
	"fmt"

	"github.com/planetlabs/orcopts/internal/datasize"
)

const (
	DefaultStripeMinSizeMB            = 32
	DefaultStripeMaxSizeMB            = 64
	DefaultStripeMaxRowCount          = 10_000_000
	DefaultRowGroupMaxRowCount        = 10_000
	DefaultDictionaryMaxMemoryMB      = 16
	DefaultStringStatisticsLimitBytes = 64
	DefaultMaxCompressionBufferKB     = 256
)

var (
	ErrMissingStreamLayout = errors.New("stream layout factory is required")
	ErrInvalidStripeCache  = errors.New("invalid stripe cache options")
)

// FlushPolicy decides when a stripe is complete.
type FlushPolicy struct {
	stripeMinBytes    int32
	stripeMaxBytes    int32
	stripeMaxRowCount int
}

func (p FlushPolicy) StripeMinBytes() int32 {
	return p.stripeMinBytes
}

func (p FlushPolicy) StripeMaxBytes() int32 {
	return p.stripeMaxBytes
}

func (p FlushPolicy) StripeMaxRowCount() int {
	return p.stripeMaxRowCount
}

// WriterOptions is read by the stripe writer for the duration of a session.
// A value is never modified after Build returns it.
type WriterOptions struct {
	flushPolicy                      FlushPolicy
	rowGroupMaxRowCount              int
	dictionaryMaxMemory              datasize.DataSize
	maxStringStatisticsLimit         datasize.DataSize
	maxCompressionBufferSize         datasize.DataSize
	streamLayoutFactory              StreamLayoutFactory
	stripeCacheOptions               *StripeCacheOptions
	compressionLevel                 *int
	integerDictionaryEncodingEnabled bool
	stringDictionaryEncodingEnabled  bool
	stringDictionarySortingEnabled   bool
	flatMapWriterEnabled             bool
}

func (o *WriterOptions) FlushPolicy() FlushPolicy {
	return o.flushPolicy
}

func (o *WriterOptions) RowGroupMaxRowCount() int {
	return o.rowGroupMaxRowCount
}

func (o *WriterOptions) DictionaryMaxMemory() datasize.DataSize {
	return o.dictionaryMaxMemory
}

func (o *WriterOptions) MaxStringStatisticsLimit() datasize.DataSize {
	return o.maxStringStatisticsLimit
}

func (o *WriterOptions) MaxCompressionBufferSize() datasize.DataSize {
	return o.maxCompressionBufferSize
}

func (o *WriterOptions) StreamLayoutFactory() StreamLayoutFactory {
	return o.streamLayoutFactory
}

// StripeCacheOptions reports false when the stripe cache is disabled.
func (o *WriterOptions) StripeCacheOptions() (StripeCacheOptions, bool) {
	if o.stripeCacheOptions == nil {
		return StripeCacheOptions{}, false
	}
	return *o.stripeCacheOptions, true
}

// CompressionLevel reports false when the codec default should be used.
func (o *WriterOptions) CompressionLevel() (int, bool) {
	if o.compressionLevel == nil {
		return 0, false
	}
	return *o.compressionLevel, true
}

func (o *WriterOptions) IntegerDictionaryEncodingEnabled() bool {
	return o.integerDictionaryEncodingEnabled
}

func (o *WriterOptions) StringDictionaryEncodingEnabled() bool {
	return o.stringDictionaryEncodingEnabled
}

func (o *WriterOptions) StringDictionarySortingEnabled() bool {
	return o.stringDictionarySortingEnabled
}

func (o *WriterOptions) FlatMapWriterEnabled() bool {
	return o.flatMapWriterEnabled
}

// Equal compares two options by value.
func (o *WriterOptions) Equal(other *WriterOptions) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.flushPolicy != other.flushPolicy ||
		o.rowGroupMaxRowCount != other.rowGroupMaxRowCount ||
		!o.dictionaryMaxMemory.Equal(other.dictionaryMaxMemory) ||
		!o.maxStringStatisticsLimit.Equal(other.maxStringStatisticsLimit) ||
		!o.maxCompressionBufferSize.Equal(other.maxCompressionBufferSize) ||
		o.integerDictionaryEncodingEnabled != other.integerDictionaryEncodingEnabled ||
		o.stringDictionaryEncodingEnabled != other.stringDictionaryEncodingEnabled ||
		o.stringDictionarySortingEnabled != other.stringDictionarySortingEnabled ||
		o.flatMapWriterEnabled != other.flatMapWriterEnabled {
		return false
	}
	if o.streamLayoutFactory.Name() != other.streamLayoutFactory.Name() {
		return false
	}

	cache, hasCache := o.StripeCacheOptions()
	otherCache, otherHasCache := other.StripeCacheOptions()
	if hasCache != otherHasCache || cache.mode != otherCache.mode || !cache.maxSize.Equal(otherCache.maxSize) {
		return false
	}

	level, hasLevel := o.CompressionLevel()
	otherLevel, otherHasLevel := other.CompressionLevel()
	return hasLevel == otherHasLevel && level == otherLevel
}

func DefaultWriterOptions() *WriterOptions {
	options, err := NewWriterOptionsBuilder().Build()
	if err != nil {
		panic(fmt.Sprintf("default writer options are invalid: %s", err))
	}
	return options
}

// WriterOptionsBuilder collects settings for a WriterOptions value.
// Size coercion happens in Build, so setters never fail.
type WriterOptionsBuilder struct {
	stripeMinSize                    datasize.DataSize
	stripeMaxSize                    datasize.DataSize
	stripeMaxRowCount                int
	rowGroupMaxRowCount              int
	dictionaryMaxMemory              datasize.DataSize
	maxStringStatisticsLimit         datasize.DataSize
	maxCompressionBufferSize         datasize.DataSize
	streamLayoutFactory              StreamLayoutFactory
	stripeCacheOptions               *StripeCacheOptions
	compressionLevel                 *int
	integerDictionaryEncodingEnabled bool
	stringDictionaryEncodingEnabled  bool
	stringDictionarySortingEnabled   bool
	flatMapWriterEnabled             bool
}

func NewWriterOptionsBuilder() *WriterOptionsBuilder {
	return &WriterOptionsBuilder{
		stripeMinSize:                   datasize.New(DefaultStripeMinSizeMB, datasize.Megabyte),
		stripeMaxSize:                   datasize.New(DefaultStripeMaxSizeMB, datasize.Megabyte),
		stripeMaxRowCount:               DefaultStripeMaxRowCount,
		rowGroupMaxRowCount:             DefaultRowGroupMaxRowCount,
		dictionaryMaxMemory:             datasize.New(DefaultDictionaryMaxMemoryMB, datasize.Megabyte),
		maxStringStatisticsLimit:        datasize.New(DefaultStringStatisticsLimitBytes, datasize.Byte),
		maxCompressionBufferSize:        datasize.New(DefaultMaxCompressionBufferKB, datasize.Kilobyte),
		streamLayoutFactory:             ColumnSizeLayoutFactory{},
		stringDictionaryEncodingEnabled: true,
		stringDictionarySortingEnabled:  true,
	}
}

func (b *WriterOptionsBuilder) WithFlushPolicy(stripeMinSize datasize.DataSize, stripeMaxSize datasize.DataSize, stripeMaxRowCount int) *WriterOptionsBuilder {
	b.stripeMinSize = stripeMinSize
	b.stripeMaxSize = stripeMaxSize
	b.stripeMaxRowCount = stripeMaxRowCount
	return b
}

func (b *WriterOptionsBuilder) WithRowGroupMaxRowCount(count int) *WriterOptionsBuilder {
	b.rowGroupMaxRowCount = count
	return b
}

func (b *WriterOptionsBuilder) WithDictionaryMaxMemory(size datasize.DataSize) *WriterOptionsBuilder {
	b.dictionaryMaxMemory = size
	return b
}

func (b *WriterOptionsBuilder) WithMaxStringStatisticsLimit(size datasize.DataSize) *WriterOptionsBuilder {
	b.maxStringStatisticsLimit = size
	return b
}

func (b *WriterOptionsBuilder) WithMaxCompressionBufferSize(size datasize.DataSize) *WriterOptionsBuilder {
	b.maxCompressionBufferSize = size
	return b
}

func (b *WriterOptionsBuilder) WithStreamLayoutFactory(factory StreamLayoutFactory) *WriterOptionsBuilder {
	b.streamLayoutFactory = factory
	return b
}

// WithStripeCacheOptions enables the stripe cache. A nil value disables it.
func (b *WriterOptionsBuilder) WithStripeCacheOptions(options *StripeCacheOptions) *WriterOptionsBuilder {
	if options == nil {
		b.stripeCacheOptions = nil
		return b
	}
	copied := *options
	b.stripeCacheOptions = &copied
	return b
}

// WithCompressionLevel sets an explicit level. A nil value leaves the
// choice to the codec.
func (b *WriterOptionsBuilder) WithCompressionLevel(level *int) *WriterOptionsBuilder {
	if level == nil {
		b.compressionLevel = nil
		return b
	}
	copied := *level
	b.compressionLevel = &copied
	return b
}

func (b *WriterOptionsBuilder) WithIntegerDictionaryEncodingEnabled(enabled bool) *WriterOptionsBuilder {
	b.integerDictionaryEncodingEnabled = enabled
	return b
}

func (b *WriterOptionsBuilder) WithStringDictionaryEncodingEnabled(enabled bool) *WriterOptionsBuilder {
	b.stringDictionaryEncodingEnabled = enabled
	return b
}

func (b *WriterOptionsBuilder) WithStringDictionarySortingEnabled(enabled bool) *WriterOptionsBuilder {
	b.stringDictionarySortingEnabled = enabled
	return b
}

func (b *WriterOptionsBuilder) WithFlatMapWriterEnabled(enabled bool) *WriterOptionsBuilder {
	b.flatMapWriterEnabled = enabled
	return b
}

// Build returns a new WriterOptions. Sizes must be whole byte counts that
// fit in 32 bits.
func (b *WriterOptionsBuilder) Build() (*WriterOptions, error) {
	if b.streamLayoutFactory == nil {
		return nil, ErrMissingStreamLayout
	}

	stripeMinBytes, err := b.stripeMinSize.Int32Bytes()
	if err != nil {
		return nil, fmt.Errorf("stripe min size: %w", err)
	}
	stripeMaxBytes, err := b.stripeMaxSize.Int32Bytes()
	if err != nil {
		return nil, fmt.Errorf("stripe max size: %w", err)
	}

	sizes := []struct {
		name string
		size datasize.DataSize
	}{
		{"dictionary max memory", b.dictionaryMaxMemory},
		{"string statistics limit", b.maxStringStatisticsLimit},
		{"max compression buffer size", b.maxCompressionBufferSize},
	}
	for _, s := range sizes {
		if _, err := s.size.Int32Bytes(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	options := &WriterOptions{
		flushPolicy: FlushPolicy{
			stripeMinBytes:    stripeMinBytes,
			stripeMaxBytes:    stripeMaxBytes,
			stripeMaxRowCount: b.stripeMaxRowCount,
		},
		rowGroupMaxRowCount:              b.rowGroupMaxRowCount,
		dictionaryMaxMemory:              b.dictionaryMaxMemory,
		maxStringStatisticsLimit:         b.maxStringStatisticsLimit,
		maxCompressionBufferSize:         b.maxCompressionBufferSize,
		streamLayoutFactory:              b.streamLayoutFactory,
		integerDictionaryEncodingEnabled: b.integerDictionaryEncodingEnabled,
		stringDictionaryEncodingEnabled:  b.stringDictionaryEncodingEnabled,
		stringDictionarySortingEnabled:   b.stringDictionarySortingEnabled,
		flatMapWriterEnabled:             b.flatMapWriterEnabled,
	}

	if b.stripeCacheOptions != nil {
		cache := *b.stripeCacheOptions
		if !cache.mode.Valid() {
			return nil, fmt.Errorf("%w: unsupported mode %s", ErrInvalidStripeCache, cache.mode)
		}
		if _, err := cache.maxSize.Int32Bytes(); err != nil {
			return nil, fmt.Errorf("%w: max size: %w", ErrInvalidStripeCache, err)
		}
		options.stripeCacheOptions = &cache
	}

	if b.compressionLevel != nil {
		level := *b.compressionLevel
		options.compressionLevel = &level
	}

	return options, nil
}
