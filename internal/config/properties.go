package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/planetlabs/orcopts/internal/datasize"
	"github.com/planetlabs/orcopts/internal/orc"
)

const (
	StripeMinSizeKey                    = "writer.stripe-min-size"
	StripeMaxSizeKey                    = "writer.stripe-max-size"
	StripeMaxRowsKey                    = "writer.stripe-max-rows"
	RowGroupMaxRowsKey                  = "writer.row-group-max-rows"
	DictionaryMaxMemoryKey              = "writer.dictionary-max-memory"
	StringStatisticsLimitKey            = "writer.string-statistics-limit"
	MaxCompressionBufferSizeKey         = "writer.max-compression-buffer-size"
	StreamLayoutTypeKey                 = "writer.stream-layout-type"
	StripeCacheEnabledKey               = "writer.stripe-cache-enabled"
	StripeCacheMaxSizeKey               = "writer.stripe-cache-max-size"
	StripeCacheModeKey                  = "writer.stripe-cache-mode"
	CompressionLevelKey                 = "writer.compression-level"
	IntegerDictionaryEncodingEnabledKey = "writer.integer-dictionary-encoding-enabled"
	StringDictionaryEncodingEnabledKey  = "writer.string-dictionary-encoding-enabled"
	StringDictionarySortingEnabledKey   = "writer.string-dictionary-sorting-enabled"
	FlatMapWriterEnabledKey             = "writer.flat-map-writer-enabled"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrInvalidProperty = errors.New("invalid property value")
)

// BindingError reports the property that could not be applied.
type BindingError struct {
	Key   string
	Value string
	Err   error
}

func (e *BindingError) Error() string {
	if errors.Is(e.Err, ErrUnknownProperty) {
		return fmt.Sprintf("unknown property %q", e.Key)
	}
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Key, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

type property struct {
	key string
	// parse validates a raw value and returns a setter that applies it
	parse func(value string) (func(*WriterConfig), error)
	// format renders the current value, false when the field is unset
	format func(*WriterConfig) (string, bool)
}

func sizeProperty(key string, get func(*WriterConfig) datasize.DataSize, set func(*WriterConfig, datasize.DataSize) *WriterConfig) property {
	return property{
		key: key,
		parse: func(value string) (func(*WriterConfig), error) {
			var size datasize.DataSize
			if err := size.UnmarshalText([]byte(value)); err != nil {
				return nil, err
			}
			return func(c *WriterConfig) { set(c, size) }, nil
		},
		format: func(c *WriterConfig) (string, bool) {
			return get(c).String(), true
		},
	}
}

func intProperty(key string, get func(*WriterConfig) int, set func(*WriterConfig, int) *WriterConfig) property {
	return property{
		key: key,
		parse: func(value string) (func(*WriterConfig), error) {
			n, err := parseInt(value)
			if err != nil {
				return nil, err
			}
			return func(c *WriterConfig) { set(c, n) }, nil
		},
		format: func(c *WriterConfig) (string, bool) {
			return strconv.Itoa(get(c)), true
		},
	}
}

func boolProperty(key string, get func(*WriterConfig) bool, set func(*WriterConfig, bool) *WriterConfig) property {
	return property{
		key: key,
		parse: func(value string) (func(*WriterConfig), error) {
			b, err := parseBool(value)
			if err != nil {
				return nil, err
			}
			return func(c *WriterConfig) { set(c, b) }, nil
		},
		format: func(c *WriterConfig) (string, bool) {
			return strconv.FormatBool(get(c)), true
		},
	}
}

func parseInt(value string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%s is out of range for a 32-bit integer", value)
		}
		return 0, fmt.Errorf("%q is not an integer", value)
	}
	return int(n), nil
}

func parseBool(value string) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "true") {
		return true, nil
	}
	if strings.EqualFold(trimmed, "false") {
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", value)
}

var properties = []property{
	sizeProperty(StripeMinSizeKey, (*WriterConfig).StripeMinSize, (*WriterConfig).SetStripeMinSize),
	sizeProperty(StripeMaxSizeKey, (*WriterConfig).StripeMaxSize, (*WriterConfig).SetStripeMaxSize),
	intProperty(StripeMaxRowsKey, (*WriterConfig).StripeMaxRowCount, (*WriterConfig).SetStripeMaxRowCount),
	intProperty(RowGroupMaxRowsKey, (*WriterConfig).RowGroupMaxRowCount, (*WriterConfig).SetRowGroupMaxRowCount),
	sizeProperty(DictionaryMaxMemoryKey, (*WriterConfig).DictionaryMaxMemory, (*WriterConfig).SetDictionaryMaxMemory),
	sizeProperty(StringStatisticsLimitKey, (*WriterConfig).StringStatisticsLimit, (*WriterConfig).SetStringStatisticsLimit),
	sizeProperty(MaxCompressionBufferSizeKey, (*WriterConfig).MaxCompressionBufferSize, (*WriterConfig).SetMaxCompressionBufferSize),
	{
		key: StreamLayoutTypeKey,
		parse: func(value string) (func(*WriterConfig), error) {
			layoutType, err := ParseStreamLayoutType(strings.TrimSpace(value))
			if err != nil {
				return nil, err
			}
			return func(c *WriterConfig) { c.SetStreamLayoutType(layoutType) }, nil
		},
		format: func(c *WriterConfig) (string, bool) {
			return c.StreamLayoutType().String(), true
		},
	},
	boolProperty(StripeCacheEnabledKey, (*WriterConfig).StripeCacheEnabled, (*WriterConfig).SetStripeCacheEnabled),
	sizeProperty(StripeCacheMaxSizeKey, (*WriterConfig).StripeCacheMaxSize, (*WriterConfig).SetStripeCacheMaxSize),
	{
		key: StripeCacheModeKey,
		parse: func(value string) (func(*WriterConfig), error) {
			mode, err := orc.ParseStripeCacheMode(strings.TrimSpace(value))
			if err != nil {
				return nil, err
			}
			return func(c *WriterConfig) { c.SetStripeCacheMode(mode) }, nil
		},
		format: func(c *WriterConfig) (string, bool) {
			return c.StripeCacheMode().String(), true
		},
	},
	{
		key: CompressionLevelKey,
		parse: func(value string) (func(*WriterConfig), error) {
			level, err := parseInt(value)
			if err != nil {
				return nil, err
			}
			return func(c *WriterConfig) { c.SetCompressionLevel(level) }, nil
		},
		format: func(c *WriterConfig) (string, bool) {
			level, ok := c.CompressionLevel()
			if !ok {
				return "", false
			}
			return strconv.Itoa(level), true
		},
	},
	boolProperty(IntegerDictionaryEncodingEnabledKey, (*WriterConfig).IntegerDictionaryEncodingEnabled, (*WriterConfig).SetIntegerDictionaryEncodingEnabled),
	boolProperty(StringDictionaryEncodingEnabledKey, (*WriterConfig).StringDictionaryEncodingEnabled, (*WriterConfig).SetStringDictionaryEncodingEnabled),
	boolProperty(StringDictionarySortingEnabledKey, (*WriterConfig).StringDictionarySortingEnabled, (*WriterConfig).SetStringDictionarySortingEnabled),
	boolProperty(FlatMapWriterEnabledKey, (*WriterConfig).FlatMapWriterEnabled, (*WriterConfig).SetFlatMapWriterEnabled),
}

var propertyLookup = func() map[string]property {
	lookup := make(map[string]property, len(properties))
	for _, p := range properties {
		lookup[p.key] = p
	}
	return lookup
}()

// Keys lists every supported property key.
func Keys() []string {
	keys := make([]string, len(properties))
	for i, p := range properties {
		keys[i] = p.key
	}
	return keys
}

func IsKey(key string) bool {
	_, ok := propertyLookup[key]
	return ok
}

// Bind applies string properties to the config. All values are parsed
// before any field changes, so a failed Bind leaves the config untouched.
func (c *WriterConfig) Bind(props map[string]string) error {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	setters := make([]func(*WriterConfig), 0, len(keys))
	for _, key := range keys {
		value := props[key]
		p, ok := propertyLookup[key]
		if !ok {
			return &BindingError{Key: key, Value: value, Err: ErrUnknownProperty}
		}
		set, err := p.parse(value)
		if err != nil {
			return &BindingError{Key: key, Value: value, Err: fmt.Errorf("%w: %w", ErrInvalidProperty, err)}
		}
		setters = append(setters, set)
	}

	for _, set := range setters {
		set(c)
	}
	return nil
}

// TrimPrefix removes a common prefix such as "hive.orc." from every key.
// A key without the prefix is reported as unknown.
func TrimPrefix(prefix string, props map[string]string) (map[string]string, error) {
	stripped := make(map[string]string, len(props))
	for key, value := range props {
		name, ok := strings.CutPrefix(key, prefix)
		if !ok {
			return nil, &BindingError{Key: key, Value: value, Err: ErrUnknownProperty}
		}
		stripped[name] = value
	}
	return stripped, nil
}

// Properties renders the config as property strings. An unset compression
// level is left out.
func (c *WriterConfig) Properties() map[string]string {
	props := make(map[string]string, len(properties))
	for _, p := range properties {
		if value, ok := p.format(c); ok {
			props[p.key] = value
		}
	}
	return props
}
