package config_test

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/planetlabs/orcopts/internal/config"
	"github.com/planetlabs/orcopts/internal/datasize"
	"github.com/planetlabs/orcopts/internal/orc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var explicitProperties = map[string]string{
	config.StripeMinSizeKey:                    "13MB",
	config.StripeMaxSizeKey:                    "27MB",
	config.StripeMaxRowsKey:                    "44",
	config.RowGroupMaxRowsKey:                  "11",
	config.DictionaryMaxMemoryKey:              "13MB",
	config.StringStatisticsLimitKey:            "17MB",
	config.MaxCompressionBufferSizeKey:         "19MB",
	config.StreamLayoutTypeKey:                 "BY_STREAM_SIZE",
	config.StripeCacheEnabledKey:               "true",
	config.StripeCacheMaxSizeKey:               "10MB",
	config.StripeCacheModeKey:                  "FOOTER",
	config.CompressionLevelKey:                 "5",
	config.IntegerDictionaryEncodingEnabledKey: "true",
	config.StringDictionaryEncodingEnabledKey:  "false",
	config.StringDictionarySortingEnabledKey:   "false",
	config.FlatMapWriterEnabledKey:             "true",
}

func TestExplicitPropertyMappings(t *testing.T) {
	expected := config.NewWriterConfig().
		SetStripeMinSize(datasize.New(13, datasize.Megabyte)).
		SetStripeMaxSize(datasize.New(27, datasize.Megabyte)).
		SetStripeMaxRowCount(44).
		SetRowGroupMaxRowCount(11).
		SetDictionaryMaxMemory(datasize.New(13, datasize.Megabyte)).
		SetStringStatisticsLimit(datasize.New(17, datasize.Megabyte)).
		SetMaxCompressionBufferSize(datasize.New(19, datasize.Megabyte)).
		SetStreamLayoutType(config.ByStreamSize).
		SetStripeCacheEnabled(true).
		SetStripeCacheMaxSize(datasize.New(10, datasize.Megabyte)).
		SetStripeCacheMode(orc.Footer).
		SetCompressionLevel(5).
		SetIntegerDictionaryEncodingEnabled(true).
		SetStringDictionaryEncodingEnabled(false).
		SetStringDictionarySortingEnabled(false).
		SetFlatMapWriterEnabled(true)

	actual := config.NewWriterConfig()
	require.NoError(t, actual.Bind(explicitProperties))
	assert.Equal(t, expected, actual)

	// every value differs from its default
	defaults := config.NewWriterConfig().Properties()
	for key, value := range explicitProperties {
		assert.NotEqual(t, defaults[key], value, key)
	}
}

func TestKeysMatchProperties(t *testing.T) {
	keys := config.Keys()
	assert.Len(t, keys, 16)
	assert.Len(t, explicitProperties, len(keys))

	seen := map[string]bool{}
	for _, key := range keys {
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
		assert.True(t, config.IsKey(key))
		_, ok := explicitProperties[key]
		assert.True(t, ok, "missing test value for %s", key)
	}
	assert.False(t, config.IsKey("writer.stripe-size"))

	full := config.NewWriterConfig()
	require.NoError(t, full.Bind(explicitProperties))
	assert.Len(t, full.Properties(), len(keys))
}

func TestDefaultProperties(t *testing.T) {
	expected := map[string]string{
		config.StripeMinSizeKey:                    "32MB",
		config.StripeMaxSizeKey:                    "64MB",
		config.StripeMaxRowsKey:                    "10000000",
		config.RowGroupMaxRowsKey:                  "10000",
		config.DictionaryMaxMemoryKey:              "16MB",
		config.StringStatisticsLimitKey:            "64B",
		config.MaxCompressionBufferSizeKey:         "256kB",
		config.StreamLayoutTypeKey:                 "BY_COLUMN_SIZE",
		config.StripeCacheEnabledKey:               "false",
		config.StripeCacheMaxSizeKey:               "8MB",
		config.StripeCacheModeKey:                  "INDEX_AND_FOOTER",
		config.IntegerDictionaryEncodingEnabledKey: "false",
		config.StringDictionaryEncodingEnabledKey:  "true",
		config.StringDictionarySortingEnabledKey:   "true",
		config.FlatMapWriterEnabledKey:             "false",
	}

	assert.Equal(t, expected, config.NewWriterConfig().Properties())
}

func TestPropertiesRoundTrip(t *testing.T) {
	original := config.NewWriterConfig()
	require.NoError(t, original.Bind(explicitProperties))

	copied := config.NewWriterConfig()
	require.NoError(t, copied.Bind(original.Properties()))
	assert.Equal(t, original, copied)

	defaults := config.NewWriterConfig()
	require.NoError(t, copied.Bind(defaults.Properties()))
	level, hasLevel := copied.CompressionLevel()
	assert.True(t, hasLevel, "binding never clears a compression level")
	assert.Equal(t, 5, level)
}

// derived renders each option field under the key that controls it.
func derived(t *testing.T, c *config.WriterConfig) map[string]string {
	options, err := c.WriterOptions()
	require.NoError(t, err)

	fields := map[string]string{
		config.StripeMinSizeKey:                    strconv.Itoa(int(options.FlushPolicy().StripeMinBytes())),
		config.StripeMaxSizeKey:                    strconv.Itoa(int(options.FlushPolicy().StripeMaxBytes())),
		config.StripeMaxRowsKey:                    strconv.Itoa(options.FlushPolicy().StripeMaxRowCount()),
		config.RowGroupMaxRowsKey:                  strconv.Itoa(options.RowGroupMaxRowCount()),
		config.DictionaryMaxMemoryKey:              options.DictionaryMaxMemory().String(),
		config.StringStatisticsLimitKey:            options.MaxStringStatisticsLimit().String(),
		config.MaxCompressionBufferSizeKey:         options.MaxCompressionBufferSize().String(),
		config.StreamLayoutTypeKey:                 options.StreamLayoutFactory().Name(),
		config.CompressionLevelKey:                 "absent",
		config.IntegerDictionaryEncodingEnabledKey: strconv.FormatBool(options.IntegerDictionaryEncodingEnabled()),
		config.StringDictionaryEncodingEnabledKey:  strconv.FormatBool(options.StringDictionaryEncodingEnabled()),
		config.StringDictionarySortingEnabledKey:   strconv.FormatBool(options.StringDictionarySortingEnabled()),
		config.FlatMapWriterEnabledKey:             strconv.FormatBool(options.FlatMapWriterEnabled()),
	}

	cache, hasCache := options.StripeCacheOptions()
	fields[config.StripeCacheEnabledKey] = strconv.FormatBool(hasCache)
	if hasCache {
		fields[config.StripeCacheMaxSizeKey] = cache.MaxSize().String()
		fields[config.StripeCacheModeKey] = cache.Mode().String()
	}

	if level, ok := options.CompressionLevel(); ok {
		fields[config.CompressionLevelKey] = strconv.Itoa(level)
	}
	return fields
}

func changedKeys(before map[string]string, after map[string]string) []string {
	changed := []string{}
	for key, value := range after {
		if before[key] != value {
			changed = append(changed, key)
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			changed = append(changed, key)
		}
	}
	return changed
}

func TestEachPropertyChangesOneField(t *testing.T) {
	cacheKeys := map[string]bool{
		config.StripeCacheEnabledKey: true,
		config.StripeCacheMaxSizeKey: true,
		config.StripeCacheModeKey:    true,
	}

	for _, key := range config.Keys() {
		t.Run(key, func(t *testing.T) {
			baseline := map[string]string{}
			if key == config.StripeCacheMaxSizeKey || key == config.StripeCacheModeKey {
				baseline[config.StripeCacheEnabledKey] = "true"
			}

			before := config.NewWriterConfig()
			require.NoError(t, before.Bind(baseline))

			after := config.NewWriterConfig()
			require.NoError(t, after.Bind(baseline))
			require.NoError(t, after.Bind(map[string]string{key: explicitProperties[key]}))

			assert.Equal(t, []string{key}, changedKeys(before.Properties(), after.Properties()))

			changed := changedKeys(derived(t, before), derived(t, after))
			if key == config.StripeCacheEnabledKey {
				assert.Contains(t, changed, key)
				for _, k := range changed {
					assert.True(t, cacheKeys[k], "unexpected change to %s", k)
				}
				return
			}
			assert.Equal(t, []string{key}, changed)
		})
	}
}

func TestBindErrors(t *testing.T) {
	cases := []struct {
		key     string
		value   string
		err     error
		message string
	}{
		{key: "writer.stripe-size", value: "1MB", err: config.ErrUnknownProperty, message: `unknown property "writer.stripe-size"`},
		{key: config.StripeMinSizeKey, value: "13", err: datasize.ErrInvalidDataSize},
		{key: config.StripeMaxSizeKey, value: "lots", err: datasize.ErrInvalidDataSize},
		{key: config.StripeMaxRowsKey, value: "1.5", err: config.ErrInvalidProperty, message: "is not an integer"},
		{key: config.RowGroupMaxRowsKey, value: "3000000000", err: config.ErrInvalidProperty, message: "out of range"},
		{key: config.StreamLayoutTypeKey, value: "BY_ROW", err: config.ErrInvalidProperty, message: "unknown stream layout type"},
		{key: config.StripeCacheEnabledKey, value: "yes", err: config.ErrInvalidProperty, message: "is not a boolean"},
		{key: config.StripeCacheModeKey, value: "DATA", err: config.ErrInvalidProperty, message: "unknown stripe cache mode"},
		{key: config.CompressionLevelKey, value: "", err: config.ErrInvalidProperty},
		{key: config.FlatMapWriterEnabledKey, value: "1", err: config.ErrInvalidProperty},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("%s (case %d)", c.key, i), func(t *testing.T) {
			cfg := config.NewWriterConfig()
			err := cfg.Bind(map[string]string{c.key: c.value})
			require.Error(t, err)
			assert.ErrorIs(t, err, c.err)

			bindingErr := &config.BindingError{}
			require.True(t, errors.As(err, &bindingErr))
			assert.Equal(t, c.key, bindingErr.Key)
			assert.Equal(t, c.value, bindingErr.Value)

			if c.message != "" {
				assert.ErrorContains(t, err, c.message)
			}

			assert.Equal(t, config.NewWriterConfig(), cfg)
		})
	}
}

func TestBindIsAllOrNothing(t *testing.T) {
	cfg := config.NewWriterConfig()
	err := cfg.Bind(map[string]string{
		config.StripeMinSizeKey:    "1MB",
		config.CompressionLevelKey: "3",
		config.StripeMaxRowsKey:    "many",
	})
	require.ErrorIs(t, err, config.ErrInvalidProperty)

	assert.Equal(t, config.NewWriterConfig(), cfg)
}

func TestBindLenientCaseAndSpace(t *testing.T) {
	cfg := config.NewWriterConfig()
	require.NoError(t, cfg.Bind(map[string]string{
		config.StreamLayoutTypeKey:   "by_stream_size",
		config.StripeCacheModeKey:    "index",
		config.StripeCacheEnabledKey: "TRUE",
		config.StripeMaxRowsKey:      " 42 ",
	}))

	assert.Equal(t, config.ByStreamSize, cfg.StreamLayoutType())
	assert.Equal(t, orc.Index, cfg.StripeCacheMode())
	assert.True(t, cfg.StripeCacheEnabled())
	assert.Equal(t, 42, cfg.StripeMaxRowCount())
}

func TestTrimPrefix(t *testing.T) {
	prefixed := map[string]string{}
	for key, value := range explicitProperties {
		prefixed["hive.orc."+key] = value
	}

	stripped, err := config.TrimPrefix("hive.orc.", prefixed)
	require.NoError(t, err)
	assert.Equal(t, explicitProperties, stripped)

	_, err = config.TrimPrefix("hive.orc.", map[string]string{
		"hive.orc." + config.StripeMaxSizeKey: "2MB",
		config.StripeMinSizeKey:               "1MB",
	})
	assert.ErrorIs(t, err, config.ErrUnknownProperty)

	var bindingErr *config.BindingError
	require.ErrorAs(t, err, &bindingErr)
	assert.Equal(t, config.StripeMinSizeKey, bindingErr.Key)
}
