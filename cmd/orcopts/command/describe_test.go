package command_test

import (
	"encoding/json"
	"errors"

	"github.com/planetlabs/orcopts/cmd/orcopts/command"
	"github.com/planetlabs/orcopts/internal/config"
	"github.com/planetlabs/orcopts/internal/datasize"
	"github.com/planetlabs/orcopts/internal/orc"
)

func (s *Suite) describeJSON(args ...string) *command.DescribeInfo {
	_, err := s.run(append([]string{"describe", "--format", "json"}, args...)...)
	s.Require().NoError(err)

	info := &command.DescribeInfo{}
	s.Require().NoError(json.Unmarshal(s.readStdout(), info))
	return info
}

func (s *Suite) TestDescribeDefaults() {
	info := s.describeJSON()

	s.Equal("<defaults>", info.Source)
	s.Equal(config.NewWriterConfig().Properties(), info.Properties)

	options := info.Options
	s.Equal(int32(32*1024*1024), options.StripeMinBytes)
	s.Equal(int32(64*1024*1024), options.StripeMaxBytes)
	s.Equal(10_000_000, options.StripeMaxRowCount)
	s.Equal(10_000, options.RowGroupMaxRowCount)
	s.Equal(int64(16*1024*1024), options.DictionaryMaxMemoryBytes)
	s.Equal(int64(64), options.StringStatisticsLimitBytes)
	s.Equal(int64(256*1024), options.MaxCompressionBufferBytes)
	s.Equal(orc.ColumnSizeLayoutFactory{}.Name(), options.StreamLayout)
	s.Nil(options.StripeCache)
	s.Nil(options.CompressionLevel)
	s.False(options.IntegerDictionaryEncodingEnabled)
	s.True(options.StringDictionaryEncodingEnabled)
	s.True(options.StringDictionarySortingEnabled)
	s.False(options.FlatMapWriterEnabled)

	s.Equal("zstd", info.Parquet.Compression)
	s.Nil(info.Parquet.CompressionLevel)
	s.Equal(int64(10_000), info.Parquet.MaxRowGroupLength)
	s.True(info.Parquet.DictionaryEnabled)
	s.Equal(int64(16*1024*1024), info.Parquet.DictionaryPageSizeLimit)
	s.Equal(int64(256*1024), info.Parquet.DataPageSize)
	s.Equal(int64(64), info.Parquet.MaxStatsSize)
}

func (s *Suite) TestDescribeSource() {
	source := s.writeSource("writer.properties", `
		writer.stripe-min-size=13MB
		writer.stream-layout-type=BY_STREAM_SIZE
		writer.stripe-cache-enabled=true
		writer.stripe-cache-mode=FOOTER
	`)

	info := s.describeJSON(source, "--set", "writer.compression-level=5", "--codec", "gzip")

	s.Equal(source, info.Source)
	s.Equal("13MB", info.Properties[config.StripeMinSizeKey])
	s.Equal("5", info.Properties[config.CompressionLevelKey])

	s.Equal(int32(13*1024*1024), info.Options.StripeMinBytes)
	s.Equal(orc.StreamSizeLayoutFactory{}.Name(), info.Options.StreamLayout)
	s.Require().NotNil(info.Options.StripeCache)
	s.Equal("FOOTER", info.Options.StripeCache.Mode)
	s.Equal([]string{"footer"}, info.Options.StripeCache.Caches)
	s.True(datasize.New(8, datasize.Megabyte).Equal(info.Options.StripeCache.MaxSize))
	s.Equal(int64(8*1024*1024), info.Options.StripeCache.MaxBytes)
	s.Require().NotNil(info.Options.CompressionLevel)
	s.Equal(5, *info.Options.CompressionLevel)

	s.Equal("gzip", info.Parquet.Compression)
	s.Require().NotNil(info.Parquet.CompressionLevel)
	s.Equal(5, *info.Parquet.CompressionLevel)
}

func (s *Suite) TestDescribeSetOverridesSource() {
	source := s.writeSource("writer.yaml", `
		writer:
		  stripe-max-rows: 44
	`)

	info := s.describeJSON(source, "--set", "writer.stripe-max-rows=55")
	s.Equal(55, info.Options.StripeMaxRowCount)
}

func (s *Suite) TestDescribePrefixAndEnv() {
	s.T().Setenv("ORCOPTS_HIVE_ORC_WRITER_ROW_GROUP_MAX_ROWS", "12")
	source := s.writeSource("hive.properties", `
		hive.orc.writer.stripe-max-rows=44
	`)

	info := s.describeJSON(source, "--prefix", "hive.orc.", "--env-prefix", "ORCOPTS", "--set", "hive.orc.writer.flat-map-writer-enabled=true")
	s.Equal(44, info.Options.StripeMaxRowCount)
	s.Equal(12, info.Options.RowGroupMaxRowCount)
	s.True(info.Options.FlatMapWriterEnabled)
}

func (s *Suite) TestDescribeStripeCache() {
	info := s.describeJSON("--set", "writer.stripe-cache-enabled=true", "--set", "writer.stripe-cache-max-size=1.5MB")

	s.Require().NotNil(info.Options.StripeCache)
	s.Equal("INDEX_AND_FOOTER", info.Options.StripeCache.Mode)
	s.Equal([]string{"index", "footer"}, info.Options.StripeCache.Caches)
	s.Equal("1.5MB", info.Options.StripeCache.MaxSize.String())
	s.Equal(int64(1536*1024), info.Options.StripeCache.MaxBytes)

	_, err := s.run("describe", "--set", "writer.stripe-cache-enabled=true", "--set", "writer.stripe-cache-mode=INDEX")
	s.Require().NoError(err)
	s.Contains(string(s.readStdout()), "INDEX (index), ")
}

func (s *Suite) TestDescribeSetRequiresPrefix() {
	_, err := s.run("describe", "--prefix", "hive.orc.", "--set", "writer.stripe-max-rows=5")
	s.Require().Error(err)
	s.ErrorIs(err, config.ErrUnknownProperty)
}

func (s *Suite) TestDescribeHttp() {
	s.writeSource("remote.properties", `
		writer.row-group-max-rows=7
	`)

	info := s.describeJSON(s.server.URL + "/remote.properties")
	s.Equal(7, info.Options.RowGroupMaxRowCount)
	s.Equal(int64(7), info.Parquet.MaxRowGroupLength)
}

func (s *Suite) TestDescribeText() {
	_, err := s.run("describe", "--set", "writer.compression-level=3")
	s.Require().NoError(err)

	output := string(s.readStdout())
	s.Contains(output, "Writer options from <defaults>")
	s.Contains(output, config.StripeMinSizeKey)
	s.Contains(output, "33554432 bytes (32MiB)")
	s.Contains(output, "BY_COLUMN_SIZE")
	s.Contains(output, "column-size")
	s.Contains(output, "Parquet writer properties (zstd)")
	s.Contains(output, "compression level")
}

func (s *Suite) TestDescribeErrors() {
	cases := []struct {
		name     string
		args     []string
		expected error
	}{
		{
			name:     "unknown property",
			args:     []string{"describe", "--set", "writer.stripe-size=13MB"},
			expected: config.ErrUnknownProperty,
		},
		{
			name:     "invalid value",
			args:     []string{"describe", "--set", "writer.stripe-cache-mode=BOTH"},
			expected: config.ErrInvalidProperty,
		},
		{
			name:     "unknown format",
			args:     []string{"describe", "writer.conf"},
			expected: config.ErrUnknownFormat,
		},
	}

	for _, c := range cases {
		s.Run(c.name, func() {
			_, err := s.run(c.args...)
			s.Require().Error(err)

			var commandErr *command.CommandError
			s.True(errors.As(err, &commandErr))
			s.ErrorIs(err, c.expected)
		})
	}
}

func (s *Suite) TestDescribeOversizedStripe() {
	_, err := s.run("describe", "--set", "writer.stripe-max-size=4GB")
	s.Require().Error(err)
	s.ErrorContains(err, "invalid writer config")
}
