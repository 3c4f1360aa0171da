// Copyright 2023 Planet Labs PBC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v16/parquet"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/planetlabs/orcopts/internal/config"
	"github.com/planetlabs/orcopts/internal/datasize"
	"github.com/planetlabs/orcopts/internal/orc"
	"github.com/planetlabs/orcopts/internal/pqutil"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type DescribeCmd struct {
	SourceFlags `embed:""`
	Codec       string `help:"Parquet codec used for the mapped writer properties.  Possible values: ${enum}." enum:"uncompressed, snappy, gzip, brotli, zstd, lz4" default:"zstd"`
	Format      string `help:"Report format.  Possible values: ${enum}." enum:"text, json" default:"text"`
	Unpretty    bool   `help:"No newlines or indentation in the JSON output."`
}

const (
	ColProperty = "Property"
	ColValue    = "Value"
	ColOption   = "Writer Option"
)

func (c *DescribeCmd) Run(log *zap.Logger) error {
	props, err := c.properties(context.Background(), log)
	if err != nil {
		return NewCommandError("trouble loading properties from %s: %w", c.sourceName(), err)
	}

	writerConfig := config.NewWriterConfig()
	if err := writerConfig.Bind(props); err != nil {
		return NewCommandError("trouble binding properties from %s: %w", c.sourceName(), err)
	}

	options, err := writerConfig.WriterOptions()
	if err != nil {
		return NewCommandError("%w", err)
	}

	codec, err := pqutil.GetCompression(c.Codec)
	if err != nil {
		return NewCommandError("%w", err)
	}

	info := &DescribeInfo{
		Source:     c.sourceName(),
		Properties: writerConfig.Properties(),
		Options:    describeOptions(options),
		Parquet:    describeParquet(c.Codec, options, pqutil.WriterProperties(options, codec)),
	}
	log.Debug("described writer options", zap.String("source", info.Source), zap.Int("properties", len(props)))

	if c.Format == "json" {
		return c.formatJSON(info)
	}
	return c.formatText(info)
}

type DescribeInfo struct {
	Source     string            `json:"source"`
	Properties map[string]string `json:"properties"`
	Options    *OptionsInfo      `json:"options"`
	Parquet    *ParquetInfo      `json:"parquet"`
}

type OptionsInfo struct {
	StripeMinBytes                   int32            `json:"stripeMinBytes"`
	StripeMaxBytes                   int32            `json:"stripeMaxBytes"`
	StripeMaxRowCount                int              `json:"stripeMaxRowCount"`
	RowGroupMaxRowCount              int              `json:"rowGroupMaxRowCount"`
	DictionaryMaxMemoryBytes         int64            `json:"dictionaryMaxMemoryBytes"`
	StringStatisticsLimitBytes       int64            `json:"stringStatisticsLimitBytes"`
	MaxCompressionBufferBytes        int64            `json:"maxCompressionBufferBytes"`
	StreamLayout                     string           `json:"streamLayout"`
	StripeCache                      *StripeCacheInfo `json:"stripeCache,omitempty"`
	CompressionLevel                 *int             `json:"compressionLevel,omitempty"`
	IntegerDictionaryEncodingEnabled bool             `json:"integerDictionaryEncodingEnabled"`
	StringDictionaryEncodingEnabled  bool             `json:"stringDictionaryEncodingEnabled"`
	StringDictionarySortingEnabled   bool             `json:"stringDictionarySortingEnabled"`
	FlatMapWriterEnabled             bool             `json:"flatMapWriterEnabled"`
}

type StripeCacheInfo struct {
	Mode     string            `json:"mode"`
	Caches   []string          `json:"caches"`
	MaxSize  datasize.DataSize `json:"maxSize"`
	MaxBytes int64             `json:"maxBytes"`
}

type ParquetInfo struct {
	Compression             string `json:"compression"`
	CompressionLevel        *int   `json:"compressionLevel,omitempty"`
	MaxRowGroupLength       int64  `json:"maxRowGroupLength"`
	DictionaryEnabled       bool   `json:"dictionaryEnabled"`
	DictionaryPageSizeLimit int64  `json:"dictionaryPageSizeLimit"`
	DataPageSize            int64  `json:"dataPageSize"`
	MaxStatsSize            int64  `json:"maxStatsSize"`
}

func describeOptions(options *orc.WriterOptions) *OptionsInfo {
	flushPolicy := options.FlushPolicy()
	info := &OptionsInfo{
		StripeMinBytes:                   flushPolicy.StripeMinBytes(),
		StripeMaxBytes:                   flushPolicy.StripeMaxBytes(),
		StripeMaxRowCount:                flushPolicy.StripeMaxRowCount(),
		RowGroupMaxRowCount:              options.RowGroupMaxRowCount(),
		DictionaryMaxMemoryBytes:         options.DictionaryMaxMemory().RoundBytes(),
		StringStatisticsLimitBytes:       options.MaxStringStatisticsLimit().RoundBytes(),
		MaxCompressionBufferBytes:        options.MaxCompressionBufferSize().RoundBytes(),
		StreamLayout:                     options.StreamLayoutFactory().Name(),
		IntegerDictionaryEncodingEnabled: options.IntegerDictionaryEncodingEnabled(),
		StringDictionaryEncodingEnabled:  options.StringDictionaryEncodingEnabled(),
		StringDictionarySortingEnabled:   options.StringDictionarySortingEnabled(),
		FlatMapWriterEnabled:             options.FlatMapWriterEnabled(),
	}

	if cache, ok := options.StripeCacheOptions(); ok {
		caches := []string{}
		if cache.Mode().HasIndex() {
			caches = append(caches, "index")
		}
		if cache.Mode().HasFooter() {
			caches = append(caches, "footer")
		}
		info.StripeCache = &StripeCacheInfo{
			Mode:     cache.Mode().String(),
			Caches:   caches,
			MaxSize:  cache.MaxSize(),
			MaxBytes: cache.MaxSize().RoundBytes(),
		}
	}
	if level, ok := options.CompressionLevel(); ok {
		info.CompressionLevel = &level
	}
	return info
}

func describeParquet(codecName string, options *orc.WriterOptions, props *parquet.WriterProperties) *ParquetInfo {
	// an empty column path resolves to the default column properties
	info := &ParquetInfo{
		Compression:             codecName,
		MaxRowGroupLength:       props.MaxRowGroupLength(),
		DictionaryEnabled:       props.DictionaryEnabledFor(""),
		DictionaryPageSizeLimit: props.DictionaryPageSizeLimit(),
		DataPageSize:            props.DataPageSize(),
		MaxStatsSize:            props.MaxStatsSizeFor(""),
	}
	if _, ok := options.CompressionLevel(); ok {
		level := props.CompressionLevelFor("")
		info.CompressionLevel = &level
	}
	return info
}

func (c *DescribeCmd) formatText(info *DescribeInfo) error {
	out := os.Stdout
	width := 0
	if term.IsTerminal(int(out.Fd())) {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil {
			width = w
		}
	}

	options := info.Options
	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("Writer options from %s", info.Source))
	tbl.AppendHeader(table.Row{ColProperty, ColValue, ColOption})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Name: ColOption, WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
	})

	appendRow := func(key string, option string) {
		value, ok := info.Properties[key]
		if !ok {
			value = text.Faint.Sprint("unset")
		}
		tbl.AppendRow(table.Row{key, value, option})
	}

	appendRow(config.StripeMinSizeKey, describeBytes(int64(options.StripeMinBytes)))
	appendRow(config.StripeMaxSizeKey, describeBytes(int64(options.StripeMaxBytes)))
	appendRow(config.StripeMaxRowsKey, strconv.Itoa(options.StripeMaxRowCount))
	appendRow(config.RowGroupMaxRowsKey, strconv.Itoa(options.RowGroupMaxRowCount))
	appendRow(config.DictionaryMaxMemoryKey, describeBytes(options.DictionaryMaxMemoryBytes))
	appendRow(config.StringStatisticsLimitKey, describeBytes(options.StringStatisticsLimitBytes))
	appendRow(config.MaxCompressionBufferSizeKey, describeBytes(options.MaxCompressionBufferBytes))
	appendRow(config.StreamLayoutTypeKey, options.StreamLayout)

	cacheOption := "disabled"
	if options.StripeCache != nil {
		cacheOption = fmt.Sprintf("%s (%s), %s", options.StripeCache.Mode, strings.Join(options.StripeCache.Caches, " and "), describeBytes(options.StripeCache.MaxBytes))
	}
	appendRow(config.StripeCacheEnabledKey, cacheOption)
	appendRow(config.StripeCacheMaxSizeKey, "")
	appendRow(config.StripeCacheModeKey, "")

	levelOption := "codec default"
	if options.CompressionLevel != nil {
		levelOption = strconv.Itoa(*options.CompressionLevel)
	}
	appendRow(config.CompressionLevelKey, levelOption)
	appendRow(config.IntegerDictionaryEncodingEnabledKey, enabledString(options.IntegerDictionaryEncodingEnabled))
	appendRow(config.StringDictionaryEncodingEnabledKey, enabledString(options.StringDictionaryEncodingEnabled))
	appendRow(config.StringDictionarySortingEnabledKey, enabledString(options.StringDictionarySortingEnabled))
	appendRow(config.FlatMapWriterEnabledKey, enabledString(options.FlatMapWriterEnabled))

	parquetTable := table.NewWriter()
	parquetTable.SetTitle(fmt.Sprintf("Parquet writer properties (%s)", info.Parquet.Compression))
	if info.Parquet.CompressionLevel != nil {
		parquetTable.AppendRow(table.Row{"compression level", *info.Parquet.CompressionLevel})
	}
	parquetTable.AppendRow(table.Row{"max row group length", info.Parquet.MaxRowGroupLength})
	parquetTable.AppendRow(table.Row{"dictionary", enabledString(info.Parquet.DictionaryEnabled)})
	parquetTable.AppendRow(table.Row{"dictionary page size limit", describeBytes(info.Parquet.DictionaryPageSizeLimit)})
	parquetTable.AppendRow(table.Row{"data page size", describeBytes(info.Parquet.DataPageSize)})
	parquetTable.AppendRow(table.Row{"max stats size", describeBytes(info.Parquet.MaxStatsSize)})

	for _, t := range []table.Writer{tbl, parquetTable} {
		if width > 0 {
			t.SetAllowedRowLength(width)
		}
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(out)
		t.Render()
	}

	return nil
}

func (c *DescribeCmd) formatJSON(info *DescribeInfo) error {
	encoder := json.NewEncoder(os.Stdout)
	if !c.Unpretty {
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
	}
	if err := encoder.Encode(info); err != nil {
		return NewCommandError("failed to encode writer options: %w", err)
	}

	return nil
}

func describeBytes(n int64) string {
	return fmt.Sprintf("%d bytes (%s)", n, datasize.OfBytes(n).HumanSize())
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
