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

// Package config holds the user-facing writer settings and turns them into
// orc.WriterOptions.
package config

import (
	"fmt"
	"strings"

	"github.com/planetlabs/orcopts/internal/datasize"
	"github.com/planetlabs/orcopts/internal/orc"
)

type StreamLayoutType int

const (
	ByColumnSize StreamLayoutType = iota
	ByStreamSize
)

var streamLayoutTypeNames = map[StreamLayoutType]string{
	ByColumnSize: "BY_COLUMN_SIZE",
	ByStreamSize: "BY_STREAM_SIZE",
}

func StreamLayoutTypes() []StreamLayoutType {
	return []StreamLayoutType{ByColumnSize, ByStreamSize}
}

func (t StreamLayoutType) String() string {
	if name, ok := streamLayoutTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("StreamLayoutType(%d)", int(t))
}

func ParseStreamLayoutType(name string) (StreamLayoutType, error) {
	for _, t := range StreamLayoutTypes() {
		if strings.EqualFold(name, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown stream layout type %q", name)
}

// WriterConfig is the mutable set of writer settings for one session.
// The zero value is not useful, use NewWriterConfig.
type WriterConfig struct {
	stripeMinSize                    datasize.DataSize
	stripeMaxSize                    datasize.DataSize
	stripeMaxRowCount                int
	rowGroupMaxRowCount              int
	dictionaryMaxMemory              datasize.DataSize
	stringStatisticsLimit            datasize.DataSize
	maxCompressionBufferSize         datasize.DataSize
	streamLayoutType                 StreamLayoutType
	stripeCacheEnabled               bool
	stripeCacheMaxSize               datasize.DataSize
	stripeCacheMode                  orc.StripeCacheMode
	compressionLevel                 *int
	integerDictionaryEncodingEnabled bool
	stringDictionaryEncodingEnabled  bool
	stringDictionarySortingEnabled   bool
	flatMapWriterEnabled             bool
}

func NewWriterConfig() *WriterConfig {
	return &WriterConfig{
		stripeMinSize:                    datasize.New(32, datasize.Megabyte),
		stripeMaxSize:                    datasize.New(64, datasize.Megabyte),
		stripeMaxRowCount:                10_000_000,
		rowGroupMaxRowCount:              10_000,
		dictionaryMaxMemory:              datasize.New(16, datasize.Megabyte),
		stringStatisticsLimit:            datasize.New(64, datasize.Byte),
		maxCompressionBufferSize:         datasize.New(256, datasize.Kilobyte),
		streamLayoutType:                 ByColumnSize,
		stripeCacheEnabled:               false,
		stripeCacheMaxSize:               datasize.New(8, datasize.Megabyte),
		stripeCacheMode:                  orc.IndexAndFooter,
		integerDictionaryEncodingEnabled: false,
		stringDictionaryEncodingEnabled:  true,
		stringDictionarySortingEnabled:   true,
		flatMapWriterEnabled:             false,
	}
}

func (c *WriterConfig) StripeMinSize() datasize.DataSize {
	return c.stripeMinSize
}

func (c *WriterConfig) SetStripeMinSize(size datasize.DataSize) *WriterConfig {
	c.stripeMinSize = size
	return c
}

func (c *WriterConfig) StripeMaxSize() datasize.DataSize {
	return c.stripeMaxSize
}

func (c *WriterConfig) SetStripeMaxSize(size datasize.DataSize) *WriterConfig {
	c.stripeMaxSize = size
	return c
}

func (c *WriterConfig) StripeMaxRowCount() int {
	return c.stripeMaxRowCount
}

func (c *WriterConfig) SetStripeMaxRowCount(count int) *WriterConfig {
	c.stripeMaxRowCount = count
	return c
}

func (c *WriterConfig) RowGroupMaxRowCount() int {
	return c.rowGroupMaxRowCount
}

func (c *WriterConfig) SetRowGroupMaxRowCount(count int) *WriterConfig {
	c.rowGroupMaxRowCount = count
	return c
}

func (c *WriterConfig) DictionaryMaxMemory() datasize.DataSize {
	return c.dictionaryMaxMemory
}

func (c *WriterConfig) SetDictionaryMaxMemory(size datasize.DataSize) *WriterConfig {
	c.dictionaryMaxMemory = size
	return c
}

func (c *WriterConfig) StringStatisticsLimit() datasize.DataSize {
	return c.stringStatisticsLimit
}

func (c *WriterConfig) SetStringStatisticsLimit(size datasize.DataSize) *WriterConfig {
	c.stringStatisticsLimit = size
	return c
}

func (c *WriterConfig) MaxCompressionBufferSize() datasize.DataSize {
	return c.maxCompressionBufferSize
}

func (c *WriterConfig) SetMaxCompressionBufferSize(size datasize.DataSize) *WriterConfig {
	c.maxCompressionBufferSize = size
	return c
}

func (c *WriterConfig) StreamLayoutType() StreamLayoutType {
	return c.streamLayoutType
}

func (c *WriterConfig) SetStreamLayoutType(layoutType StreamLayoutType) *WriterConfig {
	c.streamLayoutType = layoutType
	return c
}

func (c *WriterConfig) StripeCacheEnabled() bool {
	return c.stripeCacheEnabled
}

func (c *WriterConfig) SetStripeCacheEnabled(enabled bool) *WriterConfig {
	c.stripeCacheEnabled = enabled
	return c
}

func (c *WriterConfig) StripeCacheMaxSize() datasize.DataSize {
	return c.stripeCacheMaxSize
}

func (c *WriterConfig) SetStripeCacheMaxSize(size datasize.DataSize) *WriterConfig {
	c.stripeCacheMaxSize = size
	return c
}

func (c *WriterConfig) StripeCacheMode() orc.StripeCacheMode {
	return c.stripeCacheMode
}

func (c *WriterConfig) SetStripeCacheMode(mode orc.StripeCacheMode) *WriterConfig {
	c.stripeCacheMode = mode
	return c
}

// CompressionLevel reports false until a level has been set.
func (c *WriterConfig) CompressionLevel() (int, bool) {
	if c.compressionLevel == nil {
		return 0, false
	}
	return *c.compressionLevel, true
}

func (c *WriterConfig) SetCompressionLevel(level int) *WriterConfig {
	c.compressionLevel = &level
	return c
}

func (c *WriterConfig) IntegerDictionaryEncodingEnabled() bool {
	return c.integerDictionaryEncodingEnabled
}

func (c *WriterConfig) SetIntegerDictionaryEncodingEnabled(enabled bool) *WriterConfig {
	c.integerDictionaryEncodingEnabled = enabled
	return c
}

func (c *WriterConfig) StringDictionaryEncodingEnabled() bool {
	return c.stringDictionaryEncodingEnabled
}

func (c *WriterConfig) SetStringDictionaryEncodingEnabled(enabled bool) *WriterConfig {
	c.stringDictionaryEncodingEnabled = enabled
	return c
}

func (c *WriterConfig) StringDictionarySortingEnabled() bool {
	return c.stringDictionarySortingEnabled
}

func (c *WriterConfig) SetStringDictionarySortingEnabled(enabled bool) *WriterConfig {
	c.stringDictionarySortingEnabled = enabled
	return c
}

func (c *WriterConfig) FlatMapWriterEnabled() bool {
	return c.flatMapWriterEnabled
}

func (c *WriterConfig) SetFlatMapWriterEnabled(enabled bool) *WriterConfig {
	c.flatMapWriterEnabled = enabled
	return c
}
