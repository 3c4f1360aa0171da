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

// Package datasize represents byte quantities that keep the unit they were
// written with, so "13MB" stays 13MB when rendered back out.
package datasize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/docker/go-units"
)

var (
	ErrInvalidDataSize = errors.New("invalid data size")
	ErrNotIntegral     = errors.New("data size is not a whole number of bytes")
	ErrOverflow        = errors.New("data size overflows the byte count range")
)

type Unit int

const (
	Byte Unit = iota
	Kilobyte
	Megabyte
	Gigabyte
	Terabyte
	Petabyte
)

var unitStrings = []string{"B", "kB", "MB", "GB", "TB", "PB"}

var unitLookup = map[string]Unit{
	"B":  Byte,
	"kB": Kilobyte,
	"MB": Megabyte,
	"GB": Gigabyte,
	"TB": Terabyte,
	"PB": Petabyte,
}

func (u Unit) String() string {
	if u < Byte || int(u) >= len(unitStrings) {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitStrings[u]
}

// Factor returns the number of bytes in one u.
func (u Unit) Factor() float64 {
	return math.Pow(1024, float64(u))
}

type DataSize struct {
	Value float64
	Unit  Unit
}

func New(value float64, unit Unit) DataSize {
	return DataSize{Value: value, Unit: unit}
}

func OfBytes(n int64) DataSize {
	return DataSize{Value: float64(n), Unit: Byte}
}

var pattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([a-zA-Z]+)\s*$`)

// Parse reads a size like "13MB" or "256 kB".
func Parse(str string) (DataSize, error) {
	match := pattern.FindStringSubmatch(str)
	if match == nil {
		return DataSize{}, fmt.Errorf("%w: %q", ErrInvalidDataSize, str)
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil || math.IsInf(value, 0) {
		return DataSize{}, fmt.Errorf("%w: %q", ErrInvalidDataSize, str)
	}

	unit, ok := unitLookup[match[2]]
	if !ok {
		return DataSize{}, fmt.Errorf("%w: unknown unit %q in %q", ErrInvalidDataSize, match[2], str)
	}

	return DataSize{Value: value, Unit: unit}, nil
}

func (d DataSize) Bytes() float64 {
	return d.Value * d.Unit.Factor()
}

func (d DataSize) RoundBytes() int64 {
	return int64(math.Round(d.Bytes()))
}

// ExactBytes returns the byte count, failing if the size has a fractional byte.
func (d DataSize) ExactBytes() (int64, error) {
	bytes := d.Bytes()
	if math.IsNaN(bytes) || math.IsInf(bytes, 0) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDataSize, d)
	}
	// float64(math.MaxInt64) rounds up to 1<<63
	if bytes >= math.MaxInt64 || bytes < math.MinInt64 {
		return 0, fmt.Errorf("%w: %s does not fit in 64 bits", ErrOverflow, d)
	}
	if bytes != math.Trunc(bytes) {
		return 0, fmt.Errorf("%w: %s", ErrNotIntegral, d)
	}
	return int64(bytes), nil
}

// Int32Bytes returns the exact byte count as a 32-bit integer.
func (d DataSize) Int32Bytes() (int32, error) {
	bytes, err := d.ExactBytes()
	if err != nil {
		return 0, err
	}
	if bytes > math.MaxInt32 || bytes < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s is %d bytes", ErrOverflow, d, bytes)
	}
	return int32(bytes), nil
}

func (d DataSize) Equal(other DataSize) bool {
	return d.Bytes() == other.Bytes()
}

func (d DataSize) String() string {
	return strconv.FormatFloat(d.Value, 'f', -1, 64) + d.Unit.String()
}

// HumanSize renders the size with binary (KiB, MiB) suffixes.
func (d DataSize) HumanSize() string {
	return units.BytesSize(d.Bytes())
}

func (d DataSize) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DataSize) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
