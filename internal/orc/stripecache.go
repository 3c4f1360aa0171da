package orc

import (
	"fmt"
	"strings"

	"github.com/planetlabs/orcopts/internal/datasize"
)

// StripeCacheMode selects which stripe metadata is kept in the stripe cache.
type StripeCacheMode int

const (
	Index StripeCacheMode = iota
	Footer
	IndexAndFooter
)

var stripeCacheModeNames = map[StripeCacheMode]string{
	Index:          "INDEX",
	Footer:         "FOOTER",
	IndexAndFooter: "INDEX_AND_FOOTER",
}

func StripeCacheModes() []StripeCacheMode {
	return []StripeCacheMode{Index, Footer, IndexAndFooter}
}

func (m StripeCacheMode) String() string {
	if name, ok := stripeCacheModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("StripeCacheMode(%d)", int(m))
}

func (m StripeCacheMode) Valid() bool {
	_, ok := stripeCacheModeNames[m]
	return ok
}

func (m StripeCacheMode) HasIndex() bool {
	return m == Index || m == IndexAndFooter
}

func (m StripeCacheMode) HasFooter() bool {
	return m == Footer || m == IndexAndFooter
}

// ParseStripeCacheMode matches a mode name ignoring case.
func ParseStripeCacheMode(name string) (StripeCacheMode, error) {
	for _, mode := range StripeCacheModes() {
		if strings.EqualFold(name, mode.String()) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown stripe cache mode %q", name)
}

type StripeCacheOptions struct {
	mode    StripeCacheMode
	maxSize datasize.DataSize
}

func NewStripeCacheOptions(mode StripeCacheMode, maxSize datasize.DataSize) StripeCacheOptions {
	return StripeCacheOptions{mode: mode, maxSize: maxSize}
}

func (o StripeCacheOptions) Mode() StripeCacheMode {
	return o.mode
}

func (o StripeCacheOptions) MaxSize() datasize.DataSize {
	return o.maxSize
}

func (o StripeCacheOptions) String() string {
	return fmt.Sprintf("%s (max %s)", o.mode, o.maxSize)
}
