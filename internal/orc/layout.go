package orc

import (
	"cmp"
	"fmt"
	"slices"
)

type StreamKind int

const (
	Present StreamKind = iota
	Data
	Length
	DictionaryData
	Secondary
)

var streamKindNames = map[StreamKind]string{
	Present:        "PRESENT",
	Data:           "DATA",
	Length:         "LENGTH",
	DictionaryData: "DICTIONARY_DATA",
	Secondary:      "SECONDARY",
}

func (k StreamKind) String() string {
	if name, ok := streamKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("StreamKind(%d)", int(k))
}

// Stream describes one encoded data stream of a column within a stripe.
type Stream struct {
	Column int
	Kind   StreamKind
	Length int64
}

// StreamLayout orders the data streams of a stripe before they are written.
type StreamLayout interface {
	Reorder(streams []Stream)
}

// StreamLayoutFactory creates a StreamLayout for each stripe.
type StreamLayoutFactory interface {
	Name() string
	New() StreamLayout
}

// ColumnSizeLayoutFactory keeps the streams of a column together, smallest
// columns first.
type ColumnSizeLayoutFactory struct{}

func (ColumnSizeLayoutFactory) Name() string {
	return "column-size"
}

func (ColumnSizeLayoutFactory) New() StreamLayout {
	return columnSizeLayout{}
}

// StreamSizeLayoutFactory orders all streams by size regardless of column.
type StreamSizeLayoutFactory struct{}

func (StreamSizeLayoutFactory) Name() string {
	return "stream-size"
}

func (StreamSizeLayoutFactory) New() StreamLayout {
	return streamSizeLayout{}
}

type columnSizeLayout struct{}

func (columnSizeLayout) Reorder(streams []Stream) {
	columnSizes := map[int]int64{}
	for _, stream := range streams {
		columnSizes[stream.Column] += stream.Length
	}

	slices.SortStableFunc(streams, func(a, b Stream) int {
		return cmp.Or(
			cmp.Compare(columnSizes[a.Column], columnSizes[b.Column]),
			cmp.Compare(a.Column, b.Column),
			cmp.Compare(a.Length, b.Length),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
}

type streamSizeLayout struct{}

func (streamSizeLayout) Reorder(streams []Stream) {
	slices.SortStableFunc(streams, func(a, b Stream) int {
		return cmp.Compare(a.Length, b.Length)
	})
}
