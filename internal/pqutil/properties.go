package pqutil

import (
	"github.com/apache/arrow/go/v16/parquet"
	"github.com/apache/arrow/go/v16/parquet/compress"
	"github.com/planetlabs/orcopts/internal/orc"
)

// WriterProperties maps stripe writer options onto the closest Parquet
// writer settings. Flush thresholds and stream layout have no Parquet
// counterpart and are not carried over.
func WriterProperties(options *orc.WriterOptions, codec compress.Compression) *parquet.WriterProperties {
	writerProperties := []parquet.WriterProperty{
		parquet.WithCompression(codec),
		parquet.WithMaxRowGroupLength(int64(options.RowGroupMaxRowCount())),
		parquet.WithDictionaryDefault(options.StringDictionaryEncodingEnabled()),
		parquet.WithDictionaryPageSizeLimit(options.DictionaryMaxMemory().RoundBytes()),
		parquet.WithMaxStatsSize(options.MaxStringStatisticsLimit().RoundBytes()),
		parquet.WithDataPageSize(options.MaxCompressionBufferSize().RoundBytes()),
	}

	if level, ok := options.CompressionLevel(); ok {
		writerProperties = append(writerProperties, parquet.WithCompressionLevel(level))
	}

	return parquet.NewWriterProperties(writerProperties...)
}
