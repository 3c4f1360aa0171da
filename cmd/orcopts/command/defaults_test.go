package command_test

import (
	"encoding/json"

	"github.com/planetlabs/orcopts/internal/config"
	"github.com/planetlabs/orcopts/internal/test"
)

func (s *Suite) TestDefaults() {
	_, err := s.run("defaults")
	s.Require().NoError(err)

	expected := test.Dedent(`
		writer.stripe-min-size=32MB
		writer.stripe-max-size=64MB
		writer.stripe-max-rows=10000000
		writer.row-group-max-rows=10000
		writer.dictionary-max-memory=16MB
		writer.string-statistics-limit=64B
		writer.max-compression-buffer-size=256kB
		writer.stream-layout-type=BY_COLUMN_SIZE
		writer.stripe-cache-enabled=false
		writer.stripe-cache-max-size=8MB
		writer.stripe-cache-mode=INDEX_AND_FOOTER
		writer.integer-dictionary-encoding-enabled=false
		writer.string-dictionary-encoding-enabled=true
		writer.string-dictionary-sorting-enabled=true
		writer.flat-map-writer-enabled=false
	`)
	s.Equal(expected, string(s.readStdout()))
}

func (s *Suite) TestDefaultsJSONWithPrefix() {
	_, err := s.run("defaults", "--format", "json", "--prefix", "hive.orc.")
	s.Require().NoError(err)

	props := map[string]string{}
	s.Require().NoError(json.Unmarshal(s.readStdout(), &props))

	s.Len(props, len(config.Keys())-1)
	s.Equal("32MB", props["hive.orc."+config.StripeMinSizeKey])
	s.NotContains(props, "hive.orc."+config.CompressionLevelKey)
}

func (s *Suite) TestDefaultsRoundTrip() {
	_, err := s.run("defaults")
	s.Require().NoError(err)

	source := s.writeSource("defaults.properties", string(s.readStdout()))
	c, err := config.LoadWriterConfig(s.T().Context(), config.LoadOptions{Source: source})
	s.Require().NoError(err)
	s.Equal(config.NewWriterConfig().Properties(), c.Properties())
}
