package command_test

import (
	"encoding/json"

	"github.com/planetlabs/orcopts/cmd/orcopts/command"
)

func (s *Suite) validateJSON(args ...string) (int, *command.ValidateReport) {
	code, err := s.run(append([]string{"validate", "--format", "json"}, args...)...)
	s.Require().NoError(err)

	report := &command.ValidateReport{}
	s.Require().NoError(json.Unmarshal(s.readStdout(), report))
	return code, report
}

func (s *Suite) TestValidatePasses() {
	source := s.writeSource("writer.properties", `
		writer.stripe-min-size=13MB
		writer.stripe-max-size=27MB
		writer.compression-level=4
	`)

	code, report := s.validateJSON(source)
	s.Equal(0, code)
	s.True(report.Valid())
	s.Len(report.Checks, 5)
	for _, check := range report.Checks {
		s.True(check.Run, check.Title)
		s.True(check.Passed, check.Title)
		s.Empty(check.Message, check.Title)
	}
}

func (s *Suite) TestValidateUnknownKeys() {
	source := s.writeSource("writer.properties", `
		writer.stripe-size=13MB
		writer.cache=true
	`)

	code, report := s.validateJSON(source)
	s.Equal(1, code)
	s.False(report.Valid())

	s.True(report.Checks[0].Passed)
	s.False(report.Checks[1].Passed)
	s.Equal("unknown properties: writer.cache, writer.stripe-size", report.Checks[1].Message)
	for _, check := range report.Checks[2:] {
		s.False(check.Run, check.Title)
	}
}

func (s *Suite) TestValidateReportsEveryInvalidValue() {
	code, report := s.validateJSON("--set", "writer.stripe-max-rows=many", "--set", "writer.stripe-cache-mode=BOTH")
	s.Equal(1, code)

	check := report.Checks[2]
	s.Equal("all property values are valid", check.Title)
	s.False(check.Passed)
	s.Contains(check.Message, "writer.stripe-cache-mode")
	s.Contains(check.Message, "writer.stripe-max-rows")
}

func (s *Suite) TestValidateBuildFailure() {
	code, report := s.validateJSON("--set", "writer.stripe-cache-enabled=true", "--set", "writer.stripe-cache-max-size=3GB")
	s.Equal(1, code)

	s.True(report.Checks[2].Passed)
	s.False(report.Checks[3].Passed)
	s.Contains(report.Checks[3].Message, "invalid writer config")
	s.False(report.Checks[4].Run)
}

func (s *Suite) TestValidateStripeSizeOrder() {
	code, report := s.validateJSON("--set", "writer.stripe-min-size=64MB", "--set", "writer.stripe-max-size=32MB")
	s.Equal(1, code)

	s.True(report.Checks[3].Passed)
	s.False(report.Checks[4].Passed)
	s.Equal("stripe min size 64MB is larger than stripe max size 32MB", report.Checks[4].Message)
}

func (s *Suite) TestValidateMissingSource() {
	code, report := s.validateJSON(s.server.URL + "/missing.properties")
	s.Equal(1, code)
	s.False(report.Checks[0].Passed)
	s.Contains(report.Checks[0].Message, "not found")
}

func (s *Suite) TestValidateText() {
	code, err := s.run("validate", "--unpretty", "--set", "writer.stripe-max-rows=many")
	s.Require().NoError(err)
	s.Equal(1, code)

	output := string(s.readStdout())
	s.Contains(output, "Summary for <defaults>: Passed 2 checks, failed 1 check, 2 checks not run.")
	s.Contains(output, " ✓ properties can be loaded")
	s.Contains(output, " ✗ all property values are valid")
	s.Contains(output, "   ↳ invalid value \"many\" for writer.stripe-max-rows")
	s.Contains(output, " ! writer options can be built")
}
