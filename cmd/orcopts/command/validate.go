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
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/planetlabs/orcopts/internal/config"
	"github.com/planetlabs/orcopts/internal/orc"
	"go.uber.org/zap"
)

type ValidateCmd struct {
	SourceFlags `embed:""`
	Unpretty    bool   `help:"No colors in text output, no newlines and indentation in JSON output."`
	Format      string `help:"Report format.  Possible values: ${enum}." enum:"text, json" default:"text"`
}

type Check struct {
	Title   string `json:"title"`
	Run     bool   `json:"run"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

type ValidateReport struct {
	Source string   `json:"source"`
	Checks []*Check `json:"checks"`
}

func (r *ValidateReport) Valid() bool {
	for _, check := range r.Checks {
		if !check.Passed {
			return false
		}
	}
	return true
}

func (c *ValidateCmd) Run(ctx *kong.Context, log *zap.Logger) error {
	report := c.validate(context.Background(), log)

	if c.Format == "json" {
		if err := c.formatJSON(report); err != nil {
			return NewCommandError("unable to format report as json: %w", err)
		}
	} else {
		c.formatText(report)
	}

	if !report.Valid() {
		ctx.Kong.Exit(1)
	}
	return nil
}

type validationStep struct {
	title string
	run   func() error
}

// validate runs each step in order. Once a step fails the remaining steps
// are reported as not run.
func (c *ValidateCmd) validate(ctx context.Context, log *zap.Logger) *ValidateReport {
	var props map[string]string
	writerConfig := config.NewWriterConfig()
	var options *orc.WriterOptions

	steps := []validationStep{
		{
			title: "properties can be loaded",
			run: func() (err error) {
				props, err = c.properties(ctx, log)
				return err
			},
		},
		{
			title: "all property keys are known",
			run: func() error {
				unknown := []string{}
				for key := range props {
					if !config.IsKey(key) {
						unknown = append(unknown, c.Prefix+key)
					}
				}
				if len(unknown) == 0 {
					return nil
				}
				slices.Sort(unknown)
				return fmt.Errorf("unknown %s: %s", pluralize(len(unknown), "property", "properties"), strings.Join(unknown, ", "))
			},
		},
		{
			title: "all property values are valid",
			run: func() error {
				keys := make([]string, 0, len(props))
				for key := range props {
					keys = append(keys, key)
				}
				slices.Sort(keys)

				messages := []string{}
				for _, key := range keys {
					if err := config.NewWriterConfig().Bind(map[string]string{key: props[key]}); err != nil {
						messages = append(messages, err.Error())
					}
				}
				if len(messages) > 0 {
					return errors.New(strings.Join(messages, "; "))
				}
				return writerConfig.Bind(props)
			},
		},
		{
			title: "writer options can be built",
			run: func() (err error) {
				options, err = writerConfig.WriterOptions()
				return err
			},
		},
		{
			title: "stripe min size does not exceed stripe max size",
			run: func() error {
				flushPolicy := options.FlushPolicy()
				if flushPolicy.StripeMinBytes() > flushPolicy.StripeMaxBytes() {
					return fmt.Errorf("stripe min size %s is larger than stripe max size %s", writerConfig.StripeMinSize(), writerConfig.StripeMaxSize())
				}
				return nil
			},
		},
	}

	report := &ValidateReport{Source: c.sourceName()}
	failed := false
	for _, step := range steps {
		check := &Check{Title: step.title}
		report.Checks = append(report.Checks, check)
		if failed {
			continue
		}
		check.Run = true
		if err := step.run(); err != nil {
			check.Message = err.Error()
			failed = true
			log.Debug("check failed", zap.String("check", step.title), zap.Error(err))
			continue
		}
		check.Passed = true
	}
	return report
}

func (c *ValidateCmd) formatJSON(report *ValidateReport) error {
	encoder := json.NewEncoder(os.Stdout)
	if !c.Unpretty {
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
	}

	return encoder.Encode(report)
}

func (c *ValidateCmd) formatText(report *ValidateReport) {
	passed := 0
	failed := 0
	unrun := 0
	for _, check := range report.Checks {
		if !check.Run {
			unrun++
		} else if check.Passed {
			passed++
		} else {
			failed++
		}
	}

	summaries := []string{
		fmt.Sprintf("Passed %d %s", passed, pluralize(passed, "check", "checks")),
	}
	if failed > 0 {
		summaries = append(summaries, fmt.Sprintf("failed %d %s", failed, pluralize(failed, "check", "checks")))
	}
	if unrun > 0 {
		summaries = append(summaries, fmt.Sprintf("%d %s not run", unrun, pluralize(unrun, "check", "checks")))
	}

	if c.Unpretty {
		color.NoColor = true
	}

	out := os.Stdout
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Fprintf(out, "\nSummary for %s: %s.\n\n", report.Source, strings.Join(summaries, ", "))

	passPrefix := " ✓"
	failPrefix := " ✗"
	unrunPrefix := " !"
	reasonPrefix := "   ↳"
	for _, check := range report.Checks {
		if !check.Run {
			yellow.Fprintf(out, "%s %s\n", unrunPrefix, check.Title)
			yellow.Fprintf(out, "%s %s\n", reasonPrefix, "not checked")
			continue
		}

		if check.Passed {
			green.Fprintf(out, "%s %s\n", passPrefix, check.Title)
			continue
		}

		red.Fprintf(out, "%s %s\n", failPrefix, check.Title)
		red.Fprintf(out, "%s %s\n", reasonPrefix, check.Message)
	}
	fmt.Fprintln(out)
}

func pluralize(count int, singular string, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
