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

package main

import (
	"github.com/alecthomas/kong"
	"github.com/planetlabs/orcopts/cmd/orcopts/command"
	"github.com/planetlabs/orcopts/internal/logger"
)

var (
	version = "development"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli := &command.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("orcopts"),
		kong.Description("Inspect and validate ORC writer properties."),
		kong.UsageOnError(),
	)

	log, err := logger.New(cli.LogLevel)
	ctx.FatalIfErrorf(err)
	defer func() { _ = log.Sync() }()

	info := &command.VersionInfo{Version: version, Commit: commit, Date: date}
	err = ctx.Run(info, log)
	ctx.FatalIfErrorf(err)
}
