package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/planetlabs/orcopts/internal/config"
)

type DefaultsCmd struct {
	Prefix   string `help:"Prefix added to every property key (e.g. hive.orc.)."`
	Format   string `help:"Output format.  Possible values: ${enum}." enum:"properties, json" default:"properties"`
	Unpretty bool   `help:"No newlines or indentation in the JSON output."`
}

func (c *DefaultsCmd) Run() error {
	props := config.NewWriterConfig().Properties()

	if c.Format == "json" {
		prefixed := make(map[string]string, len(props))
		for key, value := range props {
			prefixed[c.Prefix+key] = value
		}
		encoder := json.NewEncoder(os.Stdout)
		if !c.Unpretty {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(prefixed); err != nil {
			return NewCommandError("failed to encode properties: %w", err)
		}
		return nil
	}

	for _, key := range config.Keys() {
		value, ok := props[key]
		if !ok {
			continue
		}
		fmt.Printf("%s%s=%s\n", c.Prefix, key, value)
	}
	return nil
}
