package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/vsinha/wareopt/pkg/interfaces/cli/config"
)

// SchemaCommand prints the JSON Schema of the config file
type SchemaCommand struct {
	out  io.Writer
	help bool
}

// NewSchemaCommand creates a new schema command
func NewSchemaCommand(out io.Writer, help bool) *SchemaCommand {
	if out == nil {
		out = os.Stdout
	}
	return &SchemaCommand{out: out, help: help}
}

// Execute runs the schema command
func (c *SchemaCommand) Execute(_ context.Context) error {
	if c.help {
		fmt.Fprintln(c.out, `Config Schema - print the JSON Schema of wareopt.yaml

USAGE:
    wareopt schema > wareopt.schema.json

Point an editor's YAML language server at the output to validate config files.`)
		return nil
	}

	data, err := json.MarshalIndent(ConfigSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

// ConfigSchema reflects the config file structure
func ConfigSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&config.File{})
	schema.Title = "wareopt configuration"
	return schema
}
