package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripbook"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of the handbook content tool",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out, err := marshalSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, string(out))
			return nil
		},
	}
}

func marshalSchema() ([]byte, error) {
	spec := tripbook.ContentSchema()
	doc := map[string]any{
		"name":        spec.Name,
		"description": spec.Description,
		"parameters":  spec.JSONSchema(),
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal schema")
	}
	return out, nil
}
