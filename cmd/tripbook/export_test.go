package main

import (
	"context"

	"github.com/m-mizutani/tripbook"
	"github.com/urfave/cli/v3"
)

var (
	RunGenerate    = runGenerate
	LoadConfigFile = loadConfigFile
	LoadEnvFile    = loadEnvFile
	NewLogger      = newLogger
	MarshalSchema  = marshalSchema
	SchemaCommand  = schemaCommand
)

func (x *Config) FillCredentialsFromEnv() {
	x.fillCredentialsFromEnv()
}

// GenerateCommand returns the generate command with gen as the model.
func GenerateCommand(gen tripbook.Generator) *cli.Command {
	return generateCommand(withGeneratorFactory(func(ctx context.Context, cfg *Config) (tripbook.Generator, error) {
		return gen, nil
	}))
}

// GenerateCommandWithCapture returns the generate command with gen as the
// model and stores the resolved configuration in cfg.
func GenerateCommandWithCapture(gen tripbook.Generator, cfg *Config) *cli.Command {
	return generateCommand(withGeneratorFactory(func(ctx context.Context, c *Config) (tripbook.Generator, error) {
		*cfg = *c
		return gen, nil
	}))
}
