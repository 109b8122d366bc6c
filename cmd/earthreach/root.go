package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"earthreach/internal/application/port/output"
	"earthreach/internal/di"
	"earthreach/internal/domain/entity"

	"github.com/spf13/cobra"
)

const defaultTimeout = 30 * time.Minute

type rootOptions struct {
	env      output.ConfigPort
	provider string
	model    string
	jsonOut  bool
	verbose  bool
	timeout  time.Duration

	temperature    float32
	temperatureSet bool
}

func newRootCmd(env output.ConfigPort) *cobra.Command {
	opts := &rootOptions{env: env}

	cmd := &cobra.Command{
		Use:   "earthreach",
		Short: "Generate and evaluate natural-language descriptions of weather charts",
		Long: `earthreach asks a vision-capable LLM to describe a weather chart, scores the description
against quality criteria and refines it until every criterion passes or the iteration cap is hit.

Provider keys are read from the environment (.env and .env.$APP_ENV are loaded when present).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.provider, "provider", "", "LLM provider: anthropic, gemini, groq, local, openai, openrouter (env LLM_PROVIDER)")
	flags.StringVar(&opts.model, "model", "", "model name, defaults per provider (env LLM_MODEL)")
	flags.BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	flags.DurationVar(&opts.timeout, "timeout", defaultTimeout, "overall deadline for the command")
	flags.Float32Var(&opts.temperature, "temperature", 0, "sampling temperature, provider default when unset (env LLM_TEMPERATURE)")

	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		opts.temperatureSet = cmd.Flags().Changed("temperature")
	}

	cmd.AddCommand(
		newGenerateCmd(opts),
		newEvaluateCmd(opts),
		newCriteriaCmd(opts),
	)
	return cmd
}

// config merges environment settings with the flags shared by every command.
func (o *rootOptions) config(runName string) di.Config {
	cfg := di.ConfigFromEnv(o.env)
	cfg.RunName = runName

	if o.provider != "" {
		cfg.Provider = o.provider
		cfg.LoadAPIKey(o.env)
	}
	if o.model != "" {
		cfg.Model = o.model
	}
	if o.temperatureSet {
		t := o.temperature
		cfg.Temperature = &t
	}

	switch {
	case o.verbose:
		cfg.LogLevel = "debug"
	case o.env.Get("LOG_LEVEL") == "":
		cfg.LogLevel = "warn"
	}
	return cfg
}

func (o *rootOptions) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

// resolveText returns the inline value or the file content. given reports whether either flag was set;
// a given but blank value is always an error, a missing one only when required.
func resolveText(what, inline, path string, given, required bool) (string, error) {
	if inline != "" && path != "" {
		return "", fmt.Errorf("%w: %s given both inline and as a file, use one", entity.ErrInvalidInput, what)
	}
	if !given {
		if required {
			return "", fmt.Errorf("%w: %s is required", entity.ErrInvalidInput, what)
		}
		return "", nil
	}

	text := inline
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: read %s file: %w", entity.ErrInvalidInput, what, err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s cannot be empty", entity.ErrInvalidInput, what)
	}
	return text, nil
}

func flagsChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
