package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gozen/internal/client"
	"gozen/internal/config"
	"gozen/internal/core"
	"gozen/internal/logging"
	"gozen/internal/shell"
)

var (
	version    = "0.1.0"
	cfgFile    string
	model      string
	provider   string
	autoAccept bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gozen",
		Short: "Agentic coding shell for your terminal",
		Long: `Gozen is an interactive coding assistant. It routes your requests
through specialized agents (architect, coder, debugger, researcher)
that read, write, and patch files, run commands, and stage every
change as a reviewable diff before touching the workspace.`,
		RunE: runShell,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/gozen/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model to use")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "model provider (gemini or ollama)")
	rootCmd.PersistentFlags().BoolVar(&autoAccept, "auto-accept", false, "apply file changes without diff review")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gozen version %s\n", version)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "build [request]",
		Short: "Plan and execute a build for the request, then exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(args, func(ctx context.Context, c *core.Core, request string) <-chan core.Event {
				return c.Build(ctx, request)
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "debug",
		Short: "Investigate and fix the current failure, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(nil, func(ctx context.Context, c *core.Core, request string) <-chan core.Event {
				return c.Debug(ctx)
			})
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if provider != "" {
		cfg.Model.Provider = provider
	}
	if model != "" {
		cfg.Model.Name = model
	}
	if autoAccept {
		cfg.Diff.AutoAccept = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bootstrap(ctx context.Context) (*config.Config, *core.Core, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Logging.File {
		if dir, err := config.Dir(); err == nil {
			if err := logging.EnableFileLogging(dir, logging.ParseLevel(cfg.Logging.Level)); err != nil {
				fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
			}
		}
	}

	cl, err := client.New(ctx, cfg.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("create model client: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	c, err := core.New(cfg, cl, workDir)
	if err != nil {
		cl.Close()
		return nil, nil, fmt.Errorf("create core: %w", err)
	}
	return cfg, c, nil
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, c, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	defer logging.Close()

	return shell.New(cfg, c).Run(ctx, cfg.Model.Name)
}

// runOnce drives a single non-interactive flow through the shell's
// event renderer and review loop.
func runOnce(args []string, start func(context.Context, *core.Core, string) <-chan core.Event) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, c, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	defer logging.Close()

	request := ""
	for i, a := range args {
		if i > 0 {
			request += " "
		}
		request += a
	}
	return shell.New(cfg, c).RunOnce(ctx, start, request)
}
