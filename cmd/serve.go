package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ari-wein/mcp-panther/internal/config"
	"github.com/ari-wein/mcp-panther/internal/panther"
	"github.com/ari-wein/mcp-panther/internal/registry"
	"github.com/ari-wein/mcp-panther/internal/server"
	"github.com/ari-wein/mcp-panther/internal/tools"
	"github.com/ari-wein/mcp-panther/pkg/logging"
)

var (
	serveConfigPath string
	serveTransport  string
	serveHost       string
	servePort       int
	serveLogLevel   string
	serveLogFile    string
)

// serveCmd starts the MCP server. Connection settings come from the
// environment or an optional config file; flags override both.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Panther MCP server",
	Long: `Starts the MCP server exposing Panther tools to AI assistants.

The server needs a Panther instance URL and API token, read from the
PANTHER_INSTANCE_URL and PANTHER_API_TOKEN environment variables (a
.env file in the working directory is honored) or from a YAML config
file given with --config.

Two transports are available:

  stdio            MCP over stdin/stdout, for direct assistant integration
  streamable-http  MCP over HTTP, for remote clients

With the stdio transport, stdout carries the protocol; logs go to stderr
or, with --log-file, to a file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Flags take precedence over environment and config file.
	if cmd.Flags().Changed("transport") {
		cfg.Transport = serveTransport
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = serveLogFile
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		if err := logging.InitToFile(level, cfg.LogFile); err != nil {
			return err
		}
		defer logging.Close()
	} else {
		// Stdout is reserved for the protocol on the stdio transport.
		logging.Init(level, os.Stderr)
	}

	client := panther.NewClient(cfg.InstanceURL, panther.StaticToken(cfg.APIToken), cfg.APITimeout)

	reg := registry.New()
	if err := tools.RegisterAll(reg, client); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	srv, err := server.New(cfg, reg, rootCmd.Version)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a YAML config file")
	serveCmd.Flags().StringVar(&serveTransport, "transport", config.TransportStdio, "Transport to use (stdio, streamable-http)")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind for the streamable-http transport")
	serveCmd.Flags().IntVar(&servePort, "port", 3000, "Port to bind for the streamable-http transport")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(serveCmd)
}
