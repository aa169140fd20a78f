package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/ari-wein/mcp-panther/internal/config"
	"github.com/ari-wein/mcp-panther/internal/dispatch"
	"github.com/ari-wein/mcp-panther/internal/permissions"
	"github.com/ari-wein/mcp-panther/internal/registry"
	"github.com/ari-wein/mcp-panther/pkg/logging"
)

const serverName = "mcp-panther"

// Server exposes a tool registry over the MCP protocol on the transport
// selected in the configuration.
type Server struct {
	cfg        *config.Config
	version    string
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	granted    permissions.Set

	mcpServer *mcpserver.MCPServer

	mu                   sync.Mutex
	streamableHTTPServer *mcpserver.StreamableHTTPServer
}

// New builds a Server around the given registry. Every registered tool is
// exposed to MCP clients; invocations route through a dispatcher that
// checks permissions and validates arguments before the handler runs.
func New(cfg *config.Config, reg *registry.Registry, version string) (*Server, error) {
	dispatcher, err := dispatch.New(reg)
	if err != nil {
		return nil, fmt.Errorf("building dispatcher: %w", err)
	}

	granted, err := cfg.GrantedPermissions()
	if err != nil {
		return nil, fmt.Errorf("resolving granted permissions: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		version:    version,
		registry:   reg,
		dispatcher: dispatcher,
		granted:    granted,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithToolCapabilities(false),
	)
	for _, tool := range reg.All() {
		s.mcpServer.AddTool(tool.Definition, s.toolHandler(tool.Definition.Name))
	}
	logging.Info("Server", "Exposing %d tools over MCP", reg.Len())

	return s, nil
}

// toolHandler bridges an MCP tool call to the dispatcher. The result
// envelope is serialized as the single text content of the MCP response;
// failures are reported inside the envelope, never as protocol errors.
func (s *Server) toolHandler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := s.dispatcher.Invoke(ctx, name, request.GetArguments(), s.granted)

		payload, err := json.Marshal(result)
		if err != nil {
			logging.Error("Server", err, "Failed to serialize result for tool %s", name)
			return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result for tool %s", name)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

// Run starts the configured transport and blocks until the context is
// cancelled or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportStdio:
		return s.runStdio(ctx)
	case config.TransportStreamableHTTP:
		return s.runStreamableHTTP(ctx)
	default:
		return fmt.Errorf("unsupported transport: %s", s.cfg.Transport)
	}
}

func (s *Server) runStdio(ctx context.Context) error {
	logging.Info("Server", "Starting MCP server with stdio transport")
	stdioServer := mcpserver.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) runStreamableHTTP(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	logging.Info("Server", "Starting MCP server with streamable-http transport on %s", addr)

	s.mu.Lock()
	s.streamableHTTPServer = mcpserver.NewStreamableHTTPServer(s.mcpServer)
	streamableServer := s.streamableHTTPServer
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("streamable HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down streamable HTTP server")
		}
		return nil
	})
	return g.Wait()
}
