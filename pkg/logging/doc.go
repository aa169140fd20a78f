// Package logging provides a structured logging system for mcp-panther with
// unified log handling and level filtering.
//
// This package implements a logging system built on Go's standard slog
// package, providing consistent logging behavior with structured output.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// # Usage
//
//	import "github.com/ari-wein/mcp-panther/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.Init(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("Bootstrap", "Server starting up")
//	logging.Debug("Client", "GET %s returned %d", path, status)
//	logging.Warn("Tools", "page_size %d exceeds maximum of %d", size, max)
//	logging.Error("Dispatcher", err, "Tool execution failed")
//
// # Output Destinations
//
// The server speaks MCP over stdio by default, so stdout is never a valid
// log destination. Logs go to stderr unless InitToFile redirects them to a
// file (the --log-file flag).
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Application initialization and startup
//   - **Config**: Configuration loading and validation
//   - **Client**: Panther REST access client operations
//   - **Registry**: Tool registration
//   - **Dispatcher**: Tool lookup, authorization, validation, invocation
//   - **Tools**: Individual tool implementations
//   - **Server**: MCP server transports and lifecycle
//
// # Thread Safety
//
// The logging system is fully thread-safe: safe concurrent logging from
// multiple goroutines with protected access to shared logging state.
package logging
