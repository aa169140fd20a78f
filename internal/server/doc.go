// Package server runs the MCP server that exposes the tool catalog.
//
// It binds the registry to an MCP protocol server from mcp-go, routing
// tool invocations through the dispatcher so every call is permission
// checked and schema validated before its handler runs. Two transports
// are supported: stdio for direct AI assistant integration, and
// streamable HTTP for remote clients.
package server
