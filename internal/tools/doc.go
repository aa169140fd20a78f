// Package tools defines the Panther operations exposed over MCP.
//
// Each file groups the tools for one API domain (alerts, rules, users,
// roles, log sources, global helpers, data lake). A tool bundles its MCP
// definition, the permissions it requires, and a handler closed over the
// shared API client. RegisterAll wires the whole catalog into a registry;
// tool registration order is the catalog order presented to clients.
//
// Handlers never return Go errors. Every outcome, including API failures
// and not-found responses, is reported through the result envelope so the
// calling model always receives a well-formed payload.
package tools
