package tools

import (
	"fmt"

	"github.com/ari-wein/mcp-panther/internal/panther"
	"github.com/ari-wein/mcp-panther/internal/registry"
	"github.com/ari-wein/mcp-panther/pkg/logging"
)

// RegisterAll registers every tool with the registry in a fixed order.
// Registration is explicit so the full catalog is visible in one place;
// nothing registers itself from package init.
func RegisterAll(reg *registry.Registry, client *panther.Client) error {
	groups := [][]registry.Tool{
		AlertTools(client),
		RuleTools(client),
		GlobalTools(client),
		UserTools(client),
		RoleTools(client),
		SourceTools(client),
		DataLakeTools(client),
	}

	for _, group := range groups {
		for _, tool := range group {
			if err := reg.Register(tool); err != nil {
				return fmt.Errorf("registering tool %s: %w", tool.Name(), err)
			}
		}
	}

	logging.Info("Tools", "Registered %d tools", reg.Len())
	return nil
}
