// Package tools defines the actions the agent may take on the local machine
// and the registry that dispatches model tool calls to them.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m4xw311/picode/config"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/logging"
)

// Tool defines the interface for any action the agent can take. Parameters
// returns a JSON schema object describing the arguments; Execute receives the
// raw JSON arguments produced by the model.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args string) (string, error)
}

// Registry holds the available tools in registration order.
type Registry struct {
	order  []string
	tools  map[string]Tool
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logging.OrDefault(logger),
	}
}

// NewDefaultRegistry registers the built-in filesystem and shell tools.
func NewDefaultRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(&ListFilesTool{fsAccess: &cfg.FilesystemAccess})
	r.Register(&ReadFileTool{fsAccess: &cfg.FilesystemAccess})
	r.Register(&WriteFileTool{fsAccess: &cfg.FilesystemAccess})
	r.Register(&RunCommandTool{
		AllowedCommands: cfg.AllowedCommands,
		Timeout:         cfg.CommandTimeout(),
		logger:          r.logger,
	})
	return r
}

// Register adds t, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Select returns a registry restricted to the tools a toolset names. Entries
// may be glob patterns such as "github__*" to pick up every tool of an MCP
// server. A nil toolset selects everything.
func (r *Registry) Select(ts *config.Toolset) (*Registry, error) {
	if ts == nil {
		return r, nil
	}
	selected := NewRegistry(r.logger)
	for _, pattern := range ts.Tools {
		matched := false
		for _, name := range r.order {
			ok, err := doublestar.Match(pattern, name)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid tool pattern '%s' in toolset '%s'", pattern, ts.Name)
			}
			if ok {
				selected.Register(r.tools[name])
				matched = true
			}
		}
		if !matched {
			return nil, errors.New("tool '%s' from toolset '%s' is not registered", pattern, ts.Name)
		}
	}
	return selected, nil
}

// Execute runs the named tool and always returns text for the model. Unknown
// tools, execution errors and panics are reported as the result.
func (r *Registry) Execute(ctx context.Context, name, args string) (result string) {
	t, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		return fmt.Sprintf("Error: unknown tool '%s'", name)
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool panicked", "tool", name, "panic", p)
			result = fmt.Sprintf("Error executing %s: %v", name, p)
		}
	}()

	out, err := t.Execute(ctx, args)
	if err != nil {
		r.logger.Warn("tool failed", "tool", name, "error", err)
		return fmt.Sprintf("Error executing %s: %v", name, err)
	}
	return out
}

// isPathRestricted checks if a path matches any of the glob patterns.
func isPathRestricted(path string, patterns []string) (bool, error) {
	clean := strings.TrimPrefix(path, "./")
	for _, pattern := range patterns {
		match, err := doublestar.PathMatch(pattern, clean)
		if err != nil {
			return false, errors.Wrapf(err, "invalid glob pattern '%s'", pattern)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// isCommandAllowed checks a command against the regex allowlist. An empty
// allowlist allows everything.
func isCommandAllowed(command string, allowed []string, logger *slog.Logger) bool {
	if len(allowed) == 0 {
		return true
	}
	if len(strings.Fields(command)) == 0 {
		return false
	}
	logger = logging.OrDefault(logger)
	for _, pattern := range allowed {
		re, err := regexp.Compile(pattern)
		if err != nil {
			logger.Warn("invalid regex in allowed_commands", "pattern", pattern, "error", err)
			if command == pattern {
				return true
			}
			continue
		}
		if re.MatchString(command) {
			return true
		}
	}
	return false
}
