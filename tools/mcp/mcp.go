// Package mcp exposes tools served by external Model Context Protocol servers
// so they can be registered next to the built-in tools.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/m4xw311/picode/config"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/logging"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

// NameSeparator joins server and tool names. Provider tool names only allow
// letters, digits, '_' and '-'.
const NameSeparator = "__"

type session interface {
	ListTools(ctx context.Context, params *mcpsdk.ListToolsParams) (*mcpsdk.ListToolsResult, error)
	CallTool(ctx context.Context, params *mcpsdk.CallToolParams) (*mcpsdk.CallToolResult, error)
	Close() error
}

// Client manages the connection to a single MCP server subprocess.
type Client struct {
	Name   string
	cmd    *exec.Cmd
	conn   session
	tools  []*Tool
	logger *slog.Logger
}

// Start launches every configured server concurrently. If any server fails
// the ones already running are stopped.
func Start(ctx context.Context, servers []config.MCPServer, logger *slog.Logger) ([]*Client, error) {
	logger = logging.OrDefault(logger)
	clients := make([]*Client, len(servers))

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		g.Go(func() error {
			c, err := NewClient(gctx, srv.Name, srv.Command, srv.Args, logger)
			if err != nil {
				return err
			}
			clients[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		StopAll(clients)
		return nil, err
	}
	return clients, nil
}

// StopAll stops every non-nil client, logging failures.
func StopAll(clients []*Client) {
	for _, c := range clients {
		if c == nil {
			continue
		}
		if err := c.Stop(); err != nil {
			c.logger.Warn("error stopping MCP server", "server", c.Name, "error", err)
		}
	}
}

// NewClient starts the MCP server subprocess and discovers its tools.
func NewClient(ctx context.Context, name, command string, args []string, logger *slog.Logger) (*Client, error) {
	logger = logging.OrDefault(logger)
	cmd := exec.Command(command, args...)
	sdk := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "picode", Version: "v1.0.0"}, nil)
	conn, err := sdk.Connect(ctx, mcpsdk.NewCommandTransport(cmd))
	if err != nil {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return nil, errors.Wrapf(err, "failed to connect to MCP server '%s'", name)
	}

	c := &Client{Name: name, cmd: cmd, conn: conn, logger: logger}
	if err := c.discover(ctx); err != nil {
		_ = c.Stop()
		return nil, err
	}
	logger.Info("initialized MCP client", "server", name, "tools", len(c.tools))
	return c, nil
}

func (c *Client) discover(ctx context.Context) error {
	params := &mcpsdk.ListToolsParams{}
	for {
		list, err := c.conn.ListTools(ctx, params)
		if err != nil {
			return errors.Wrapf(err, "failed to list tools from MCP server '%s'", c.Name)
		}
		for _, t := range list.Tools {
			c.tools = append(c.tools, &Tool{
				serverName:  c.Name,
				toolName:    t.Name,
				description: t.Description,
				schema:      schemaMap(t.InputSchema),
				client:      c,
			})
		}
		if list.NextCursor == "" {
			return nil
		}
		params.Cursor = list.NextCursor
	}
}

// Tools returns the tools this server provides.
func (c *Client) Tools() []*Tool { return c.tools }

// Stop closes the session and terminates the server subprocess.
func (c *Client) Stop() error {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("MCP session close failed", "server", c.Name, "error", err)
		}
	}
	if c.cmd != nil && c.cmd.Process != nil {
		c.logger.Info("terminating MCP server", "server", c.Name)
		return c.cmd.Process.Kill()
	}
	return nil
}

// Tool is a tool served by an MCP server. It satisfies tools.Tool.
type Tool struct {
	serverName  string
	toolName    string
	description string
	schema      map[string]any
	client      *Client
}

// Name returns "<server>__<tool>".
func (t *Tool) Name() string { return t.serverName + NameSeparator + t.toolName }

func (t *Tool) Description() string { return t.description }

func (t *Tool) Parameters() map[string]any { return t.schema }

// Execute forwards the call to the server and concatenates its text content.
func (t *Tool) Execute(ctx context.Context, args string) (string, error) {
	var arguments map[string]any
	if strings.TrimSpace(args) != "" {
		if err := json.Unmarshal([]byte(args), &arguments); err != nil {
			return "", errors.Wrapf(err, "invalid arguments for '%s'", t.Name())
		}
	}
	result, err := t.client.conn.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      t.toolName,
		Arguments: arguments,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to call tool '%s'", t.Name())
	}

	var b strings.Builder
	for _, content := range result.Content {
		switch c := content.(type) {
		case *mcpsdk.TextContent:
			b.WriteString(c.Text)
		default:
			t.client.logger.Debug("skipping non-text MCP content", "tool", t.Name())
		}
	}
	if result.IsError {
		return "", errors.New("%s", b.String())
	}
	return b.String(), nil
}

// schemaMap converts whatever schema type the SDK uses into the plain object
// form tools.Tool exposes.
func schemaMap(schema any) map[string]any {
	fallback := map[string]any{"type": "object", "properties": map[string]any{}}
	data, err := json.Marshal(schema)
	if err != nil {
		return fallback
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return fallback
	}
	if _, ok := m["type"]; !ok {
		m["type"] = "object"
	}
	return m
}
