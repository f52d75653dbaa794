package mcpserver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nhsdigital/cpmflow/internal/flow"
	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/render"
)

var markdownEmphasis = regexp.MustCompile("[*`]")

// registerTools adds one tool per flow.
func (s *Server) registerTools() {
	for _, def := range s.defs {
		s.mcpServer.AddTool(s.toolFor(def), s.handleFlow(def))
	}
}

// toolFor describes def as a tool with one string parameter per field. A field
// is required only when it is required by the flow and has no default.
func (s *Server) toolFor(def *flow.Definition) mcp.Tool {
	desc := def.Title + ". " + markdownEmphasis.ReplaceAllString(def.Description, "")
	opts := []mcp.ToolOption{mcp.WithDescription(strings.TrimSpace(desc))}

	for _, f := range def.Fields() {
		propOpts := []mcp.PropertyOption{mcp.Description(fieldDescription(f, s.defaults[f.Key] != ""))}
		if f.Required && s.defaults[f.Key] == "" {
			propOpts = append(propOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(f.Key, propOpts...))
	}
	return mcp.NewTool(def.Tool, opts...)
}

func fieldDescription(f flow.Field, defaulted bool) string {
	desc := f.Label
	if f.Placeholder != "" {
		desc += " (" + f.Placeholder + ")"
	}
	if defaulted {
		desc += ". Defaults to the configured value"
	}
	return desc
}

// handleFlow drives a fresh controller for def with the call's arguments.
func (s *Server) handleFlow(def *flow.Definition) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		values := make(map[string]string)
		for _, f := range def.Fields() {
			if v := s.defaults[f.Key]; v != "" {
				values[f.Key] = v
			}
		}

		args := request.GetArguments()
		for key, raw := range args {
			str, ok := raw.(string)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("argument %q must be a string", key)), nil
			}
			values[key] = str
		}

		if err := s.calls.Acquire(ctx, 1); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: waiting for a free slot: %v", def.Tool, err)), nil
		}
		defer s.calls.Release(1)

		ctrl := flow.NewController(def, s.api, nil)
		defer ctrl.Close()

		logger.Info("mcp: %s with %d argument(s)", def.Tool, len(args))
		st, err := flow.Drive(ctx, ctrl, values)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text := strings.Join(render.Summary(st, s.renderOpts), "\n")
		if st.Banner() != "" {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}
