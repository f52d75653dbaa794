package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/semaphore"

	"github.com/nhsdigital/cpmflow/internal/flow"
	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/render"
)

// MaxConcurrentCalls bounds how many tool calls drive flows at once. Further
// calls wait for a slot or for their context to end.
const MaxConcurrentCalls = 4

// Server exposes every flow as an MCP tool. It serves over stdio for agent
// hosts that spawn cpmflow, or over streamable HTTP on a local port.
type Server struct {
	defs       []*flow.Definition
	api        flow.API
	defaults   map[string]string
	renderOpts render.Options
	calls      *semaphore.Weighted

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server // Standard HTTP server that uses the listener
	port       int
	mu         sync.Mutex
}

// New creates a server with one tool per definition. Defaults fill fields the
// caller leaves out, typically environment and api_key from config.
func New(defs []*flow.Definition, api flow.API, defaults map[string]string, opts render.Options) *Server {
	s := &Server{
		defs:       defs,
		api:        api,
		defaults:   defaults,
		renderOpts: opts,
		calls:      semaphore.NewWeighted(MaxConcurrentCalls),
	}
	s.mcpServer = server.NewMCPServer(
		"cpmflow",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio serves on stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	logger.Debug("Serving MCP over stdio with %d tools", len(s.defs))
	return server.ServeStdio(s.mcpServer)
}

// Start starts the MCP HTTP server on addr, or a random local port when addr
// is empty. Returns the port number.
func (s *Server) Start(ctx context.Context, addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	// Stateless mode: every tool call is self-contained
	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{
		Handler: mux,
	}
	s.httpServer = mcpHandler

	// Capture stdServer reference for goroutine to avoid race with Stop()
	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Debug("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop stops the MCP HTTP server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil // Already stopped
	}

	logger.Debug("Stopping MCP server")
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP server endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
