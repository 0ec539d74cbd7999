package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/pageflow"
	"github.com/aretw0/pageflow/internal/logging"
	"github.com/aretw0/pageflow/pkg/domain"
)

// RoutesURI is the resource listing the registered routes.
const RoutesURI = "pageflow://routes"

// maxBody bounds the response body returned to the client.
const maxBody = 1 << 20

// Route describes one registered page.
type Route struct {
	Name     string   `json:"name" jsonschema_description:"Page identifier"`
	Route    string   `json:"route" jsonschema_description:"Route template"`
	Handlers []string `json:"handlers" jsonschema_description:"Handler methods as VERB or VERB:name"`
	Filters  int      `json:"filters" jsonschema_description:"Number of page-level filters"`
}

// RoutesResponse is the output of list_routes.
type RoutesResponse struct {
	Routes []Route `json:"routes" jsonschema_description:"Registered pages in registration order"`
}

// InvokeArgs are the arguments of invoke_page.
type InvokeArgs struct {
	Path   string `json:"path"`
	Method string `json:"method,omitempty"`
	Body   string `json:"body,omitempty"`
}

// InvokeResponse is the output of invoke_page.
type InvokeResponse struct {
	Status      int    `json:"status" jsonschema_description:"HTTP status code"`
	ContentType string `json:"content_type" jsonschema_description:"Response content type"`
	Body        string `json:"body" jsonschema_description:"Response body"`
	Truncated   bool   `json:"truncated,omitempty" jsonschema_description:"Set when the body exceeded the size limit"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	Routes() []*domain.ActionDescriptor
}

// Server exposes registered pages as an MCP server.
// Invocations run in-process through handler, normally the HTTP host.
type Server struct {
	engine    Engine
	handler   http.Handler
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		handler:   handler,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("pageflow-mcp", strings.TrimSpace(pageflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_routes
	listTool := mcp.NewTool("list_routes",
		mcp.WithDescription("List the registered pages with their routes and handlers."),
		mcp.WithOutputSchema[RoutesResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListRoutes))

	// TOOL: invoke_page
	invokeTool := mcp.NewTool("invoke_page",
		mcp.WithDescription("Invoke a page in-process and return the rendered response."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Request path including the query, e.g. /orders/42?handler=preview")),
		mcp.WithString("method", mcp.Description("HTTP method (default GET)")),
		mcp.WithString("body", mcp.Description("Form encoded request body for POST, PUT and PATCH")),
		mcp.WithOutputSchema[InvokeResponse](),
	)
	s.mcpServer.AddTool(invokeTool, mcp.NewStructuredToolHandler(s.handleInvoke))
}

func (s *Server) handleListRoutes(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RoutesResponse, error) {
	return RoutesResponse{Routes: s.routes()}, nil
}

func (s *Server) handleInvoke(ctx context.Context, request mcp.CallToolRequest, args InvokeArgs) (InvokeResponse, error) {
	if !strings.HasPrefix(args.Path, "/") {
		return InvokeResponse{}, fmt.Errorf("path must start with '/': %q", args.Path)
	}
	method := strings.ToUpper(args.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if args.Body != "" {
		body = strings.NewReader(args.Body)
	}
	req := httptest.NewRequestWithContext(ctx, method, args.Path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.logger.DebugContext(ctx, "MCP invoke_page", "method", method, "path", args.Path, "status", rec.Code)

	out := rec.Body.String()
	resp := InvokeResponse{
		Status:      rec.Code,
		ContentType: rec.Header().Get("Content-Type"),
	}
	if len(out) > maxBody {
		out = out[:maxBody]
		resp.Truncated = true
	}
	resp.Body = out
	return resp, nil
}

func (s *Server) routes() []Route {
	descs := s.engine.Routes()
	out := make([]Route, 0, len(descs))
	for _, desc := range descs {
		handlers := make([]string, 0, len(desc.HandlerMethods))
		for _, h := range desc.HandlerMethods {
			name := h.HTTPMethod
			if h.Name != "" {
				name += ":" + h.Name
			}
			handlers = append(handlers, name)
		}
		out = append(out, Route{
			Name:     desc.ID,
			Route:    desc.RouteTemplate,
			Handlers: handlers,
			Filters:  len(desc.Filters),
		})
	}
	return out
}

func (s *Server) registerResources() {
	// EXPOSE: pageflow://routes
	s.mcpServer.AddResource(mcp.NewResource(RoutesURI, "Registered Routes",
		mcp.WithMIMEType("application/json"),
	), s.readRoutes)
}

func (s *Server) readRoutes(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(RoutesResponse{Routes: s.routes()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode routes: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RoutesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
