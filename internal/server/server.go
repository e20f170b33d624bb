// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"

	"nutrition-tracker/internal/recommend"
	"nutrition-tracker/internal/resolver"
	"nutrition-tracker/internal/session"
)

type Config struct {
	Host string
	Port int
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// TrackerServer exposes one nutrition session as MCP tools over HTTP. The
// session itself is not self-locking; the mutex here guarantees that no two
// mutating operations interleave their read-modify-write.
type TrackerServer struct {
	server     *server.Server
	httpServer *http.Server
	config     *Config

	mu          sync.Mutex
	session     *session.Session
	resolver    resolver.Resolver
	recommender recommend.Recommender

	tools map[string]toolHandler
}

// New wires a server around a caller-owned session and its collaborators.
func New(cfg *Config, sess *session.Session, res resolver.Resolver, rec recommend.Recommender) (*TrackerServer, error) {
	s := &TrackerServer{
		config:      cfg,
		session:     sess,
		resolver:    res,
		recommender: rec,
	}

	// Create MCP server (without transport, we handle HTTP manually)
	mcpServer, err := server.NewServer(
		nil,
		server.WithServerInfo(protocol.Implementation{
			Name:    "nutrition-tracker",
			Version: "1.0.0",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	s.server = mcpServer

	s.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s, nil
}

func (s *TrackerServer) registerTools() {
	s.tools = map[string]toolHandler{
		"log_food":       s.handleLogFood,
		"undo_last":      s.handleUndoLast,
		"clear_all":      s.handleClearAll,
		"reset_day":      s.handleResetDay,
		"get_totals":     s.handleGetTotals,
		"get_history":    s.handleGetHistory,
		"set_user_info":  s.handleSetUserInfo,
		"save_profile":   s.handleSaveProfile,
		"rename_profile": s.handleRenameProfile,
		"delete_profile": s.handleDeleteProfile,
		"load_profile":   s.handleLoadProfile,
		"list_profiles":  s.handleListProfiles,
		"analyze":        s.handleAnalyze,
	}
}

func (s *TrackerServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// ResetDay rolls the ledger over to a new day. The scheduler calls this, so
// it takes the same lock as the tool handlers.
func (s *TrackerServer) ResetDay(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Reset(ctx)
}

func (s *TrackerServer) Start(ctx context.Context) error {
	log.Printf("Starting nutrition tracker server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *TrackerServer) Stop() error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *TrackerServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
