// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/resolver"
	"nutrition-tracker/internal/session"
)

type LogFoodParams struct {
	Text string `json:"text" description:"Free-text food description or a direct macro command like '50g carbs'"`
}

type ClearAllParams struct {
	Confirm bool `json:"confirm" description:"Must be true to actually clear all entries"`
}

type GetHistoryParams struct {
	Limit int `json:"limit,omitempty" description:"Maximum number of entries to return, newest last"`
}

type SetUserInfoParams struct {
	Attributes models.UserAttributes `json:"attributes" description:"User attribute set; replaces the current values wholesale"`
}

type SaveProfileParams struct {
	Name       string                 `json:"name" description:"Profile name; a case-insensitive match overwrites that profile"`
	Attributes *models.UserAttributes `json:"attributes,omitempty" description:"Attributes to snapshot (defaults to the current user info)"`
}

type RenameProfileParams struct {
	ID      string `json:"id" description:"Profile id"`
	NewName string `json:"new_name" description:"New display name"`
}

type DeleteProfileParams struct {
	ID      string `json:"id" description:"Profile id"`
	Confirm bool   `json:"confirm" description:"Must be true to actually delete the profile"`
}

type LoadProfileParams struct {
	ID string `json:"id" description:"Profile id to make active"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

// errorResponse turns a recoverable failure into a user-facing tool result.
// Session state is unchanged whenever this is returned.
func (s *TrackerServer) errorResponse(msg, hint string) (*protocol.CallToolResult, error) {
	payload := map[string]interface{}{"error": msg}
	if hint != "" {
		payload["hint"] = hint
	}
	return s.createJSONResponse(payload)
}

// handleLogFood classifies the input and applies it to the ledger: direct
// macro commands immediately, anything else through the food resolver.
func (s *TrackerServer) handleLogFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.Text == "" {
		return nil, fmt.Errorf("text is required")
	}

	var rec models.Record
	switch cmd := session.Parse(params.Text).(type) {
	case session.DirectMacro:
		rec = cmd.Record()
	case session.FreeTextQuery:
		resolved, err := s.resolver.Resolve(ctx, cmd.Text)
		if err != nil {
			return s.errorResponse(err.Error(), resolver.Hint(err))
		}
		rec = resolved
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Add(ctx, params.Text, rec); err != nil {
		return nil, fmt.Errorf("failed to log food: %w", err)
	}

	return s.createJSONResponse(map[string]interface{}{
		"nutrition": rec,
		"totals":    s.session.Totals(),
	})
}

func (s *TrackerServer) handleUndoLast(ctx context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.session.UndoLast(ctx)
	if errors.Is(err, session.ErrEmptyHistory) {
		return s.errorResponse(err.Error(), "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to undo: %w", err)
	}

	return s.createJSONResponse(map[string]interface{}{
		"undone": entry,
		"totals": s.session.Totals(),
	})
}

func (s *TrackerServer) handleClearAll(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ClearAllParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !params.Confirm {
		if s.session.Totals().IsZero() {
			return s.errorResponse(session.ErrNothingToClear.Error(), "")
		}
		return s.createJSONResponse(map[string]interface{}{
			"confirmation_required": true,
			"message":               "Clearing removes all food entries and cannot be undone. Repeat with confirm=true.",
		})
	}

	cleared, err := s.session.ClearAll(ctx)
	if errors.Is(err, session.ErrNothingToClear) {
		return s.errorResponse(err.Error(), "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to clear: %w", err)
	}

	return s.createJSONResponse(map[string]interface{}{
		"cleared": cleared,
		"totals":  s.session.Totals(),
	})
}

func (s *TrackerServer) handleResetDay(ctx context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset: %w", err)
	}
	return s.createJSONResponse(map[string]interface{}{
		"totals": s.session.Totals(),
	})
}

func (s *TrackerServer) handleGetTotals(_ context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createJSONResponse(map[string]interface{}{
		"totals":         s.session.Totals(),
		"history_length": len(s.session.History()),
	})
}

func (s *TrackerServer) handleGetHistory(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetHistoryParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.session.History()
	if params.Limit > 0 && len(history) > params.Limit {
		history = history[len(history)-params.Limit:]
	}
	return s.createJSONResponse(map[string]interface{}{
		"history": history,
		"totals":  s.session.Totals(),
	})
}

func (s *TrackerServer) handleSetUserInfo(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SetUserInfoParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SetAttributes(ctx, params.Attributes); err != nil {
		return nil, fmt.Errorf("failed to save user info: %w", err)
	}
	return s.createJSONResponse(map[string]interface{}{
		"attributes": s.session.UserInfo(),
		"missing":    params.Attributes.Missing(),
	})
}

func (s *TrackerServer) handleSaveProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SaveProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	attrs := s.session.UserInfo()
	if params.Attributes != nil {
		attrs = *params.Attributes
	}

	profile, err := s.session.SaveProfile(ctx, params.Name, attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return s.createJSONResponse(map[string]interface{}{
		"profile": profile,
	})
}

func (s *TrackerServer) handleRenameProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RenameProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.session.RenameProfile(ctx, params.ID, params.NewName)
	if errors.Is(err, session.ErrNotFound) {
		return s.errorResponse(err.Error(), "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rename profile: %w", err)
	}
	return s.createJSONResponse(map[string]interface{}{
		"renamed": params.ID,
		"name":    params.NewName,
	})
}

func (s *TrackerServer) handleDeleteProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !params.Confirm {
		return s.createJSONResponse(map[string]interface{}{
			"confirmation_required": true,
			"message":               "Deleting a profile cannot be undone. Repeat with confirm=true.",
		})
	}

	err := s.session.DeleteProfile(ctx, params.ID)
	if errors.Is(err, session.ErrNotFound) {
		return s.errorResponse(err.Error(), "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete profile: %w", err)
	}
	return s.createJSONResponse(map[string]interface{}{
		"deleted":           params.ID,
		"active_profile_id": s.session.ActiveProfileID(),
	})
}

func (s *TrackerServer) handleLoadProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LoadProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.session.LoadProfile(ctx, params.ID)
	if errors.Is(err, session.ErrNotFound) {
		return s.errorResponse(err.Error(), "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return s.createJSONResponse(map[string]interface{}{
		"profile": profile,
	})
}

func (s *TrackerServer) handleListProfiles(_ context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createJSONResponse(map[string]interface{}{
		"profiles":          s.session.Profiles(),
		"active_profile_id": s.session.ActiveProfileID(),
	})
}

// handleAnalyze combines the ledger totals with the active attribute set and
// asks the recommendation engine for targets and supplement solutions.
func (s *TrackerServer) handleAnalyze(ctx context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.mu.Lock()
	attrs := s.session.Attributes()
	totals := s.session.Totals()
	gateErr := s.session.CanAnalyze()
	s.mu.Unlock()

	var vErr *session.ValidationError
	if errors.As(gateErr, &vErr) {
		return s.createJSONResponse(map[string]interface{}{
			"error":          "missing information needed before analysis",
			"missing_fields": vErr.Missing,
		})
	}
	if errors.Is(gateErr, session.ErrNoFoodLogged) {
		return s.errorResponse("No food logged yet. Please add some food items first.", "")
	}

	rec, err := s.recommender.Recommend(ctx, attrs, totals)
	if err != nil {
		return s.errorResponse(fmt.Sprintf("unable to generate recommendation: %v", err), "")
	}

	return s.createJSONResponse(map[string]interface{}{
		"recommendation": rec,
		"totals":         totals,
	})
}
