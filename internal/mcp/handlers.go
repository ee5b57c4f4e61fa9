package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/orbit/internal/command"
	"github.com/hpungsan/orbit/internal/config"
	"github.com/hpungsan/orbit/internal/errors"
	"github.com/hpungsan/orbit/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers. One MCP connection is
// one session, so the undo slot lives here.
type Handlers struct {
	exec *ops.Executor
	cfg  *config.Config

	mu   sync.Mutex
	sess ops.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(exec *ops.Executor, cfg *config.Config) *Handlers {
	return &Handlers{exec: exec, cfg: cfg}
}

// Request types for each tool

// ExecuteRequest represents the arguments for command_execute.
type ExecuteRequest struct {
	Line         string `json:"line"`
	ForceConvert bool   `json:"force_convert,omitempty"`
}

// TokenizeRequest represents the arguments for command_tokenize.
type TokenizeRequest struct {
	Line string `json:"line"`
}

// ContactCreateRequest represents the arguments for contact_create.
type ContactCreateRequest struct {
	Name  string `json:"name"`
	Orbit *int   `json:"orbit,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// ContactFetchRequest represents the arguments for contact_fetch.
type ContactFetchRequest struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name,omitempty"`
	IncludeArchived bool   `json:"include_archived,omitempty"`
	RecentLimit     int    `json:"recent_limit,omitempty"`
}

// ContactListRequest represents the arguments for contact_list.
type ContactListRequest struct {
	IncludeArchived bool `json:"include_archived,omitempty"`
	DriftingOnly    bool `json:"drifting_only,omitempty"`
	Orbit           *int `json:"orbit,omitempty"`
	Limit           int  `json:"limit,omitempty"`
	Offset          int  `json:"offset,omitempty"`
}

// ContactUpdateRequest represents the arguments for contact_update.
type ContactUpdateRequest struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name,omitempty"`
	NewName *string `json:"new_name,omitempty"`
	Notes   *string `json:"notes,omitempty"`
	Orbit   *int    `json:"orbit,omitempty"`
}

// RefRequest addresses a contact or constellation by ID or name.
type RefRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// MembershipRequest represents the arguments for the member tools.
type MembershipRequest struct {
	ConstellationID string `json:"constellation_id,omitempty"`
	Constellation   string `json:"constellation,omitempty"`
	ContactID       string `json:"contact_id,omitempty"`
	Contact         string `json:"contact,omitempty"`
}

// TagListRequest represents the arguments for tag_list.
type TagListRequest struct {
	Prefix string `json:"prefix,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// SearchRequest represents the arguments for interaction_search.
type SearchRequest struct {
	ContactID string `json:"contact_id,omitempty"`
	Contact   string `json:"contact,omitempty"`
	Query     string `json:"query,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// TimelineRequest represents the arguments for interaction_timeline.
type TimelineRequest struct {
	Limit int `json:"limit,omitempty"`
}

// PurgeRequest represents the arguments for interaction_purge.
type PurgeRequest struct {
	ContactID     string `json:"contact_id,omitempty"`
	Contact       string `json:"contact,omitempty"`
	OlderThanDays *int   `json:"older_than_days,omitempty"`
}

// ExecuteOutput is a command result plus the session's undo state.
type ExecuteOutput struct {
	ops.Result
	CanUndo bool `json:"can_undo"`
}

// TokenizeOutput contains the result of command_tokenize.
type TokenizeOutput struct {
	Tokens []command.Token `json:"tokens"`
}

// Handler implementations

// HandleExecute handles the command_execute tool call.
func (h *Handlers) HandleExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExecuteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.Line) == "" {
		return errorResult(errors.NewInvalidRequest("line is required")), nil
	}

	cmd := command.Parse(input.Line)
	if a, ok := cmd.(command.AppendArtifact); ok && input.ForceConvert {
		a.ForceConvert = true
		cmd = a
	}

	h.mu.Lock()
	res, sess := h.exec.Execute(ctx, h.sess, cmd)
	h.sess = sess
	h.mu.Unlock()

	return successResult(ExecuteOutput{Result: res, CanUndo: sess.CanUndo()})
}

// HandleTokenize handles the command_tokenize tool call.
func (h *Handlers) HandleTokenize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TokenizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	tokens := command.Tokenize(input.Line)
	if tokens == nil {
		tokens = []command.Token{}
	}
	return successResult(TokenizeOutput{Tokens: tokens})
}

// HandleContactCreate handles the contact_create tool call.
func (h *Handlers) HandleContactCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContactCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.exec.CreateContact(ctx, ops.CreateContactInput{
		Name:  input.Name,
		Orbit: input.Orbit,
		Notes: input.Notes,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleContactFetch handles the contact_fetch tool call.
func (h *Handlers) HandleContactFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContactFetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FetchContact(ctx, h.exec.DB(), ops.FetchContactInput{
		ID:              input.ID,
		Name:            input.Name,
		IncludeArchived: input.IncludeArchived,
		RecentLimit:     input.RecentLimit,
		CadenceDays:     h.cfg.CadenceDays,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleContactList handles the contact_list tool call.
func (h *Handlers) HandleContactList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContactListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListContacts(ctx, h.exec.DB(), ops.ListContactsInput{
		IncludeArchived: input.IncludeArchived,
		DriftingOnly:    input.DriftingOnly,
		Orbit:           input.Orbit,
		Limit:           input.Limit,
		Offset:          input.Offset,
		CadenceDays:     h.cfg.CadenceDays,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleContactUpdate handles the contact_update tool call.
func (h *Handlers) HandleContactUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContactUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.exec.UpdateContact(ctx, ops.UpdateContactInput{
		ID:      input.ID,
		Name:    input.Name,
		NewName: input.NewName,
		Notes:   input.Notes,
		Orbit:   input.Orbit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleContactDelete handles the contact_delete tool call.
func (h *Handlers) HandleContactDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.exec.DeleteContact(ctx, input.ID, input.Name)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleConstellationCreate handles the constellation_create tool call.
func (h *Handlers) HandleConstellationCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.exec.CreateConstellation(ctx, input.Name)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleConstellationDelete handles the constellation_delete tool call.
func (h *Handlers) HandleConstellationDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.exec.DeleteConstellation(ctx, input.ID, input.Name)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAddMember handles the constellation_add_member tool call.
func (h *Handlers) HandleAddMember(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MembershipRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.exec.AddMember(ctx, input.toOps())
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRemoveMember handles the constellation_remove_member tool call.
func (h *Handlers) HandleRemoveMember(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MembershipRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.exec.RemoveMember(ctx, input.toOps())
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

func (r MembershipRequest) toOps() ops.MembershipInput {
	return ops.MembershipInput{
		ConstellationID:   r.ConstellationID,
		ConstellationName: r.Constellation,
		ContactID:         r.ContactID,
		ContactName:       r.Contact,
	}
}

// HandleConstellationList handles the constellation_list tool call.
func (h *Handlers) HandleConstellationList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListConstellations(ctx, h.exec.DB())
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagList handles the tag_list tool call.
func (h *Handlers) HandleTagList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListTags(ctx, h.exec.DB(), ops.ListTagsInput{Prefix: input.Prefix, Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the interaction_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SearchInteractions(ctx, h.exec.DB(), ops.SearchInput{
		ContactID:   input.ContactID,
		ContactName: input.Contact,
		Query:       input.Query,
		Limit:       input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTimeline handles the interaction_timeline tool call.
func (h *Handlers) HandleTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TimelineRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Timeline(ctx, h.exec.DB(), input.Limit)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the interaction_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.exec.PurgeInteractions(ctx, ops.PurgeInput{
		ContactID:     input.ContactID,
		ContactName:   input.Contact,
		OlderThanDays: input.OlderThanDays,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var oErr *errors.OrbitError
	if stderrors.As(err, &oErr) {
		// Keep wrapper context such as "member Tom: ..." in the message.
		message := oErr.Message
		if prefix := strings.TrimSuffix(err.Error(), oErr.Error()); prefix != err.Error() {
			message = prefix + message
		}
		errorObj := map[string]any{
			"code":    oErr.Code,
			"message": message,
			"status":  oErr.Status,
		}
		if oErr.Code != errors.ErrInternal && oErr.Details != nil {
			errorObj["details"] = oErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
