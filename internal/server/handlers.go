// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/docgate/docgate/internal/access/policy"
	"github.com/docgate/docgate/internal/access/policy/store"
	"github.com/docgate/docgate/internal/access/types"
	"github.com/docgate/docgate/internal/entity"
)

// errorResponse is the wire shape for failures.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// checkResponse is the wire shape for a permission decision.
type checkResponse struct {
	Allowed          bool     `json:"allowed"`
	Message          string   `json:"message"`
	MatchedPolicies  []string `json:"matched_policies"`
	EvaluationTimeMS int64    `json:"evaluation_time_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	resourceID := r.URL.Query().Get("resourceId")
	if resourceID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "resourceId query parameter is required")
		return
	}

	stored, err := s.policies.GetResourcePolicy(r.Context(), resourceID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // response write error means the client went away
	w.Write(stored.Document)
}

func (s *Server) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "could not read request body")
		return
	}

	creatorID := r.Header.Get(callerIDHeader)
	doc, err := policy.DecodeIngest(body, creatorID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	// Full replace: the stored document for a resource is whatever was
	// ingested last.
	if err := s.policies.SaveResourcePolicy(r.Context(), doc.Resource.ResourceID, raw); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGetUserPolicy(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "userId query parameter is required")
		return
	}

	stored, err := s.policies.GetUserPolicy(r.Context(), userID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // response write error means the client went away
	w.Write(stored.Document)
}

func (s *Server) handlePutUserPolicy(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "userId query parameter is required")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "could not read request body")
		return
	}

	doc, err := policy.DecodeUserDocument(body)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := s.policies.SaveUserPolicy(r.Context(), userID, raw); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePermissionCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resourceID := q.Get("resourceId")
	userID := q.Get("userId")
	action := q.Get("action")
	if resourceID == "" || userID == "" || action == "" {
		writeError(w, http.StatusBadRequest, "validation_error",
			"resourceId, userId, and action query parameters are required")
		return
	}

	result, err := s.decisions.Check(r.Context(), resourceID, userID, types.Permission(action))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkResponse{
		Allowed:          result.Allowed,
		Message:          result.Message,
		MatchedPolicies:  result.MatchedPolicies,
		EvaluationTimeMS: result.EvaluationTime.Milliseconds(),
	})
}

// writeFailure maps an error to its HTTP status: validation errors are 400,
// missing entities or policies are 404, everything else is 500.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case policy.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case store.IsNotFound(err) || entity.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func httpStatusLabel(status int) string {
	return strconv.Itoa(status)
}
