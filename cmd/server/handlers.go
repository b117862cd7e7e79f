package main

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/liamcoop/drills/checks"
	"github.com/liamcoop/drills/exercises"
	"github.com/liamcoop/drills/internal/logger"
	"github.com/liamcoop/drills/suites"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "healthy",
		Storage:      s.storage(),
		SuitesLoaded: len(s.suites.ListSuites()),
	}

	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := logger.Snapshot()
	metrics["suites"] = int64(len(s.suites.ListSuites()))
	metrics["rate_limited_clients"] = int64(s.limiter.Len())
	respondJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	ops := exercises.Operations()
	out := make([]ExerciseResponse, len(ops))
	for i, op := range ops {
		out[i] = ExerciseResponse{
			Name:     op.Name,
			Arity:    op.Arity,
			Variadic: op.Variadic,
			Usage:    op.Usage,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"exercises": out})
}

func (s *Server) handleInvokeExercise(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := exercises.Invoke(name, req.Args)
	switch {
	case errors.Is(err, exercises.ErrUnknownOperation):
		respondError(w, http.StatusNotFound, "exercise not found", err)
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, "invalid arguments", err)
		return
	}

	respondJSON(w, http.StatusOK, InvokeResponse{
		Exercise: name,
		Result:   jsonResult(result),
		Text:     exercises.FormatResult(result),
	})
}

// jsonResult wraps bare floats so infinities encode as strings.
func jsonResult(result any) any {
	if f, ok := result.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return exercises.Number(f)
	}
	return result
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.SuiteID == "" {
		req.SuiteID = suites.BuiltinSuiteID
	}

	suite, err := s.suites.GetSuite(req.SuiteID)
	if err != nil {
		respondError(w, http.StatusNotFound, "suite not found", err)
		return
	}

	facts, err := suite.Schema.PrepareFacts(req.Facts)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid facts", err)
		return
	}

	startTime := time.Now()

	var results []*checks.EvaluationResult
	if len(req.Checks) > 0 {
		results = make([]*checks.EvaluationResult, 0, len(req.Checks))
		for _, checkID := range req.Checks {
			result, err := suite.Engine.Evaluate(checkID, facts)
			if result == nil {
				result = &checks.EvaluationResult{CheckID: checkID, Error: err}
			}
			results = append(results, result)
		}
	} else {
		results, err = suite.Engine.EvaluateAll(facts)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "evaluation failed", err)
			return
		}
	}

	resp := EvaluateResponse{
		SuiteID:        suite.ID,
		Results:        make([]ResultResponse, len(results)),
		EvaluationTime: time.Since(startTime).String(),
	}
	for i, result := range results {
		resp.Results[i] = resultResponse(result)
		if result.Passed {
			resp.Passed++
		} else {
			resp.Failed++
		}
	}
	logger.CountFailedChecks(resp.Failed)

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExpression(w http.ResponseWriter, r *http.Request) {
	var req ExpressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Expression == "" {
		respondError(w, http.StatusBadRequest, "expression is required", nil)
		return
	}
	if req.SuiteID == "" {
		req.SuiteID = suites.BuiltinSuiteID
	}

	suite, err := s.suites.GetSuite(req.SuiteID)
	if err != nil {
		respondError(w, http.StatusNotFound, "suite not found", err)
		return
	}

	facts, err := suite.Schema.PrepareFacts(req.Facts)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid facts", err)
		return
	}

	result, err := suite.Engine.EvaluateExpression(req.Expression, facts)
	if result == nil {
		respondError(w, http.StatusBadRequest, "invalid expression", err)
		return
	}

	respondJSON(w, http.StatusOK, resultResponse(result))
}

func (s *Server) handleListSuites(w http.ResponseWriter, r *http.Request) {
	list := s.suites.ListSuites()
	out := make([]SuiteResponse, len(list))
	for i, suite := range list {
		out[i] = suiteResponse(suite)
	}
	respondJSON(w, http.StatusOK, map[string]any{"suites": out})
}

func (s *Server) handleCreateSuite(w http.ResponseWriter, r *http.Request) {
	var req CreateSuiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Schema == nil {
		req.Schema = suites.BuiltinSchema
	}

	suite, err := s.suites.CreateSuite(r.Context(), req.ID, req.Name, req.Schema)
	switch {
	case errors.Is(err, suites.ErrSuiteExists):
		respondError(w, http.StatusConflict, "suite already exists", err)
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, "failed to create suite", err)
		return
	}

	respondJSON(w, http.StatusCreated, suiteResponse(suite))
}

func (s *Server) handleGetSuite(w http.ResponseWriter, r *http.Request) {
	suite, ok := s.suiteFromPath(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, suiteResponse(suite))
}

func (s *Server) handleDeleteSuite(w http.ResponseWriter, r *http.Request) {
	err := s.suites.DeleteSuite(r.Context(), chi.URLParam(r, "suiteId"))
	switch {
	case errors.Is(err, suites.ErrSuiteNotFound):
		respondError(w, http.StatusNotFound, "suite not found", err)
		return
	case errors.Is(err, suites.ErrBuiltinSuite):
		respondError(w, http.StatusForbidden, "suite is protected", err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to delete suite", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	suite, ok := s.suiteFromPath(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, SchemaResponse{
		Version:    suite.SchemaVersion,
		Definition: suite.Schema,
	})
}

func (s *Server) handleUpdateSchema(w http.ResponseWriter, r *http.Request) {
	suiteID := chi.URLParam(r, "suiteId")

	var req SchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	suite, err := s.suites.UpdateSuiteSchema(r.Context(), suiteID, req.Definition)
	switch {
	case errors.Is(err, suites.ErrSuiteNotFound):
		respondError(w, http.StatusNotFound, "suite not found", err)
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, "failed to update schema", err)
		return
	}

	respondSchemaUpdated(w, suite)
}

// respondSchemaUpdated reports the new schema version with the number of
// active checks compiled against it.
func respondSchemaUpdated(w http.ResponseWriter, suite *suites.Suite) {
	active, err := suite.Engine.Store().ListActive()
	if err != nil {
		logger.Error("failed to list checks after schema update", "suite", suite.ID, "version", suite.SchemaVersion, "error", err)
		respondError(w, http.StatusInternalServerError, "schema updated but checks could not be listed", err)
		return
	}

	respondJSON(w, http.StatusOK, SchemaResponse{
		Version:        suite.SchemaVersion,
		Definition:     suite.Schema,
		ChecksCompiled: len(active),
	})
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	suite, ok := s.suiteFromPath(w, r)
	if !ok {
		return
	}

	list, err := suite.Engine.Store().ListAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list checks", err)
		return
	}
	if list == nil {
		list = []*checks.Check{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"checks": list})
}

func (s *Server) handleCreateCheck(w http.ResponseWriter, r *http.Request) {
	suite, ok := s.suiteFromPath(w, r)
	if !ok {
		return
	}

	var req CreateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Expression == "" {
		respondError(w, http.StatusBadRequest, "expression is required", nil)
		return
	}

	check := &checks.Check{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Expression: req.Expression,
		Active:     req.Active == nil || *req.Active,
	}
	if check.Name == "" {
		check.Name = check.Expression
	}

	if err := suite.Engine.AddCheck(check); err != nil {
		respondError(w, http.StatusBadRequest, "failed to add check", err)
		return
	}

	respondJSON(w, http.StatusCreated, check)
}

func (s *Server) handleGetCheck(w http.ResponseWriter, r *http.Request) {
	suite, ok := s.suiteFromPath(w, r)
	if !ok {
		return
	}

	check, err := suite.Engine.Store().Get(chi.URLParam(r, "checkId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "check not found", err)
		return
	}

	respondJSON(w, http.StatusOK, check)
}

func (s *Server) handleUpdateCheck(w http.ResponseWriter, r *http.Request) {
	suite, ok := s.suiteFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	existing, err := suite.Engine.Store().Get(chi.URLParam(r, "checkId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "check not found", err)
		return
	}

	check := *existing
	if req.Name != nil {
		check.Name = *req.Name
	}
	if req.Expression != nil {
		check.Expression = *req.Expression
	}
	if req.Active != nil {
		check.Active = *req.Active
	}

	if err := suite.Engine.UpdateCheck(&check); err != nil {
		respondError(w, http.StatusBadRequest, "failed to update check", err)
		return
	}

	respondJSON(w, http.StatusOK, &check)
}

func (s *Server) handleDeleteCheck(w http.ResponseWriter, r *http.Request) {
	suite, ok := s.suiteFromPath(w, r)
	if !ok {
		return
	}

	if err := suite.Engine.DeleteCheck(chi.URLParam(r, "checkId")); err != nil {
		respondError(w, http.StatusNotFound, "check not found", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// suiteFromPath resolves {suiteId} and writes a 404 when it is unknown.
func (s *Server) suiteFromPath(w http.ResponseWriter, r *http.Request) (*suites.Suite, bool) {
	suite, err := s.suites.GetSuite(chi.URLParam(r, "suiteId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "suite not found", err)
		return nil, false
	}
	return suite, true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	respondJSON(w, status, resp)
}
