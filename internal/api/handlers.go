package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
	"github.com/raaihank/compliance-sentinel/internal/websocket"
)

var errNoRegulations = errors.New("no regulations requested and none could be detected")

// handleHealth handles health check requests. A configured report store must answer a ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()}
	status := http.StatusOK

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp.Checks = map[string]string{"store": "ok"}
		if err := s.store.Ping(ctx); err != nil {
			s.logger.Warn("Report store health check failed", zap.Error(err))
			resp.Status = "unhealthy"
			resp.Checks["store"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, status, resp)
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, InfoResponse{
		Name:             "compliance-sentinel",
		Version:          Version,
		Regulations:      s.registry.IDs(),
		CacheEnabled:     s.cache != nil,
		StoreEnabled:     s.store != nil,
		WebSocketEnabled: s.config.WebSocket.Enabled,
		RateLimitEnabled: s.config.RateLimit.Enabled,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusNotFound, "route not found")
}

func (s *Server) handleListRegulations(w http.ResponseWriter, r *http.Request) {
	regs := s.registry.All()
	s.writeJSON(w, http.StatusOK, RegulationsResponse{Regulations: regs, Count: len(regs)})
}

func (s *Server) handleGetRegulation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	reg, ok := s.registry.Get(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "unknown regulation: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	reg, ok := s.registry.Get(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "unknown regulation: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, RulesResponse{RegulationID: reg.ID, Rules: s.registry.Rules(reg.ID)})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !s.decode(w, r, &req) {
		return
	}

	detection := s.detector.Detect(req.OperatingCountries, req.UserLocations, req.DataProcessingLocations)
	s.writeJSON(w, http.StatusOK, DetectResponse{RequestID: getRequestID(r.Context()), Detection: detection})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"locations": s.detector.SupportedLocations()})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if !s.decode(w, r, &req) {
		return
	}

	ids, err := s.resolveRegulations(&req)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	assessments, cached := s.assess(r.Context(), req, ids)
	s.writeJSON(w, http.StatusOK, AssessResponse{
		RequestID:          getRequestID(r.Context()),
		ProjectID:          req.ProjectID,
		Assessments:        assessments,
		UnknownRegulations: s.unknown(ids),
		Cached:             cached,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	requestID := getRequestID(ctx)
	log := s.logger.WithRequestID(requestID).WithProject(req.ProjectID)

	assessments := req.Assessments
	if assessments == nil {
		ids, err := s.resolveRegulations(&req.AssessRequest)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		assessments, _ = s.assess(ctx, req.AssessRequest, ids)
	}

	rep := s.aggregator.Generate(req.ProjectID, assessments)
	s.totalReports.Add(1)

	persisted := false
	if s.store != nil {
		if err := s.store.Save(ctx, &rep); err != nil {
			log.Error("Failed to persist report", zap.Error(err))
			s.writeError(w, r, http.StatusInternalServerError, "failed to persist report")
			return
		}
		persisted = true
	}

	log.Info("Compliance report generated",
		zap.Int("overall_score", rep.OverallScore),
		zap.Int("critical_gaps", rep.CriticalGaps),
		zap.Bool("no_data", rep.NoData),
		zap.Bool("persisted", persisted),
	)
	s.wsHub.BroadcastEvent(websocket.NewReportEvent(requestID, rep, persisted))

	s.writeJSON(w, http.StatusOK, ReportResponse{RequestID: requestID, Report: rep, Persisted: persisted})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "report storage is disabled")
		return
	}

	id := mux.Vars(r)["reportID"]
	rep, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.logger.WithRequestID(getRequestID(r.Context())).Error("Failed to load report",
			zap.String("report_id", id), zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "failed to load report")
		return
	}
	if rep == nil {
		s.writeError(w, r, http.StatusNotFound, "report not found: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "report storage is disabled")
		return
	}

	projectID := mux.Vars(r)["projectID"]
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	reports, err := s.store.ListByProject(r.Context(), projectID, limit)
	if err != nil {
		s.logger.WithRequestID(getRequestID(r.Context())).Error("Failed to list reports",
			zap.String("project_id", projectID), zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "failed to list reports")
		return
	}
	s.writeJSON(w, http.StatusOK, ReportListResponse{ProjectID: projectID, Reports: reports, Count: len(reports)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := map[string]interface{}{
		"server":    s.systemStatus(),
		"websocket": s.wsHub.GetStats(),
		"rate_limiter": map[string]int{
			"tracked_clients": s.limiter.Clients(),
		},
	}

	if s.cache != nil {
		if stats, err := s.cache.Stats(ctx); err == nil {
			resp["cache"] = stats
		} else {
			s.logger.Warn("Failed to get cache stats", zap.Error(err))
		}
	}
	if s.store != nil {
		if stats, err := s.store.Stats(ctx); err == nil {
			resp["store"] = stats
		} else {
			s.logger.Warn("Failed to get store stats", zap.Error(err))
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// resolveRegulations picks the explicit list, then detected regulations, then configured defaults
func (s *Server) resolveRegulations(req *AssessRequest) ([]string, error) {
	if len(req.Regulations) > 0 {
		return req.Regulations, nil
	}
	if !req.Jurisdictions.empty() {
		j := req.Jurisdictions
		detected := s.detector.Detect(j.OperatingCountries, j.UserLocations, j.DataProcessingLocations)
		if len(detected.ApplicableRegulations) > 0 {
			return detected.ApplicableRegulations, nil
		}
	}
	if len(s.config.Compliance.DefaultRegulations) > 0 {
		return s.config.Compliance.DefaultRegulations, nil
	}
	return nil, errNoRegulations
}

// assess runs the assessor, consulting the cache when one is configured.
// Cache failures are logged and never fail the request.
func (s *Server) assess(ctx context.Context, req AssessRequest, ids []string) ([]assessment.Assessment, bool) {
	start := time.Now()
	requestID := getRequestID(ctx)
	log := s.logger.WithRequestID(requestID)

	var key string
	if s.cache != nil {
		key = s.cache.Key(req.ProjectConfig.Controls(), ids, time.Now())
		cached, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("Assessment cache lookup failed", zap.Error(err))
		}
		if hit {
			s.totalAssessments.Add(1)
			s.wsHub.BroadcastEvent(websocket.NewAssessmentEvent(requestID, req.ProjectID, cached, true, time.Since(start)))
			return cached, true
		}
	}

	assessments := s.assessor.Assess(req.ProjectConfig, ids)
	s.totalAssessments.Add(1)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, assessments); err != nil {
			log.Warn("Failed to cache assessments", zap.Error(err))
		}
	}

	log.Info("Project assessed",
		zap.String("project_id", req.ProjectID),
		zap.Strings("regulations", ids),
		zap.Int("assessments", len(assessments)),
		zap.Duration("duration", time.Since(start)),
	)
	s.wsHub.BroadcastEvent(websocket.NewAssessmentEvent(requestID, req.ProjectID, assessments, false, time.Since(start)))

	return assessments, false
}

func (s *Server) unknown(ids []string) []string {
	var unknown []string
	for _, id := range ids {
		if !s.registry.Has(id) {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// decode reads a JSON body into v, writing a 4xx response on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message, RequestID: getRequestID(r.Context())})
}
