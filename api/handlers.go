package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fogsched/benchmark"
	"fogsched/errors"
	"fogsched/logger"
	"fogsched/observability"
	"fogsched/placement"
	"fogsched/rng"
	"fogsched/validation"
	"fogsched/version"
)

// handleSchedule runs one strategy against one experiment synchronously.
// Progress events stream to subscribers of the run ID for the duration of
// the call.
func (s *Server) handleSchedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.SpecParse("request body", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	strat, ok := s.registry.Get(req.Strategy)
	if !ok {
		respondError(c, errors.UnknownStrategy(req.Strategy))
		return
	}

	if !s.acquireSlot() {
		respondError(c, errors.Busy(s.config.MaxRuns))
		return
	}
	defer s.releaseSlot()

	exp, err := hydrate(req.Experiment, req.ExperimentName, s.files)
	if err != nil {
		respondError(c, err)
		return
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	if oc := observability.OperationContextFromContext(c.Request.Context()); oc != nil {
		oc.RunID = runID
	}

	cfg := s.defaults
	if req.Config != nil {
		cfg = *req.Config
	}
	if cfg.Seed == 0 {
		cfg.Seed = rng.DeriveSeed(exp.Seed, req.Strategy, runID)
	}
	if len(cfg.Sites) == 0 {
		cfg.Sites = exp.Sites
	}
	cfg.Progress = s.hub.PublishProgress(runID)

	log := s.log.WithFields(logger.RunFields(runID, req.Strategy, exp.Name))
	log.Info("run started", map[string]interface{}{
		logger.FieldSeed: cfg.Seed,
		"tasks":          exp.Workflow.Size(),
		"nodes":          exp.Pool.Size(),
	})

	started := time.Now()
	res, err := strat.Schedule(c.Request.Context(), exp.Workflow, exp.Pool, cfg)
	elapsed := time.Since(started)
	if err != nil {
		s.recordRun(c, req.Strategy, "error", 0, elapsed)
		s.hub.Publish(RunEvent{Type: EventFailed, RunID: runID, Error: err.Error()})
		log.Error("run failed", logger.ErrorFields("schedule", err))
		respondError(c, err)
		return
	}

	metrics, err := benchmark.Compute(exp.Workflow, exp.Pool, res, cfg.Rule, cfg.Cost)
	if err != nil {
		s.recordRun(c, req.Strategy, "error", 0, elapsed)
		s.hub.Publish(RunEvent{Type: EventFailed, RunID: runID, Error: err.Error()})
		respondError(c, err)
		return
	}

	s.recordRun(c, req.Strategy, "ok", res.TotalCost, elapsed)
	s.hub.Publish(RunEvent{Type: EventDone, RunID: runID, Metrics: &metrics})
	log.Info("run finished", logger.MergeWithDuration(map[string]interface{}{
		logger.FieldCost:     res.TotalCost,
		logger.FieldMakespan: metrics.Makespan,
	}, elapsed))

	respondOK(c, ScheduleResponse{
		RunID:      runID,
		Experiment: exp.Name,
		Result:     res,
		Metrics:    metrics,
	})
}

// handlePlacement opens fog sites for a workflow without scheduling it.
func (s *Server) handlePlacement(c *gin.Context) {
	var req PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.SpecParse("request body", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	exp, err := hydrate(req.Experiment, req.ExperimentName, s.files)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(exp.Sites) == 0 {
		respondError(c, errors.MissingField("sites"))
		return
	}

	k := req.Sites
	if k == 0 {
		k = max(1, len(exp.Sites)/2)
	}
	swapBudget := req.SwapBudget
	if swapBudget == 0 {
		swapBudget = s.defaults.SwapBudget
	}

	placed, err := placement.Optimize(exp.Workflow, exp.Sites, k, swapBudget, rng.New(rng.DeriveSeed(req.Seed, "placement", exp.Name)))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := PlacementResponse{Experiment: exp.Name, Placement: placed}
	for i, si := range placed.Sites {
		resp.Nodes = append(resp.Nodes, exp.Sites[si].Open(i))
	}
	respondOK(c, resp)
}

// handleStrategies lists the registered strategies.
func (s *Server) handleStrategies(c *gin.Context) {
	names := s.registry.List()
	infos := make([]StrategyInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, StrategyInfo{Name: name})
	}
	respondOK(c, infos)
}

// handleRunEvents streams run events to the subscriber.
func (s *Server) handleRunEvents(c *gin.Context) {
	runID, err := validation.ValidateUUID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	s.hub.serveRunEvents(c, runID.String())
}

// handleHealth reports service health.
func (s *Server) handleHealth(c *gin.Context) {
	health := observability.NewServiceHealth("fogsched", version.GetShortVersion())
	health.AddComponent(observability.SchedulerHealth(s.registry.List()))

	status := http.StatusOK
	if health.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

// handleVersion reports build information.
func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetVersionInfo())
}

func (s *Server) recordRun(c *gin.Context, strategyName, status string, cost float64, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSchedule(c.Request.Context(), strategyName, status, cost, elapsed)
}

