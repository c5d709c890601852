package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gridtwin/gridtwin/pkg/engine"
	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

type simulateRequest struct {
	EquipmentType string                    `json:"equipmentType" validate:"required"`
	DurationHours float64                   `json:"durationHours" validate:"omitempty,gt=0,lte=8760"`
	SubstationID  string                    `json:"substationId"`
	EquipmentID   string                    `json:"equipmentId"`
	LiveReadings  map[string]any            `json:"liveReadings"`
	AssetSpec     *types.AssetSpecification `json:"assetSpec"`
	Seed          *uint64                   `json:"seed"`
	Persist       bool                      `json:"persist"`
}

type simulateResponse struct {
	*types.SimulationResult
	RunID string `json:"runId,omitempty"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Limit body size to 1MB to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// since we failed to read, don't return JSON error
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSONError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	equipmentType, ok := types.ParseEquipmentType(req.EquipmentType)
	if !ok {
		writeJSONError(w, fmt.Sprintf("unknown equipmentType %q", req.EquipmentType), http.StatusBadRequest)
		return
	}
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("equipmentType", string(equipmentType))))

	readings := req.LiveReadings
	spec := req.AssetSpec
	if req.SubstationID != "" {
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("substationID", req.SubstationID)))
		if spec == nil {
			stored, err := s.storage.GetAssetSpecification(ctx, req.SubstationID, equipmentType)
			if err != nil {
				// a missing spec is a data gap, the run proceeds on the baseline
				log.Ctx(ctx).WarnContext(ctx, "no stored asset specification, proceeding without", slog.Any("error", err))
			} else {
				spec = stored
			}
		}
		if len(readings) == 0 {
			stored, err := s.storage.GetLatestReadings(ctx, req.SubstationID, equipmentType)
			if err != nil {
				log.Ctx(ctx).WarnContext(ctx, "failed to load stored readings, proceeding without", slog.Any("error", err))
			} else {
				readings = stored
			}
		}
	}

	start := time.Now()
	res, err := engine.Run(ctx, s.registry, engine.Request{
		EquipmentType: equipmentType,
		LiveReadings:  readings,
		AssetSpec:     spec,
		DurationHours: req.DurationHours,
		Seed:          req.Seed,
	})
	if err != nil {
		s.metrics.RecordSimulation(string(equipmentType), "error", time.Since(start))
		var cfgErr *registry.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "simulation failed", slog.Any("error", err))
		writeJSONError(w, "simulation failed", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordSimulation(string(equipmentType), "ok", time.Since(start))
	s.metrics.RecordHealthScore(string(equipmentType), res.HealthScores.Overall)
	for _, f := range res.FaultPredictions {
		s.metrics.RecordPredictedFault(string(equipmentType), string(f.Severity))
	}

	resp := simulateResponse{SimulationResult: res}
	if req.Persist {
		rec := &types.SimulationRecord{
			SubstationID:  req.SubstationID,
			EquipmentID:   req.EquipmentID,
			EquipmentType: equipmentType,
			DurationHours: res.Timeline[len(res.Timeline)-1].Time,
			Result:        res,
		}
		if err := s.storage.SaveSimulation(ctx, rec); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to persist simulation", slog.Any("error", err))
			writeJSONError(w, "failed to persist simulation", http.StatusInternalServerError)
			return
		}
		resp.RunID = rec.ID
		log.Ctx(ctx).InfoContext(ctx, "persisted simulation", slog.String("runID", rec.ID))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		panic(http.ErrAbortHandler)
	}
}
