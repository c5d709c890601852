package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/storage"
	"github.com/gridtwin/gridtwin/pkg/types"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	substationID := r.URL.Query().Get("substation")
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeJSONError(w, "invalid limit: must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(parsed, maxListLimit)
	}

	records, err := s.storage.ListSimulations(ctx, substationID, limit)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list simulations", slog.Any("error", err))
		writeJSONError(w, "failed to list simulations", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*types.SimulationRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(struct {
		Simulations []*types.SimulationRecord `json:"simulations"`
	}{Simulations: records}); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	rec, err := s.storage.GetSimulation(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, "simulation not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, storage.ErrInvalidArgument) {
			writeJSONError(w, "invalid simulation id", http.StatusBadRequest)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to load simulation", slog.String("id", id), slog.Any("error", err))
		writeJSONError(w, "failed to load simulation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		panic(http.ErrAbortHandler)
	}
}
