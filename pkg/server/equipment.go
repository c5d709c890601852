package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// equipmentCatalogEntry is the served view of one equipment type: everything
// a client needs to render forms and interpret simulation output.
type equipmentCatalogEntry struct {
	EquipmentType types.EquipmentType           `json:"equipmentType"`
	DisplayName   string                        `json:"displayName"`
	Baseline      types.ParameterState          `json:"baseline"`
	Subsystems    []registry.SubsystemWeight    `json:"subsystems"`
	Thresholds    []registry.ParameterThreshold `json:"thresholds"`
	FaultLibrary  []registry.FaultSignature     `json:"faultLibrary"`
}

func (s *Server) handleEquipmentCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	all := types.AllEquipmentTypes()
	entries := make([]equipmentCatalogEntry, 0, len(all))
	for _, t := range all {
		entry := equipmentCatalogEntry{
			EquipmentType: t,
			DisplayName:   t.DisplayName(),
		}
		var err error
		if entry.Baseline, err = s.registry.Baseline(t); err == nil {
			if entry.Subsystems, err = s.registry.Subsystems(t); err == nil {
				if entry.Thresholds, err = s.registry.ParameterThresholds(t); err == nil {
					entry.FaultLibrary, err = s.registry.FaultLibrary(t)
				}
			}
		}
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to assemble equipment catalog", slog.String("equipmentType", string(t)), slog.Any("error", err))
			writeJSONError(w, "failed to assemble equipment catalog", http.StatusInternalServerError)
			return
		}
		entries = append(entries, entry)
	}

	// the catalog is compiled in, clients can cache it
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(struct {
		Equipment []equipmentCatalogEntry `json:"equipment"`
	}{Equipment: entries}); err != nil {
		panic(http.ErrAbortHandler)
	}
}
