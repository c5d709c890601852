// Command simulate runs one simulation locally and prints the result as
// JSON. It accepts the same request body as POST /api/simulate, from stdin
// or a file, so the two entry points are interchangeable in scripts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gridtwin/gridtwin/pkg/engine"
	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"

	"github.com/levenlabs/go-lflag"
)

type request struct {
	EquipmentType string                    `json:"equipmentType"`
	DurationHours float64                   `json:"durationHours"`
	LiveReadings  map[string]any            `json:"liveReadings"`
	AssetSpec     *types.AssetSpecification `json:"assetSpec"`
	Seed          *uint64                   `json:"seed"`
}

func main() {
	reg := registry.Configured()
	input := lflag.String("input", "", "Read the request from this file instead of stdin")
	pretty := lflag.Bool("pretty", false, "Indent the result JSON")
	seed := lflag.String("seed", "", "Override the request's random seed")
	lflag.Configure()

	if err := run(reg, *input, *pretty, *seed); err != nil {
		// errors go to stdout as JSON so callers always get a parseable reply
		_ = json.NewEncoder(os.Stdout).Encode(struct {
			Error string `json:"error"`
		}{Error: err.Error()})
		os.Exit(1)
	}
}

func run(reg *registry.Registry, input string, pretty bool, seedOverride string) error {
	var raw []byte
	var err error
	if input != "" {
		raw, err = os.ReadFile(input)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}
	equipmentType, ok := types.ParseEquipmentType(req.EquipmentType)
	if !ok {
		return fmt.Errorf("unknown equipmentType %q", req.EquipmentType)
	}
	if seedOverride != "" {
		parsed, err := strconv.ParseUint(seedOverride, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", seedOverride, err)
		}
		req.Seed = &parsed
	}

	res, err := engine.Run(context.Background(), reg, engine.Request{
		EquipmentType: equipmentType,
		LiveReadings:  req.LiveReadings,
		AssetSpec:     req.AssetSpec,
		DurationHours: req.DurationHours,
		Seed:          req.Seed,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}
