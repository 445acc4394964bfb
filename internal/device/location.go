package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	"fujao/internal/model"
)

// Accuracy hints how precise a position read should be.
type Accuracy int

const (
	AccuracyBalanced Accuracy = iota
	AccuracyHigh
)

// ErrNoLocationProvider means the host has no way to produce a position.
var ErrNoLocationProvider = errors.New("nenhum provedor de localização configurado")

// LocationProvider reads the current device position.
type LocationProvider interface {
	Current(ctx context.Context, accuracy Accuracy) (model.GeoCoordinate, error)
}

// FixedLocation always reports a configured coordinate. Used on hosts without
// positioning hardware.
type FixedLocation struct {
	Coordinate model.GeoCoordinate
}

func (f FixedLocation) Current(ctx context.Context, _ Accuracy) (model.GeoCoordinate, error) {
	return f.Coordinate, nil
}

// CommandLocation shells out to an external locator (termux-location, a GPS
// daemon wrapper) expected to print {"latitude": ..., "longitude": ...}.
type CommandLocation struct {
	Command string
}

func (c CommandLocation) Current(ctx context.Context, accuracy Accuracy) (model.GeoCoordinate, error) {
	if c.Command == "" {
		return model.GeoCoordinate{}, ErrNoLocationProvider
	}
	args := []string{"-c", c.Command}
	if accuracy == AccuracyHigh {
		args = []string{"-c", c.Command + " --high-accuracy"}
	}
	out, err := exec.CommandContext(ctx, "sh", args...).Output()
	if err != nil {
		return model.GeoCoordinate{}, fmt.Errorf("run locator: %w", err)
	}
	var coord model.GeoCoordinate
	if err := json.Unmarshal(out, &coord); err != nil {
		return model.GeoCoordinate{}, fmt.Errorf("parse locator output: %w", err)
	}
	return coord, nil
}

// Unavailable is a LocationProvider that always fails. It keeps the pipeline
// honest when nothing is configured: the best-effort refresh is swallowed and
// submission fails with a location error only when no coordinate was ever
// acquired.
type Unavailable struct{}

func (Unavailable) Current(context.Context, Accuracy) (model.GeoCoordinate, error) {
	return model.GeoCoordinate{}, ErrNoLocationProvider
}
