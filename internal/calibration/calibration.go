// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration computes per-sensor offsets from samples taken while
// the device lies flat and still (Z axis up).
package calibration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/aequus_trainer/internal/imu"
)

const (
	// OneG is 1g in raw counts at ±2g full scale.
	OneG = 16384

	// Stillness heuristics in raw counts.
	stillStdGood = 3.0
	stillStdBad  = 12.0

	confFloor = 0.05
)

// ErrNoSamples is returned when a capture produced nothing to average.
var ErrNoSamples = errors.New("no samples captured")

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Stats struct {
	Samples int  `json:"samples"`
	Mean    Vec3 `json:"mean"`
	StdDev  Vec3 `json:"stddev"`
}

// Result is the outcome for one sensor.
type Result struct {
	Sensor     string      `json:"sensor"`
	Accel      Stats       `json:"accel"`
	Gyro       Stats       `json:"gyro"`
	Offsets    imu.Offsets `json:"offsets"`
	Confidence float64     `json:"confidence"`
}

// Capture reads n samples, one per period, from read.
func Capture(ctx context.Context, read func() (imu.IMURaw, error), n int, period time.Duration) (accel, gyro []Vec3, err error) {
	accel = make([]Vec3, 0, n)
	gyro = make([]Vec3, 0, n)

	ticker := time.NewTicker(max(period, time.Millisecond))
	defer ticker.Stop()

	for i := 0; i < n; i++ {
		r, err := read()
		if err != nil {
			return nil, nil, err
		}
		accel = append(accel, Vec3{X: float64(r.Ax), Y: float64(r.Ay), Z: float64(r.Az)})
		gyro = append(gyro, Vec3{X: float64(r.Gx), Y: float64(r.Gy), Z: float64(r.Gz)})

		if i == n-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-ticker.C:
		}
	}
	return accel, gyro, nil
}

// Compute derives offsets from flat, still samples. The accelerometer Z
// offset leaves exactly 1g on the vertical axis.
func Compute(sensor string, accel, gyro []Vec3) (Result, error) {
	if len(accel) == 0 || len(gyro) == 0 {
		return Result{}, fmt.Errorf("%s: %w", sensor, ErrNoSamples)
	}

	a := computeStats(accel)
	g := computeStats(gyro)

	return Result{
		Sensor: sensor,
		Accel:  a,
		Gyro:   g,
		Offsets: imu.Offsets{
			Ax: round16(a.Mean.X),
			Ay: round16(a.Mean.Y),
			Az: round16(a.Mean.Z - OneG),
			Gx: round16(g.Mean.X),
			Gy: round16(g.Mean.Y),
			Gz: round16(g.Mean.Z),
		},
		Confidence: min(stillnessConfidence(a.StdDev), stillnessConfidence(g.StdDev)),
	}, nil
}

func computeStats(values []Vec3) Stats {
	n := float64(len(values))
	var sx, sy, sz float64
	for _, v := range values {
		sx += v.X
		sy += v.Y
		sz += v.Z
	}
	mean := Vec3{X: sx / n, Y: sy / n, Z: sz / n}

	var vx, vy, vz float64
	for _, v := range values {
		dx := v.X - mean.X
		dy := v.Y - mean.Y
		dz := v.Z - mean.Z
		vx += dx * dx
		vy += dy * dy
		vz += dz * dz
	}

	return Stats{
		Samples: len(values),
		Mean:    mean,
		StdDev: Vec3{
			X: math.Sqrt(vx / n),
			Y: math.Sqrt(vy / n),
			Z: math.Sqrt(vz / n),
		},
	}
}

// stillnessConfidence maps the average standard deviation to 0..1.
func stillnessConfidence(std Vec3) float64 {
	s := (std.X + std.Y + std.Z) / 3
	switch {
	case s <= stillStdGood:
		return 1.0
	case s >= stillStdBad:
		return confFloor
	default:
		t := (s - stillStdGood) / (stillStdBad - stillStdGood)
		return max(1.0-0.95*t, confFloor)
	}
}

func round16(v float64) int16 {
	return int16(max(min(math.Round(v), math.MaxInt16), math.MinInt16))
}
