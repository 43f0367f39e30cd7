package calibration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/relabs-tech/aequus_trainer/internal/imu"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	accel := []Vec3{{X: 10, Y: -20, Z: 16400}, {X: 12, Y: -22, Z: 16404}}
	gyro := []Vec3{{X: 3, Y: -1, Z: 0}, {X: 5, Y: -3, Z: 1}}

	got, err := Compute("mpu1", accel, gyro)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	want := imu.Offsets{Ax: 11, Ay: -21, Az: 18, Gx: 4, Gy: -2, Gz: 1}
	if diff := cmp.Diff(want, got.Offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for still samples", got.Confidence)
	}
	if got.Accel.Samples != 2 {
		t.Errorf("Accel.Samples = %d, want 2", got.Accel.Samples)
	}
}

func TestComputeNoSamples(t *testing.T) {
	t.Parallel()

	if _, err := Compute("mpu0", nil, nil); !errors.Is(err, ErrNoSamples) {
		t.Errorf("Compute() error = %v, want ErrNoSamples", err)
	}
}

func TestStillnessConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		std  float64
		want float64
	}{
		{std: 0, want: 1},
		{std: stillStdGood, want: 1},
		{std: stillStdBad, want: confFloor},
		{std: 100, want: confFloor},
	}
	for _, tt := range tests {
		if got := stillnessConfidence(Vec3{X: tt.std, Y: tt.std, Z: tt.std}); got != tt.want {
			t.Errorf("stillnessConfidence(%v) = %v, want %v", tt.std, got, tt.want)
		}
	}

	mid := stillnessConfidence(Vec3{X: 7.5, Y: 7.5, Z: 7.5})
	if mid <= confFloor || mid >= 1 {
		t.Errorf("stillnessConfidence(7.5) = %v, want between floor and 1", mid)
	}
}

func TestCapture(t *testing.T) {
	t.Parallel()

	n := 0
	read := func() (imu.IMURaw, error) {
		n++
		return imu.IMURaw{Az: OneG, Gx: int16(n)}, nil
	}

	accel, gyro, err := Capture(context.Background(), read, 5, 0)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if len(accel) != 5 || len(gyro) != 5 {
		t.Fatalf("captured %d/%d samples, want 5", len(accel), len(gyro))
	}
	if gyro[4].X != 5 || accel[0].Z != OneG {
		t.Errorf("unexpected samples: accel[0]=%v gyro[4]=%v", accel[0], gyro[4])
	}
}

func TestCaptureReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bus error")
	read := func() (imu.IMURaw, error) { return imu.IMURaw{}, boom }
	if _, _, err := Capture(context.Background(), read, 3, 0); !errors.Is(err, boom) {
		t.Errorf("Capture() error = %v, want %v", err, boom)
	}
}

func TestRound16(t *testing.T) {
	t.Parallel()

	for in, want := range map[float64]int16{1.4: 1, 1.5: 2, -1.5: -2, 1e6: 32767, -1e6: -32768} {
		if got := round16(in); got != want {
			t.Errorf("round16(%v) = %d, want %d", in, got, want)
		}
	}
}
