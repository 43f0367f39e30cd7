package sensors

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/relabs-tech/aequus_trainer/internal/imu"
)

// Simulated stands in for the mux and the six sensors when no hardware is
// attached. Channels listed in fail behave like an absent device.
type Simulated struct {
	mu      sync.Mutex
	current int
	fail    map[int]bool
}

func NewSimulated(fail []int) *Simulated {
	s := &Simulated{current: -1, fail: make(map[int]bool, len(fail))}
	for _, ch := range fail {
		s.fail[ch] = true
	}
	return s
}

func (s *Simulated) Select(channel int) error {
	if channel < 0 || channel >= muxChannels {
		return fmt.Errorf("simulated mux: channel %d: %w", channel, ErrChannel)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = channel
	return nil
}

func (s *Simulated) Open(name, calibrationPath string) (*SimulatedSensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < 0 {
		return nil, fmt.Errorf("%s: no mux channel selected: %w", name, ErrChannel)
	}
	if s.fail[s.current] {
		return nil, fmt.Errorf("%s: channel %d: %w", name, s.current, ErrNotPresent)
	}
	return &SimulatedSensor{name: name, channel: s.current}, nil
}

// SimulatedSensor returns a device lying flat with a little noise.
type SimulatedSensor struct {
	name    string
	channel int
}

func (s *SimulatedSensor) Name() string { return s.name }

func (s *SimulatedSensor) ReadRaw() (imu.IMURaw, error) {
	noise := func() int16 { return int16(rand.IntN(41) - 20) }
	return imu.IMURaw{
		Source: s.name,
		Ax:     noise(),
		Ay:     noise(),
		Az:     16384 + noise(), // 1g at ±2g full scale
		Gx:     noise(),
		Gy:     noise(),
		Gz:     noise(),
	}, nil
}

func (s *SimulatedSensor) Close() error { return nil }

// DumpRegisters reports the register state Open leaves a real device in.
func (s *SimulatedSensor) DumpRegisters() ([]RegisterValue, error) {
	out := make([]RegisterValue, 0, len(mpu6050Registers))
	for _, r := range mpu6050Registers {
		var v byte
		switch r.Address {
		case regConfig:
			v = dlpf44Hz
		case regWhoAmI:
			v = whoAmIMPU6050
		}
		out = append(out, RegisterValue{Register: r, Value: v})
	}
	return out, nil
}
