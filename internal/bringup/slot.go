package bringup

import (
	"fmt"
	"path/filepath"
)

// SlotCount is the number of physical sensor slots on the device.
const SlotCount = 6

// Slot is one physical sensor position bound to a mux channel.
type Slot struct {
	Index           int
	Name            string
	Channel         int
	CalibrationPath string
}

// Slots returns the six fixed slots. Slot N is "mpuN" on channel N with
// calibration file <calibrationDir>/mpuN_cal.txt.
func Slots(calibrationDir string) []Slot {
	slots := make([]Slot, SlotCount)
	for i := range slots {
		name := SlotName(i)
		slots[i] = Slot{
			Index:           i,
			Name:            name,
			Channel:         i,
			CalibrationPath: filepath.Join(calibrationDir, name+"_cal.txt"),
		}
	}
	return slots
}

func SlotName(index int) string {
	return fmt.Sprintf("mpu%d", index)
}

// SlotNames returns mpu0..mpu5.
func SlotNames() []string {
	names := make([]string, SlotCount)
	for i := range names {
		names[i] = SlotName(i)
	}
	return names
}

// progressRange returns the contiguous sub-range of 0-100 shown while slot
// index of n is processed. For six slots this is 0-17, 18-34 ... 86-100.
// The last slot always ends at exactly 100.
func progressRange(index, n int) (lo, hi int) {
	width := (100 + n - 1) / n
	if index > 0 {
		lo = min(width*index, 100) + 1
	}
	hi = min(width*(index+1), 100)
	if index == n-1 {
		hi = 100
	}
	return lo, hi
}
