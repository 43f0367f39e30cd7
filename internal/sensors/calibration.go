package sensors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/aequus_trainer/internal/imu"
)

// LoadCalibration reads a per-slot calibration file (mpuN_cal.txt).
func LoadCalibration(path string) (imu.Offsets, error) {
	f, err := os.Open(path)
	if err != nil {
		return imu.Offsets{}, fmt.Errorf("%w: %w", ErrCalibration, err)
	}
	defer f.Close()

	off, err := ParseCalibration(f)
	if err != nil {
		return imu.Offsets{}, fmt.Errorf("%s: %w", path, err)
	}
	return off, nil
}

// ParseCalibration reads six integer offsets in the order
// ax ay az gx gy gz, separated by whitespace or newlines. Lines starting
// with '#' are comments.
func ParseCalibration(r io.Reader) (imu.Offsets, error) {
	var values []int16

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseInt(field, 10, 16)
			if err != nil {
				return imu.Offsets{}, fmt.Errorf("%w: line %d: %q: %w", ErrCalibration, lineNum, field, err)
			}
			values = append(values, int16(v))
		}
	}
	if err := scanner.Err(); err != nil {
		return imu.Offsets{}, fmt.Errorf("%w: %w", ErrCalibration, err)
	}
	if len(values) != 6 {
		return imu.Offsets{}, fmt.Errorf("%w: want 6 offsets, got %d", ErrCalibration, len(values))
	}

	return imu.Offsets{
		Ax: values[0], Ay: values[1], Az: values[2],
		Gx: values[3], Gy: values[4], Gz: values[5],
	}, nil
}

// WriteCalibration stores offsets in the format ParseCalibration reads.
func WriteCalibration(path string, off imu.Offsets) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("calibration dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := FormatCalibration(f, off, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func FormatCalibration(w io.Writer, off imu.Offsets, at time.Time) error {
	_, err := fmt.Fprintf(w, "# calibrated %s\n# ax ay az\n%d %d %d\n# gx gy gz\n%d %d %d\n",
		at.Format(time.RFC3339), off.Ax, off.Ay, off.Az, off.Gx, off.Gy, off.Gz)
	return err
}
