package imu

// IMURaw represents a single raw accelerometer+gyro sample from one
// MPU6050 slot, after calibration offsets are applied.
type IMURaw struct {
	Source string `json:"source"` // "mpu0" .. "mpu5"

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Temp int16 `json:"temp"` // raw die temperature counts
}

// Celsius converts the raw die temperature using the MPU6050 datasheet formula.
func (r IMURaw) Celsius() float64 {
	return float64(r.Temp)/340.0 + 36.53
}

// Offsets are per-axis calibration corrections in raw counts.
type Offsets struct {
	Ax, Ay, Az int16
	Gx, Gy, Gz int16
}

// Apply subtracts the offsets from a raw sample.
func (o Offsets) Apply(r IMURaw) IMURaw {
	r.Ax -= o.Ax
	r.Ay -= o.Ay
	r.Az -= o.Az
	r.Gx -= o.Gx
	r.Gy -= o.Gy
	r.Gz -= o.Gz
	return r
}
