// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// Register describes one MPU6050 register for diagnostics.
type Register struct {
	Address     byte   `json:"address"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Access      string `json:"access"` // "R", "RW"
}

// RegisterValue is a register read back from a device.
type RegisterValue struct {
	Register
	Value byte `json:"value"`
}

func (v RegisterValue) String() string {
	return fmt.Sprintf("0x%02X %-13s = 0x%02X  %s", v.Address, v.Name, v.Value, v.Description)
}

// mpu6050Registers lists the configuration, status and power registers.
// Output registers are omitted; ReadRaw covers them.
var mpu6050Registers = []Register{
	{Address: 0x19, Name: "SMPLRT_DIV", Description: "Sample rate divider", Access: "RW"},
	{Address: regConfig, Name: "CONFIG", Description: "FSYNC and DLPF", Access: "RW"},
	{Address: regGyroConfig, Name: "GYRO_CONFIG", Description: "Gyro self-test and full scale", Access: "RW"},
	{Address: regAccelCfg, Name: "ACCEL_CONFIG", Description: "Accel self-test and full scale", Access: "RW"},
	{Address: 0x23, Name: "FIFO_EN", Description: "FIFO enable", Access: "RW"},
	{Address: 0x37, Name: "INT_PIN_CFG", Description: "INT pin and bypass", Access: "RW"},
	{Address: 0x38, Name: "INT_ENABLE", Description: "Interrupt enable", Access: "RW"},
	{Address: 0x3A, Name: "INT_STATUS", Description: "Interrupt status", Access: "R"},
	{Address: 0x6A, Name: "USER_CTRL", Description: "FIFO, I2C master, resets", Access: "RW"},
	{Address: regPwrMgmt1, Name: "PWR_MGMT_1", Description: "Sleep, cycle, clock source", Access: "RW"},
	{Address: 0x6C, Name: "PWR_MGMT_2", Description: "Wake frequency, axis standby", Access: "RW"},
	{Address: regWhoAmI, Name: "WHO_AM_I", Description: "Device identity (0x68)", Access: "R"},
}

// Registers returns the register map used by DumpRegisters.
func Registers() []Register {
	return append([]Register(nil), mpu6050Registers...)
}

// DumpRegisters reads every register of the map in one mux transaction.
func (s *MPU6050) DumpRegisters() ([]RegisterValue, error) {
	out := make([]RegisterValue, 0, len(mpu6050Registers))
	err := s.mux.Do(s.channel, func() error {
		for _, r := range mpu6050Registers {
			buf := make([]byte, 1)
			if err := s.dev.Tx([]byte{r.Address}, buf); err != nil {
				return fmt.Errorf("read %s: %w", r.Name, err)
			}
			out = append(out, RegisterValue{Register: r, Value: buf[0]})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: register dump: %w", s.name, err)
	}
	return out, nil
}
