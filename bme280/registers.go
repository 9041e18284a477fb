package bme280

// Address is the I²C address of the BME280 with SDO tied to ground, as on the
// Pimoroni Enviro+ board.
const Address uint16 = 0x76

const (
	regChipID    byte = 0xD0
	regSoftReset byte = 0xE0
	regCtrlHum   byte = 0xF2
	regCtrlMeas  byte = 0xF4
	regConfig    byte = 0xF5

	// 0x88..0xA1: dig_T1..dig_P9, one reserved byte, dig_H1.
	regCalibPT byte = 0x88
	// 0xE1..0xE7: dig_H2..dig_H6.
	regCalibH byte = 0xE1

	// 0xF7..0xFE: press_msb, press_lsb, press_xlsb, temp_msb, temp_lsb,
	// temp_xlsb, hum_msb, hum_lsb. Must be read in a single burst.
	regData byte = 0xF7
)

const (
	chipID       byte = 0x60
	softResetCmd byte = 0xB6
)

const (
	calibPTLen  = 26
	calibHLen   = 7
	dataLen     = 8
	digH1Offset = calibPTLen - 1
)

// Mode is the device power mode, bits [1:0] of ctrl_meas.
type Mode byte

const (
	Sleep  Mode = 0
	Forced Mode = 1
	Normal Mode = 3
)

func (m Mode) String() string {
	switch m {
	case Sleep:
		return "Sleep"
	case Forced:
		return "Forced"
	case Normal:
		return "Normal"
	}
	return "Mode(?)"
}

// Oversampling is the per-channel oversampling code written to ctrl_hum and
// ctrl_meas.
type Oversampling byte

const (
	Skip Oversampling = 0
	O1x  Oversampling = 1
	O2x  Oversampling = 2
	O4x  Oversampling = 3
	O8x  Oversampling = 4
	O16x Oversampling = 5
)

// Standby is the inactive duration between two measurements in Normal mode.
type Standby byte

const (
	S500us Standby = 0
	S62ms  Standby = 1 // 62.5ms
	S125ms Standby = 2
	S250ms Standby = 3
	S500ms Standby = 4
	S1s    Standby = 5
	S10ms  Standby = 6
	S20ms  Standby = 7
)

// Filter is the IIR filter coefficient.
type Filter byte

const (
	NoFilter Filter = 0
	F2       Filter = 1
	F4       Filter = 2
	F8       Filter = 3
	F16      Filter = 4
)

// ctrlMeas encodes register 0xF4.
func ctrlMeas(t, p Oversampling, m Mode) byte {
	return byte(t&7)<<5 | byte(p&7)<<2 | byte(m&3)
}

// config encodes register 0xF5. spi3w is always off on I²C.
func config(sb Standby, f Filter, spi3w bool) byte {
	b := byte(sb&7)<<5 | byte(f&7)<<2
	if spi3w {
		b |= 1
	}
	return b
}
