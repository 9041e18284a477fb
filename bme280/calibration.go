package bme280

import (
	"fmt"
)

// Calibration holds the factory trimming coefficients of one device. They
// never change once read.
type Calibration struct {
	T1     uint16
	T2, T3 int16

	P1                             uint16
	P2, P3, P4, P5, P6, P7, P8, P9 int16

	H1     uint8
	H2     int16
	H3     uint8
	H4, H5 int16
	H6     int8
}

// ParseCalibration decodes the 0x88..0xA1 block and the 0xE1..0xE7 block.
//
// 16 bits values are stored little endian. H4 and H5 are 12 bits values
// sharing the nibbles of 0xE5.
func ParseCalibration(pt [calibPTLen]byte, h [calibHLen]byte) Calibration {
	return Calibration{
		T1: uint16(pt[0]) | uint16(pt[1])<<8,
		T2: int16(uint16(pt[2]) | uint16(pt[3])<<8),
		T3: int16(uint16(pt[4]) | uint16(pt[5])<<8),
		P1: uint16(pt[6]) | uint16(pt[7])<<8,
		P2: int16(uint16(pt[8]) | uint16(pt[9])<<8),
		P3: int16(uint16(pt[10]) | uint16(pt[11])<<8),
		P4: int16(uint16(pt[12]) | uint16(pt[13])<<8),
		P5: int16(uint16(pt[14]) | uint16(pt[15])<<8),
		P6: int16(uint16(pt[16]) | uint16(pt[17])<<8),
		P7: int16(uint16(pt[18]) | uint16(pt[19])<<8),
		P8: int16(uint16(pt[20]) | uint16(pt[21])<<8),
		P9: int16(uint16(pt[22]) | uint16(pt[23])<<8),
		// pt[24] is reserved.
		H1: pt[digH1Offset],
		H2: int16(uint16(h[0]) | uint16(h[1])<<8),
		H3: h[2],
		// The MSB of H4 and H5 is signed.
		H4: int16(int8(h[3]))<<4 | int16(h[4]&0x0F),
		H5: int16(int8(h[5]))<<4 | int16(h[4]>>4),
		H6: int8(h[6]),
	}
}

func (c Calibration) String() string {
	return fmt.Sprintf("T=[%d %d %d] P=[%d %d %d %d %d %d %d %d %d] H=[%d %d %d %d %d %d]",
		c.T1, c.T2, c.T3,
		c.P1, c.P2, c.P3, c.P4, c.P5, c.P6, c.P7, c.P8, c.P9,
		c.H1, c.H2, c.H3, c.H4, c.H5, c.H6)
}
