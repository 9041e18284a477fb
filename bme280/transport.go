package bme280

import (
	"periph.io/x/conn/v3"
)

// transport performs register transactions on a connection already bound to
// the device address. It doesn't retry; a stalled transaction is bounded by
// the underlying bus implementation.
type transport struct {
	c conn.Conn
}

// writeRead writes the register address then reads n bytes in one
// transaction, so nothing can interleave between the two.
func (t *transport) writeRead(reg byte, n int) ([]byte, error) {
	read := make([]byte, n)
	if err := t.c.Tx([]byte{reg}, read); err != nil {
		return nil, &BusError{Op: "read", Reg: reg, Err: err}
	}
	return read, nil
}

// writeReg writes a single byte to reg.
func (t *transport) writeReg(reg, v byte) error {
	if err := t.c.Tx([]byte{reg, v}, nil); err != nil {
		return &BusError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}
