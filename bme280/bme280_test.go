package bme280

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func initOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: 0x76, W: []byte{regChipID}, R: []byte{chipID}},
		{Addr: 0x76, W: []byte{regSoftReset, softResetCmd}},
		{Addr: 0x76, W: []byte{regCalibPT}, R: testCalibPT[:]},
		{Addr: 0x76, W: []byte{regCalibH}, R: testCalibH[:]},
		{Addr: 0x76, W: []byte{regCtrlHum, 0x01}},
		{Addr: 0x76, W: []byte{regCtrlMeas, 0x27}},
		{Addr: 0x76, W: []byte{regConfig, 0xA0}},
	}
}

func senseOp() i2ctest.IO {
	return i2ctest.IO{Addr: 0x76, W: []byte{regData}, R: testSample[:]}
}

// without returns ops minus the transactions writing to reg.
func without(ops []i2ctest.IO, reg byte) []i2ctest.IO {
	var out []i2ctest.IO
	for _, op := range ops {
		if op.W[0] != reg {
			out = append(out, op)
		}
	}
	return out
}

// faultyBus fails every transaction starting with the register failOn.
type faultyBus struct {
	i2c.Bus
	failOn byte
}

func (f *faultyBus) Tx(addr uint16, w, r []byte) error {
	if len(w) != 0 && w[0] == f.failOn {
		return errors.New("nack")
	}
	return f.Bus.Tx(addr, w, r)
}

func TestNewI2C(t *testing.T) {
	bus := i2ctest.Playback{Ops: append(initOps(), senseOp())}
	dev, err := NewI2C(&bus, Address, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s := dev.State(); s != Ready {
		t.Fatalf("State() = %s, want Ready", s)
	}
	if c, ok := dev.Calibration(); !ok || c != testCalibration {
		t.Fatalf("Calibration() = %v, %t", c, ok)
	}
	m, err := dev.Sense()
	if err != nil {
		t.Fatal(err)
	}
	if !near(m.Temperature, 26.77, 0.01) || !near(m.Pressure, 1060.04, 0.01) || !near(m.Humidity, 65.05, 0.01) {
		t.Errorf("Sense() = %v", m)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewI2C_Opts(t *testing.T) {
	ops := initOps()
	ops[4].W = []byte{regCtrlHum, 0x03}
	ops[5].W = []byte{regCtrlMeas, 0xAB}
	ops[6].W = []byte{regConfig, 0x50}
	bus := i2ctest.Playback{Ops: ops}
	opts := Opts{
		Temperature:       O16x,
		Pressure:          O2x,
		Humidity:          O4x,
		Standby:           S125ms,
		Filter:            F16,
		ResetFailureFatal: true,
	}
	if _, err := NewI2C(&bus, Address, &opts); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSense_NotCalibrated(t *testing.T) {
	bus := i2ctest.Playback{DontPanic: true}
	dev := Open(&bus, Address, nil)
	if s := dev.State(); s != Uninitialized {
		t.Fatalf("State() = %s, want Uninitialized", s)
	}
	if _, ok := dev.Calibration(); ok {
		t.Fatal("Calibration() reported coefficients before Init")
	}
	if _, err := dev.Sense(); !errors.Is(err, ErrNoCalibrationData) {
		t.Fatalf("Sense() error = %v, want ErrNoCalibrationData", err)
	}
	if bus.Count != 0 {
		t.Errorf("Sense() did %d transactions before calibration", bus.Count)
	}
}

func TestInit_UnsupportedChip(t *testing.T) {
	// A BMP280 answers 0x58.
	bus := i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x76, W: []byte{regChipID}, R: []byte{0x58}}},
		DontPanic: true,
	}
	dev := Open(&bus, Address, nil)
	err := dev.Init()
	if !errors.Is(err, ErrUnsupportedChip) {
		t.Fatalf("Init() error = %v, want ErrUnsupportedChip", err)
	}
	var ce *ChipError
	if !errors.As(err, &ce) || ce.Got != 0x58 {
		t.Errorf("Init() error = %#v, want ChipError{Got: 0x58}", err)
	}
	if bus.Count != 1 {
		t.Errorf("%d transactions, want only the chip id read", bus.Count)
	}
	if s := dev.State(); s != Uninitialized {
		t.Errorf("State() = %s, want Uninitialized", s)
	}
	if _, err := dev.Sense(); !errors.Is(err, ErrNoCalibrationData) {
		t.Errorf("Sense() error = %v, want ErrNoCalibrationData", err)
	}
}

func TestInit_SoftReset(t *testing.T) {
	tests := []struct {
		name  string
		fatal bool
		ops   []i2ctest.IO
		state State
	}{
		{"fatal", true, initOps()[:1], Uninitialized},
		{"ignored", false, without(initOps(), regSoftReset), Ready},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := &i2ctest.Playback{Ops: tt.ops, DontPanic: true}
			opts := DefaultOpts
			opts.ResetFailureFatal = tt.fatal
			dev := Open(&faultyBus{Bus: pb, failOn: regSoftReset}, Address, &opts)
			err := dev.Init()
			if tt.fatal != errors.Is(err, ErrBus) {
				t.Fatalf("Init() error = %v", err)
			}
			if s := dev.State(); s != tt.state {
				t.Errorf("State() = %s, want %s", s, tt.state)
			}
			if err := pb.Close(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestInit_BusErrors(t *testing.T) {
	tests := []struct {
		reg   byte
		ops   int
		state State
	}{
		{regChipID, 0, Uninitialized},
		{regCalibPT, 2, Identified},
		{regCalibH, 3, Identified},
		{regCtrlHum, 4, Calibrated},
		{regCtrlMeas, 5, Calibrated},
		{regConfig, 6, Calibrated},
	}
	for _, tt := range tests {
		pb := &i2ctest.Playback{Ops: initOps()[:tt.ops], DontPanic: true}
		dev := Open(&faultyBus{Bus: pb, failOn: tt.reg}, Address, nil)
		err := dev.Init()
		if !errors.Is(err, ErrBus) {
			t.Errorf("0x%02X: Init() error = %v, want ErrBus", tt.reg, err)
			continue
		}
		var be *BusError
		if !errors.As(err, &be) || be.Reg != tt.reg {
			t.Errorf("0x%02X: Init() error = %#v", tt.reg, err)
		}
		if s := dev.State(); s != tt.state {
			t.Errorf("0x%02X: State() = %s, want %s", tt.reg, s, tt.state)
		}
		if err := pb.Close(); err != nil {
			t.Errorf("0x%02X: %v", tt.reg, err)
		}
	}
}

func TestInit_CalibrationFailureBlocksSense(t *testing.T) {
	pb := &i2ctest.Playback{Ops: initOps()[:2], DontPanic: true}
	dev := Open(&faultyBus{Bus: pb, failOn: regCalibPT}, Address, nil)
	if err := dev.Init(); err == nil {
		t.Fatal("Init() succeeded")
	}
	if _, err := dev.Sense(); !errors.Is(err, ErrNoCalibrationData) {
		t.Errorf("Sense() error = %v, want ErrNoCalibrationData", err)
	}
}

func TestSense_BusError(t *testing.T) {
	pb := &i2ctest.Playback{Ops: initOps(), DontPanic: true}
	dev, err := NewI2C(&faultyBus{Bus: pb, failOn: regData}, Address, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.Sense(); !errors.Is(err, ErrBus) {
		t.Errorf("Sense() error = %v, want ErrBus", err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&BusError{Op: "read", Reg: regData, Err: errors.New("nack")}, "bus"},
		{&ChipError{Got: 0x58}, "unsupported_chip"},
		{ErrNoCalibrationData, "no_calibration"},
		{ErrInvalidData, "invalid_data"},
		{ErrCompensationFailed, "compensation_failed"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRegisterEncoding(t *testing.T) {
	if got := ctrlMeas(O1x, O1x, Normal); got != 0x27 {
		t.Errorf("ctrlMeas(x1, x1, Normal) = 0x%02X, want 0x27", got)
	}
	if got := ctrlMeas(Skip, Skip, Sleep); got != 0 {
		t.Errorf("ctrlMeas(skip, skip, Sleep) = 0x%02X, want 0", got)
	}
	if got := config(S1s, NoFilter, false); got != 0xA0 {
		t.Errorf("config(1s, off, false) = 0x%02X, want 0xA0", got)
	}
	if got := config(S20ms, F16, true); got != 0xF1 {
		t.Errorf("config(20ms, 16, true) = 0x%02X, want 0xF1", got)
	}
}
