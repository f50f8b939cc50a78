/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package reg

import (
	"errors"
	"testing"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
	"jinr.ru/greenlab/go-homeinv/pkg/sim"
)

const base = regmap.DefaultBase

func newBlock(t *testing.T, opts ...sim.Option) (*Block, *sim.Device) {
	t.Helper()
	dev := sim.New(base, opts...)
	blk, err := NewBlock(dev, base, nil)
	if err != nil {
		t.Fatal(err)
	}
	return blk, dev
}

func TestNewBlockMisalignedBase(t *testing.T) {
	_, err := NewBlock(sim.New(base), base+2, nil)
	var invalid bus.ErrInvalidAddress
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestInvalidOffsets(t *testing.T) {
	blk, _ := newBlock(t)
	for _, off := range []uint32{0x101, 0x102, 0x103, 0x008, 0x5fc, 0x600, 0x1000} {
		var invalid bus.ErrInvalidAddress
		if _, err := blk.Read(off); !errors.As(err, &invalid) {
			t.Errorf("read 0x%03X: expected ErrInvalidAddress, got %v", off, err)
		}
		if err := blk.Write(off, 0); !errors.As(err, &invalid) {
			t.Errorf("write 0x%03X: expected ErrInvalidAddress, got %v", off, err)
		}
		if err := blk.RMW(off, 0, 1); !errors.As(err, &invalid) {
			t.Errorf("rmw 0x%03X: expected ErrInvalidAddress, got %v", off, err)
		}
	}
}

func TestRoundTripRW(t *testing.T) {
	blk, _ := newBlock(t)
	values := []uint32{0, 0xffffffff, 0xa5a5a5a5, 0x5a5a5a5a, 0x00000001, 0x80000000}
	for _, r := range blk.Map.Registers() {
		mask := r.WritableMask()
		if mask == 0 {
			continue
		}
		for _, v := range values {
			if err := blk.Write(r.Offset, v); err != nil {
				t.Fatalf("%s: %v", r.Name, err)
			}
			got, err := blk.Read(r.Offset)
			if err != nil {
				t.Fatalf("%s: %v", r.Name, err)
			}
			if got != v&mask {
				t.Errorf("%s: wrote 0x%08X read 0x%08X, expected 0x%08X", r.Name, v, got, v&mask)
			}
		}
	}
}

func TestPulseReadsBackZero(t *testing.T) {
	blk, dev := newBlock(t)
	for _, r := range blk.Map.Registers() {
		for _, f := range r.Fields {
			if r.FieldAccess(f) != regmap.W1P {
				continue
			}
			name := r.Name + "." + f.Name
			before := dev.Pulses(name)

			if err := blk.Write(r.Offset, 0); err != nil {
				t.Fatal(err)
			}
			if dev.Pulses(name) != before {
				t.Errorf("%s: writing 0 pulsed", name)
			}

			if err := blk.Pulse(r.Offset, f.Mask); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if dev.Pulses(name) != before+1 {
				t.Errorf("%s: pulse not seen", name)
			}
			v, err := blk.Read(r.Offset)
			if err != nil {
				t.Fatal(err)
			}
			if v&f.Mask != 0 {
				t.Errorf("%s: reads back 0x%08X", name, v)
			}
		}
	}
}

func TestPulsePreservesEnable(t *testing.T) {
	blk, dev := newBlock(t)
	if err := blk.RMW(regmap.OffCtrl, 0, regmap.CtrlEnable); err != nil {
		t.Fatal(err)
	}
	if err := blk.Pulse(regmap.OffCtrl, regmap.CtrlStart); err != nil {
		t.Fatal(err)
	}
	v, err := blk.Read(regmap.OffCtrl)
	if err != nil {
		t.Fatal(err)
	}
	if v != regmap.CtrlEnable {
		t.Fatalf("CTRL = 0x%08X, expected 0x1", v)
	}
	if dev.Pulses("CTRL.START") != 1 {
		t.Fatal("START not pulsed")
	}
}

func TestClearSticky(t *testing.T) {
	blk, _ := newBlock(t, sim.WithFIFODepth(4))
	if err := blk.Pulse(regmap.OffADCCmd, regmap.ADCCmdSnapshot); err != nil {
		t.Fatal(err)
	}
	read := func() uint32 {
		v, err := blk.Read(regmap.OffADCFIFOStatus)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}
	if read()&regmap.FIFOOverrun == 0 {
		t.Fatal("overrun not set")
	}
	// reading does not clear
	if read()&regmap.FIFOOverrun == 0 {
		t.Fatal("overrun cleared by a read")
	}
	// writing 0 preserves
	if err := blk.Write(regmap.OffADCFIFOStatus, 0); err != nil {
		t.Fatal(err)
	}
	if read()&regmap.FIFOOverrun == 0 {
		t.Fatal("overrun cleared by writing 0")
	}
	if err := blk.ClearSticky(regmap.OffADCFIFOStatus, regmap.FIFOOverrun); err != nil {
		t.Fatal(err)
	}
	if st := read(); st != 4 {
		t.Fatalf("status 0x%08X after clear", st)
	}
}

func TestWrongKindOfBits(t *testing.T) {
	blk, _ := newBlock(t)
	var unsupported ErrUnsupported
	cases := []struct {
		name string
		err  error
	}{
		{"pulse RW bit", blk.Pulse(regmap.OffCtrl, regmap.CtrlEnable)},
		{"pulse zero", blk.Pulse(regmap.OffADCCmd, 0)},
		{"pulse W1C bit", blk.Pulse(regmap.OffADCFIFOStatus, regmap.FIFOOverrun)},
		{"clear W1P bit", blk.ClearSticky(regmap.OffADCCmd, regmap.ADCCmdSnapshot)},
		{"clear RO bits", blk.ClearSticky(regmap.OffADCFIFOStatus, regmap.FIFOLevelMask)},
		{"rmw W1C register", blk.RMW(regmap.OffADCFIFOStatus, 0, 0)},
		{"rmw FIFO data", blk.RMW(regmap.OffADCFIFOData, 0, 0)},
		{"rmw RO register", blk.RMW(regmap.OffID, 0, 1)},
		{"rmw W1P bit", blk.RMW(regmap.OffCtrl, 0, regmap.CtrlStart)},
	}
	for _, c := range cases {
		if !errors.As(c.err, &unsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", c.name, c.err)
		}
	}
}

func TestReadField(t *testing.T) {
	blk, _ := newBlock(t)
	v, err := blk.ReadField(regmap.OffADCCfg, "NUM_CH")
	if err != nil || v != 8 {
		t.Fatalf("NUM_CH = %d, %v", v, err)
	}
	var unsupported ErrUnsupported
	if _, err := blk.ReadField(regmap.OffADCCfg, "BOGUS"); !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestDumpSkipsFIFOData(t *testing.T) {
	blk, dev := newBlock(t)
	if err := blk.Pulse(regmap.OffADCCmd, regmap.ADCCmdSnapshot); err != nil {
		t.Fatal(err)
	}
	regs, err := blk.Dump()
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != len(blk.Map.Registers())-1 {
		t.Fatalf("dumped %d registers", len(regs))
	}
	for _, r := range regs {
		if r.Name == "ADC_FIFO_DATA" {
			t.Fatal("dump popped the FIFO")
		}
	}
	if dev.Level() != sim.FrameWords {
		t.Fatalf("level %d after dump", dev.Level())
	}
}
