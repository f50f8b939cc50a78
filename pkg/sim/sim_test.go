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

package sim

import (
	"errors"
	"testing"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

const base = regmap.DefaultBase

func mustRead(t *testing.T, d *Device, off uint32) uint32 {
	t.Helper()
	v, err := d.Read32(base + off)
	if err != nil {
		t.Fatalf("read 0x%03X: %v", off, err)
	}
	return v
}

func mustWrite(t *testing.T, d *Device, off, v uint32) {
	t.Helper()
	if err := d.Write32(base+off, v); err != nil {
		t.Fatalf("write 0x%03X: %v", off, err)
	}
}

func TestResetValues(t *testing.T) {
	d := New(base)
	for _, r := range regmap.Default().Registers() {
		if r.SideEffects || r.Offset == regmap.OffStatus || r.Offset == regmap.OffADCFIFOStatus {
			continue
		}
		if got := mustRead(t, d, r.Offset); got != r.Reset {
			t.Errorf("%s: reset reads 0x%08X, expected 0x%08X", r.Name, got, r.Reset)
		}
	}
	if got := mustRead(t, d, regmap.OffADCFIFOStatus); got != 0 {
		t.Errorf("ADC_FIFO_STATUS reset 0x%08X", got)
	}
}

func TestWindow(t *testing.T) {
	d := New(base)
	for _, addr := range []uint32{base + 1, base - 4, base + regmap.BlockSize, 0} {
		_, err := d.Read32(addr)
		var invalid bus.ErrInvalidAddress
		if !errors.As(err, &invalid) {
			t.Errorf("read 0x%08X: expected ErrInvalidAddress, got %v", addr, err)
		}
		if err := d.Write32(addr, 1); !errors.As(err, &invalid) {
			t.Errorf("write 0x%08X: expected ErrInvalidAddress, got %v", addr, err)
		}
	}
	// holes inside the window read as zero and ignore writes
	mustWrite(t, d, 0x5f0, 0xffffffff)
	if got := mustRead(t, d, 0x5f0); got != 0 {
		t.Errorf("hole reads 0x%08X", got)
	}
}

func TestReadOnlyIgnoresWrites(t *testing.T) {
	d := New(base)
	mustWrite(t, d, regmap.OffID, 0)
	mustWrite(t, d, regmap.OffEvtCount(0), 5)
	if got := mustRead(t, d, regmap.OffID); got != regmap.IDMagic {
		t.Errorf("ID changed to 0x%08X", got)
	}
	if got := mustRead(t, d, regmap.OffEvtCount(0)); got != 0 {
		t.Errorf("EVT_COUNT_CH0 changed to %d", got)
	}
}

func TestSnapshotPushesFrame(t *testing.T) {
	d := New(base)
	mustWrite(t, d, regmap.OffADCCmd, regmap.ADCCmdSnapshot)
	if d.Level() != FrameWords {
		t.Fatalf("level %d after snapshot", d.Level())
	}
	if got := mustRead(t, d, regmap.OffADCCmd); got != 0 {
		t.Fatalf("ADC_CMD reads back 0x%08X", got)
	}
	want := []uint32{StatusWord(1), 0x1001, 0x1002, 0x1003, 0x1004, 0x1005, 0x1006, 0x1007, 0x1008}
	for i, w := range want {
		if got := mustRead(t, d, regmap.OffADCFIFOData); got != w {
			t.Fatalf("word %d = 0x%08X, expected 0x%08X", i, got, w)
		}
	}
	if got := mustRead(t, d, regmap.OffADCFIFOData); got != 0 {
		t.Fatalf("empty FIFO pops 0x%08X", got)
	}
	if got := mustRead(t, d, regmap.OffADCRaw(7)); got != 0x1008 {
		t.Fatalf("ADC_RAW_CH7 = 0x%08X", got)
	}
	// writing 0 to a W1P bit does nothing
	mustWrite(t, d, regmap.OffADCCmd, 0)
	if d.Snapshots() != 1 {
		t.Fatalf("snapshots %d", d.Snapshots())
	}
}

func TestOverrunSticky(t *testing.T) {
	d := New(base, WithFIFODepth(16))
	mustWrite(t, d, regmap.OffADCCmd, regmap.ADCCmdSnapshot)
	mustWrite(t, d, regmap.OffADCCmd, regmap.ADCCmdSnapshot)

	st := mustRead(t, d, regmap.OffADCFIFOStatus)
	if st&regmap.FIFOOverrun == 0 || st&regmap.FIFOLevelMask != 16 {
		t.Fatalf("status 0x%08X", st)
	}
	// reading does not clear
	if st := mustRead(t, d, regmap.OffADCFIFOStatus); st&regmap.FIFOOverrun == 0 {
		t.Fatal("overrun cleared by read")
	}
	// writing 0 preserves, and the RO level ignores writes
	mustWrite(t, d, regmap.OffADCFIFOStatus, regmap.FIFOLevelMask)
	if st := mustRead(t, d, regmap.OffADCFIFOStatus); st != regmap.FIFOOverrun|16 {
		t.Fatalf("status 0x%08X after writing 0 to OVERRUN", st)
	}
	mustWrite(t, d, regmap.OffADCFIFOStatus, regmap.FIFOOverrun)
	if st := mustRead(t, d, regmap.OffADCFIFOStatus); st != 16 {
		t.Fatalf("status 0x%08X after clear", st)
	}
	if got := mustRead(t, d, regmap.OffStatus); got&CoreStatusFIFOReady == 0 || got&CoreStatusOverrun != 0 {
		t.Fatalf("core status 0x%08X", got)
	}
}

func TestCtrlPulse(t *testing.T) {
	d := New(base)
	mustWrite(t, d, regmap.OffCtrl, regmap.CtrlEnable)
	mustWrite(t, d, regmap.OffCtrl, regmap.CtrlEnable|regmap.CtrlStart)
	if got := mustRead(t, d, regmap.OffCtrl); got != regmap.CtrlEnable {
		t.Fatalf("CTRL = 0x%08X", got)
	}
	if d.Pulses("CTRL.START") != 1 {
		t.Fatalf("START pulsed %d times", d.Pulses("CTRL.START"))
	}
	if got := mustRead(t, d, regmap.OffStatus); got&CoreStatusEnabled == 0 {
		t.Fatalf("core status 0x%08X", got)
	}
}

func TestDetector(t *testing.T) {
	d := New(base)
	mustWrite(t, d, regmap.OffEvtThresh(0), 0x1000)
	mustWrite(t, d, regmap.OffEvtThresh(1), 0x2000)
	mustWrite(t, d, regmap.OffEvtCfg, 0x3)

	mustWrite(t, d, regmap.OffADCCmd, regmap.ADCCmdSnapshot)
	ts1 := mustRead(t, d, regmap.OffEvtLastTSCh(0))
	mustWrite(t, d, regmap.OffADCCmd, regmap.ADCCmdSnapshot)
	ts2 := mustRead(t, d, regmap.OffEvtLastTSCh(0))

	if got := mustRead(t, d, regmap.OffEvtCount(0)); got != 2 {
		t.Fatalf("count CH0 = %d", got)
	}
	if got := mustRead(t, d, regmap.OffEvtCount(1)); got != 0 {
		t.Fatalf("count CH1 = %d, threshold above sample", got)
	}
	if got := mustRead(t, d, regmap.OffEvtLastDelta(0)); got != 0x1002 {
		t.Fatalf("delta CH0 = 0x%08X", got)
	}
	if ts2 <= ts1 {
		t.Fatalf("timestamps not increasing: %d %d", ts1, ts2)
	}
	if got := mustRead(t, d, regmap.OffEvtLastTS); got != ts2 {
		t.Fatalf("global ts %d, channel ts %d", got, ts2)
	}

	// tare moves the comparison point, delta is signed
	mustWrite(t, d, regmap.OffTare(0), 0x3000)
	mustWrite(t, d, regmap.OffADCCmd, regmap.ADCCmdSnapshot)
	if got := int32(mustRead(t, d, regmap.OffEvtLastDelta(0))); got != 0x1003-0x3000 {
		t.Fatalf("signed delta %d", got)
	}
}

func TestCountSaturates(t *testing.T) {
	d := New(base)
	mustWrite(t, d, regmap.OffEvtCfg, 0x1)
	d.SetEventCount(0, 0xfffffffe)
	for i := 0; i < 3; i++ {
		mustWrite(t, d, regmap.OffADCCmd, regmap.ADCCmdSnapshot)
	}
	if got := mustRead(t, d, regmap.OffEvtCount(0)); got != 0xffffffff {
		t.Fatalf("count 0x%08X", got)
	}
}

func TestReset(t *testing.T) {
	d := New(base)
	mustWrite(t, d, regmap.OffScale(3), 0x20000)
	mustWrite(t, d, regmap.OffADCCmd, regmap.ADCCmdSnapshot)
	d.Reset()
	if got := mustRead(t, d, regmap.OffScale(3)); got != regmap.ScaleOne {
		t.Fatalf("SCALE_CH3 after reset 0x%08X", got)
	}
	if d.Level() != 0 || d.Snapshots() != 0 {
		t.Fatalf("level %d snapshots %d after reset", d.Level(), d.Snapshots())
	}
}
