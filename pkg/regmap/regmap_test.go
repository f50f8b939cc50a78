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

package regmap

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDefaultOffsetsAligned(t *testing.T) {
	m := Default()
	if len(m.Registers()) == 0 {
		t.Fatal("empty register map")
	}
	for _, r := range m.Registers() {
		if r.Offset%4 != 0 {
			t.Errorf("%s: offset 0x%03X not aligned", r.Name, r.Offset)
		}
		if r.Offset >= BlockSize {
			t.Errorf("%s: offset 0x%03X outside the block", r.Name, r.Offset)
		}
	}
}

func TestDefaultMatchesConstants(t *testing.T) {
	m := Default()
	fixed := map[string]uint32{
		"ID":              OffID,
		"VERSION":         OffVersion,
		"CTRL":            OffCtrl,
		"IRQ_EN":          OffIRQEn,
		"STATUS":          OffStatus,
		"ADC_CFG":         OffADCCfg,
		"ADC_CMD":         OffADCCmd,
		"EVT_LAST_TS":     OffEvtLastTS,
		"EVT_CFG":         OffEvtCfg,
		"ADC_FIFO_STATUS": OffADCFIFOStatus,
		"ADC_FIFO_DATA":   OffADCFIFOData,
	}
	arrays := map[string]func(int) uint32{
		"ADC_RAW_CH":        OffADCRaw,
		"TARE_CH":           OffTare,
		"SCALE_CH":          OffScale,
		"EVT_COUNT_CH":      OffEvtCount,
		"EVT_LAST_DELTA_CH": OffEvtLastDelta,
		"EVT_LAST_TS_CH":    OffEvtLastTSCh,
		"EVT_THRESH_CH":     OffEvtThresh,
	}
	for name, off := range arrays {
		for ch := 0; ch < NumChannels; ch++ {
			fixed[fmt.Sprintf("%s%d", name, ch)] = off(ch)
		}
	}
	for name, off := range fixed {
		r, ok := m.ByName(name)
		if !ok {
			t.Errorf("register %s missing", name)
			continue
		}
		if r.Offset != off {
			t.Errorf("%s: yaml offset 0x%03X, constant 0x%03X", name, r.Offset, off)
		}
	}
	if len(m.Registers()) != len(fixed) {
		t.Errorf("map has %d registers, constants describe %d", len(m.Registers()), len(fixed))
	}

	// the last threshold register ends where the table says
	if OffEvtThresh(7) != 0x484 || OffEvtLastTSCh(7) != 0x460 {
		t.Errorf("channel stride broken: 0x%03X 0x%03X", OffEvtThresh(7), OffEvtLastTSCh(7))
	}
}

func TestDefaultMasks(t *testing.T) {
	m := Default()
	cases := []struct {
		name                       string
		writable, pulse, clear, ro uint32
	}{
		{"CTRL", CtrlEnable, CtrlStart, 0, 0},
		{"IRQ_EN", IRQEnMask, 0, 0, 0},
		{"STATUS", 0, 0, 0, StatusCoreMask},
		{"ADC_CFG", ADCCfgNumChMask, 0, 0, 0},
		{"ADC_CMD", 0, ADCCmdSnapshot, 0, 0},
		{"TARE_CH3", 0xffffffff, 0, 0, 0},
		{"SCALE_CH0", 0xffffffff, 0, 0, 0},
		{"EVT_CFG", EvtCfgEnMask, 0, 0, 0},
		{"EVT_COUNT_CH0", 0, 0, 0, 0xffffffff},
		{"ADC_FIFO_STATUS", 0, 0, FIFOOverrun, FIFOLevelMask},
	}
	for _, c := range cases {
		r := m.MustByName(c.name)
		if got := r.WritableMask(); got != c.writable {
			t.Errorf("%s writable 0x%08X, expected 0x%08X", c.name, got, c.writable)
		}
		if got := r.PulseMask(); got != c.pulse {
			t.Errorf("%s pulse 0x%08X, expected 0x%08X", c.name, got, c.pulse)
		}
		if got := r.ClearMask(); got != c.clear {
			t.Errorf("%s clear 0x%08X, expected 0x%08X", c.name, got, c.clear)
		}
		if got := r.ReadOnlyMask(); got != c.ro {
			t.Errorf("%s read-only 0x%08X, expected 0x%08X", c.name, got, c.ro)
		}
	}
}

func TestDefaultResets(t *testing.T) {
	m := Default()
	for ch := 0; ch < NumChannels; ch++ {
		if r, _ := m.ByOffset(OffScale(ch)); r.Reset != ScaleOne {
			t.Errorf("%s reset 0x%08X", r.Name, r.Reset)
		}
		if r, _ := m.ByOffset(OffTare(ch)); r.Reset != 0 {
			t.Errorf("%s reset 0x%08X", r.Name, r.Reset)
		}
	}
	if r := m.MustByName("ADC_CFG"); r.Reset != ADCCfgReset {
		t.Errorf("ADC_CFG reset 0x%08X", r.Reset)
	}
	if r := m.MustByName("ID"); r.Reset != IDMagic {
		t.Errorf("ID reset 0x%08X", r.Reset)
	}
	if r := m.MustByName("ADC_FIFO_DATA"); !r.SideEffects {
		t.Error("ADC_FIFO_DATA must be marked side-effectful")
	}
}

func TestFieldGetSet(t *testing.T) {
	level, _ := Default().MustByName("ADC_FIFO_STATUS").Field("LEVEL_WORDS")
	overrun, _ := Default().MustByName("ADC_FIFO_STATUS").Field("OVERRUN")

	st := uint32(0x00010009)
	if got := level.Get(st); got != 9 {
		t.Fatalf("LEVEL_WORDS = %d", got)
	}
	if got := overrun.Get(st); got != 1 {
		t.Fatalf("OVERRUN = %d", got)
	}
	if got := level.Set(st, 0x12345); got != 0x00012345 {
		t.Fatalf("Set truncation: 0x%08X", got)
	}
	if got := overrun.Set(st, 0); got != 0x00000009 {
		t.Fatalf("Set clear: 0x%08X", got)
	}
	if level.Width() != 16 || overrun.Width() != 1 {
		t.Fatalf("widths %d %d", level.Width(), overrun.Width())
	}

	full := Field{MSB: 31, LSB: 0, Mask: fieldMask(31, 0)}
	if full.Mask != 0xffffffff || full.Get(0xdeadbeef) != 0xdeadbeef {
		t.Fatalf("full width field broken: 0x%08X", full.Mask)
	}
}

func TestNamer(t *testing.T) {
	name := Default().Namer(DefaultBase)
	if got := name(DefaultBase + OffADCFIFOStatus); got != "ADC_FIFO_STATUS" {
		t.Fatalf("got %s", got)
	}
	if got := name(DefaultBase + 0x5fc); got != "?" {
		t.Fatalf("got %s", got)
	}
	if got := name(0); got != "?" {
		t.Fatalf("got %s", got)
	}
}

const header = `
version: 1
bus: {type: wishbone, width: 32}
blocks:
  - name: test
    base: 0x1000
    registers:
`

func TestParseLiterals(t *testing.T) {
	m, err := Load([]byte(header + `
      - {name: A, offset: 0x10, access: RW, reset: "0x0001_0000"}
      - {name: B, offset: "20", access: RO}
      - {name: C, offset: 0x40, count: 2, stride: 8, access: RW}
`))
	if err != nil {
		t.Fatal(err)
	}
	if r := m.MustByName("A"); r.Offset != 0x1010 || r.Reset != 0x10000 {
		t.Fatalf("A: 0x%X 0x%X", r.Offset, r.Reset)
	}
	if r := m.MustByName("B"); r.Offset != 0x1000+20 {
		t.Fatalf("B: 0x%X", r.Offset)
	}
	if r := m.MustByName("C1"); r.Offset != 0x1048 {
		t.Fatalf("C1: 0x%X", r.Offset)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"version": "version: 2\nbus: {type: wishbone}\nblocks: [{name: x, registers: []}]\n",
		"bus":     "version: 1\nbus: {type: axi}\nblocks: [{name: x, registers: []}]\n",
		"blocks":  "version: 1\nbus: {type: wishbone}\n",
		"bits":    header + "      - {name: A, offset: 0, access: RW, fields: [{name: F, bits: [3]}]}\n",
		"literal": header + "      - {name: A, offset: \"zz\", access: RW}\n",
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("%s: expected parse error", name)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		regs string
		want string
	}{
		{"misaligned", "      - {name: A, offset: 0x2, access: RW}\n", "not 32-bit aligned"},
		{"collision", "      - {name: A, offset: 0x4, access: RW}\n      - {name: B, offset: 0x4, access: RW}\n", "offset collision"},
		{"duplicate", "      - {name: A, offset: 0x4, access: RW}\n      - {name: A, offset: 0x8, access: RW}\n", "duplicate register name"},
		{"range", "      - {name: A, offset: 0, access: RW, fields: [{name: F, bits: [32, 0]}]}\n", "out of 0..31"},
		{"order", "      - {name: A, offset: 0, access: RW, fields: [{name: F, bits: [0, 3]}]}\n", "msb<lsb"},
		{"overlap", "      - {name: A, offset: 0, access: RW, fields: [{name: F, bits: [3, 0]}, {name: G, bits: [4, 3]}]}\n", "field overlap"},
		{"mixed", "      - {name: A, offset: 0, access: Mixed, fields: [{name: F, bits: [3, 0]}]}\n", "need an access mode"},
		{"mixed-empty", "      - {name: A, offset: 0, access: Mixed}\n", "must declare fields"},
		{"access", "      - {name: A, offset: 0, access: WO}\n", "unknown access mode"},
		{"reset", "      - {name: A, offset: 0, access: RW, reset: 0x10, fields: [{name: F, bits: [3, 0]}]}\n", "outside declared fields"},
	}
	for _, c := range cases {
		_, err := Load([]byte(header + c.regs))
		var invalid ErrInvalidMap
		if !errors.As(err, &invalid) {
			t.Errorf("%s: expected ErrInvalidMap, got %v", c.name, err)
			continue
		}
		if !strings.Contains(invalid.Error(), c.want) {
			t.Errorf("%s: %q does not mention %q", c.name, invalid.Error(), c.want)
		}
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("default map invalid: %v", err)
	}
}
