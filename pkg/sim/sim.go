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

// Package sim models the Home Inventory register block in memory.
// It honors RO, RW, W1P and W1C semantics from the register map, pushes
// snapshot frames into a bounded FIFO and runs the event detector on every
// snapshot, so the driver can be exercised without silicon.
package sim

import (
	"sync"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

const (
	// DefaultFIFODepth is the FIFO capacity in 32-bit words
	DefaultFIFODepth = 64
	// FrameWords is the number of words pushed per snapshot
	FrameWords = 1 + regmap.NumChannels
	// StubSampleBase is the stub ADC pattern: base + snapshot index + channel
	StubSampleBase uint32 = 0x00001000
)

// CORE_STATUS bits reported by the model
const (
	CoreStatusEnabled   uint32 = 1 << 0
	CoreStatusFIFOReady uint32 = 1 << 1
	CoreStatusOverrun   uint32 = 1 << 2
)

// SampleFunc returns the raw reading of channel ch for the snapshot with the given 1-based index
type SampleFunc func(index uint32, ch int) uint32

// StubSample is the pattern of the current RTL stub
func StubSample(index uint32, ch int) uint32 {
	return StubSampleBase + index + uint32(ch)
}

type Option func(d *Device)

func WithFIFODepth(words int) Option {
	return func(d *Device) { d.depth = words }
}

func WithSample(f SampleFunc) Option {
	return func(d *Device) { d.sample = f }
}

func WithMap(m *regmap.Map) Option {
	return func(d *Device) { d.m = m }
}

// Device is a simulated block mapped at Base
type Device struct {
	Base uint32

	mu        sync.Mutex
	m         *regmap.Map
	depth     int
	sample    SampleFunc
	regs      map[uint32]uint32
	fifo      []uint32
	overrun   bool
	snapshots uint32
	ts        uint32
	pulses    map[string]int
}

var _ bus.Bus = &Device{}

func New(base uint32, opts ...Option) *Device {
	d := &Device{
		Base:   base,
		m:      regmap.Default(),
		depth:  DefaultFIFODepth,
		sample: StubSample,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Reset()
	return d
}

// Reset restores every register to its reset value and empties the FIFO
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs = make(map[uint32]uint32)
	for _, r := range d.m.Registers() {
		d.regs[r.Offset] = r.Reset &^ (r.PulseMask() | r.ClearMask())
	}
	d.fifo = d.fifo[:0]
	d.overrun = false
	d.snapshots = 0
	d.ts = 0
	d.pulses = make(map[string]int)
}

// Tick advances the free-running timestamp, every bus transaction ticks once
func (d *Device) Tick(n uint32) {
	d.mu.Lock()
	d.ts += n
	d.mu.Unlock()
}

// Level returns the number of queued FIFO words
func (d *Device) Level() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fifo)
}

// Snapshots returns the number of SNAPSHOT pulses seen since reset
func (d *Device) Snapshots() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshots
}

// Pulses returns how many times the named W1P field was pulsed, e.g. "CTRL.START"
func (d *Device) Pulses(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pulses[name]
}

func (d *Device) offset(addr uint32) (uint32, error) {
	if err := bus.CheckAligned(addr); err != nil {
		return 0, err
	}
	if addr < d.Base || addr-d.Base >= regmap.BlockSize {
		return 0, bus.ErrInvalidAddress{Addr: addr, Reason: "outside register window"}
	}
	return addr - d.Base, nil
}

func (d *Device) Read32(addr uint32) (uint32, error) {
	off, err := d.offset(addr)
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ts++

	switch off {
	case regmap.OffADCFIFOStatus:
		return d.fifoStatus(), nil
	case regmap.OffADCFIFOData:
		return d.pop(), nil
	case regmap.OffStatus:
		return d.coreStatus(), nil
	}
	r, ok := d.m.ByOffset(off)
	if !ok {
		return 0, nil
	}
	return d.regs[off] &^ r.PulseMask(), nil
}

func (d *Device) Write32(addr uint32, value uint32) error {
	off, err := d.offset(addr)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ts++

	r, ok := d.m.ByOffset(off)
	if !ok {
		return nil
	}

	writable := r.WritableMask()
	if writable != 0 {
		d.regs[off] = (d.regs[off] &^ writable) | (value & writable)
	}
	if clear := value & r.ClearMask(); clear != 0 {
		d.clearSticky(off, clear)
	}
	if pulse := value & r.PulseMask(); pulse != 0 {
		d.pulse(r, pulse)
	}
	return nil
}

func (d *Device) pulse(r *regmap.Register, bits uint32) {
	for _, f := range r.Fields {
		if r.FieldAccess(f) == regmap.W1P && bits&f.Mask != 0 {
			d.pulses[r.Name+"."+f.Name]++
		}
	}
	if r.Offset == regmap.OffADCCmd && bits&regmap.ADCCmdSnapshot != 0 {
		d.snapshot()
	}
}

func (d *Device) clearSticky(off, bits uint32) {
	if off == regmap.OffADCFIFOStatus && bits&regmap.FIFOOverrun != 0 {
		d.overrun = false
	}
}

func (d *Device) fifoStatus() uint32 {
	st := uint32(len(d.fifo)) & regmap.FIFOLevelMask
	if d.overrun {
		st |= regmap.FIFOOverrun
	}
	return st
}

func (d *Device) coreStatus() uint32 {
	var st uint32
	if d.regs[regmap.OffCtrl]&regmap.CtrlEnable != 0 {
		st |= CoreStatusEnabled
	}
	if len(d.fifo) > 0 {
		st |= CoreStatusFIFOReady
	}
	if d.overrun {
		st |= CoreStatusOverrun
	}
	return st & regmap.StatusCoreMask
}

func (d *Device) push(word uint32) {
	if len(d.fifo) >= d.depth {
		d.overrun = true
		return
	}
	d.fifo = append(d.fifo, word)
}

func (d *Device) pop() uint32 {
	if len(d.fifo) == 0 {
		return 0
	}
	word := d.fifo[0]
	d.fifo = d.fifo[1:]
	return word
}
