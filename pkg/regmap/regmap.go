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

// Package regmap holds the Home Inventory register map as typed descriptors.
// The table is loaded from the embedded regmap_v1.yaml.
package regmap

import (
	_ "embed"
	"fmt"
	"sort"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
)

type Access string

const (
	RO    Access = "RO"
	RW    Access = "RW"
	W1P   Access = "W1P" // write 1 to pulse, reads back 0
	W1C   Access = "W1C" // write 1 to clear a sticky bit
	Mixed Access = "Mixed"
)

func (a Access) valid() bool {
	switch a {
	case RO, RW, W1P, W1C, Mixed:
		return true
	}
	return false
}

// Field is a bit range [MSB:LSB] of a register
type Field struct {
	Name   string
	MSB    uint
	LSB    uint
	Mask   uint32
	Access Access
	Desc   string
}

// Get extracts the field from a register value
func (f Field) Get(regValue uint32) uint32 {
	return (regValue & f.Mask) >> f.LSB
}

// Set returns regValue with the field replaced by v, bits of v beyond the field are dropped
func (f Field) Set(regValue, v uint32) uint32 {
	return (regValue &^ f.Mask) | ((v << f.LSB) & f.Mask)
}

func (f Field) Width() uint {
	return f.MSB - f.LSB + 1
}

// Register is one 32-bit register of the block
type Register struct {
	Name   string
	Offset uint32
	Access Access
	Reset  uint32
	Fields []Field
	Desc   string
	// SideEffects marks registers whose reads change device state (FIFO pop)
	SideEffects bool
}

// FieldAccess returns the access mode of a field, fields inherit the register mode
func (r *Register) FieldAccess(f Field) Access {
	if f.Access != "" {
		return f.Access
	}
	return r.Access
}

// Field looks up a field by name
func (r *Register) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (r *Register) maskOf(access Access) uint32 {
	if len(r.Fields) == 0 {
		if r.Access == access {
			return 0xffffffff
		}
		return 0
	}
	var mask uint32
	for _, f := range r.Fields {
		if r.FieldAccess(f) == access {
			mask |= f.Mask
		}
	}
	return mask
}

// WritableMask is the set of bits that hold what software writes
func (r *Register) WritableMask() uint32 { return r.maskOf(RW) }

// PulseMask is the set of write-1-to-pulse bits
func (r *Register) PulseMask() uint32 { return r.maskOf(W1P) }

// ClearMask is the set of write-1-to-clear bits
func (r *Register) ClearMask() uint32 { return r.maskOf(W1C) }

// ReadOnlyMask is the set of bits updated only by hardware
func (r *Register) ReadOnlyMask() uint32 { return r.maskOf(RO) }

// Map is the flat register space of one block, offsets relative to the block base
type Map struct {
	Name      string
	Version   int
	BusType   string
	BusWidth  int
	registers []*Register
	byName    map[string]*Register
	byOffset  map[uint32]*Register
}

func newMap(name string, version int, busType string, width int, regs []*Register) *Map {
	m := &Map{
		Name:      name,
		Version:   version,
		BusType:   busType,
		BusWidth:  width,
		registers: regs,
		byName:    make(map[string]*Register),
		byOffset:  make(map[uint32]*Register),
	}
	sort.SliceStable(m.registers, func(i, j int) bool {
		return m.registers[i].Offset < m.registers[j].Offset
	})
	for _, r := range m.registers {
		if _, ok := m.byName[r.Name]; !ok {
			m.byName[r.Name] = r
		}
		if _, ok := m.byOffset[r.Offset]; !ok {
			m.byOffset[r.Offset] = r
		}
	}
	return m
}

// Registers returns all registers in offset order
func (m *Map) Registers() []*Register {
	return m.registers
}

func (m *Map) ByName(name string) (*Register, bool) {
	r, ok := m.byName[name]
	return r, ok
}

func (m *Map) ByOffset(offset uint32) (*Register, bool) {
	r, ok := m.byOffset[offset]
	return r, ok
}

// MustByName is for names known at compile time
func (m *Map) MustByName(name string) *Register {
	r, ok := m.byName[name]
	if !ok {
		panic(fmt.Sprintf("regmap: no register %s in %s", name, m.Name))
	}
	return r
}

// Namer resolves absolute addresses of a block mapped at base
func (m *Map) Namer(base uint32) bus.Namer {
	return func(addr uint32) string {
		if addr < base {
			return "?"
		}
		if r, ok := m.byOffset[addr-base]; ok {
			return r.Name
		}
		return "?"
	}
}

//go:embed regmap_v1.yaml
var defaultYAML []byte

var defaultMap *Map

func init() {
	m, err := Load(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("regmap: embedded register map is broken: %s", err))
	}
	defaultMap = m
}

// Default returns the register map of the current silicon revision
func Default() *Map {
	return defaultMap
}

// DefaultYAML returns the embedded source of Default
func DefaultYAML() []byte {
	return defaultYAML
}
