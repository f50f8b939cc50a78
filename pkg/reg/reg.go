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

// Package reg is the register accessor of one block instance.
package reg

import (
	"fmt"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

// ErrUnsupported returned when software touches reserved or wrongly typed bits
type ErrUnsupported struct {
	What string
}

func (e ErrUnsupported) Error() string {
	return fmt.Sprintf("Unsupported: %s", e.What)
}

// Block addresses registers by byte offset relative to Base
type Block struct {
	Base uint32
	Bus  bus.Bus
	Map  *regmap.Map
}

// NewBlock binds a block at base. A nil map selects regmap.Default.
func NewBlock(b bus.Bus, base uint32, m *regmap.Map) (*Block, error) {
	if err := bus.CheckAligned(base); err != nil {
		return nil, err
	}
	if m == nil {
		m = regmap.Default()
	}
	return &Block{
		Base: base,
		Bus:  b,
		Map:  m,
	}, nil
}

// Register resolves an offset to its descriptor
func (blk *Block) Register(offset uint32) (*regmap.Register, error) {
	if err := bus.CheckAligned(offset); err != nil {
		return nil, err
	}
	r, ok := blk.Map.ByOffset(offset)
	if !ok {
		return nil, bus.ErrInvalidAddress{Addr: offset, Reason: "offset outside the register map"}
	}
	return r, nil
}

func (blk *Block) Read(offset uint32) (uint32, error) {
	if _, err := blk.Register(offset); err != nil {
		return 0, err
	}
	return blk.Bus.Read32(blk.Base + offset)
}

func (blk *Block) Write(offset, value uint32) error {
	if _, err := blk.Register(offset); err != nil {
		return err
	}
	return blk.Bus.Write32(blk.Base+offset, value)
}

// RMW writes (v &^ clearMask) | setMask back to a software-owned register.
// Registers holding W1C bits are refused since the read value would clear them.
// W1P bits are dropped from the written value.
func (blk *Block) RMW(offset, clearMask, setMask uint32) error {
	r, err := blk.Register(offset)
	if err != nil {
		return err
	}
	if r.ClearMask() != 0 || r.SideEffects {
		return ErrUnsupported{What: fmt.Sprintf("read-modify-write of %s", r.Name)}
	}
	if r.WritableMask() == 0 {
		return ErrUnsupported{What: fmt.Sprintf("read-modify-write of non-RW register %s", r.Name)}
	}
	if (clearMask|setMask)&^r.WritableMask() != 0 {
		return ErrUnsupported{What: fmt.Sprintf("read-modify-write of non-RW bits 0x%08x of %s", (clearMask|setMask)&^r.WritableMask(), r.Name)}
	}
	v, err := blk.Bus.Read32(blk.Base + offset)
	if err != nil {
		return err
	}
	v = ((v &^ clearMask) | setMask) & r.WritableMask()
	return blk.Bus.Write32(blk.Base+offset, v)
}

// Pulse writes exactly mask to a register, mask must only hold W1P bits.
// Other bits are written 0, which the hardware treats as no-op for W1P and
// W1C fields. On Mixed registers RW fields are preserved by folding in their
// current value.
func (blk *Block) Pulse(offset, mask uint32) error {
	r, err := blk.Register(offset)
	if err != nil {
		return err
	}
	if mask == 0 || mask&^r.PulseMask() != 0 {
		return ErrUnsupported{What: fmt.Sprintf("pulse of non-W1P bits 0x%08x of %s", mask&^r.PulseMask(), r.Name)}
	}
	return blk.writeIsolated(r, mask)
}

// ClearSticky writes exactly mask to a register, mask must only hold W1C bits
func (blk *Block) ClearSticky(offset, mask uint32) error {
	r, err := blk.Register(offset)
	if err != nil {
		return err
	}
	if mask == 0 || mask&^r.ClearMask() != 0 {
		return ErrUnsupported{What: fmt.Sprintf("clear of non-W1C bits 0x%08x of %s", mask&^r.ClearMask(), r.Name)}
	}
	return blk.writeIsolated(r, mask)
}

func (blk *Block) writeIsolated(r *regmap.Register, mask uint32) error {
	value := mask
	if rw := r.WritableMask(); rw != 0 {
		// RW bits share the register, write back what they hold so the
		// write carries no change for them
		cur, err := blk.Bus.Read32(blk.Base + r.Offset)
		if err != nil {
			return err
		}
		value |= cur & rw
	}
	return blk.Bus.Write32(blk.Base+r.Offset, value)
}

// ReadField reads a register and extracts the named field
func (blk *Block) ReadField(offset uint32, field string) (uint32, error) {
	r, err := blk.Register(offset)
	if err != nil {
		return 0, err
	}
	f, ok := r.Field(field)
	if !ok {
		return 0, ErrUnsupported{What: fmt.Sprintf("no field %s in %s", field, r.Name)}
	}
	v, err := blk.Bus.Read32(blk.Base + offset)
	if err != nil {
		return 0, err
	}
	return f.Get(v), nil
}

// Named is a register value tagged with its descriptor
type Named struct {
	*regmap.Register
	Value uint32
}

// Dump reads every register that can be read without side effects
func (blk *Block) Dump() ([]Named, error) {
	var out []Named
	for _, r := range blk.Map.Registers() {
		if r.SideEffects {
			continue
		}
		v, err := blk.Bus.Read32(blk.Base + r.Offset)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", r.Name, err)
		}
		out = append(out, Named{Register: r, Value: v})
	}
	return out, nil
}
