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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"sigs.k8s.io/yaml"
)

const (
	SupportedVersion = 1
	SupportedBusType = "wishbone"
)

// Hex accepts both YAML integers and quoted literals such as "0x3000_0000"
type Hex uint32

func (h *Hex) UnmarshalJSON(data []byte) error {
	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		if n > 0xffffffff {
			return fmt.Errorf("value %d does not fit 32 bits", n)
		}
		*h = Hex(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected an integer or a quoted literal, got %s", string(data))
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return fmt.Errorf("bad integer literal %q: %w", s, err)
	}
	*h = Hex(n)
	return nil
}

func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%08X", uint32(h)))
}

type fieldSpec struct {
	Name   string `json:"name"`
	Bits   []int  `json:"bits"`
	Access Access `json:"access,omitempty"`
	Desc   string `json:"desc,omitempty"`
}

type registerSpec struct {
	Name        string      `json:"name"`
	Offset      Hex         `json:"offset"`
	Count       int         `json:"count,omitempty"`
	Stride      Hex         `json:"stride,omitempty"`
	Access      Access      `json:"access"`
	Reset       Hex         `json:"reset,omitempty"`
	SideEffects bool        `json:"side_effects,omitempty"`
	Desc        string      `json:"desc,omitempty"`
	Fields      []fieldSpec `json:"fields,omitempty"`
}

type blockSpec struct {
	Name      string         `json:"name"`
	Base      Hex            `json:"base"`
	Registers []registerSpec `json:"registers"`
}

type busSpec struct {
	Type  string `json:"type"`
	Width int    `json:"width"`
}

type fileSpec struct {
	Version int         `json:"version"`
	Bus     busSpec     `json:"bus"`
	Blocks  []blockSpec `json:"blocks"`
}

func fieldMask(msb, lsb int) uint32 {
	if lsb < 0 || msb > 31 || msb < lsb {
		return 0
	}
	width := uint(msb - lsb + 1)
	return uint32(((uint64(1) << width) - 1) << uint(lsb))
}

func buildFields(regName string, specs []fieldSpec) ([]Field, error) {
	var fields []Field
	for _, fs := range specs {
		if len(fs.Bits) != 2 {
			return nil, fmt.Errorf("field bits for %s.%s must be [msb, lsb]", regName, fs.Name)
		}
		msb, lsb := fs.Bits[0], fs.Bits[1]
		if msb < 0 || lsb < 0 {
			return nil, fmt.Errorf("field bits for %s.%s must not be negative", regName, fs.Name)
		}
		fields = append(fields, Field{
			Name:   fs.Name,
			MSB:    uint(msb),
			LSB:    uint(lsb),
			Mask:   fieldMask(msb, lsb),
			Access: fs.Access,
			Desc:   fs.Desc,
		})
	}
	return fields, nil
}

// Parse builds a map from YAML without checking its consistency, see Validate
func Parse(data []byte) (*Map, error) {
	spec := &fileSpec{}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("regmap: could not parse YAML: %w", err)
	}
	if spec.Version != SupportedVersion {
		return nil, fmt.Errorf("regmap: unexpected regmap version: %d", spec.Version)
	}
	if spec.Bus.Type != SupportedBusType {
		return nil, fmt.Errorf("regmap: only %s bus is supported, got %q", SupportedBusType, spec.Bus.Type)
	}
	if len(spec.Blocks) == 0 {
		return nil, fmt.Errorf("regmap: no blocks defined")
	}

	var regs []*Register
	for _, blk := range spec.Blocks {
		for _, rs := range blk.Registers {
			fields, err := buildFields(rs.Name, rs.Fields)
			if err != nil {
				return nil, fmt.Errorf("regmap: %w", err)
			}
			count := rs.Count
			if count < 0 {
				return nil, fmt.Errorf("regmap: %s: negative count", rs.Name)
			}
			stride := uint32(rs.Stride)
			if count > 0 && stride == 0 {
				stride = 4
			}
			expand := count > 0
			if !expand {
				count = 1
			}
			for i := 0; i < count; i++ {
				name := rs.Name
				if expand {
					name = fmt.Sprintf("%s%d", rs.Name, i)
				}
				regs = append(regs, &Register{
					Name:        name,
					Offset:      uint32(blk.Base) + uint32(rs.Offset) + uint32(i)*stride,
					Access:      rs.Access,
					Reset:       uint32(rs.Reset),
					Fields:      append([]Field(nil), fields...),
					Desc:        rs.Desc,
					SideEffects: rs.SideEffects,
				})
			}
		}
	}
	return newMap(spec.Blocks[0].Name, spec.Version, spec.Bus.Type, spec.Bus.Width, regs), nil
}

// Load parses and validates a register map
func Load(data []byte) (*Map, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
