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
	"fmt"
	"strings"
)

// ErrInvalidMap lists every consistency problem found in a register map
type ErrInvalidMap struct {
	Problems []string
}

func (e ErrInvalidMap) Error() string {
	return fmt.Sprintf("Invalid register map (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks that the map is internally consistent:
// unique names and offsets, word alignment, sane and disjoint fields,
// per-field access on Mixed registers, reset values inside declared fields.
func (m *Map) Validate() error {
	var problems []string
	add := func(format string, v ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, v...))
	}

	names := make(map[string]bool)
	offsets := make(map[uint32]string)
	for _, r := range m.registers {
		if r.Name == "" {
			add("register at 0x%03X has no name", r.Offset)
		}
		if names[r.Name] {
			add("duplicate register name %s", r.Name)
		}
		names[r.Name] = true

		if r.Offset%4 != 0 {
			add("%s: offset 0x%03X not 32-bit aligned", r.Name, r.Offset)
		}
		if other, ok := offsets[r.Offset]; ok {
			add("offset collision: 0x%03X used by %s and %s", r.Offset, other, r.Name)
		} else {
			offsets[r.Offset] = r.Name
		}

		if !r.Access.valid() {
			add("%s: unknown access mode %q", r.Name, r.Access)
		}
		if r.Access == Mixed && len(r.Fields) == 0 {
			add("%s: Mixed register must declare fields", r.Name)
		}

		var used uint32
		for _, f := range r.Fields {
			if f.MSB > 31 || f.LSB > 31 {
				add("%s.%s: bit range out of 0..31: %d:%d", r.Name, f.Name, f.MSB, f.LSB)
				continue
			}
			if f.MSB < f.LSB {
				add("%s.%s: msb<lsb: %d:%d", r.Name, f.Name, f.MSB, f.LSB)
				continue
			}
			if used&f.Mask != 0 {
				add("%s: field overlap at %s (%d:%d)", r.Name, f.Name, f.MSB, f.LSB)
			}
			used |= f.Mask

			switch {
			case f.Access == Mixed:
				add("%s.%s: a field can not be Mixed", r.Name, f.Name)
			case f.Access != "" && !f.Access.valid():
				add("%s.%s: unknown access mode %q", r.Name, f.Name, f.Access)
			case r.Access == Mixed && f.Access == "":
				add("%s.%s: fields of a Mixed register need an access mode", r.Name, f.Name)
			}
		}
		if len(r.Fields) > 0 && r.Reset&^used != 0 {
			add("%s: reset 0x%08X sets bits outside declared fields", r.Name, r.Reset)
		}
	}

	if len(problems) > 0 {
		return ErrInvalidMap{Problems: problems}
	}
	return nil
}
