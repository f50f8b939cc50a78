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

// Package bus defines the 32-bit memory-mapped register bus the driver talks to.
package bus

import (
	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

// WordSize is the width of every bus transaction in bytes
const WordSize = 4

// Bus is a 32-bit register bus addressed by absolute byte address.
// Every call is one ordered transaction with full byte enables.
type Bus interface {
	Read32(addr uint32) (uint32, error)
	Write32(addr uint32, value uint32) error
}

// CheckAligned returns ErrInvalidAddress if addr is not word aligned
func CheckAligned(addr uint32) error {
	if addr%WordSize != 0 {
		return ErrInvalidAddress{Addr: addr, Reason: "not 32-bit aligned"}
	}
	return nil
}

// Namer resolves an absolute address to a human readable name
type Namer func(addr uint32) string

// Trace wraps a bus and logs every transaction at debug level
type Trace struct {
	Bus
	Name Namer
}

var _ Bus = &Trace{}

func NewTrace(b Bus, name Namer) *Trace {
	return &Trace{Bus: b, Name: name}
}

func (t *Trace) label(addr uint32) string {
	if t.Name == nil {
		return ""
	}
	return t.Name(addr)
}

func (t *Trace) Read32(addr uint32) (uint32, error) {
	value, err := t.Bus.Read32(addr)
	if log.Enabled(log.DebugLevel) {
		if err != nil {
			log.Debug("R 0x%08x %s: %s", addr, t.label(addr), err)
		} else {
			log.Debug("R 0x%08x %s = 0x%08x", addr, t.label(addr), value)
		}
	}
	return value, err
}

func (t *Trace) Write32(addr uint32, value uint32) error {
	err := t.Bus.Write32(addr, value)
	if log.Enabled(log.DebugLevel) {
		if err != nil {
			log.Debug("W 0x%08x %s <- 0x%08x: %s", addr, t.label(addr), value, err)
		} else {
			log.Debug("W 0x%08x %s <- 0x%08x", addr, t.label(addr), value)
		}
	}
	return err
}
