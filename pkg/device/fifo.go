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

package device

import (
	"jinr.ru/greenlab/go-homeinv/pkg/layers"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

func (d *Device) fifoStatus() (uint32, error) {
	return d.Read(regmap.OffADCFIFOStatus)
}

// FIFOLevel returns the number of readable FIFO words
func (d *Device) FIFOLevel() (uint16, error) {
	st, err := d.fifoStatus()
	return uint16(st & regmap.FIFOLevelMask), err
}

// FIFOOverrun returns the sticky overrun flag. Reading does not clear it.
func (d *Device) FIFOOverrun() (bool, error) {
	st, err := d.fifoStatus()
	return st&regmap.FIFOOverrun != 0, err
}

func (d *Device) FIFOClearOverrun() error {
	return d.ClearSticky(regmap.OffADCFIFOStatus, regmap.FIFOOverrun)
}

// Snapshot pulses ADC_CMD.SNAPSHOT. It does not wait, the frame is
// visible to the next bus transaction.
func (d *Device) Snapshot() error {
	return d.Pulse(regmap.OffADCCmd, regmap.ADCCmdSnapshot)
}

// FIFODrain pops words into buf until the FIFO reports empty or buf is full.
// The status is re-read before every pop so words arriving during the drain
// are picked up.
func (d *Device) FIFODrain(buf []uint32) (int, error) {
	n := 0
	for n < len(buf) {
		st, err := d.fifoStatus()
		if err != nil {
			return n, err
		}
		if st&regmap.FIFOLevelMask == 0 {
			break
		}
		w, err := d.Read(regmap.OffADCFIFOData)
		if err != nil {
			return n, err
		}
		buf[n] = w
		n++
	}
	return n, nil
}

// FIFOReadFrame reads one snapshot frame. If the overrun flag is set on
// entry it is cleared and ErrOverrun is returned together with the frame.
// ErrShortFrame is returned when fewer than nine words were available,
// f then holds what was read.
func (d *Device) FIFOReadFrame(f *layers.Frame) error {
	st, err := d.fifoStatus()
	if err != nil {
		return err
	}
	overrun := st&regmap.FIFOOverrun != 0
	if overrun {
		log.Debug("FIFO overrun on frame read, clearing")
		if err := d.FIFOClearOverrun(); err != nil {
			return err
		}
	}
	var words [layers.FrameWords]uint32
	n, err := d.FIFODrain(words[:])
	if err != nil {
		return err
	}
	f.Status = words[0]
	copy(f.Ch[:], words[1:])
	if n < layers.FrameWords {
		return layers.ErrShortFrame{Got: n, Want: layers.FrameWords}
	}
	if overrun {
		return ErrOverrun{}
	}
	return nil
}
