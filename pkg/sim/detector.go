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
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

// StatusWord is the first word of every frame. The model stores the 1-based
// snapshot index, drivers treat the word as opaque.
func StatusWord(index uint32) uint32 {
	return index
}

// snapshot latches a sample on all channels, pushes one frame and strobes
// sample_valid into the event detector
func (d *Device) snapshot() {
	d.snapshots++
	index := d.snapshots

	d.push(StatusWord(index))
	for ch := 0; ch < regmap.NumChannels; ch++ {
		raw := d.sample(index, ch)
		d.regs[regmap.OffADCRaw(ch)] = raw
		d.push(raw)
	}
	d.sampleValid()
}

func saturatingInc(v uint32) uint32 {
	if v == 0xffffffff {
		return v
	}
	return v + 1
}

func absDelta(delta int64) uint64 {
	if delta < 0 {
		return uint64(-delta)
	}
	return uint64(delta)
}

func (d *Device) sampleValid() {
	enabled := d.regs[regmap.OffEvtCfg] & regmap.EvtCfgEnMask
	for ch := 0; ch < regmap.NumChannels; ch++ {
		if enabled&(1<<uint(ch)) == 0 {
			continue
		}
		raw := int64(int32(d.regs[regmap.OffADCRaw(ch)]))
		tare := int64(int32(d.regs[regmap.OffTare(ch)]))
		delta := raw - tare
		if absDelta(delta) <= uint64(d.regs[regmap.OffEvtThresh(ch)]) {
			continue
		}
		d.regs[regmap.OffEvtCount(ch)] = saturatingInc(d.regs[regmap.OffEvtCount(ch)])
		d.regs[regmap.OffEvtLastDelta(ch)] = uint32(int32(delta))
		d.regs[regmap.OffEvtLastTS] = d.ts
		d.regs[regmap.OffEvtLastTSCh(ch)] = d.ts
	}
}

// SetEventCount presets a counter, used to exercise saturation
func (d *Device) SetEventCount(ch int, count uint32) {
	d.mu.Lock()
	d.regs[regmap.OffEvtCount(ch)] = count
	d.mu.Unlock()
}
