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
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

// EventState is what the detector recorded for one channel
type EventState struct {
	Count     uint32
	LastDelta int32
	LastTS    uint32
}

// EvtEnable writes the per-channel enable mask. Counters are not cleared.
func (d *Device) EvtEnable(mask uint8) error {
	return d.Write(regmap.OffEvtCfg, uint32(mask))
}

func (d *Device) EvtEnabled() (uint8, error) {
	v, err := d.Read(regmap.OffEvtCfg)
	return uint8(v & regmap.EvtCfgEnMask), err
}

// EvtSetThreshold sets the level |raw - tare| must exceed to count an event
func (d *Device) EvtSetThreshold(ch int, threshold uint32) error {
	if err := checkChannel(ch); err != nil {
		return err
	}
	return d.Write(regmap.OffEvtThresh(ch), threshold)
}

// EvtRead reads count, last delta and the per-channel timestamp
func (d *Device) EvtRead(ch int) (EventState, error) {
	var s EventState
	if err := checkChannel(ch); err != nil {
		return s, err
	}
	var err error
	if s.Count, err = d.Read(regmap.OffEvtCount(ch)); err != nil {
		return s, err
	}
	delta, err := d.Read(regmap.OffEvtLastDelta(ch))
	if err != nil {
		return s, err
	}
	s.LastDelta = int32(delta)
	if s.LastTS, err = d.Read(regmap.OffEvtLastTSCh(ch)); err != nil {
		return s, err
	}
	return s, nil
}

// EvtLastGlobalTS reads the timestamp of the most recent event on any channel
func (d *Device) EvtLastGlobalTS() (uint32, error) {
	return d.Read(regmap.OffEvtLastTS)
}
