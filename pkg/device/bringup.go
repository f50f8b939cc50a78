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
	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

// DefaultDumpWords is the drain buffer used by bring-up dumps
const DefaultDumpWords = 64

// DumpResult is the outcome of FIFODump
type DumpResult struct {
	Words []uint32
	// StaleOverrun is set when overrun was already flagged before the snapshot
	StaleOverrun bool
	// Overrun is set when overrun was flagged after the drain
	Overrun bool
}

// FIFODump is the FIFO bring-up procedure: enable the block, clear a stale
// overrun, snapshot, drain into buf and clear an overrun raised meanwhile.
func (d *Device) FIFODump(buf []uint32) (*DumpResult, error) {
	res := &DumpResult{}
	if err := d.Enable(); err != nil {
		return nil, err
	}
	var err error
	if res.StaleOverrun, err = d.FIFOOverrun(); err != nil {
		return nil, err
	}
	if res.StaleOverrun {
		log.Info("Clearing stale FIFO overrun")
		if err := d.FIFOClearOverrun(); err != nil {
			return nil, err
		}
	}
	if err := d.Snapshot(); err != nil {
		return nil, err
	}
	n, err := d.FIFODrain(buf)
	if err != nil {
		return nil, err
	}
	res.Words = buf[:n]
	log.Debug("Drained %d FIFO words", n)
	if res.Overrun, err = d.FIFOOverrun(); err != nil {
		return nil, err
	}
	if res.Overrun {
		log.Warning("FIFO overrun during dump, drain is too slow")
		if err := d.FIFOClearOverrun(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// SmokeStep is the detector state observed after one snapshot
type SmokeStep struct {
	EventState
	GlobalTS uint32
}

// EventSmoke is the event detector bring-up procedure: enable the block,
// program threshold on channel ch, enable detection on ch only and take
// the given number of snapshots, reading the detector after each one.
func (d *Device) EventSmoke(ch int, threshold uint32, snapshots int) ([]SmokeStep, error) {
	if err := checkChannel(ch); err != nil {
		return nil, err
	}
	if snapshots < 0 {
		return nil, ErrInvalidArgument{Name: "snapshot count", Value: snapshots, Reason: "must not be negative"}
	}
	if err := d.Enable(); err != nil {
		return nil, err
	}
	if err := d.EvtSetThreshold(ch, threshold); err != nil {
		return nil, err
	}
	if err := d.EvtEnable(1 << uint(ch)); err != nil {
		return nil, err
	}
	steps := make([]SmokeStep, 0, snapshots)
	for i := 0; i < snapshots; i++ {
		if err := d.Snapshot(); err != nil {
			return nil, err
		}
		s, err := d.EvtRead(ch)
		if err != nil {
			return nil, err
		}
		ts, err := d.EvtLastGlobalTS()
		if err != nil {
			return nil, err
		}
		log.Debug("Snapshot %d ch%d count=%d delta=%d ts=%d global_ts=%d", i+1, ch, s.Count, s.LastDelta, s.LastTS, ts)
		steps = append(steps, SmokeStep{EventState: s, GlobalTS: ts})
	}
	return steps, nil
}
