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

// Package device drives one Home Inventory block: identity, control,
// channel calibration, the ADC FIFO and the event detector.
//
// The driver is not reentrant. Callers sharing a Device across goroutines
// must serialize access themselves.
package device

import (
	"fmt"

	"jinr.ru/greenlab/go-homeinv/pkg/reg"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

// State of the block as seen from CTRL
type State int

const (
	StateUninit State = iota
	StateEnabled
)

func (s State) String() string {
	switch s {
	case StateUninit:
		return "uninit"
	case StateEnabled:
		return "enabled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Version struct {
	Major uint8
	Minor uint8
	Patch uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// VersionFromWord splits the VERSION register
func VersionFromWord(word uint32) Version {
	return Version{
		Major: uint8(word >> 16),
		Minor: uint8(word >> 8),
		Patch: uint8(word),
	}
}

type Device struct {
	*reg.Block
}

// New wraps a register block in the device driver
func New(blk *reg.Block) *Device {
	return &Device{Block: blk}
}

// ID reads the identification register
func (d *Device) ID() (uint32, error) {
	return d.Read(regmap.OffID)
}

// Version reads and decodes the VERSION register
func (d *Device) Version() (Version, error) {
	word, err := d.Read(regmap.OffVersion)
	if err != nil {
		return Version{}, err
	}
	return VersionFromWord(word), nil
}

// CheckIdentity reads ID and VERSION twice and requires them nonzero and stable.
// A block answering with zeros or changing values is not the expected peripheral.
func (d *Device) CheckIdentity() (uint32, Version, error) {
	var ids, versions [2]uint32
	for i := range ids {
		var err error
		if ids[i], err = d.Read(regmap.OffID); err != nil {
			return 0, Version{}, err
		}
		if versions[i], err = d.Read(regmap.OffVersion); err != nil {
			return 0, Version{}, err
		}
	}
	switch {
	case ids[0] == 0 || versions[0] == 0:
		return ids[0], VersionFromWord(versions[0]), ErrIdentity{ID: ids[0], Version: versions[0], Reason: "zero identity"}
	case ids[0] != ids[1] || versions[0] != versions[1]:
		return ids[0], VersionFromWord(versions[0]), ErrIdentity{ID: ids[0], Version: versions[0], Reason: "identity changed between reads"}
	}
	return ids[0], VersionFromWord(versions[0]), nil
}

// Enable sets CTRL.ENABLE keeping other control bits
func (d *Device) Enable() error {
	return d.RMW(regmap.OffCtrl, 0, regmap.CtrlEnable)
}

// Disable clears CTRL.ENABLE
func (d *Device) Disable() error {
	return d.RMW(regmap.OffCtrl, regmap.CtrlEnable, 0)
}

func (d *Device) Enabled() (bool, error) {
	v, err := d.Read(regmap.OffCtrl)
	if err != nil {
		return false, err
	}
	return v&regmap.CtrlEnable != 0, nil
}

func (d *Device) State() (State, error) {
	enabled, err := d.Enabled()
	if err != nil {
		return StateUninit, err
	}
	if enabled {
		return StateEnabled, nil
	}
	return StateUninit, nil
}

// Start would pulse CTRL.START. The streaming mode behind it is reserved
// in revision 1 so the call is refused.
func (d *Device) Start() error {
	return reg.ErrUnsupported{What: "CTRL.START is reserved in this revision"}
}

// CoreStatus reads STATUS.CORE_STATUS
func (d *Device) CoreStatus() (uint8, error) {
	v, err := d.Read(regmap.OffStatus)
	if err != nil {
		return 0, err
	}
	return uint8(v & regmap.StatusCoreMask), nil
}

// SetIRQEnable writes IRQ_EN. Only bits [2:0] exist. No interrupt is
// delivered by revision 1, the register is kept for software compatibility.
func (d *Device) SetIRQEnable(mask uint32) error {
	if mask&^regmap.IRQEnMask != 0 {
		return reg.ErrUnsupported{What: fmt.Sprintf("IRQ_EN bits 0x%08x", mask&^regmap.IRQEnMask)}
	}
	return d.Write(regmap.OffIRQEn, mask)
}

func (d *Device) IRQEnable() (uint32, error) {
	v, err := d.Read(regmap.OffIRQEn)
	return v & regmap.IRQEnMask, err
}

// NumChannels reads ADC_CFG.NUM_CH
func (d *Device) NumChannels() (int, error) {
	v, err := d.Read(regmap.OffADCCfg)
	if err != nil {
		return 0, err
	}
	return int(v & regmap.ADCCfgNumChMask), nil
}

// SetNumChannels programs how many channels the front end converts, 1 to 8
func (d *Device) SetNumChannels(n int) error {
	if n < 1 || n > regmap.NumChannels {
		return ErrInvalidChannel{Ch: n, Reason: fmt.Sprintf("channel count must be 1..%d", regmap.NumChannels)}
	}
	return d.RMW(regmap.OffADCCfg, regmap.ADCCfgNumChMask, uint32(n))
}
