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

// Offsets and masks of the revision 1 map. Kept in sync with regmap_v1.yaml by tests.

const (
	// DefaultBase is where common Caravel harnesses map the user project Wishbone
	DefaultBase uint32 = 0x30000000
	// BlockSize is the span of the register window
	BlockSize uint32 = 0x600

	NumChannels          = 8
	ChannelStride uint32 = 4
)

const (
	OffID      uint32 = 0x000
	OffVersion uint32 = 0x004

	OffCtrl   uint32 = 0x100
	OffIRQEn  uint32 = 0x104
	OffStatus uint32 = 0x108

	OffADCCfg    uint32 = 0x200
	OffADCCmd    uint32 = 0x204
	OffADCRawCH0 uint32 = 0x210

	OffTareCH0  uint32 = 0x300
	OffScaleCH0 uint32 = 0x320

	OffEvtCountCH0     uint32 = 0x400
	OffEvtLastDeltaCH0 uint32 = 0x420
	OffEvtLastTS       uint32 = 0x440
	OffEvtLastTSCH0    uint32 = 0x444
	OffEvtCfg          uint32 = 0x464
	OffEvtThreshCH0    uint32 = 0x468

	OffADCFIFOStatus uint32 = 0x500
	OffADCFIFOData   uint32 = 0x504
)

func chOffset(base uint32, ch int) uint32 {
	return base + uint32(ch)*ChannelStride
}

func OffADCRaw(ch int) uint32       { return chOffset(OffADCRawCH0, ch) }
func OffTare(ch int) uint32         { return chOffset(OffTareCH0, ch) }
func OffScale(ch int) uint32        { return chOffset(OffScaleCH0, ch) }
func OffEvtCount(ch int) uint32     { return chOffset(OffEvtCountCH0, ch) }
func OffEvtLastDelta(ch int) uint32 { return chOffset(OffEvtLastDeltaCH0, ch) }
func OffEvtLastTSCh(ch int) uint32  { return chOffset(OffEvtLastTSCH0, ch) }
func OffEvtThresh(ch int) uint32    { return chOffset(OffEvtThreshCH0, ch) }

const (
	CtrlEnable uint32 = 1 << 0
	CtrlStart  uint32 = 1 << 1 // W1P, reserved in revision 1

	IRQEnMask uint32 = 0x00000007

	StatusCoreMask uint32 = 0x000000FF

	ADCCfgNumChMask uint32 = 0x0000000F

	ADCCmdSnapshot uint32 = 1 << 0 // W1P

	EvtCfgEnMask uint32 = 0x000000FF

	FIFOLevelMask uint32 = 0x0000FFFF
	FIFOOverrun   uint32 = 1 << 16 // W1C, sticky
)

const (
	// IDMagic is the reset value of ID
	IDMagic uint32 = 0x48494E56
	// ScaleOne is 1.0 in Q16.16, the reset value of SCALE_CHx
	ScaleOne uint32 = 0x00010000
	// ADCCfgReset selects all eight channels
	ADCCfgReset uint32 = 0x00000008
)
