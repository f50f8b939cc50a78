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
	"fmt"
	"math"

	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

// Q16 is a signed fixed point number with 16 fractional bits
type Q16 int32

// One is 1.0, the reset value of SCALE_CHx
const One Q16 = Q16(regmap.ScaleOne)

// FromFloat rounds f to the nearest Q16.16 value, saturating at the int32 range
func FromFloat(f float64) Q16 {
	v := math.Round(f * float64(One))
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return Q16(v)
}

func (q Q16) Float() float64 {
	return float64(q) / float64(One)
}

func (q Q16) String() string {
	return fmt.Sprintf("%g", q.Float())
}

// Calibrate applies tare and scale to a raw reading, (raw - tare) * scale,
// keeping the product in Q16.16
func Calibrate(raw uint32, tare int32, scale Q16) int64 {
	return (int64(int32(raw)) - int64(tare)) * int64(scale)
}

// Channel is a view of one channel's registers
type Channel struct {
	dev   *Device
	Index int
}

// Channel returns the view of channel i
func (d *Device) Channel(i int) (Channel, error) {
	if err := checkChannel(i); err != nil {
		return Channel{}, err
	}
	return Channel{dev: d, Index: i}, nil
}

func checkChannel(ch int) error {
	if ch < 0 || ch >= regmap.NumChannels {
		return ErrInvalidChannel{Ch: ch, Reason: fmt.Sprintf("channel must be 0..%d", regmap.NumChannels-1)}
	}
	return nil
}

// Raw reads ADC_RAW_CHx, the reading latched by the last snapshot
func (c Channel) Raw() (uint32, error) {
	return c.dev.Read(regmap.OffADCRaw(c.Index))
}

func (c Channel) Tare() (int32, error) {
	v, err := c.dev.Read(regmap.OffTare(c.Index))
	return int32(v), err
}

func (c Channel) SetTare(tare int32) error {
	return c.dev.Write(regmap.OffTare(c.Index), uint32(tare))
}

func (c Channel) Scale() (Q16, error) {
	v, err := c.dev.Read(regmap.OffScale(c.Index))
	return Q16(v), err
}

func (c Channel) SetScale(scale Q16) error {
	return c.dev.Write(regmap.OffScale(c.Index), uint32(scale))
}

func (c Channel) Threshold() (uint32, error) {
	return c.dev.Read(regmap.OffEvtThresh(c.Index))
}

func (c Channel) SetThreshold(threshold uint32) error {
	return c.dev.EvtSetThreshold(c.Index, threshold)
}

func (c Channel) Event() (EventState, error) {
	return c.dev.EvtRead(c.Index)
}

// Calibrated reads the raw reading with its tare and scale and returns
// the calibrated value
func (c Channel) Calibrated() (float64, error) {
	raw, err := c.Raw()
	if err != nil {
		return 0, err
	}
	tare, err := c.Tare()
	if err != nil {
		return 0, err
	}
	scale, err := c.Scale()
	if err != nil {
		return 0, err
	}
	return float64(Calibrate(raw, tare, scale)) / float64(One), nil
}
