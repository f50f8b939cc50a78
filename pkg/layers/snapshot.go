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

package layers

import (
	"encoding/binary"
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// SnapshotFrameLayerNum identifies the layer
	SnapshotFrameLayerNum = 2001
)

// SnapshotFrameLayer is one snapshot frame in a binary FIFO dump,
// nine little-endian 32-bit words. Consecutive frames decode into
// consecutive layers.
type SnapshotFrameLayer struct {
	layers.BaseLayer
	Frame
}

// SnapshotFrameLayerType is registered in init since the decoder chains to itself
var SnapshotFrameLayerType gopacket.LayerType

func init() {
	SnapshotFrameLayerType = gopacket.RegisterLayerType(SnapshotFrameLayerNum,
		gopacket.LayerTypeMetadata{Name: "SnapshotFrameLayerType", Decoder: gopacket.DecodeFunc(DecodeSnapshotFrameLayer)})
}

// LayerType returns the type of the snapshot frame layer in the layer catalog
func (sf *SnapshotFrameLayer) LayerType() gopacket.LayerType {
	return SnapshotFrameLayerType
}

func (sf *SnapshotFrameLayer) CanDecode() gopacket.LayerClass {
	return SnapshotFrameLayerType
}

// NextLayerType is another frame while at least a full frame is left,
// a payload for a truncated tail, and nothing at the end of the dump.
func (sf *SnapshotFrameLayer) NextLayerType() gopacket.LayerType {
	switch {
	case len(sf.Payload) >= FrameBytes:
		return SnapshotFrameLayerType
	case len(sf.Payload) > 0:
		return gopacket.LayerTypePayload
	}
	return gopacket.LayerTypeZero
}

// Serialize writes the frame into buf which must be at least FrameBytes long
func (sf *SnapshotFrameLayer) Serialize(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], sf.Status)
	for i, w := range sf.Ch {
		off := 4 * (i + 1)
		binary.LittleEndian.PutUint32(buf[off:off+4], w)
	}
}

// SerializeTo appends the frame to the SerializeBuffer
func (sf *SnapshotFrameLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(FrameBytes)
	if err != nil {
		return err
	}
	sf.Serialize(bytes)
	return nil
}

// DecodeFromBytes decodes the first frame of data, the rest becomes the payload
func (sf *SnapshotFrameLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < FrameBytes {
		df.SetTruncated()
		return errors.New("Snapshot frame too short")
	}
	sf.BaseLayer = layers.BaseLayer{
		Contents: data[:FrameBytes],
		Payload:  data[FrameBytes:],
	}
	sf.Status = binary.LittleEndian.Uint32(data[0:4])
	for i := range sf.Ch {
		off := 4 * (i + 1)
		sf.Ch[i] = binary.LittleEndian.Uint32(data[off : off+4])
	}
	return nil
}

func DecodeSnapshotFrameLayer(data []byte, p gopacket.PacketBuilder) error {
	sf := &SnapshotFrameLayer{}
	err := sf.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(sf)
	next := sf.NextLayerType()
	if next == gopacket.LayerTypeZero {
		return nil
	}
	return p.NextDecoder(next)
}

// EncodeFrames serializes frames into a binary dump
func EncodeFrames(frames []Frame) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	for _, f := range frames {
		sf := &SnapshotFrameLayer{Frame: f}
		if err := sf.SerializeTo(buf, opts); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeFrames decodes a binary dump into frames. Trailing bytes that do not
// make up a full frame are reported, not decoded.
func DecodeFrames(data []byte) ([]Frame, int, error) {
	if len(data) < FrameBytes {
		return nil, len(data), nil
	}
	packet := gopacket.NewPacket(data, SnapshotFrameLayerType, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, 0, errLayer.Error()
	}
	var frames []Frame
	trailing := 0
	for _, layer := range packet.Layers() {
		switch l := layer.(type) {
		case *SnapshotFrameLayer:
			frames = append(frames, l.Frame)
		case *gopacket.Payload:
			trailing = len(l.Payload())
		}
	}
	return frames, trailing, nil
}
