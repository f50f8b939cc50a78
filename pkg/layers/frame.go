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
	"fmt"
	"io"

	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

const (
	// FrameWords is the number of 32-bit words pushed into the FIFO per snapshot
	FrameWords = 1 + regmap.NumChannels
	// FrameBytes is the size of a frame in a binary little-endian dump
	FrameBytes = FrameWords * 4
)

// Frame is one snapshot record in FIFO order: the status word followed by
// the raw readings of CH0..CH7. The status word is opaque and kept verbatim.
type Frame struct {
	Status uint32
	Ch     [regmap.NumChannels]uint32
}

// FrameFromWords builds a frame from exactly FrameWords words
func FrameFromWords(words []uint32) (Frame, error) {
	var f Frame
	if len(words) != FrameWords {
		return f, ErrShortFrame{Got: len(words), Want: FrameWords}
	}
	f.Status = words[0]
	copy(f.Ch[:], words[1:])
	return f, nil
}

// Words returns the frame in FIFO order
func (f *Frame) Words() []uint32 {
	words := make([]uint32, 0, FrameWords)
	words = append(words, f.Status)
	return append(words, f.Ch[:]...)
}

// Signed returns the reading of channel ch as a two's complement value
func (f *Frame) Signed(ch int) int32 {
	return int32(f.Ch[ch])
}

// FramesFromWords splits words into complete frames after skipping the first
// skip words. It returns the frames and the number of trailing words that
// did not make up a full frame.
func FramesFromWords(words []uint32, skip int) ([]Frame, int, error) {
	if skip < 0 || skip > len(words) {
		return nil, 0, fmt.Errorf("skip %d out of range for %d words", skip, len(words))
	}
	words = words[skip:]
	frames := make([]Frame, 0, len(words)/FrameWords)
	for len(words) >= FrameWords {
		f, _ := FrameFromWords(words[:FrameWords])
		frames = append(frames, f)
		words = words[FrameWords:]
	}
	return frames, len(words), nil
}

// WriteFrames prints frames in the bring-up dump format. Channel readings are
// shown signed, followed by the raw word.
func WriteFrames(w io.Writer, frames []Frame, showUnsigned bool) error {
	for i := range frames {
		f := &frames[i]
		if _, err := fmt.Fprintf(w, "frame %d:\n  status: 0x%08X\n", i, f.Status); err != nil {
			return err
		}
		for ch, u := range f.Ch {
			format := "  ch%d: i32=%11d  (0x%08X)\n"
			if showUnsigned {
				format = "  ch%d: i32=%11d  u32=0x%08X\n"
			}
			if _, err := fmt.Fprintf(w, format, ch, f.Signed(ch), u); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
