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

package decode

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/layers"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

const (
	SkipWordsOptionName    = "skip-words"
	MaxFramesOptionName    = "max-frames"
	ShowUnsignedOptionName = "show-unsigned"
	BinaryOptionName       = "binary"
)

const (
	decodeExample = `
Decode a dump of FIFO words, one per line
# homeinv decode dump.txt

Decode from stdin
# homeinv fifo dump | homeinv decode -

Decode a binary dump written by fifo dump --out
# homeinv decode --binary frames.bin
`
)

// ErrNoFrames returned when the input holds no complete frame
type ErrNoFrames struct{}

func (e ErrNoFrames) Error() string {
	return "no complete frames found"
}

func open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return ioutil.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func readWords(r io.Reader, binary bool, skip int) ([]layers.Frame, int, error) {
	if !binary {
		words, err := layers.ParseWords(r)
		if err != nil {
			return nil, 0, err
		}
		if skip > len(words) {
			return nil, 0, fmt.Errorf("--%s=%d exceeds input length %d", SkipWordsOptionName, skip, len(words))
		}
		return layers.FramesFromWords(words, skip)
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	if skip*4 > len(data) {
		return nil, 0, fmt.Errorf("--%s=%d exceeds input length %d", SkipWordsOptionName, skip, len(data)/4)
	}
	frames, trailingBytes, err := layers.DecodeFrames(data[skip*4:])
	return frames, (trailingBytes + 3) / 4, err
}

// NewCommand creates the decode command
func NewCommand() *cobra.Command {
	var skipWords, maxFrames int
	var showUnsigned, binary bool
	cmd := &cobra.Command{
		Use:     "decode FILE|-",
		Short:   "Split a FIFO dump into snapshot frames",
		Example: decodeExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if skipWords < 0 {
				return fmt.Errorf("--%s must not be negative", SkipWordsOptionName)
			}
			in, err := open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			frames, trailing, err := readWords(in, binary, skipWords)
			if err != nil {
				return err
			}
			if trailing != 0 {
				log.Warning("input length after skip is not multiple of %d: %d trailing word(s) ignored", layers.FrameWords, trailing)
			}
			if maxFrames >= 0 && len(frames) > maxFrames {
				frames = frames[:maxFrames]
			}
			if len(frames) == 0 {
				return ErrNoFrames{}
			}
			return layers.WriteFrames(cmd.OutOrStdout(), frames, showUnsigned)
		},
	}
	cmd.Flags().IntVar(&skipWords, SkipWordsOptionName, 0, "Skip N initial words before framing")
	cmd.Flags().IntVar(&maxFrames, MaxFramesOptionName, -1, "Limit output to the first N frames")
	cmd.Flags().BoolVar(&showUnsigned, ShowUnsignedOptionName, false, "Also print channel words as unsigned")
	cmd.Flags().BoolVar(&binary, BinaryOptionName, false, "Input is a binary little-endian dump")
	return cmd
}
