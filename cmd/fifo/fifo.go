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

package fifo

import (
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/command"
	"jinr.ru/greenlab/go-homeinv/pkg/config"
	"jinr.ru/greenlab/go-homeinv/pkg/device"
	"jinr.ru/greenlab/go-homeinv/pkg/layers"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

const (
	MaxWordsOptionName = "max-words"
	OutOptionName      = "out"
	FramesOptionName   = "frames"
)

// NewCommand creates the fifo command group
func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fifo",
		Short: "Work with the ADC snapshot FIFO",
	}
	cmd.AddCommand(NewDumpCommand(cfg))
	cmd.AddCommand(NewStatusCommand(cfg))
	return cmd
}

func NewDumpCommand(cfg *config.Config) *cobra.Command {
	var maxWords int
	var out string
	var frames bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Take a snapshot and drain the FIFO",
		Long: `Enable the block, clear a stale overrun, pulse ADC_CMD.SNAPSHOT and drain
ADC_FIFO_DATA until the level reads zero. Words are printed one per line,
the output can be fed back to the decode command.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if maxWords <= 0 {
				return fmt.Errorf("--%s must be positive", MaxWordsOptionName)
			}
			s, err := command.Open(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.Close(); err == nil {
					err = cerr
				}
			}()

			res, err := s.Device.FIFODump(make([]uint32, maxWords))
			if err != nil {
				return err
			}
			log.Info("Drained %d words", len(res.Words))
			if res.StaleOverrun {
				log.Warning("Overrun was set before the snapshot")
			}
			if res.Overrun {
				log.Warning("Overrun set after drain, increase --%s or drain faster", MaxWordsOptionName)
			}

			w := cmd.OutOrStdout()
			if frames {
				fs, trailing, err := layers.FramesFromWords(res.Words, 0)
				if err != nil {
					return err
				}
				if trailing != 0 {
					log.Warning("%d trailing word(s) do not make up a frame", trailing)
				}
				if err := layers.WriteFrames(w, fs, false); err != nil {
					return err
				}
			} else {
				for _, word := range res.Words {
					fmt.Fprintf(w, "0x%08X\n", word)
				}
			}

			if out != "" {
				fs, _, err := layers.FramesFromWords(res.Words, 0)
				if err != nil {
					return err
				}
				data, err := layers.EncodeFrames(fs)
				if err != nil {
					return err
				}
				if err := ioutil.WriteFile(out, data, 0644); err != nil {
					return err
				}
				log.Info("Wrote %d frames to %s", len(fs), out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxWords, MaxWordsOptionName, device.DefaultDumpWords, "Drain at most this many words")
	cmd.Flags().StringVar(&out, OutOptionName, "", "Also write complete frames to this file as a binary dump")
	cmd.Flags().BoolVar(&frames, FramesOptionName, false, "Print decoded frames instead of words")
	return cmd
}

func NewStatusCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print FIFO level and overrun flag",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := command.Open(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.Close(); err == nil {
					err = cerr
				}
			}()
			level, err := s.Device.FIFOLevel()
			if err != nil {
				return err
			}
			overrun, err := s.Device.FIFOOverrun()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "level: %d words\noverrun: %t\n", level, overrun)
			return nil
		},
	}
	return cmd
}
