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

package evt

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/command"
	"jinr.ru/greenlab/go-homeinv/pkg/config"
	"jinr.ru/greenlab/go-homeinv/pkg/device"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

const (
	ChOptionName        = "ch"
	ThresholdOptionName = "threshold"
	CountOptionName     = "count"

	DefaultThreshold = "0x1000"
	DefaultCount     = 2
)

// NewCommand creates the evt command group
func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evt",
		Short: "Work with the event detector",
	}
	cmd.AddCommand(NewSmokeCommand(cfg))
	cmd.AddCommand(NewReadCommand(cfg))
	return cmd
}

// ErrSmokeFailed returned when the detector did not behave as expected
type ErrSmokeFailed struct {
	What string
}

func (e ErrSmokeFailed) Error() string {
	return fmt.Sprintf("Event smoke test failed: %s", e.What)
}

// checkSmoke expects one event per snapshot on the probed channel and
// strictly increasing timestamps. Counters survive everything but a device
// reset, so the first count is only required to be nonzero.
func checkSmoke(steps []device.SmokeStep) error {
	for i, step := range steps {
		if step.LastDelta == 0 {
			return ErrSmokeFailed{What: fmt.Sprintf("zero delta after snapshot %d", i+1)}
		}
		if i == 0 {
			if step.Count == 0 {
				return ErrSmokeFailed{What: "no event after the first snapshot"}
			}
			continue
		}
		prev := steps[i-1]
		if step.Count != prev.Count+1 && step.Count != 0xffffffff {
			return ErrSmokeFailed{What: fmt.Sprintf("count %d after %d at snapshot %d", step.Count, prev.Count, i+1)}
		}
		if step.LastTS <= prev.LastTS || step.GlobalTS <= prev.GlobalTS {
			return ErrSmokeFailed{What: fmt.Sprintf("timestamps did not advance at snapshot %d", i+1)}
		}
	}
	return nil
}

func NewSmokeCommand(cfg *config.Config) *cobra.Command {
	var ch, count int
	var threshold string
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the event detector smoke test",
		Long: `Enable the block, program the threshold of one channel, enable detection
on it and pulse SNAPSHOT a few times. The count, delta and timestamps are
read after every snapshot. Choose a threshold below the expected sample so
every snapshot produces an event.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if count < 1 {
				return fmt.Errorf("--%s must be at least 1", CountOptionName)
			}
			thr, err := strconv.ParseUint(threshold, 0, 32)
			if err != nil {
				return fmt.Errorf("bad threshold %s: %w", threshold, err)
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

			steps, err := s.Device.EventSmoke(ch, uint32(thr), count)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-8s %-10s %-12s %-10s %-10s\n", "snapshot", "count", "last_delta", "last_ts", "global_ts")
			for i, step := range steps {
				fmt.Fprintf(w, "%-8d %-10d %-12d %-10d %-10d\n", i+1, step.Count, step.LastDelta, step.LastTS, step.GlobalTS)
			}
			if err := checkSmoke(steps); err != nil {
				return err
			}
			log.Info("Event detector on ch%d OK", ch)
			return nil
		},
	}
	cmd.Flags().IntVar(&ch, ChOptionName, 0, "Channel to probe, 0..7")
	cmd.Flags().StringVar(&threshold, ThresholdOptionName, DefaultThreshold, "Event threshold")
	cmd.Flags().IntVar(&count, CountOptionName, DefaultCount, "Number of snapshots")
	return cmd
}

func NewReadCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Print the detector state of every channel",
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
			enabled, err := s.Device.EvtEnabled()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "EVT_EN: 0x%02x\n", enabled)
			for i := 0; i < regmap.NumChannels; i++ {
				c, err := s.Device.Channel(i)
				if err != nil {
					return err
				}
				thr, err := c.Threshold()
				if err != nil {
					return err
				}
				st, err := c.Event()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "ch%d: threshold=0x%08x count=%d last_delta=%d last_ts=%d\n", i, thr, st.Count, st.LastDelta, st.LastTS)
			}
			ts, err := s.Device.EvtLastGlobalTS()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "EVT_LAST_TS: %d\n", ts)
			return nil
		},
	}
	return cmd
}
