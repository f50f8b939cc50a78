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

package reg

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/command"
	"jinr.ru/greenlab/go-homeinv/pkg/config"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

func NewWriteCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write NAME|OFFSET VALUE",
		Short: "Write a full word to a register",
		Long: `Write a full word to a register. W1P bits written with 1 pulse,
W1C bits written with 1 clear. The value is written as given, no read-modify-write.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			value, err := strconv.ParseUint(args[1], 0, 32)
			if err != nil {
				return fmt.Errorf("bad value %s: %w", args[1], err)
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
			r, err := lookup(s.Block.Map, args[0])
			if err != nil {
				return err
			}
			if ro := uint32(value) & r.ReadOnlyMask(); ro != 0 {
				log.Warning("Bits 0x%08x of %s are read-only and ignored", ro, r.Name)
			}
			if err := s.Block.Write(r.Offset, uint32(value)); err != nil {
				return err
			}
			log.Info("Wrote 0x%08x to %s", value, r.Name)
			return nil
		},
	}
	return cmd
}
