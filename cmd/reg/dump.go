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
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/command"
	"jinr.ru/greenlab/go-homeinv/pkg/config"
)

func NewDumpCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Read every register without read side effects",
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
			regs, err := s.Block.Dump()
			if err != nil {
				return err
			}
			for _, r := range regs {
				printReg(cmd, r.Register, r.Value)
			}
			return nil
		},
	}
	return cmd
}
