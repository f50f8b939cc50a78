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
	"strings"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/command"
	"jinr.ru/greenlab/go-homeinv/pkg/config"
	pkgreg "jinr.ru/greenlab/go-homeinv/pkg/reg"
)

func NewReadCommand(cfg *config.Config) *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "read NAME|OFFSET",
		Short: "Read a register",
		Args:  cobra.ExactArgs(1),
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
			r, err := lookup(s.Block.Map, args[0])
			if err != nil {
				return err
			}
			if r.SideEffects {
				return pkgreg.ErrUnsupported{What: fmt.Sprintf("reading %s pops data, use fifo dump", r.Name)}
			}
			if field != "" {
				v, err := s.Block.ReadField(r.Offset, strings.ToUpper(field))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s.%s = 0x%x\n", r.Name, strings.ToUpper(field), v)
				return nil
			}
			v, err := s.Block.Read(r.Offset)
			if err != nil {
				return err
			}
			printReg(cmd, r, v)
			return nil
		},
	}
	cmd.Flags().StringVar(&field, FieldOptionName, "", "Print only this field. E.g. LEVEL_WORDS")
	return cmd
}
