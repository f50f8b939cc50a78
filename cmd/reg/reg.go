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
	"strings"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/config"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

const (
	FieldOptionName = "field"
)

// NewCommand creates the reg command group
func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reg",
		Short: "Read and write registers of the block",
	}
	cmd.AddCommand(NewReadCommand(cfg))
	cmd.AddCommand(NewWriteCommand(cfg))
	cmd.AddCommand(NewDumpCommand(cfg))
	return cmd
}

// lookup resolves a register name or a byte offset literal
func lookup(m *regmap.Map, arg string) (*regmap.Register, error) {
	if r, ok := m.ByName(strings.ToUpper(arg)); ok {
		return r, nil
	}
	off, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("%s is neither a register name nor an offset", arg)
	}
	r, ok := m.ByOffset(uint32(off))
	if !ok {
		return nil, fmt.Errorf("no register at offset 0x%03x", off)
	}
	return r, nil
}

func printReg(cmd *cobra.Command, r *regmap.Register, value uint32) {
	fmt.Fprintf(cmd.OutOrStdout(), "%-20s 0x%03x = 0x%08x\n", r.Name, r.Offset, value)
}
