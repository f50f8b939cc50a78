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

package regmap

import (
	"errors"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/spf13/cobra"

	pkgregmap "jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

const (
	YAMLOptionName = "yaml"
)

// NewCommand creates the regmap command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regmap",
		Short: "Inspect and validate register map descriptions",
	}
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewYAMLCommand())
	return cmd
}

// parse reads path, or the built-in map when path is empty, without validating
func parse(path string) (*pkgregmap.Map, error) {
	if path == "" {
		return pkgregmap.Default(), nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pkgregmap.Parse(data)
}

func fieldSummary(r *pkgregmap.Register) string {
	var parts []string
	for _, f := range r.Fields {
		bits := fmt.Sprintf("[%d:%d]", f.MSB, f.LSB)
		if f.MSB == f.LSB {
			bits = fmt.Sprintf("[%d]", f.LSB)
		}
		part := f.Name + bits
		if r.Access == pkgregmap.Mixed {
			part += " " + string(r.FieldAccess(f))
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func NewListCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the register table",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parse(path)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s v%d, %s %d-bit\n", m.Name, m.Version, m.BusType, m.BusWidth)
			for _, r := range m.Registers() {
				fmt.Fprintf(w, "0x%03x %-20s %-5s 0x%08x %s\n", r.Offset, r.Name, r.Access, r.Reset, fieldSummary(r))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, YAMLOptionName, "", "Register map YAML. The built-in map by default")
	return cmd
}

func NewValidateCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a register map for consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parse(path)
			if err != nil {
				return err
			}
			err = m.Validate()
			var invalid pkgregmap.ErrInvalidMap
			if errors.As(err, &invalid) {
				for _, p := range invalid.Problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "[fail] %s\n", p)
				}
				return fmt.Errorf("%d problem(s) in register map", len(invalid.Problems))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[ok] %s: %d registers\n", m.Name, len(m.Registers()))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, YAMLOptionName, "", "Register map YAML. The built-in map by default")
	return cmd
}

func NewYAMLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yaml",
		Short: "Print the built-in register map YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(pkgregmap.DefaultYAML())
			return err
		},
	}
	return cmd
}
