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

package sim

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/config"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
	"jinr.ru/greenlab/go-homeinv/pkg/sim"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Manage the simulated block",
	}
	cmd.AddCommand(NewResetCommand(cfg))
	return cmd
}

// NewResetCommand writes the reset register file into the state file
func NewResetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the persisted simulator state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SimState == "" {
				return fmt.Errorf("no simulator state file, set --sim-state or simState in %s", cfg.Path())
			}
			base, err := cfg.BaseAddr()
			if err != nil {
				return err
			}
			st, err := sim.OpenState(cfg.SimState)
			if err != nil {
				return err
			}
			err = st.Save(sim.New(base))
			if cerr := st.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			log.Info("Simulator state %s reset", cfg.SimState)
			return nil
		},
	}
}
