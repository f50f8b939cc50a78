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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/cmd/completion"
	"jinr.ru/greenlab/go-homeinv/cmd/config"
	"jinr.ru/greenlab/go-homeinv/cmd/decode"
	"jinr.ru/greenlab/go-homeinv/cmd/evt"
	"jinr.ru/greenlab/go-homeinv/cmd/fifo"
	"jinr.ru/greenlab/go-homeinv/cmd/reg"
	"jinr.ru/greenlab/go-homeinv/cmd/regmap"
	"jinr.ru/greenlab/go-homeinv/cmd/serve"
	"jinr.ru/greenlab/go-homeinv/cmd/sim"
	pkgconfig "jinr.ru/greenlab/go-homeinv/pkg/config"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
	BusOptionName      = "bus"
	BaseOptionName     = "base"
	RemoteOptionName   = "remote"
	SimStateOptionName = "sim-state"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	return NewRootCommandWithConfig(out, pkgconfig.NewDefaultConfig())
}

// NewRootCommandWithConfig builds the command tree around cfg. The config
// file is read before flags are applied so flags win.
func NewRootCommandWithConfig(out io.Writer, cfg *pkgconfig.Config) *cobra.Command {
	var logLevel, busName, base, remote, simState string
	loadErr := cfg.Load()
	cmd := &cobra.Command{
		Use:          "homeinv",
		Short:        "Tool to bring up the Home Inventory register block",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				return loadErr
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if busName != "" {
				cfg.Bus = busName
			}
			if base != "" {
				cfg.Base = base
			}
			if remote != "" {
				cfg.Remote = remote
			}
			if simState != "" {
				cfg.SimState = simState
			}
			return log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand(cfg))
	cmd.AddCommand(reg.NewCommand(cfg))
	cmd.AddCommand(fifo.NewCommand(cfg))
	cmd.AddCommand(evt.NewCommand(cfg))
	cmd.AddCommand(regmap.NewCommand())
	cmd.AddCommand(decode.NewCommand())
	cmd.AddCommand(serve.NewCommand(cfg))
	cmd.AddCommand(sim.NewCommand(cfg))
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	cmd.PersistentFlags().StringVar(&busName, BusOptionName, "",
		fmt.Sprintf("Bus backend: %s, %s or %s", pkgconfig.BusSim, pkgconfig.BusDevMem, pkgconfig.BusRemote))
	cmd.PersistentFlags().StringVar(&base, BaseOptionName, "", fmt.Sprintf("Block base address. E.g. %s", pkgconfig.DefaultBase))
	cmd.PersistentFlags().StringVar(&remote, RemoteOptionName, "", fmt.Sprintf("Server address for the remote bus. E.g. %s", pkgconfig.DefaultAPIAddress))
	cmd.PersistentFlags().StringVar(&simState, SimStateOptionName, "",
		fmt.Sprintf("Keep simulated registers between runs in this file. E.g. %s", pkgconfig.DefaultSimStatePath()))
	return cmd
}
