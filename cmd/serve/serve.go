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

package serve

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-homeinv/pkg/command"
	"jinr.ru/greenlab/go-homeinv/pkg/config"
)

const (
	AddressOptionName = "address"
)

// NewCommand creates the serve command
func NewCommand(cfg *config.Config) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the block over HTTP",
		Long: `Serve raw bus transactions and symbolic register reads of the block on the
selected bus. Other hosts reach it with --bus remote --remote ADDRESS.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.APIAddress = address
			}
			return command.StartApiServer(context.Background(), cfg, cfg.APIAddress)
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultAPIAddress))
	return cmd
}
