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

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"
)

// DefaultBase is the block base used when neither the config file nor a flag
// sets one. Override at build time with
// -ldflags "-X jinr.ru/greenlab/go-homeinv/pkg/config.DefaultBase=0x..."
var DefaultBase = "0x30000000"

type Config struct {
	// Base is the block base address as an integer literal
	Base string `yaml:"base"`
	// Bus selects the bus backend: sim, devmem or remote
	Bus        string `yaml:"bus"`
	DevMem     string `yaml:"devmem"`
	APIAddress string `yaml:"apiAddress"`
	// Remote is the address of a homeinv server used by the remote bus
	Remote string `yaml:"remote"`
	// SimState is a bbolt file keeping the simulated registers between runs.
	// Empty means every run starts from reset.
	SimState string `yaml:"simState,omitempty"`
	LogLevel string `yaml:"logLevel"`
	filepath string
}

// ParseBase parses a base address literal. Go integer literals are accepted,
// 0x3000_0000 and 805306368 are the same address.
func ParseBase(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, ErrInvalidBase{Value: s, Err: err}
	}
	if v%4 != 0 {
		return 0, ErrInvalidBase{Value: s, Err: fmt.Errorf("not 4-byte aligned")}
	}
	return uint32(v), nil
}

// BaseAddr returns the parsed base of the config
func (c *Config) BaseAddr() (uint32, error) {
	return ParseBase(c.Base)
}

// Validate checks the config values without touching any device
func (c *Config) Validate() error {
	if _, err := c.BaseAddr(); err != nil {
		return err
	}
	switch c.Bus {
	case BusSim, BusDevMem, BusRemote:
	default:
		return ErrUnknownBus{Bus: c.Bus}
	}
	return nil
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file over the current values. A missing file is not
// an error, the defaults stay in place.
func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", c.filepath, err)
	}
	return nil
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func NewDefaultConfig() *Config {
	return NewConfig(DefaultConfigPath())
}

// DefaultSimStatePath is where config init suggests keeping the simulator state
func DefaultSimStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, SimStateFile)
}

// NewConfig returns the defaults bound to the config file at path
func NewConfig(path string) *Config {
	return &Config{
		Base:       DefaultBase,
		Bus:        DefaultBus,
		DevMem:     DefaultDevMem,
		APIAddress: DefaultAPIAddress,
		Remote:     DefaultAPIAddress,
		LogLevel:   DefaultLogLevel,
		filepath:   path,
	}
}
