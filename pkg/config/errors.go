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
)

// ErrConfigFileExists returned when persisting over an existing file without overwrite
type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("Config file %s already exists", e.Path)
}

type ErrInvalidBase struct {
	Value string
	Err   error
}

func (e ErrInvalidBase) Error() string {
	return fmt.Sprintf("Invalid base address %q: %s", e.Value, e.Err)
}

func (e ErrInvalidBase) Unwrap() error {
	return e.Err
}

type ErrUnknownBus struct {
	Bus string
}

func (e ErrUnknownBus) Error() string {
	return fmt.Sprintf("Unknown bus %q. Must be one of: %s, %s, %s", e.Bus, BusSim, BusDevMem, BusRemote)
}
