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

//go:build !linux

package devmem

import (
	"errors"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
)

const DefaultPath = "/dev/mem"

// Bus is unavailable outside linux
type Bus struct {
	Base uint32
	Size uint32
}

var _ bus.Bus = &Bus{}

var errUnsupportedOS = errors.New("devmem: physical memory mapping is only supported on linux")

func Open(path string, base, size uint32) (*Bus, error) {
	return nil, errUnsupportedOS
}

func (b *Bus) Read32(addr uint32) (uint32, error) { return 0, errUnsupportedOS }

func (b *Bus) Write32(addr uint32, value uint32) error { return errUnsupportedOS }

func (b *Bus) Close() error { return nil }
