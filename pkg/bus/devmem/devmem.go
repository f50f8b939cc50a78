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

//go:build linux

// Package devmem maps a physical register window through /dev/mem.
package devmem

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

const DefaultPath = "/dev/mem"

// Bus is a mapping of [Base, Base+Size) of a physical memory device
type Bus struct {
	Base uint32
	Size uint32
	file *os.File
	mem  []byte
	// offset of Base inside mem, mappings start at a page boundary
	skew uint32
}

var _ bus.Bus = &Bus{}

// Open maps size bytes of path starting at physical address base
func Open(path string, base, size uint32) (*Bus, error) {
	if err := bus.CheckAligned(base); err != nil {
		return nil, err
	}
	if size == 0 || size%bus.WordSize != 0 {
		return nil, fmt.Errorf("devmem: window size 0x%x must be a nonzero multiple of %d", size, bus.WordSize)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("devmem: could not open %s: %w", path, err)
	}
	page := uint32(os.Getpagesize())
	start := base &^ (page - 1)
	skew := base - start
	length := int(skew + size)
	mem, err := unix.Mmap(int(file.Fd()), int64(start), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("devmem: could not map 0x%08x+0x%x of %s: %w", base, size, path, err)
	}
	log.Debug("Mapped %s: base: 0x%08x size: 0x%x", path, base, size)
	return &Bus{
		Base: base,
		Size: size,
		file: file,
		mem:  mem,
		skew: skew,
	}, nil
}

func (b *Bus) word(addr uint32) (*uint32, error) {
	if err := bus.CheckAligned(addr); err != nil {
		return nil, err
	}
	if addr < b.Base || addr-b.Base >= b.Size {
		return nil, bus.ErrInvalidAddress{Addr: addr, Reason: "outside mapped window"}
	}
	if b.mem == nil {
		return nil, fmt.Errorf("devmem: window 0x%08x is closed", b.Base)
	}
	return (*uint32)(unsafe.Pointer(&b.mem[b.skew+addr-b.Base])), nil
}

// Read32 performs a single 32-bit load from the device
func (b *Bus) Read32(addr uint32) (uint32, error) {
	p, err := b.word(addr)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(p), nil
}

// Write32 performs a single 32-bit store to the device
func (b *Bus) Write32(addr uint32, value uint32) error {
	p, err := b.word(addr)
	if err != nil {
		return err
	}
	atomic.StoreUint32(p, value)
	return nil
}

// Close unmaps the window
func (b *Bus) Close() error {
	if b.mem == nil {
		return nil
	}
	errUnmap := unix.Munmap(b.mem)
	b.mem = nil
	errClose := b.file.Close()
	if errUnmap != nil {
		return fmt.Errorf("devmem: could not unmap 0x%08x: %w", b.Base, errUnmap)
	}
	return errClose
}
