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

package bus

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

type wordBus map[uint32]uint32

func (b wordBus) Read32(addr uint32) (uint32, error) {
	if err := CheckAligned(addr); err != nil {
		return 0, err
	}
	return b[addr], nil
}

func (b wordBus) Write32(addr uint32, value uint32) error {
	if err := CheckAligned(addr); err != nil {
		return err
	}
	b[addr] = value
	return nil
}

func TestCheckAligned(t *testing.T) {
	for _, addr := range []uint32{0, 4, 0x30000000, 0x30000504, 0xfffffffc} {
		if err := CheckAligned(addr); err != nil {
			t.Fatalf("0x%08x: unexpected error %v", addr, err)
		}
	}
	for _, addr := range []uint32{1, 2, 3, 0x30000102, 0xffffffff} {
		err := CheckAligned(addr)
		var invalid ErrInvalidAddress
		if !errors.As(err, &invalid) {
			t.Fatalf("0x%08x: expected ErrInvalidAddress, got %v", addr, err)
		}
		if invalid.Addr != addr {
			t.Fatalf("error carries 0x%08x, expected 0x%08x", invalid.Addr, addr)
		}
	}
}

func TestTraceLogs(t *testing.T) {
	var buf bytes.Buffer
	if err := log.Init(&buf, "debug"); err != nil {
		t.Fatal(err)
	}
	defer log.Init(os.Stderr, "info")

	trace := NewTrace(wordBus{}, func(addr uint32) string { return "CTRL" })
	if err := trace.Write32(0x100, 1); err != nil {
		t.Fatal(err)
	}
	v, err := trace.Read32(0x100)
	if err != nil || v != 1 {
		t.Fatalf("read back 0x%08x, %v", v, err)
	}
	if _, err := trace.Read32(0x101); err == nil {
		t.Fatal("misaligned read must fail through the trace")
	}

	out := buf.String()
	for _, want := range []string{"W 0x00000100 CTRL <- 0x00000001", "R 0x00000100 CTRL = 0x00000001", "not 32-bit aligned"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output lacks %q:\n%s", want, out)
		}
	}
}
