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
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"jinr.ru/greenlab/go-homeinv/pkg/log"
)

const (
	RegBucketName  = "regs"
	MetaBucketName = "meta"
)

var (
	keyFIFO      = []byte("fifo")
	keyOverrun   = []byte("overrun")
	keySnapshots = []byte("snapshots")
	keyTS        = []byte("ts")
)

// State keeps the register file of a model between processes, so a
// command line session against the simulator behaves like one device.
type State struct {
	DB *bbolt.DB
}

func OpenState(path string) (*State, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening simulator state %s: %w", path, err)
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{RegBucketName, MetaBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &State{DB: db}, nil
}

func (s *State) Close() error {
	return s.DB.Close()
}

func uint32ToByte(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func getUint32(b *bbolt.Bucket, key []byte) uint32 {
	v := b.Get(key)
	if len(v) != 4 {
		return 0
	}
	return binary.BigEndian.Uint32(v)
}

func wordsToByte(words []uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint32(b[4*i:], w)
	}
	return b
}

// Save stores registers, FIFO contents and counters of d
func (s *State) Save(d *Device) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debug("Saving simulator state: %d registers, %d FIFO words", len(d.regs), len(d.fifo))
	return s.DB.Update(func(tx *bbolt.Tx) error {
		regs := tx.Bucket([]byte(RegBucketName))
		for off, v := range d.regs {
			if err := regs.Put(uint32ToByte(off), uint32ToByte(v)); err != nil {
				return err
			}
		}
		meta := tx.Bucket([]byte(MetaBucketName))
		overrun := uint32(0)
		if d.overrun {
			overrun = 1
		}
		for key, value := range map[string][]byte{
			string(keyFIFO):      wordsToByte(d.fifo),
			string(keyOverrun):   uint32ToByte(overrun),
			string(keySnapshots): uint32ToByte(d.snapshots),
			string(keyTS):        uint32ToByte(d.ts),
		} {
			if err := meta.Put([]byte(key), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Restore loads a saved state into d. It reports false and leaves d
// untouched when nothing was saved yet.
func (s *State) Restore(d *Device) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	found := false
	err := s.DB.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(MetaBucketName))
		if meta.Get(keyTS) == nil {
			return nil
		}
		found = true
		regs := tx.Bucket([]byte(RegBucketName))
		if err := regs.ForEach(func(k, v []byte) error {
			if len(k) != 4 || len(v) != 4 {
				return fmt.Errorf("corrupt register entry %x", k)
			}
			d.regs[binary.BigEndian.Uint32(k)] = binary.BigEndian.Uint32(v)
			return nil
		}); err != nil {
			return err
		}
		fifo := meta.Get(keyFIFO)
		d.fifo = d.fifo[:0]
		for i := 0; i+4 <= len(fifo); i += 4 {
			d.fifo = append(d.fifo, binary.BigEndian.Uint32(fifo[i:]))
		}
		d.overrun = getUint32(meta, keyOverrun) != 0
		d.snapshots = getUint32(meta, keySnapshots)
		d.ts = getUint32(meta, keyTS)
		return nil
	})
	if err != nil {
		return false, err
	}
	if found {
		log.Debug("Restored simulator state: snapshot %d, %d FIFO words", d.snapshots, len(d.fifo))
	}
	return found, nil
}
