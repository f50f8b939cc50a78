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

package device

import (
	"fmt"
)

// ErrInvalidChannel returned for a channel index or count outside the block
type ErrInvalidChannel struct {
	Ch     int
	Reason string
}

func (e ErrInvalidChannel) Error() string {
	return fmt.Sprintf("Invalid channel %d: %s", e.Ch, e.Reason)
}

// ErrInvalidArgument returned for a procedure argument out of range
type ErrInvalidArgument struct {
	Name   string
	Value  int
	Reason string
}

func (e ErrInvalidArgument) Error() string {
	return fmt.Sprintf("Invalid %s %d: %s", e.Name, e.Value, e.Reason)
}

// ErrOverrun returned when the FIFO overrun flag was found set.
// The flag has already been cleared and the data read alongside is valid.
type ErrOverrun struct{}

func (e ErrOverrun) Error() string {
	return "FIFO overrun, words were dropped by hardware"
}

// ErrIdentity returned when ID/VERSION do not look like a live block
type ErrIdentity struct {
	ID      uint32
	Version uint32
	Reason  string
}

func (e ErrIdentity) Error() string {
	return fmt.Sprintf("Bad identity ID=0x%08x VERSION=0x%08x: %s", e.ID, e.Version, e.Reason)
}
