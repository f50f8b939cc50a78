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
	"fmt"
)

// ErrInvalidAddress returned when an address or offset is misaligned or outside the register window
type ErrInvalidAddress struct {
	Addr   uint32
	Reason string
}

func (e ErrInvalidAddress) Error() string {
	return fmt.Sprintf("Invalid address 0x%08x: %s", e.Addr, e.Reason)
}
