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

package srv

import (
	"fmt"
)

// ErrRemote is a server side failure that has no local error type
type ErrRemote struct {
	Kind    string
	Message string
}

func (e ErrRemote) Error() string {
	return fmt.Sprintf("Remote %s error: %s", e.Kind, e.Message)
}

// ErrUnknownRegister returned when a register name is not in the map
type ErrUnknownRegister struct {
	Name string
}

func (e ErrUnknownRegister) Error() string {
	return fmt.Sprintf("Unknown register %s", e.Name)
}
