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
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
	"jinr.ru/greenlab/go-homeinv/pkg/reg"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
)

const (
	ErrKindInvalidAddress = "invalid_address"
	ErrKindUnsupported    = "unsupported"
	ErrKindBadRequest     = "bad_request"
	ErrKindNotFound       = "not_found"
	ErrKindBus            = "bus"
)

// RegHex is a raw bus transaction, both values hexadecimal
type RegHex struct {
	Addr  string `json:"addr"`
	Value string `json:"value"`
}

// RegValue is a named register with its current value
type RegValue struct {
	Name   string `json:"name"`
	Offset string `json:"offset"`
	Value  string `json:"value"`
}

type FieldDesc struct {
	Name   string `json:"name"`
	MSB    uint   `json:"msb"`
	LSB    uint   `json:"lsb"`
	Access string `json:"access"`
	Desc   string `json:"desc,omitempty"`
}

type RegDesc struct {
	Name        string      `json:"name"`
	Offset      string      `json:"offset"`
	Access      string      `json:"access"`
	Reset       string      `json:"reset"`
	SideEffects bool        `json:"sideEffects,omitempty"`
	Fields      []FieldDesc `json:"fields,omitempty"`
	Desc        string      `json:"desc,omitempty"`
}

type RegMapDesc struct {
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	Base      string    `json:"base"`
	Registers []RegDesc `json:"registers"`
}

// ErrorResp is the body of every failed request
type ErrorResp struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Addr    string `json:"addr,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func Hex32(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}

// ParseHex32 parses a 32-bit integer literal, hexadecimal with the 0x prefix
func ParseHex32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func NewRegDesc(r *regmap.Register) RegDesc {
	d := RegDesc{
		Name:        r.Name,
		Offset:      Hex32(r.Offset),
		Access:      string(r.Access),
		Reset:       Hex32(r.Reset),
		SideEffects: r.SideEffects,
		Desc:        r.Desc,
	}
	for _, f := range r.Fields {
		d.Fields = append(d.Fields, FieldDesc{
			Name:   f.Name,
			MSB:    f.MSB,
			LSB:    f.LSB,
			Access: string(r.FieldAccess(f)),
			Desc:   f.Desc,
		})
	}
	return d
}

func NewErrorResp(err error) (int, *ErrorResp) {
	resp := &ErrorResp{Message: err.Error()}
	var invalid bus.ErrInvalidAddress
	var unsupported reg.ErrUnsupported
	switch {
	case errors.As(err, &invalid):
		resp.Kind = ErrKindInvalidAddress
		resp.Addr = Hex32(invalid.Addr)
		resp.Reason = invalid.Reason
		return http.StatusBadRequest, resp
	case errors.As(err, &unsupported):
		resp.Kind = ErrKindUnsupported
		resp.Reason = unsupported.What
		return http.StatusBadRequest, resp
	}
	resp.Kind = ErrKindBus
	return http.StatusBadGateway, resp
}

// Err rebuilds the typed error carried by the response
func (e *ErrorResp) Err() error {
	switch e.Kind {
	case ErrKindInvalidAddress:
		addr, err := ParseHex32(e.Addr)
		if err == nil {
			return bus.ErrInvalidAddress{Addr: addr, Reason: e.Reason}
		}
	case ErrKindUnsupported:
		return reg.ErrUnsupported{What: e.Reason}
	}
	return ErrRemote{Kind: e.Kind, Message: e.Message}
}
