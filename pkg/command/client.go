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

package command

import (
	"fmt"
	"strings"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
	"jinr.ru/greenlab/go-homeinv/pkg/srv"
)

// ApiClient talks to a homeinv API server. It implements bus.Bus so the
// driver runs unchanged against a remote board.
type ApiClient struct {
	ApiPrefix string
}

var _ bus.Bus = &ApiClient{}

// NewApiClient accepts host:port or a full http URL
func NewApiClient(address string) *ApiClient {
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}
	return &ApiClient{
		ApiPrefix: strings.TrimRight(address, "/") + "/api",
	}
}

func (c *ApiClient) busReadUrl(addr uint32) string {
	return fmt.Sprintf("%s/bus/%s", c.ApiPrefix, srv.Hex32(addr))
}

func (c *ApiClient) busWriteUrl() string {
	return fmt.Sprintf("%s/bus", c.ApiPrefix)
}

func (c *ApiClient) regReadUrl(name string) string {
	return fmt.Sprintf("%s/reg/%s", c.ApiPrefix, name)
}

// responseError rebuilds the server error, or reports the HTTP status
// when the body does not carry one
func responseError(r *req.Resp) error {
	errResp := &srv.ErrorResp{}
	if err := r.ToJSON(errResp); err != nil || errResp.Kind == "" {
		return srv.ErrRemote{Kind: "http", Message: r.Response().Status}
	}
	return errResp.Err()
}

// Read32 reads a word at an absolute address on the remote bus
func (c *ApiClient) Read32(addr uint32) (uint32, error) {
	r, err := req.Get(c.busReadUrl(addr))
	if err != nil {
		return 0, err
	}
	if r.Response().StatusCode != 200 {
		return 0, responseError(r)
	}
	regHex := &srv.RegHex{}
	if err := r.ToJSON(regHex); err != nil {
		return 0, err
	}
	return srv.ParseHex32(regHex.Value)
}

// Write32 writes a word at an absolute address on the remote bus
func (c *ApiClient) Write32(addr, value uint32) error {
	regHex := &srv.RegHex{
		Addr:  srv.Hex32(addr),
		Value: srv.Hex32(value),
	}
	r, err := req.Post(c.busWriteUrl(), req.BodyJSON(regHex))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return responseError(r)
	}
	return nil
}

// RegRead reads a register by name
func (c *ApiClient) RegRead(name string) (uint32, error) {
	r, err := req.Get(c.regReadUrl(name))
	if err != nil {
		return 0, err
	}
	if r.Response().StatusCode != 200 {
		return 0, responseError(r)
	}
	v := &srv.RegValue{}
	if err := r.ToJSON(v); err != nil {
		return 0, err
	}
	return srv.ParseHex32(v.Value)
}

// RegDump reads every register without read side effects
func (c *ApiClient) RegDump() ([]*srv.RegValue, error) {
	r, err := req.Get(fmt.Sprintf("%s/reg", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, responseError(r)
	}
	var values []*srv.RegValue
	if err := r.ToJSON(&values); err != nil {
		return nil, err
	}
	return values, nil
}

// RegMap fetches the register map the server runs with
func (c *ApiClient) RegMap() (*srv.RegMapDesc, error) {
	r, err := req.Get(fmt.Sprintf("%s/regmap", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, responseError(r)
	}
	desc := &srv.RegMapDesc{}
	if err := r.ToJSON(desc); err != nil {
		return nil, err
	}
	return desc, nil
}
