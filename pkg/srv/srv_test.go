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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jinr.ru/greenlab/go-homeinv/pkg/reg"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
	"jinr.ru/greenlab/go-homeinv/pkg/sim"
)

const base = regmap.DefaultBase

func newTestServer(t *testing.T) (*httptest.Server, *sim.Device) {
	t.Helper()
	s := sim.New(base)
	blk, err := reg.NewBlock(s, base, nil)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(NewApiServer(context.Background(), "", blk).Handler())
	t.Cleanup(ts.Close)
	return ts, s
}

func getJSON(t *testing.T, url string, wantCode int, v interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantCode {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestBusRead(t *testing.T) {
	ts, _ := newTestServer(t)
	regHex := &RegHex{}
	getJSON(t, ts.URL+"/api/bus/0x30000000", http.StatusOK, regHex)
	if regHex.Value != "0x48494e56" || regHex.Addr != "0x30000000" {
		t.Errorf("%+v", regHex)
	}

	errResp := &ErrorResp{}
	getJSON(t, ts.URL+"/api/bus/0x30000002", http.StatusBadRequest, errResp)
	if errResp.Kind != ErrKindInvalidAddress || errResp.Addr != "0x30000002" {
		t.Errorf("%+v", errResp)
	}
	getJSON(t, ts.URL+"/api/bus/nonsense", http.StatusBadRequest, errResp)
	if errResp.Kind != ErrKindBadRequest {
		t.Errorf("%+v", errResp)
	}
}

func TestBusWrite(t *testing.T) {
	ts, s := newTestServer(t)
	body, _ := json.Marshal(&RegHex{Addr: "0x30000204", Value: "0x1"})
	resp, err := http.Post(ts.URL+"/api/bus", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if s.Level() != sim.FrameWords {
		t.Errorf("snapshot not taken, level %d", s.Level())
	}

	resp, err = http.Post(ts.URL+"/api/bus", "application/json", bytes.NewReader([]byte("{")))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("broken body: status %d", resp.StatusCode)
	}
}

func TestRegRead(t *testing.T) {
	ts, _ := newTestServer(t)
	v := &RegValue{}
	getJSON(t, ts.URL+"/api/reg/SCALE_CH3", http.StatusOK, v)
	if v.Offset != "0x0000032c" || v.Value != "0x00010000" {
		t.Errorf("%+v", v)
	}

	errResp := &ErrorResp{}
	getJSON(t, ts.URL+"/api/reg/BOGUS", http.StatusNotFound, errResp)
	getJSON(t, ts.URL+"/api/reg/ADC_FIFO_DATA", http.StatusBadRequest, errResp)
	if errResp.Kind != ErrKindUnsupported {
		t.Errorf("%+v", errResp)
	}
}

func TestRegDumpAndMap(t *testing.T) {
	ts, s := newTestServer(t)
	var values []*RegValue
	getJSON(t, ts.URL+"/api/reg", http.StatusOK, &values)
	if len(values) != len(regmap.Default().Registers())-1 {
		t.Errorf("dumped %d registers", len(values))
	}
	if s.Level() != 0 {
		t.Error("dump popped the FIFO")
	}

	desc := &RegMapDesc{}
	getJSON(t, ts.URL+"/api/regmap", http.StatusOK, desc)
	if desc.Base != "0x30000000" || len(desc.Registers) != len(regmap.Default().Registers()) {
		t.Errorf("regmap %s with %d registers", desc.Base, len(desc.Registers))
	}
	for _, r := range desc.Registers {
		if r.Name == "ADC_FIFO_STATUS" {
			if len(r.Fields) != 2 || r.Fields[1].Access != "W1C" {
				t.Errorf("%+v", r)
			}
		}
	}
}

func TestErrorRespRoundTrip(t *testing.T) {
	code, resp := NewErrorResp(reg.ErrUnsupported{What: "x"})
	if code != http.StatusBadRequest {
		t.Errorf("code %d", code)
	}
	if _, ok := resp.Err().(reg.ErrUnsupported); !ok {
		t.Errorf("%T", resp.Err())
	}
	_, resp = NewErrorResp(context.Canceled)
	if _, ok := resp.Err().(ErrRemote); !ok {
		t.Errorf("%T", resp.Err())
	}
}
