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

// Package srv exposes one register block over HTTP for remote bring-up.
package srv

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-homeinv/pkg/log"
	"jinr.ru/greenlab/go-homeinv/pkg/reg"
)

const (
	ShutdownTimeout = 5 * time.Second
)

// ApiServer serves raw bus transactions and symbolic register access of one
// block. Requests are serialized, the driver underneath is not reentrant.
type ApiServer struct {
	context.Context
	*mux.Router
	Address string
	mu      sync.Mutex
	blk     *reg.Block
}

func NewApiServer(ctx context.Context, address string, blk *reg.Block) *ApiServer {
	log.Info("Initializing API server with address: %s base: 0x%08x", address, blk.Base)
	s := &ApiServer{
		Context: ctx,
		Address: address,
		blk:     blk,
	}
	s.configureRouter()
	return s
}

// Handler returns the router wrapped with the access log
func (s *ApiServer) Handler() http.Handler {
	return handlers.CombinedLoggingHandler(log.InfoWriter(), s.Router)
}

// Run serves until the context is done
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s", s.Address)
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    s.Address,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-s.Done():
		log.Info("Stopping API server")
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/bus/{addr}", s.handleBusRead()).Methods("GET")
	subRouter.HandleFunc("/bus", s.handleBusWrite()).Methods("POST")
	subRouter.HandleFunc("/reg/{name}", s.handleRegRead()).Methods("GET")
	subRouter.HandleFunc("/reg", s.handleRegDump()).Methods("GET")
	subRouter.HandleFunc("/regmap", s.handleRegMap()).Methods("GET")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code, resp := NewErrorResp(err)
	writeErrorResp(w, code, resp)
}

func writeErrorResp(w http.ResponseWriter, code int, resp *ErrorResp) {
	log.Debug("Request failed: %d %s", code, resp.Message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

func badRequest(w http.ResponseWriter, err error) {
	writeErrorResp(w, http.StatusBadRequest, &ErrorResp{Kind: ErrKindBadRequest, Message: err.Error()})
}

func (s *ApiServer) handleBusRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling bus read request: addr: %s", vars["addr"])

		addr, err := ParseHex32(vars["addr"])
		if err != nil {
			badRequest(w, err)
			return
		}

		s.mu.Lock()
		value, err := s.blk.Bus.Read32(addr)
		s.mu.Unlock()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, &RegHex{Addr: Hex32(addr), Value: Hex32(value)})
	}
}

func (s *ApiServer) handleBusWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regHex := &RegHex{}
		if err := json.NewDecoder(r.Body).Decode(regHex); err != nil {
			badRequest(w, err)
			return
		}
		log.Debug("Handling bus write request: addr: %s value: %s", regHex.Addr, regHex.Value)

		addr, err := ParseHex32(regHex.Addr)
		if err != nil {
			badRequest(w, err)
			return
		}
		value, err := ParseHex32(regHex.Value)
		if err != nil {
			badRequest(w, err)
			return
		}

		s.mu.Lock()
		err = s.blk.Bus.Write32(addr, value)
		s.mu.Unlock()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, &RegHex{Addr: Hex32(addr), Value: Hex32(value)})
	}
}

func (s *ApiServer) handleRegRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		log.Debug("Handling reg read request: name: %s", name)

		desc, ok := s.blk.Map.ByName(name)
		if !ok {
			err := ErrUnknownRegister{Name: name}
			writeErrorResp(w, http.StatusNotFound, &ErrorResp{Kind: ErrKindNotFound, Message: err.Error()})
			return
		}
		if desc.SideEffects {
			err := reg.ErrUnsupported{What: "symbolic read of side-effectful register " + name}
			writeError(w, err)
			return
		}

		s.mu.Lock()
		value, err := s.blk.Read(desc.Offset)
		s.mu.Unlock()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, &RegValue{Name: desc.Name, Offset: Hex32(desc.Offset), Value: Hex32(value)})
	}
}

func (s *ApiServer) handleRegDump() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling reg dump request")

		s.mu.Lock()
		regs, err := s.blk.Dump()
		s.mu.Unlock()
		if err != nil {
			writeError(w, err)
			return
		}
		values := make([]*RegValue, 0, len(regs))
		for _, named := range regs {
			values = append(values, &RegValue{Name: named.Name, Offset: Hex32(named.Offset), Value: Hex32(named.Value)})
		}
		writeJSON(w, values)
	}
}

func (s *ApiServer) handleRegMap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := s.blk.Map
		desc := &RegMapDesc{
			Name:    m.Name,
			Version: m.Version,
			Base:    Hex32(s.blk.Base),
		}
		for _, rd := range m.Registers() {
			desc.Registers = append(desc.Registers, NewRegDesc(rd))
		}
		writeJSON(w, desc)
	}
}
