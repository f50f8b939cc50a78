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
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"jinr.ru/greenlab/go-homeinv/pkg/bus"
	"jinr.ru/greenlab/go-homeinv/pkg/bus/devmem"
	"jinr.ru/greenlab/go-homeinv/pkg/config"
	"jinr.ru/greenlab/go-homeinv/pkg/device"
	"jinr.ru/greenlab/go-homeinv/pkg/log"
	"jinr.ru/greenlab/go-homeinv/pkg/reg"
	"jinr.ru/greenlab/go-homeinv/pkg/regmap"
	"jinr.ru/greenlab/go-homeinv/pkg/sim"
	"jinr.ru/greenlab/go-homeinv/pkg/srv"
)

// Session is one block opened on the bus selected by the config
type Session struct {
	Bus    bus.Bus
	Block  *reg.Block
	Device *device.Device
	close  func() error
}

// Open binds the block at the configured base on the configured bus.
// Bus traffic is traced when the log level is debug.
func Open(cfg *config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := cfg.BaseAddr()
	if err != nil {
		return nil, err
	}

	s := &Session{close: func() error { return nil }}
	switch cfg.Bus {
	case config.BusSim:
		log.Info("Using simulated block at 0x%08x", base)
		d := sim.New(base)
		s.Bus = d
		if cfg.SimState != "" {
			if s.close, err = openSimState(cfg.SimState, d); err != nil {
				return nil, err
			}
		}
	case config.BusDevMem:
		log.Info("Mapping %s at 0x%08x", cfg.DevMem, base)
		dm, err := devmem.Open(cfg.DevMem, base, regmap.BlockSize)
		if err != nil {
			return nil, err
		}
		s.Bus = dm
		s.close = dm.Close
	case config.BusRemote:
		log.Info("Using remote bus at %s", cfg.Remote)
		s.Bus = NewApiClient(cfg.Remote)
	default:
		return nil, config.ErrUnknownBus{Bus: cfg.Bus}
	}

	m := regmap.Default()
	if log.Enabled(log.DebugLevel) {
		s.Bus = bus.NewTrace(s.Bus, m.Namer(base))
	}
	s.Block, err = reg.NewBlock(s.Bus, base, m)
	if err != nil {
		s.close()
		return nil, err
	}
	s.Device = device.New(s.Block)
	return s, nil
}

// openSimState restores d from path and returns the func saving it back
func openSimState(path string, d *sim.Device) (func() error, error) {
	st, err := sim.OpenState(path)
	if err != nil {
		return nil, err
	}
	found, err := st.Restore(d)
	if err != nil {
		st.Close()
		return nil, err
	}
	if !found {
		log.Info("No simulator state in %s, starting from reset", path)
	}
	return func() error {
		err := st.Save(d)
		if cerr := st.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}

// Close releases the bus. With a simulator state file the registers are
// saved first and a failed save is returned.
func (s *Session) Close() error {
	return s.close()
}

// StartApiServer serves the configured block on address until interrupted
func StartApiServer(ctx context.Context, cfg *config.Config, address string) (err error) {
	s, err := Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	api := srv.NewApiServer(ctx, address, s.Block)
	g.Go(api.Run)
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			log.Info("Got %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
		return nil
	})
	return g.Wait()
}
