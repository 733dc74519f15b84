//go:build linux

/*
EmberDeck Core
Copyright (c) 2026 The EmberDeck Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of EmberDeck Core.

EmberDeck Core is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EmberDeck Core is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EmberDeck Core.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package service runs an emulation session: it supervises the
// emulator process, pumps controller input through the hotkey engine,
// samples performance, and drives the device controls the hotkeys
// touch.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/EmberDeckProject/emberdeck-core/pkg/devctl"
	"github.com/EmberDeckProject/emberdeck-core/pkg/emulator"
	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers/command"
	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers/syncutil"
	"github.com/EmberDeckProject/emberdeck-core/pkg/hotkeys"
	"github.com/EmberDeckProject/emberdeck-core/pkg/perf"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	inputPollInterval = 10 * time.Millisecond
	perfInterval      = time.Second
	// stopGrace is how long a graceful stop waits before escalating
	// to a kill.
	stopGrace = 3 * time.Second
	// actionQueueSize bounds pending hotkey actions; input is dropped
	// rather than stalling the event pump.
	actionQueueSize = 16
)

// Session is one supervised emulation run.
type Session struct {
	id         uuid.UUID
	cfg        *config.Instance
	supervisor *emulator.Supervisor
	engine     *hotkeys.Engine
	display    *devctl.Display
	mixer      *devctl.Mixer
	sampler    *perf.Sampler
	clock      clockwork.Clock

	actions chan hotkeys.Action

	mu       syncutil.RWMutex
	process  *emulator.Process
	snapshot perf.Snapshot
	readers  []*hotkeys.Reader
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock sets the clock used for the session's loops (for testing).
func WithClock(clock clockwork.Clock) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithSupervisor replaces the process supervisor (for testing).
func WithSupervisor(sup *emulator.Supervisor) SessionOption {
	return func(s *Session) {
		s.supervisor = sup
	}
}

// NewSession wires a session from the user's configuration.
func NewSession(cfg *config.Instance, opts ...SessionOption) (*Session, error) {
	device := cfg.Device()
	fsys := afero.NewOsFs()

	s := &Session{
		id:      uuid.New(),
		cfg:     cfg,
		clock:   clockwork.NewRealClock(),
		display: devctl.NewDisplay(fsys, device.BacklightDir),
		mixer: devctl.NewMixer(&command.RealExecutor{}, fsys,
			device.MixerControls, device.HeadphonePaths),
		sampler: perf.New(device),
		actions: make(chan hotkeys.Action, actionQueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.supervisor == nil {
		s.supervisor = emulator.NewSupervisor(emulator.WithClock(s.clock))
	}

	engine, err := hotkeys.NewEngineFromConfig(cfg.Hotkeys(), s.clock)
	if err != nil {
		return nil, fmt.Errorf("building hotkey engine: %w", err)
	}
	engine.RegisterCallback(s.enqueueAction)
	s.engine = engine

	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Engine exposes the hotkey engine for callers that feed it directly.
func (s *Session) Engine() *hotkeys.Engine {
	return s.engine
}

// Launch starts the emulator for this session. A session supervises
// one process at a time.
func (s *Session) Launch(lc emulator.LaunchConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.process != nil {
		return fmt.Errorf("session %s already has a process", s.id)
	}

	proc, err := s.supervisor.Launch(lc)
	if err != nil {
		return err
	}
	s.process = proc
	log.Info().Str("session", s.id.String()).Int("pid", proc.PID()).
		Msg("session started")
	return nil
}

// Run pumps input, performance sampling and hotkey actions until the
// emulator exits or the context is canceled. If the context ends with
// the process still alive it is stopped gracefully, then killed.
func (s *Session) Run(ctx context.Context) error {
	s.openReaders()
	defer s.closeReaders()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.waitLoop(ctx, cancel) })
	g.Go(func() error { return s.inputLoop(ctx) })
	g.Go(func() error { return s.perfLoop(ctx) })
	g.Go(func() error { return s.actionLoop(ctx) })

	err := g.Wait()
	s.shutdownProcess()
	return err
}

// waitLoop blocks on the child and tears the session down once it
// exits.
func (s *Session) waitLoop(ctx context.Context, cancel context.CancelFunc) error {
	s.mu.RLock()
	proc := s.process
	s.mu.RUnlock()
	if proc == nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		code, err := s.supervisor.Wait(proc, 250*time.Millisecond)
		if errors.Is(err, errkind.ErrTimeout) {
			continue
		}
		if err == nil {
			log.Info().Str("session", s.id.String()).Int("exitCode", code).
				Msg("emulator exited")
		} else {
			log.Warn().Err(err).Str("session", s.id.String()).Msg("waiting on emulator")
		}
		cancel()
		return nil
	}
}

// inputLoop drains controller events at a fixed cadence and feeds key
// transitions to the hotkey engine. Vanished devices are dropped and
// hotplugged ones picked up.
func (s *Session) inputLoop(ctx context.Context) error {
	device := s.cfg.Device()
	added, _, closeWatch, err := hotkeys.WatchHotplug(device.InputDeviceDir)
	if err != nil {
		log.Warn().Err(err).Msg("input hotplug unavailable")
		added = nil
	} else {
		defer func() {
			if err := closeWatch(); err != nil {
				log.Warn().Err(err).Msg("closing hotplug watcher")
			}
		}()
	}

	ticker := s.clock.NewTicker(inputPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path := <-added:
			s.addReader(path)
		case <-ticker.Chan():
			s.pumpReaders()
		}
	}
}

func (s *Session) pumpReaders() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.readers[:0]
	for _, r := range s.readers {
		events, err := r.Poll()
		if err != nil {
			log.Debug().Err(err).Str("device", r.Path()).Msg("dropping input device")
			_ = r.Close()
			continue
		}
		kept = append(kept, r)
		for _, ev := range events {
			if ev.Type != hotkeys.EvKey {
				continue
			}
			s.engine.HandleEvent(ev.Code, ev.Value != 0)
		}
	}
	s.readers = kept
}

// perfLoop keeps the latest performance snapshot fresh.
func (s *Session) perfLoop(ctx context.Context) error {
	ticker := s.clock.NewTicker(perfInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			snap := s.sampler.Sample()
			s.mu.Lock()
			s.snapshot = snap
			s.mu.Unlock()
			log.Debug().Float64("cpuPct", snap.CPUPercent).
				Int("cpuTempC", snap.CPUTempC).
				Uint64("memUsedKB", snap.MemUsedKB).
				Msg("performance sample")
		}
	}
}

// Snapshot returns the most recent performance sample.
func (s *Session) Snapshot() perf.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// enqueueAction hands a fired hotkey to the action loop. The engine
// invokes this with its lock held, so the queue never blocks; a full
// queue drops the action.
func (s *Session) enqueueAction(action hotkeys.Action) {
	select {
	case s.actions <- action:
	default:
		log.Warn().Str("action", action.String()).Msg("hotkey action queue full, dropping")
	}
}

func (s *Session) actionLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case action := <-s.actions:
			s.handleAction(ctx, action)
		}
	}
}

// handleAction services the hotkeys the system owns. Emulator-side
// actions (save states, pause, menu) are bound in the frontend's own
// hotkey config and only logged here.
func (s *Session) handleAction(ctx context.Context, action hotkeys.Action) {
	var err error
	switch action {
	case hotkeys.ActionExit:
		s.mu.RLock()
		proc := s.process
		s.mu.RUnlock()
		if proc != nil {
			err = s.supervisor.Stop(proc)
		}
	case hotkeys.ActionVolumeUp:
		err = s.mixer.StepVolume(ctx, true)
	case hotkeys.ActionVolumeDown:
		err = s.mixer.StepVolume(ctx, false)
	case hotkeys.ActionBrightnessUp:
		err = s.display.StepBrightness(true)
	case hotkeys.ActionBrightnessDown:
		err = s.display.StepBrightness(false)
	default:
		log.Debug().Str("action", action.String()).Msg("hotkey handled by frontend")
		return
	}

	if err != nil {
		log.Warn().Err(err).Str("action", action.String()).Msg("hotkey action failed")
	}
}

func (s *Session) openReaders() {
	device := s.cfg.Device()
	fsys := afero.NewOsFs()
	paths, err := hotkeys.ScanDevices(fsys, "/sys/class/input", device.InputDeviceDir)
	if err != nil {
		log.Warn().Err(err).Msg("scanning input devices")
		return
	}
	for _, path := range paths {
		s.addReader(path)
	}
}

func (s *Session) addReader(path string) {
	r, err := hotkeys.OpenReader(path)
	if err != nil {
		log.Debug().Err(err).Str("device", path).Msg("skipping input device")
		return
	}
	s.mu.Lock()
	s.readers = append(s.readers, r)
	s.mu.Unlock()
	log.Info().Str("device", path).Msg("watching input device")
}

func (s *Session) closeReaders() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.readers {
		_ = r.Close()
	}
	s.readers = nil
}

// shutdownProcess stops a still-running child, escalating to a kill
// after the grace period.
func (s *Session) shutdownProcess() {
	s.mu.RLock()
	proc := s.process
	s.mu.RUnlock()
	if proc == nil || !s.supervisor.Alive(proc) {
		return
	}

	if err := s.supervisor.Stop(proc); err != nil {
		log.Warn().Err(err).Msg("stopping emulator")
	}
	if _, err := s.supervisor.Wait(proc, stopGrace); err != nil {
		log.Warn().Int("pid", proc.PID()).Msg("emulator ignored stop, killing")
		_ = s.supervisor.Kill(proc)
		_, _ = s.supervisor.Wait(proc, stopGrace)
	}
}
