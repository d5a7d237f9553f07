// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

// Package supervisor implements the Supervisor (spec.md §4.5, C5): it
// validates configuration, spawns the server process and every
// configured worker process, and enforces a fail-stop shutdown the moment
// any of them exits unexpectedly.
//
// Grounded on vectorizer.py's Vectorizer.listen (spawn the gRPC/broker/
// router process, then the worker pool, then join) and
// EmbedderPool.launch_workers's poll-exitcodes-then-terminate-all loop;
// the process-spawning mechanics themselves (os/exec, sibling-binary
// discovery) have no grounded third-party alternative anywhere in the
// example corpus, so they are built directly on os/exec (see DESIGN.md).
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/milkymap/vectorfabric/clog"
	"github.com/milkymap/vectorfabric/internal/config"
)

const (
	serverBinaryName = "vectorfabric-server"
	workerBinaryName = "vectorfabric-worker"

	// terminationGrace bounds how long a supervised process gets to react to
	// SIGTERM before the supervisor escalates to SIGKILL, mirroring
	// launch_workers's terminate()-then-join() pair (which blocks
	// indefinitely; a bounded grace period is this fabric's one deliberate
	// hardening over the original).
	terminationGrace = 5 * time.Second
)

// process pairs a running supervised *exec.Cmd with a human label used in
// log lines and exit reporting. exited is closed exactly once, by the
// single goroutine started in (*Supervisor).start that owns cmd.Wait --
// exec.Cmd.Wait may only be called once, so every other piece of code
// that needs to know whether a process has exited observes exited instead
// of calling Wait itself.
type process struct {
	label  string
	cmd    *exec.Cmd
	exited chan struct{}
	err    error // valid only after exited is closed
}

// Supervisor is the C5 component. Zero value is not usable; use New.
type Supervisor struct {
	*clog.CLogger

	configPath string
	cfg        *config.Config
	binDir     string
}

// New builds a Supervisor for the validated configuration loaded from
// configPath. binDir is the directory containing the sibling
// vectorfabric-server/vectorfabric-worker binaries, normally
// filepath.Dir(os.Executable()).
func New(configPath string, cfg *config.Config, binDir string) *Supervisor {
	return &Supervisor{
		CLogger:    clog.New("supervisor "),
		configPath: configPath,
		cfg:        cfg,
		binDir:     binDir,
	}
}

// Run spawns the server process and every configured worker process, then
// blocks until either ctx is canceled or any supervised process exits --
// whichever happens first triggers a fail-stop shutdown of every other
// supervised process.
func (s *Supervisor) Run(ctx context.Context) error {
	serverBin, err := s.binaryPath(serverBinaryName)
	if err != nil {
		return err
	}
	workerBin, err := s.binaryPath(workerBinaryName)
	if err != nil {
		return err
	}

	var procs []*process

	serverProc, err := s.start(serverBin, "server", "-config", s.configPath)
	if err != nil {
		return fmt.Errorf("supervisor: start server: %w", err)
	}
	procs = append(procs, serverProc)

	workerIndex := 0
	for _, mc := range s.cfg.ModelConfigs {
		for i := 0; i < mc.NbInstances; i++ {
			workerID := fmt.Sprintf("worker-%03d", workerIndex)
			workerIndex++

			p, err := s.start(workerBin, workerID,
				"-config", s.configPath,
				"-topic", mc.Topic,
				"-id", workerID,
			)
			if err != nil {
				s.shutdownAll(procs)
				return fmt.Errorf("supervisor: start %s for topic %q: %w", workerID, mc.Topic, err)
			}
			procs = append(procs, p)
		}
	}

	s.Printf("supervising %d process(es)", len(procs))

	firstExit := make(chan *process, len(procs))
	for _, p := range procs {
		p := p
		go func() {
			<-p.exited
			firstExit <- p
		}()
	}

	select {
	case <-ctx.Done():
		s.Printf("shutting down on %v", ctx.Err())
		s.shutdownAll(procs)
		return nil
	case p := <-firstExit:
		s.Errorf("process %s exited (%v); failing the rest of the fabric stop", p.label, p.err)
		s.shutdownAll(procs)
		if p.err != nil {
			return fmt.Errorf("supervisor: %s exited: %w", p.label, p.err)
		}
		return fmt.Errorf("supervisor: %s exited unexpectedly", p.label)
	}
}

func (s *Supervisor) binaryPath(name string) (string, error) {
	path := filepath.Join(s.binDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("supervisor: sibling binary %q not found next to supervisor executable: %w", name, err)
	}
	return path, nil
}

func (s *Supervisor) start(binPath, label string, args ...string) (*process, error) {
	cmd := exec.Command(binPath, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	s.Printf("%s started (pid %d)", label, cmd.Process.Pid)

	p := &process{label: label, cmd: cmd, exited: make(chan struct{})}
	go func() {
		p.err = p.cmd.Wait() // the only call to Wait for this process
		close(p.exited)
	}()
	return p, nil
}

// hasExited reports whether p's Wait goroutine has already observed exit,
// without itself calling Wait.
func hasExited(p *process) bool {
	select {
	case <-p.exited:
		return true
	default:
		return false
	}
}

// shutdownAll sends SIGTERM to every still-running process and waits up
// to terminationGrace before escalating to SIGKILL, mirroring
// launch_workers's terminate()/join() teardown loop with a bounded wait.
func (s *Supervisor) shutdownAll(procs []*process) {
	for _, p := range procs {
		if hasExited(p) {
			continue
		}
		if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			s.Errorf("signal %s: %v", p.label, err)
		}
	}

	done := make(chan struct{})
	go func() {
		for _, p := range procs {
			<-p.exited
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(terminationGrace):
		for _, p := range procs {
			if !hasExited(p) {
				s.Errorf("%s did not exit within grace period, killing", p.label)
				_ = p.cmd.Process.Kill()
			}
		}
	}
}
