package cliapp

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/ipc"
	"github.com/dshills/leta/internal/lconfig"
)

// daemonUnreachableExitCode is exit code 3 (§6): the daemon could not be
// reached even after an auto-spawn attempt. Distinct from errs.Kind's
// taxonomy since it never reaches the daemon side at all.
const daemonUnreachableExitCode = 3

var errDaemonUnreachable = fmt.Errorf("%w: daemon unreachable", errs.ErrIO)

// ensureDaemon returns the socket path of a live daemon, auto-spawning a
// detached one if the endpoint file is missing or stale (§4.10).
func ensureDaemon() (string, error) {
	socketPath, err := lconfig.SocketFilePath()
	if err != nil {
		return "", err
	}
	endpointPath, err := lconfig.EndpointFilePath()
	if err != nil {
		return "", err
	}

	if info, err := ipc.ReadEndpointFile(endpointPath); err == nil && !info.Stale() {
		if _, err := os.Stat(info.SocketPath); err == nil {
			return info.SocketPath, nil
		}
	}

	if err := spawnDaemon(); err != nil {
		return "", err
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			return socketPath, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return "", errDaemonUnreachable
}

// spawnDaemon starts "leta daemon run" detached from this process's
// session so it survives the CLI invocation that spawned it.
func spawnDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("%w: locating leta binary: %v", errs.ErrIO, err)
	}

	cmd := exec.Command(exe, "daemon", "run")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: spawning daemon: %v", errs.ErrIO, err)
	}
	return cmd.Process.Release()
}
