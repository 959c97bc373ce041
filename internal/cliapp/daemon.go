package cliapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/leta/internal/applog"
	"github.com/dshills/leta/internal/hovercache"
	"github.com/dshills/leta/internal/ipc"
	"github.com/dshills/leta/internal/lconfig"
	"github.com/dshills/leta/internal/ops"
	"github.com/dshills/leta/internal/registry"
	"github.com/dshills/leta/internal/symindex"
	"github.com/dshills/leta/internal/workspace"
)

// Daemon assembles every component (C1-C9) into the running process that
// the CLI front-end (C10) talks to over the IPC socket.
type Daemon struct {
	log     *applog.Logger
	store   *lconfig.Store
	watcher *lconfig.Watcher
	index   *symindex.Index
	hover   *hovercache.Cache
	session *workspace.Session
	server  *ipc.Server

	socketPath   string
	endpointPath string
}

// NewDaemon wires together the daemon's components from on-disk config
// and cache/log paths, per SPEC_FULL.md's component table.
func NewDaemon() (*Daemon, error) {
	logDir, err := lconfig.LogDir()
	if err != nil {
		return nil, err
	}

	configPath, err := lconfig.ConfigFilePath()
	if err != nil {
		return nil, err
	}
	cfg, err := lconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	store := lconfig.NewStore(cfg)

	log, err := applog.OpenFile(filepath.Join(logDir, "daemon.log"), applog.ParseLevel(cfg.Daemon.LogLevel))
	if err != nil {
		return nil, err
	}

	watcher, err := lconfig.NewWatcher(configPath, store, log)
	if err != nil {
		log.Warnf("config watcher disabled: %v", err)
		watcher = nil
	}

	index, err := symindex.New(64 << 20)
	if err != nil {
		return nil, err
	}

	hoverDB, err := lconfig.HoverDBPath()
	if err != nil {
		return nil, err
	}
	hover, err := hovercache.Open(hoverDB, cfg.Daemon.HoverCacheBytes)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	session := workspace.New(reg, logDir, log)
	for _, root := range cfg.Workspaces.Roots {
		if _, err := session.Add(root); err != nil {
			log.Warnf("adding configured workspace %s: %v", root, err)
		}
	}

	handlers := ops.New(session, index, hover, store, log)

	socketPath, err := lconfig.SocketFilePath()
	if err != nil {
		return nil, err
	}
	endpointPath, err := lconfig.EndpointFilePath()
	if err != nil {
		return nil, err
	}

	server := ipc.NewServer(socketPath, handlers, log)

	return &Daemon{
		log:          log,
		store:        store,
		watcher:      watcher,
		index:        index,
		hover:        hover,
		session:      session,
		server:       server,
		socketPath:   socketPath,
		endpointPath: endpointPath,
	}, nil
}

// Run listens, writes the endpoint discovery file, and serves until ctx
// is cancelled, then drains and shuts down every LSP server (§4.9
// lifecycle).
func (d *Daemon) Run(ctx context.Context) error {
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	d.server.SetShutdownFunc(cancelRun)

	if err := d.server.Listen(); err != nil {
		return fmt.Errorf("listen on %s: %w", d.socketPath, err)
	}
	defer os.Remove(d.socketPath)

	if err := ipc.WriteEndpointFile(d.endpointPath, ipc.EndpointInfo{
		SocketPath: d.socketPath,
		PID:        os.Getpid(),
		StartedAt:  startedAtStamp(),
	}); err != nil {
		d.log.Warnf("writing endpoint file: %v", err)
	}
	defer os.Remove(d.endpointPath)

	if d.watcher != nil {
		go d.watcher.Run()
		defer d.watcher.Close()
	}

	d.log.Infof("leta daemon listening on %s", d.socketPath)

	serveErr := make(chan error, 1)
	go func() { serveErr <- d.server.Serve(runCtx) }()

	select {
	case <-runCtx.Done():
	case err := <-serveErr:
		if err != nil {
			d.log.Errorf("serve: %v", err)
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.server.Shutdown(drainCtx); err != nil {
		d.log.Warnf("shutdown drain: %v", err)
	}

	d.session.Shutdown(context.Background())
	d.log.Infof("leta daemon stopped")
	return nil
}

// Close releases resources that outlive a single Run call (used when
// NewDaemon succeeds but Run is never reached).
func (d *Daemon) Close() {
	if d.watcher != nil {
		d.watcher.Close()
	}
	if d.hover != nil {
		d.hover.Close()
	}
	d.log.Close()
}

func startedAtStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
