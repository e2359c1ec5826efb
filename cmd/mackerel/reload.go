package main

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dshills/mackerel/internal/config"
	"github.com/dshills/mackerel/internal/config/watcher"
	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/macro"
	"github.com/dshills/mackerel/internal/input/mouse"
	"github.com/dshills/mackerel/internal/logging"
	"github.com/dshills/mackerel/internal/script"
)

// reloadDebounce coalesces editor save bursts.
const reloadDebounce = 200 * time.Millisecond

// reloadingHandler forwards events to the current player.
// A replay in progress finishes on the player it started with.
type reloadingHandler struct {
	player atomic.Pointer[macro.Player]
}

func newReloadingHandler(p *macro.Player) *reloadingHandler {
	h := &reloadingHandler{}
	h.player.Store(p)
	return h
}

func (h *reloadingHandler) OnEvent(ev input.Event, pointer mouse.Position) {
	h.player.Load().OnEvent(ev, pointer)
}

// Swap replaces the player used for later events.
func (h *reloadingHandler) Swap(p *macro.Player) {
	h.player.Store(p)
}

// Player returns the current player.
func (h *reloadingHandler) Player() *macro.Player {
	return h.player.Load()
}

// watchScript re-parses the script and re-reads the offset file whenever
// they change, until ctx is done. Valid scripts are passed to apply, which
// may be nil. Offset changes are only reported; the running offset is
// fixed at startup.
func watchScript(ctx context.Context, opts options, offset config.Offset, apply func([]macro.Macro), logger *logging.Logger) int {
	log := logger.WithComponent("watcher")

	w, err := watcher.New(watcher.WithDebounce(reloadDebounce))
	if err != nil {
		log.Error("couldn't start watcher", "error", err)
		return 1
	}
	defer w.Stop()

	if err := w.Watch(opts.ScriptPath); err != nil {
		log.Error("couldn't watch script", "path", opts.ScriptPath, "error", err)
		return 1
	}
	if err := w.Watch(opts.OffsetPath); err != nil {
		log.Warn("couldn't watch offset file", "path", opts.OffsetPath, "error", err)
	}

	scriptPath, err := filepath.Abs(opts.ScriptPath)
	if err != nil {
		log.Error("couldn't resolve script path", "path", opts.ScriptPath, "error", err)
		return 1
	}
	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			log.Warn("watched file went away", "path", ev.Path, "op", ev.Op.String())
			return
		}
		if ev.Path == scriptPath {
			reloadScript(ev.Path, apply, logger)
			return
		}
		reloadOffset(ev.Path, offset, logger)
	})
	w.Start()

	log.Info("watching for changes", "files", len(w.WatchedFiles()))
	for {
		select {
		case <-ctx.Done():
			return 0
		case err, ok := <-w.Errors():
			if !ok {
				return 0
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

func reloadScript(path string, apply func([]macro.Macro), logger *logging.Logger) {
	log := logger.WithComponent("script")
	macros, err := script.ParseFile(path)
	if err != nil {
		logParseError(log, err)
		return
	}
	log.Info("script reloaded", "path", path, "macros", len(macros))
	if apply != nil {
		apply(macros)
	}
}

func reloadOffset(path string, running config.Offset, logger *logging.Logger) {
	log := logger.WithComponent("config")
	off, err := config.LoadOffset(path)
	if err != nil {
		log.Warn("offset file is invalid", "path", path, "error", err)
		return
	}
	if off != running {
		log.Warn("offset changed; restart to apply", "path", path, "offset", off.String(), "running", running.String())
	}
}
