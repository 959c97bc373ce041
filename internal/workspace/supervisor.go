package workspace

import (
	"context"
	"time"

	"github.com/dshills/leta/internal/lspclient"
)

// Supervisor respawns a crashed LanguageServer with exponential backoff.
// Open documents are not replayed: the new process starts with an empty
// open-document table and each file is opened again on its next use.
// Grounded on keystorm's internal/lsp/supervisor.go; adopted
// as the concrete default implementation of the §3 Restarting state per
// the Open Question decision recorded in DESIGN.md (original_source/ was
// empty for this spec, so the Python tool's own recovery behavior could
// not be consulted).
type Supervisor struct {
	session *Session

	maxRetries int
}

func newSupervisor(s *Session) *Supervisor {
	return &Supervisor{session: s, maxRetries: 5}
}

// watch spawns a goroutine that respawns languageID's server within w
// whenever the current client's process exits, unless the workspace has
// been removed in the meantime.
func (sup *Supervisor) watch(w *Workspace, languageID string, c *lspclient.Client, backoff time.Duration) {
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	go func() {
		<-c.Exited()

		sup.session.mu.RLock()
		_, stillRegistered := sup.session.byRoot[w.Root]
		sup.session.mu.RUnlock()
		if !stillRegistered {
			return
		}

		w.mu.Lock()
		current, ok := w.servers[languageID]
		w.mu.Unlock()
		if ok && current != c {
			// Already superseded by an explicit Restart; nothing to do.
			return
		}

		delay := backoff
		for attempt := 0; attempt < sup.maxRetries; attempt++ {
			time.Sleep(delay)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			_, err := sup.session.Ensure(ctx, w, languageID)
			cancel()
			if err == nil {
				sup.session.log.Infof("respawned %s in %s after crash (attempt %d)", languageID, w.Root, attempt+1)
				return
			}
			sup.session.log.Warnf("respawn attempt %d for %s in %s failed: %v", attempt+1, languageID, w.Root, err)
			delay *= 2
		}
		sup.session.log.Errorf("giving up respawning %s in %s after %d attempts", languageID, w.Root, sup.maxRetries)
	}()
}
