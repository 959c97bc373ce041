// Package ops implements the Operation Handlers (C7): one handler per
// operation (grep/show/refs/calls/implementations/sub/supertypes/
// declaration/diagnostics/rename/mv/format/organize-imports/
// replace-function/hover). Each handler's shape is resolve -> LSP call ->
// format, grounded on keystorm's internal/lsp/navigation.go composition
// style. Per §9, handlers share a thin shape rather than a deep class
// hierarchy, and each handler returns its own plain result struct (see
// types.go), which the CLI renders from its JSON form.
package ops

import (
	"github.com/dshills/leta/internal/applog"
	"github.com/dshills/leta/internal/hovercache"
	"github.com/dshills/leta/internal/lconfig"
	"github.com/dshills/leta/internal/symindex"
	"github.com/dshills/leta/internal/workspace"
)

// Handlers bundles the component dependencies every operation needs.
type Handlers struct {
	Session *workspace.Session
	Index   *symindex.Index
	Hover   *hovercache.Cache
	Config  *lconfig.Store
	Log     *applog.Logger
}

// New constructs a Handlers bundle.
func New(session *workspace.Session, index *symindex.Index, hover *hovercache.Cache, cfg *lconfig.Store, log *applog.Logger) *Handlers {
	if log == nil {
		log = applog.NewNull()
	}
	return &Handlers{Session: session, Index: index, Hover: hover, Config: cfg, Log: log.WithComponent("ops")}
}
