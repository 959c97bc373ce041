package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/ops"
)

// dispatch resolves a Request's op to the matching ops.Handlers method,
// decoding Params into that operation's param struct. One switch arm per
// operation in §4.7's table, plus the workspace/daemon/config management
// ops from §6's CLI surface.
func dispatch(ctx context.Context, h *ops.Handlers, req Request) (any, error) {
	switch req.Op {
	case "grep":
		var p ops.GrepParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Grep(ctx, p)

	case "show":
		var p ops.ShowParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Show(ctx, p)

	case "refs":
		var p struct {
			SymbolExpr string `json:"symbolExpr"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Refs(ctx, p.SymbolExpr)

	case "hover":
		var p struct {
			SymbolExpr string `json:"symbolExpr"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Hover(ctx, p.SymbolExpr)

	case "implementations":
		var p struct {
			SymbolExpr string `json:"symbolExpr"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Implementations(ctx, p.SymbolExpr)

	case "declaration":
		var p struct {
			SymbolExpr string `json:"symbolExpr"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Declaration(ctx, p.SymbolExpr)

	case "subtypes", "supertypes":
		var p struct {
			SymbolExpr string `json:"symbolExpr"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		dir := ops.Subtypes
		if req.Op == "supertypes" {
			dir = ops.Supertypes
		}
		return h.TypeHierarchy(ctx, p.SymbolExpr, dir)

	case "calls":
		var p ops.CallsParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		tree, path, err := h.Calls(ctx, p)
		if err != nil {
			return nil, err
		}
		if path != nil {
			return path, nil
		}
		return tree, nil

	case "diagnostics":
		var p ops.DiagnosticsParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Diagnostics(ctx, p)

	case "rename":
		var p ops.RenameParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Rename(ctx, p)

	case "mv":
		var p ops.MvParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Mv(ctx, p)

	case "format":
		var p struct {
			Path string `json:"path"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Format(ctx, p.Path)

	case "organizeImports":
		var p struct {
			Path string `json:"path"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.OrganizeImports(ctx, p.Path)

	case "replaceFunction":
		var p ops.ReplaceFunctionParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.ReplaceFunction(ctx, p)

	case "files":
		var p ops.FilesParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return h.Files(ctx, p)

	case "workspace.add":
		var p struct {
			Root string `json:"root"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		_, err := h.Session.Add(p.Root)
		return struct {
			Root string `json:"root"`
		}{p.Root}, err

	case "workspace.remove":
		var p struct {
			Root string `json:"root"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.Session.Remove(ctx, p.Root)

	case "workspace.restart":
		var p struct {
			Root string `json:"root"`
		}
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, restartWorkspace(ctx, h, p.Root)

	case "config.get":
		return h.Config.Get(), nil

	default:
		return nil, errWrapUsage(fmt.Errorf("unknown op %q", req.Op))
	}
}

// restartWorkspace restarts every language server currently running in
// the workspace rooted at root (the `workspace restart` CLI subcommand
// has no per-language argument, so it restarts all of them).
func restartWorkspace(ctx context.Context, h *ops.Handlers, root string) error {
	w, err := h.Session.WorkspaceForFile(root)
	if err != nil {
		return err
	}
	for _, lang := range w.Languages() {
		if err := h.Session.Restart(ctx, w, lang); err != nil {
			return err
		}
	}
	return nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errWrapUsage(err)
	}
	return nil
}

func errWrapUsage(err error) error {
	return fmt.Errorf("%w: %v", errs.ErrUsage, err)
}
