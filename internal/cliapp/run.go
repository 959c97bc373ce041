// Package cliapp is the CLI front-end (C10): parses a small per-command
// grammar, auto-spawns the daemon if needed, dials it over the IPC
// socket, and renders the response in plain text, JSON, or tree form.
package cliapp

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/ipc"
	"github.com/dshills/leta/internal/lconfig"
	"github.com/dshills/leta/internal/lspproto"
	"github.com/dshills/leta/internal/ops"
)

// Run is the top-level CLI entrypoint invoked by cmd/leta/main.go for
// every command except the hidden "daemon run" subcommand.
func Run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: leta <command> [args...]")
		return 2
	}

	jsonMode := false
	var rest []string
	for _, a := range args {
		if a == "--json" {
			jsonMode = true
			continue
		}
		rest = append(rest, a)
	}
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: leta <command> [args...]")
		return 2
	}

	cmd, cmdArgs := rest[0], rest[1:]

	if cmd == "daemon" {
		return runDaemonSubcommand(cmdArgs)
	}

	op, params, err := parseCommand(cmd, cmdArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	socketPath, err := ensureDaemon()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return daemonUnreachableExitCode
	}

	client, err := dialDaemon(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return daemonUnreachableExitCode
	}
	defer client.Close()

	format := "plain"
	if jsonMode {
		format = "json"
	}
	payload, err := client.call(op, params, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	render(os.Stdout, payload, jsonMode, op)
	return 0
}

// runDaemonSubcommand handles the user-facing "daemon start|stop|restart|info"
// commands, distinct from the hidden "daemon run" foreground entrypoint.
func runDaemonSubcommand(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: leta daemon <start|stop|restart|info>")
		return 2
	}
	switch args[0] {
	case "start":
		socketPath, err := ensureDaemon()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return daemonUnreachableExitCode
		}
		fmt.Printf("daemon listening on %s\n", socketPath)
		return 0

	case "stop":
		return daemonShutdown()

	case "restart":
		if code := daemonShutdown(); code != 0 && code != daemonUnreachableExitCode {
			return code
		}
		socketPath, err := ensureDaemon()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return daemonUnreachableExitCode
		}
		fmt.Printf("daemon listening on %s\n", socketPath)
		return 0

	case "info":
		return daemonInfo()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown daemon subcommand %q\n", args[0])
		return 2
	}
}

func daemonShutdown() int {
	endpointPath, err := lconfig.EndpointFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	socketPath, err := lconfig.SocketFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if _, err := os.Stat(socketPath); err != nil {
		fmt.Fprintln(os.Stderr, "Error: daemon not running")
		return daemonUnreachableExitCode
	}

	client, err := dialDaemon(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return daemonUnreachableExitCode
	}
	defer client.Close()

	if _, err := client.call("shutdown", struct{}{}, "plain"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	os.Remove(endpointPath)
	fmt.Println("daemon stopped")
	return 0
}

func daemonInfo() int {
	endpointPath, err := lconfig.EndpointFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	info, err := ipc.ReadEndpointFile(endpointPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: no daemon endpoint on record")
		return daemonUnreachableExitCode
	}
	fmt.Printf("pid: %d\nsocket: %s\nstarted: %s\nstale: %v\n", info.PID, info.SocketPath, info.StartedAt, info.Stale())
	return 0
}

// parseCommand maps a subcommand + its flags to an IPC op name and a
// params value ready for json.Marshal, per §6's exact CLI surface.
func parseCommand(cmd string, args []string) (string, any, error) {
	switch cmd {
	case "grep":
		return parseGrep(args)
	case "show":
		return parseShow(args)
	case "refs":
		return parseSymbolExprCmd("refs", args)
	case "hover":
		return parseSymbolExprCmd("hover", args)
	case "implementations":
		return parseSymbolExprCmd("implementations", args)
	case "declaration":
		return parseSymbolExprCmd("declaration", args)
	case "subtypes":
		return parseSymbolExprCmd("subtypes", args)
	case "supertypes":
		return parseSymbolExprCmd("supertypes", args)
	case "calls":
		return parseCalls(args)
	case "diagnostics":
		return parseDiagnostics(args)
	case "rename":
		return parseRename(args)
	case "mv":
		return parseMv(args)
	case "format":
		return parsePathCmd("format", args)
	case "organize-imports":
		return parsePathCmd("organizeImports", args)
	case "replace-function":
		return parseReplaceFunction(args)
	case "files":
		return parseFiles(args)
	case "workspace":
		return parseWorkspace(args)
	case "config":
		return "config.get", struct{}{}, nil
	default:
		return "", nil, fmt.Errorf("%w: unknown command %q", errs.ErrUsage, cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return fs
}

type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func parseGrep(args []string) (string, any, error) {
	fs := newFlagSet("grep")
	var kinds, excludes stringList
	caseSensitive := fs.Bool("C", false, "case sensitive")
	docs := fs.Bool("d", false, "include docs")
	head := fs.Int("head", 0, "limit results")
	fs.Var(&kinds, "k", "symbol kind filter (repeatable)")
	fs.Var(&excludes, "x", "exclude glob (repeatable)")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return "", nil, usageErr(fmt.Errorf("grep requires PATTERN"))
	}
	p := ops.GrepParams{
		Pattern:         rest[0],
		ExcludePatterns: excludes,
		CaseSensitive:   *caseSensitive,
		Docs:            *docs,
		HeadLimit:       *head,
	}
	if len(rest) > 1 {
		p.PathRegex = rest[1]
	}
	for _, k := range kinds {
		if matched, ok := ops.ParseKind(strings.ToLower(k)); ok {
			p.Kinds = append(p.Kinds, matched...)
		}
	}
	return "grep", p, nil
}

func parseShow(args []string) (string, any, error) {
	fs := newFlagSet("show")
	ctxLines := fs.Int("n", 0, "context lines")
	head := fs.Int("head", 0, "limit lines")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return "", nil, usageErr(fmt.Errorf("show requires SYMBOL"))
	}
	return "show", ops.ShowParams{SymbolExpr: rest[0], ContextLines: *ctxLines, HeadLimit: *head}, nil
}

func parseSymbolExprCmd(op string, args []string) (string, any, error) {
	fs := newFlagSet(op)
	fs.Int("n", 0, "unused, accepted for CLI surface parity")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return "", nil, usageErr(fmt.Errorf("%s requires SYMBOL", op))
	}
	return op, struct {
		SymbolExpr string `json:"symbolExpr"`
	}{rest[0]}, nil
}

func parseCalls(args []string) (string, any, error) {
	fs := newFlagSet("calls")
	from := fs.String("from", "", "starting symbol")
	to := fs.String("to", "", "target symbol")
	maxDepth := fs.Int("max-depth", 0, "BFS depth limit")
	includeNonWorkspace := fs.Bool("include-non-workspace", false, "include callees outside workspace roots")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	return "calls", ops.CallsParams{
		From:                *from,
		To:                  *to,
		MaxDepth:            *maxDepth,
		IncludeNonWorkspace: *includeNonWorkspace,
	}, nil
}

func parseDiagnostics(args []string) (string, any, error) {
	fs := newFlagSet("diagnostics")
	sev := fs.String("s", "", "minimum severity (error|warning|information|hint)")
	head := fs.Int("head", 0, "limit results")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	rest := fs.Args()
	p := ops.DiagnosticsParams{HeadLimit: *head}
	if len(rest) > 0 {
		p.Path = rest[0]
	}
	if *sev != "" {
		p.MinSeverity = parseSeverity(*sev)
	}
	return "diagnostics", p, nil
}

func parseRename(args []string) (string, any, error) {
	fs := newFlagSet("rename")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return "", nil, usageErr(fmt.Errorf("rename requires SYMBOL NEW_NAME"))
	}
	return "rename", ops.RenameParams{SymbolExpr: rest[0], NewName: rest[1]}, nil
}

func parseMv(args []string) (string, any, error) {
	fs := newFlagSet("mv")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return "", nil, usageErr(fmt.Errorf("mv requires OLD_PATH NEW_PATH"))
	}
	return "mv", ops.MvParams{OldPath: rest[0], NewPath: rest[1]}, nil
}

func parsePathCmd(op string, args []string) (string, any, error) {
	fs := newFlagSet(op)
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return "", nil, usageErr(fmt.Errorf("%s requires PATH", op))
	}
	return op, struct {
		Path string `json:"path"`
	}{rest[0]}, nil
}

func parseReplaceFunction(args []string) (string, any, error) {
	fs := newFlagSet("replace-function")
	checkSig := fs.Bool("check-signature", false, "fail if the first signature line changes")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return "", nil, usageErr(fmt.Errorf("replace-function requires SYMBOL NEW_BODY"))
	}
	return "replaceFunction", ops.ReplaceFunctionParams{SymbolExpr: rest[0], NewBody: rest[1], CheckSignature: *checkSig}, nil
}

func parseFiles(args []string) (string, any, error) {
	fs := newFlagSet("files")
	var excludes, includes, filters stringList
	fs.Var(&excludes, "x", "exclude glob (repeatable)")
	fs.Var(&includes, "i", "include glob (repeatable)")
	fs.Var(&filters, "f", "filter glob (repeatable)")
	if err := fs.Parse(args); err != nil {
		return "", nil, usageErr(err)
	}
	p := ops.FilesParams{ExcludePatterns: excludes, IncludePatterns: includes, FilterPatterns: filters}
	if rest := fs.Args(); len(rest) > 0 {
		p.Path = rest[0]
	}
	return "files", p, nil
}

func parseWorkspace(args []string) (string, any, error) {
	if len(args) == 0 {
		return "", nil, usageErr(fmt.Errorf("workspace requires add|remove|restart"))
	}
	sub, rest := args[0], args[1:]
	fs := newFlagSet("workspace " + sub)
	root := fs.String("root", "", "workspace root path")
	if err := fs.Parse(rest); err != nil {
		return "", nil, usageErr(err)
	}
	if *root == "" && len(fs.Args()) > 0 {
		*root = fs.Args()[0]
	}
	if *root == "" {
		var err error
		*root, err = os.Getwd()
		if err != nil {
			return "", nil, usageErr(err)
		}
	}
	params := struct {
		Root string `json:"root"`
	}{*root}
	switch sub {
	case "add":
		return "workspace.add", params, nil
	case "remove":
		return "workspace.remove", params, nil
	case "restart":
		return "workspace.restart", params, nil
	default:
		return "", nil, usageErr(fmt.Errorf("unknown workspace subcommand %q", sub))
	}
}

func usageErr(err error) error {
	return fmt.Errorf("%w: %v", errs.ErrUsage, err)
}

func parseSeverity(s string) lspproto.DiagnosticSeverity {
	switch strings.ToLower(s) {
	case "error":
		return lspproto.SeverityError
	case "warning", "warn":
		return lspproto.SeverityWarning
	case "information", "info":
		return lspproto.SeverityInformation
	case "hint":
		return lspproto.SeverityHint
	default:
		return 0
	}
}
