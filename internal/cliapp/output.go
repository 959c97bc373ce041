package cliapp

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// maxTreeNameWidth bounds a single tree entry's display width (in
// grapheme clusters, not bytes) so a pathologically long filename
// doesn't blow out the terminal width of every sibling line.
const maxTreeNameWidth = 80

// render prints a payload in one of plain/json/tree per §4.10. jsonMode
// takes priority; otherwise "files" always renders as a tree and every
// other op renders as plain text.
func render(w io.Writer, payload gjson.Result, jsonMode bool, op string) {
	if jsonMode {
		out := pretty.Pretty([]byte(payload.Raw))
		fmt.Fprintln(w, strings.TrimRight(string(out), "\n"))
		return
	}
	if op == "files" {
		renderFileTree(w, payload)
		return
	}
	renderPlain(w, payload, op)
}

func renderFileTree(w io.Writer, payload gjson.Result) {
	for _, root := range payload.Get("roots").Array() {
		printFileNode(w, root, "")
	}
}

func printFileNode(w io.Writer, node gjson.Result, prefix string) {
	name := truncateName(node.Get("name").String(), maxTreeNameWidth)
	if node.Get("isDir").Bool() {
		name += "/"
	}
	fmt.Fprintln(w, prefix+name)
	childPrefix := prefix + "  "
	for _, c := range node.Get("children").Array() {
		printFileNode(w, c, childPrefix)
	}
}

// truncateName shortens name to at most width grapheme clusters, cutting
// on cluster boundaries so combining marks and multi-rune emoji in
// filenames aren't split mid-cluster.
func truncateName(name string, width int) string {
	if uniseg.GraphemeClusterCount(name) <= width {
		return name
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(name)
	for i := 0; i < width-1 && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	b.WriteString("\xe2\x80\xa6")
	return b.String()
}

// renderPlain renders a human-readable summary per result shape. Fields
// not recognized for an op fall back to a raw pretty-printed dump so
// nothing is silently swallowed.
func renderPlain(w io.Writer, payload gjson.Result, op string) {
	switch op {
	case "grep", "refs", "implementations", "declaration":
		hits := payload.Get("hits")
		if !hits.Exists() {
			hits = payload.Get("locations")
		}
		for _, h := range hits.Array() {
			printHit(w, h)
		}
		printWarnings(w, payload)

	case "show":
		fmt.Fprintf(w, "%s:%d-%d\n", payload.Get("path").String(), payload.Get("startLine").Int(), payload.Get("endLine").Int())
		fmt.Fprintln(w, payload.Get("text").String())

	case "hover":
		fmt.Fprintln(w, payload.Get("text").String())

	case "calls":
		if path := payload.Get("path"); path.Exists() {
			for _, n := range path.Array() {
				fmt.Fprintf(w, "%s (%s:%d)\n", n.Get("name").String(), n.Get("path").String(), n.Get("line").Int())
			}
			return
		}
		printCallNode(w, payload.Get("root"), 0)

	case "subtypes", "supertypes":
		for _, h := range payload.Get("hits").Array() {
			printHit(w, h)
		}

	case "diagnostics":
		for _, d := range payload.Get("diagnostics").Array() {
			fmt.Fprintf(w, "%s:%d:%d [%s] %s\n", d.Get("path").String(),
				d.Get("range.start.line").Int()+1, d.Get("range.start.character").Int()+1,
				d.Get("severity").String(), d.Get("message").String())
		}
		printWarnings(w, payload)

	case "rename", "mv", "format", "organizeImports":
		for _, f := range payload.Get("files").Array() {
			fmt.Fprintln(w, f.String())
		}

	case "replaceFunction":
		fmt.Fprintf(w, "%s: %d lines replaced\n", payload.Get("path").String(), payload.Get("linesReplaced").Int())

	case "workspace.add", "workspace.remove", "workspace.restart":
		fmt.Fprintln(w, "ok")

	case "config.get":
		out := pretty.Pretty([]byte(payload.Raw))
		fmt.Fprint(w, string(out))

	default:
		out := pretty.Pretty([]byte(payload.Raw))
		fmt.Fprintln(w, strings.TrimRight(string(out), "\n"))
	}
}

func printHit(w io.Writer, h gjson.Result) {
	name := h.Get("name").String()
	kind := h.Get("kind").String()
	container := h.Get("container").String()
	label := name
	if container != "" {
		label = container + "." + name
	}
	if kind != "" {
		fmt.Fprintf(w, "%s:%d [%s] %s\n", h.Get("path").String(), h.Get("line").Int(), kind, label)
	} else {
		fmt.Fprintf(w, "%s:%d %s\n", h.Get("path").String(), h.Get("line").Int(), label)
	}
	if docs := h.Get("docs").String(); docs != "" {
		fmt.Fprintf(w, "    %s\n", docs)
	}
}

func printCallNode(w io.Writer, n gjson.Result, depth int) {
	fmt.Fprintf(w, "%s%s (%s:%d)\n", strings.Repeat("  ", depth), n.Get("name").String(), n.Get("path").String(), n.Get("line").Int())
	for _, c := range n.Get("children").Array() {
		printCallNode(w, c, depth+1)
	}
}

func printWarnings(w io.Writer, payload gjson.Result) {
	for _, wMsg := range payload.Get("warnings").Array() {
		fmt.Fprintf(w, "warning: %s\n", wMsg.String())
	}
}
