package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/frame"
)

// Overlay marks a session's stack on the graph.
type Overlay struct {
	Stack []domain.FrameRef
}

// GenerateMermaid produces a Mermaid flowchart of a frame set.
// Each frame is a subgraph of its states:
// - Entry state: ((Circle))
// - State with handled input: [/Parallelogram/] listing what it accepts
// - Other states: [Rectangle]
// Child entries are dotted edges; resume targets are ⚡ edges leaving the child subgraph.
// The overlay highlights the frames of a stack, and the top frame's state as current.
func GenerateMermaid(set *frame.Set, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")
	sb.WriteString("    done(((\"end\")))\n")

	defs := set.Frames()
	for _, d := range defs {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID(d.Name), d.Name)
		for _, state := range d.StateOrder {
			id := nodeID(d.Name, state)
			accepts := handled(d.States[state])
			switch {
			case state == d.EntryState:
				fmt.Fprintf(&sb, "        %s((\"%s\"))\n", id, state)
			case len(accepts) > 0:
				fmt.Fprintf(&sb, "        %s[/\"%s <br/> %s\"/]\n", id, state, escape(strings.Join(accepts, ", ")))
			default:
				fmt.Fprintf(&sb, "        %s[\"%s\"]\n", id, state)
			}
		}
		sb.WriteString("    end\n")
	}

	for _, d := range defs {
		if d.Root {
			fmt.Fprintf(&sb, "    start -- \"%s\" --> %s\n", escape(d.Entry.String()), nodeID(d.Name, d.EntryState))
		}
		for _, state := range d.StateOrder {
			for _, c := range d.States[state] {
				if c.Child == "" {
					continue
				}
				child, ok := set.Frame(c.Child)
				if !ok {
					continue
				}
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", nodeID(d.Name, state), escape(child.Entry.String()), nodeID(child.Name, child.EntryState))
				writeResumes(&sb, child, d)
			}
		}
		for _, sig := range signals(d) {
			if d.Resume[sig].IsFinish() {
				fmt.Fprintf(&sb, "    %s -. \"⚡ %s\" .-> done\n", sanitizeMermaidID(d.Name), sig)
			}
		}
	}

	if overlay != nil && len(overlay.Stack) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, ref := range overlay.Stack[:len(overlay.Stack)-1] {
			fmt.Fprintf(&sb, "    class %s active;\n", nodeID(ref.Frame, ref.State))
		}
		top := overlay.Stack[len(overlay.Stack)-1]
		fmt.Fprintf(&sb, "    class %s current;\n", nodeID(top.Frame, top.State))
	}

	return sb.String()
}

// writeResumes draws where each signal of child lands on parent.
func writeResumes(sb *strings.Builder, child, parent *frame.Definition) {
	from := sanitizeMermaidID(child.Name)
	for _, sig := range signals(child) {
		t := child.Resume[sig]
		if state, ok := t.IsResume(); ok {
			fmt.Fprintf(sb, "    %s -. \"⚡ %s\" .-> %s\n", from, sig, nodeID(parent.Name, state))
		}
		if next, ok := t.IsPropagate(); ok {
			fmt.Fprintf(sb, "    %s -. \"⚡ %s as %s\" .-> %s\n", from, sig, next, sanitizeMermaidID(parent.Name))
		}
	}
}

func signals(d *frame.Definition) []domain.Signal {
	sigs := make([]domain.Signal, 0, len(d.Resume))
	for sig := range d.Resume {
		sigs = append(sigs, sig)
	}
	slices.Sort(sigs)
	return sigs
}

func handled(cands []frame.Candidate) []string {
	var out []string
	for _, c := range cands {
		if c.Child == "" {
			out = append(out, c.Match.String())
		}
	}
	return out
}

func nodeID(frameName, state string) string {
	return sanitizeMermaidID(frameName + "__" + state)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
