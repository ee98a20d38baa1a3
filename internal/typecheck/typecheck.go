// Package typecheck validates the type tags carried by inlets and outlets.
//
// Tags are HCL type constraint expressions ("string", "number", "list(string)",
// "any"), matched case-insensitively so "String" and "Number" work too. An
// empty tag means any. Checking is advisory: the scheduler never looks at
// types, but validation reports wiring that cannot carry a value the inlet
// accepts.
package typecheck

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/flowgrid/internal/state"
	"github.com/vk/flowgrid/internal/unit"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// aliases maps common tag spellings that are not HCL type keywords.
var aliases = map[string]string{
	"int":     "number",
	"integer": "number",
	"float":   "number",
	"boolean": "bool",
	"json":    "any",
	"object":  "any",
	"array":   "list(any)",
	"list":    "list(any)",
	"map":     "map(any)",
}

// ParseTypeTag turns a tag into a cty type.
func ParseTypeTag(tag string) (cty.Type, error) {
	src := strings.ToLower(strings.TrimSpace(tag))
	if src == "" {
		return cty.DynamicPseudoType, nil
	}
	if alias, ok := aliases[src]; ok {
		src = alias
	}

	expr, diags := hclsyntax.ParseExpression([]byte(src), "type", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type '%s': %s", tag, diags.Error())
	}
	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type '%s': %s", tag, diags.Error())
	}
	return ty, nil
}

// Compatible reports whether a value of type from can be delivered where to is
// expected.
func Compatible(from, to cty.Type) bool {
	if from.Equals(to) || from.Equals(cty.DynamicPseudoType) || to.Equals(cty.DynamicPseudoType) {
		return true
	}
	// GetConversion returns nil for identical types, handled above.
	return convert.GetConversion(from, to) != nil
}

// CheckEdges verifies that every edge connects an outlet whose type is
// convertible to the type of the inlet it feeds. References that do not
// resolve are skipped; the graph model reports those.
func CheckEdges(g *state.Graph) error {
	outlets := make(map[string]*state.Outlet)
	inlets := make(map[string]*state.Inlet)
	var problems []string

	for _, n := range g.Nodes {
		for _, o := range n.Outlets {
			outlets[o.ID] = o
		}
		for _, in := range n.Inlets {
			inlets[in.ID] = in
		}
	}

	for _, e := range g.Edges {
		out, okOut := outlets[e.Start]
		in, okIn := inlets[e.End]
		if !okOut || !okIn {
			continue
		}
		from, err := ParseTypeTag(out.Type)
		if err != nil {
			problems = append(problems, fmt.Sprintf("outlet '%s': %v", out.ID, err))
			continue
		}
		to, err := ParseTypeTag(in.Type)
		if err != nil {
			problems = append(problems, fmt.Sprintf("inlet '%s': %v", in.ID, err))
			continue
		}
		if !Compatible(from, to) {
			problems = append(problems, fmt.Sprintf("edge '%s': outlet '%s' produces '%s' but inlet '%s' requires '%s'",
				e.ID, out.ID, from.FriendlyName(), in.ID, to.FriendlyName()))
		}
	}

	return report("edge type check failed", problems)
}

// CheckDescriptor compares a node's ports against what its unit declares.
// Every inlet must be a declared input and every outlet a declared output,
// with a compatible type when both sides name one. A descriptor port lists
// alternative types; matching any of them is enough.
func CheckDescriptor(n *state.Node, d *unit.Descriptor) error {
	var problems []string

	for _, in := range n.Inlets {
		port, ok := d.Inputs[in.Name]
		if !ok {
			problems = append(problems, fmt.Sprintf("inlet '%s' is not an input of the unit", in.Name))
			continue
		}
		if msg := portMismatch(in.Type, port, true); msg != "" {
			problems = append(problems, fmt.Sprintf("inlet '%s': %s", in.Name, msg))
		}
	}
	for _, out := range n.Outlets {
		port, ok := d.Output[out.Name]
		if !ok {
			problems = append(problems, fmt.Sprintf("outlet '%s' is not an output of the unit", out.Name))
			continue
		}
		if msg := portMismatch(out.Type, port, false); msg != "" {
			problems = append(problems, fmt.Sprintf("outlet '%s': %s", out.Name, msg))
		}
	}

	return report(fmt.Sprintf("node '%s' does not match its unit", n.ID), problems)
}

// portMismatch returns a description of the mismatch, or "" if the declared
// tag fits one of the port's types. For inputs the node's tag must convert to
// the unit's type; for outputs the unit's type must convert to the node's.
func portMismatch(tag string, port unit.Port, input bool) string {
	if len(port.Type) == 0 {
		return ""
	}
	declared, err := ParseTypeTag(tag)
	if err != nil {
		return err.Error()
	}
	var names []string
	for _, raw := range port.Type {
		ty, err := ParseTypeTag(raw)
		if err != nil {
			return fmt.Sprintf("unit declares %v", err)
		}
		if (input && Compatible(declared, ty)) || (!input && Compatible(ty, declared)) {
			return ""
		}
		names = append(names, ty.FriendlyName())
	}
	return fmt.Sprintf("declared '%s' but the unit uses %s", declared.FriendlyName(), strings.Join(names, " or "))
}

func report(summary string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s:\n- %s", summary, strings.Join(problems, "\n- "))
}
