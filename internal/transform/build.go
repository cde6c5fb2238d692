package transform

import (
	"fmt"

	"eda/internal/config"
)

// Build turns declared operation configs into executable ops, preserving
// order. Reference and type errors surface at apply time; Build only rejects
// structurally unusable declarations.
func Build(ops []config.OpConfig) (Chain, error) {
	chain := make(Chain, 0, len(ops))
	for i, oc := range ops {
		switch oc.Kind {
		case "derive":
			chain = append(chain, &Derive{
				Name:       oc.Name,
				Left:       oc.Left,
				Operator:   oc.Operator,
				Right:      oc.Right,
				RightValue: oc.RightValue,
			})
		case "bin":
			chain = append(chain, &Bin{
				Column:     oc.Column,
				Boundaries: oc.Boundaries,
				Into:       oc.Into,
			})
		case "filter":
			chain = append(chain, &Filter{
				Column:   oc.Column,
				Operator: oc.Operator,
				Value:    oc.Value,
			})
		default:
			return nil, fmt.Errorf("transform %d: unknown kind %q", i+1, oc.Kind)
		}
	}
	return chain, nil
}
