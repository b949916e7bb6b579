package risk

import (
	"fmt"
	"strings"
)

// Verdict is the aggregate outcome of a chain evaluation.
type Verdict struct {
	Approved   bool
	Rejections []Decision
}

// Policy folds a chain's decisions into a verdict.
type Policy func(decisions []Decision) Verdict

// AllMustPass approves only when every decision approves. All rejections
// are reported.
func AllMustPass(decisions []Decision) Verdict {
	v := Verdict{Approved: true}
	for _, d := range decisions {
		if !d.Approved {
			v.Approved = false
			v.Rejections = append(v.Rejections, d)
		}
	}
	return v
}

// FirstRejection stops at the first rejecting decision.
func FirstRejection(decisions []Decision) Verdict {
	for _, d := range decisions {
		if !d.Approved {
			return Verdict{Approved: false, Rejections: []Decision{d}}
		}
	}
	return Verdict{Approved: true}
}

// Violations approves when the number of rejections is at most tolerance.
func Violations(tolerance int) Policy {
	return func(decisions []Decision) Verdict {
		v := AllMustPass(decisions)
		v.Approved = len(v.Rejections) <= tolerance
		return v
	}
}

// PolicyByName maps a config name to a policy. Empty means all-must-pass.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "all", "all-must-pass":
		return AllMustPass, nil
	case "first", "first-rejection":
		return FirstRejection, nil
	case "violations", "collect":
		return Violations(0), nil
	default:
		return nil, fmt.Errorf("unknown risk policy %q (supported: all-must-pass, first-rejection, violations)", name)
	}
}
