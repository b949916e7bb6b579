package risk

// Chain runs rules in order and returns every decision. It applies no
// aggregation of its own; see Policy.
type Chain struct {
	rules []Rule
}

func NewChain(rules ...Rule) *Chain {
	c := &Chain{}
	for _, r := range rules {
		c.Append(r)
	}
	return c
}

// Append adds r to the end of the chain. Nil rules are ignored.
func (c *Chain) Append(r Rule) *Chain {
	if r != nil {
		c.rules = append(c.rules, r)
	}
	return c
}

// Rules returns a copy of the rule list.
func (c *Chain) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

func (c *Chain) Len() int { return len(c.rules) }

// Evaluate returns one decision per rule, in chain order.
func (c *Chain) Evaluate(ctx Context) []Decision {
	out := make([]Decision, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r.Check(ctx))
	}
	return out
}
