package regulation

import "strings"

// Registry is a read-only index over a fixed set of regulations.
// It is safe for concurrent use: nothing mutates it after construction
// and every accessor hands out copies.
type Registry struct {
	ordered []Regulation
	byID    map[string]int
	rules   map[RuleKind]map[string]Rule
}

var defaultRegistry = build(table, rules)

// Default returns the registry of all supported regulations
func Default() *Registry {
	return defaultRegistry
}

func build(regs []Regulation, matrix map[RuleKind]map[string]Rule) *Registry {
	r := &Registry{
		ordered: make([]Regulation, 0, len(regs)),
		byID:    make(map[string]int, len(regs)),
		rules:   make(map[RuleKind]map[string]Rule, len(matrix)),
	}

	for _, reg := range regs {
		if _, dup := r.byID[reg.ID]; dup {
			continue
		}
		r.byID[reg.ID] = len(r.ordered)
		r.ordered = append(r.ordered, reg.clone())
	}

	for kind, perReg := range matrix {
		m := make(map[string]Rule, len(perReg))
		for id, rule := range perReg {
			rule.Kind = kind
			m[id] = rule.clone()
		}
		r.rules[kind] = m
	}

	return r
}

// Get returns the regulation with the given id
func (r *Registry) Get(id string) (Regulation, bool) {
	i, ok := r.byID[normalizeID(id)]
	if !ok {
		return Regulation{}, false
	}
	return r.ordered[i].clone(), true
}

// Has reports whether id names a known regulation
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[normalizeID(id)]
	return ok
}

// All returns every regulation in registry order
func (r *Registry) All() []Regulation {
	out := make([]Regulation, len(r.ordered))
	for i, reg := range r.ordered {
		out[i] = reg.clone()
	}
	return out
}

// IDs returns the ids of every regulation in registry order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.ordered))
	for i, reg := range r.ordered {
		ids[i] = reg.ID
	}
	return ids
}

// Name returns the display name for id, or the id itself when unknown
func (r *Registry) Name(id string) string {
	if i, ok := r.byID[normalizeID(id)]; ok {
		return r.ordered[i].Name
	}
	return id
}

// Rules returns the requirement matrix entries for a regulation.
// The result is empty for unknown ids.
func (r *Registry) Rules(id string) []Rule {
	id = normalizeID(id)
	var out []Rule
	for _, kind := range ruleKinds {
		if rule, ok := r.rules[kind][id]; ok {
			out = append(out, rule.clone())
		}
	}
	return out
}

// normalizeID lowercases and trims an id so lookups tolerate casing from API callers
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
