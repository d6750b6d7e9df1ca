package param

// Source tells where a resolved default came from.
type Source string

const (
	SourceStatic  Source = "static"
	SourceHistory Source = "history"
)

// ResolvedDefault is the outcome of sticky default resolution.
// MismatchedType is set when the qualifying run held a value of another
// type under the parameter's name; the result is then the static default.
type ResolvedDefault struct {
	Value          bool      `json:"value"`
	Source         Source    `json:"source"`
	MismatchedType ValueType `json:"mismatched_type,omitempty"`
}

// Resolve returns the default for p given history ordered newest first.
// Only the first qualifying run is consulted: when SuccessfulOnly is set,
// runs that did not succeed are skipped. Missing or mistyped values fall
// back to the static default. Neither p nor history is modified.
func Resolve(p BooleanParameter, history []*RunRecord) ResolvedDefault {
	static := ResolvedDefault{Value: p.DefaultValue, Source: SourceStatic}
	for _, rec := range history {
		if rec == nil {
			continue
		}
		if p.SuccessfulOnly && !rec.WasSuccessful() {
			continue
		}
		v, ok := rec.Parameters[p.Name]
		if !ok {
			return static
		}
		b, ok := v.Bool()
		if !ok {
			static.MismatchedType = v.Type
			return static
		}
		return ResolvedDefault{Value: b, Source: SourceHistory}
	}
	return static
}

// Resolution is the effective default for one job parameter.
type Resolution struct {
	Definition     Definition `json:"definition"`
	Value          Value      `json:"value"`
	Source         Source     `json:"source"`
	MismatchedType ValueType  `json:"mismatched_type,omitempty"`
}

// ResolveAll resolves every definition against the same history snapshot.
// Non-sticky kinds always resolve to their static default.
func ResolveAll(defs []Definition, history []*RunRecord) []Resolution {
	out := make([]Resolution, 0, len(defs))
	for _, d := range defs {
		p, ok := d.Sticky()
		if !ok {
			out = append(out, Resolution{Definition: d, Value: d.StaticValue(), Source: SourceStatic})
			continue
		}
		rd := Resolve(p, history)
		out = append(out, Resolution{
			Definition:     d,
			Value:          BoolValue(d.Name, rd.Value, d.Description),
			Source:         rd.Source,
			MismatchedType: rd.MismatchedType,
		})
	}
	return out
}
