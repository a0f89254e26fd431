package versions

// Resolve classifies a query against the table. It is pure: no filesystem
// or process I/O, no mutation, so a failed resolution never leaves partial
// state behind.
func Resolve(t *Table, th Thresholds, q Query) (ResolvedTarget, error) {
	latest, err := t.Latest()
	if err != nil {
		return ResolvedTarget{}, err
	}

	e := latest
	if !q.Latest {
		var ok bool
		e, ok = t.Lookup(q.Tag)
		if !ok {
			return ResolvedTarget{}, &UnknownVersionError{Query: q.Tag}
		}
	}

	return ResolvedTarget{
		Entry:    e,
		Kind:     e.Kind,
		IsLatest: e.Version.Equal(latest.Version),
	}, nil
}
