package versions

import (
	"errors"
	"testing"
)

func TestResolveLatest(t *testing.T) {
	table, err := Build(specs("1.0.0", "2.0.0"), Thresholds{})
	if err != nil {
		t.Fatal(err)
	}
	rt, err := Resolve(table, Thresholds{}, Query{Latest: true})
	if err != nil {
		t.Fatalf("Resolve(latest) error = %v", err)
	}
	if rt.Entry.Version.String() != "2.0.0" || !rt.IsLatest {
		t.Errorf("Resolve(latest) = %s (latest=%v), want 2.0.0 latest", rt.Entry.Version, rt.IsLatest)
	}
}

func TestResolveExplicitTag(t *testing.T) {
	table, err := Build(specs("1.0.0", "2.0.0"), Thresholds{})
	if err != nil {
		t.Fatal(err)
	}
	rt, err := Resolve(table, Thresholds{}, QueryFor("v1.0.0"))
	if err != nil {
		t.Fatalf("Resolve(v1.0.0) error = %v", err)
	}
	if rt.Entry.Version.String() != "1.0.0" || rt.IsLatest {
		t.Errorf("Resolve(v1.0.0) = %s (latest=%v)", rt.Entry.Version, rt.IsLatest)
	}
}

func TestResolveUnknownTagIsPure(t *testing.T) {
	table, err := Build(specs("1.0.0", "2.0.0"), Thresholds{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Resolve(table, Thresholds{}, QueryFor("9.9.9"))
	var unknown *UnknownVersionError
	if !errors.As(err, &unknown) {
		t.Fatalf("Resolve(9.9.9) error = %v, want UnknownVersionError", err)
	}
	// no mutation: the table still resolves latest as before
	rt, err := Resolve(table, Thresholds{}, Query{Latest: true})
	if err != nil || rt.Entry.Version.String() != "2.0.0" {
		t.Errorf("table changed after failed resolve: %v %v", rt, err)
	}
}

func TestQueryFor(t *testing.T) {
	if q := QueryFor(""); !q.Latest {
		t.Errorf("QueryFor(\"\") should request latest")
	}
	if q := QueryFor("latest"); !q.Latest {
		t.Errorf("QueryFor(latest) should request latest")
	}
	if q := QueryFor("1.2.3"); q.Latest || q.Tag != "1.2.3" {
		t.Errorf("QueryFor(1.2.3) = %+v", q)
	}
}
