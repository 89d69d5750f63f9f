package layers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/starford/raido/internal/apperr"
)

func TestAssignFirstFitOrder(t *testing.T) {
	a := New(DefaultPool())

	first, err := a.Assign("p1", []string{"N1"}, "")
	if err != nil {
		t.Fatalf("assign p1: %v", err)
	}
	if first.Layer != "Eco1.User" {
		t.Errorf("first layer = %q, want Eco1.User", first.Layer)
	}

	second, err := a.Assign("p2", []string{"N2"}, "")
	if err != nil {
		t.Fatalf("assign p2: %v", err)
	}
	if second.Layer != "Eco2.User" {
		t.Errorf("second layer = %q, want Eco2.User", second.Layer)
	}

	third, err := a.Assign("p3", []string{"N3"}, "")
	if err != nil {
		t.Fatalf("assign p3: %v", err)
	}
	if third.Layer != "User.1" {
		t.Errorf("third layer = %q, want User.1", third.Layer)
	}
}

func TestAssignTracks(t *testing.T) {
	a := New(DefaultPool())

	asg, err := a.Assign("p1", []string{"N1", "N2"}, "")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(asg.Tracks) != 2 {
		t.Fatalf("tracks = %d, want 2", len(asg.Tracks))
	}
	for i, want := range []string{"N1", "N2"} {
		if asg.Tracks[i].Net != want {
			t.Errorf("track %d net = %q, want %q", i, asg.Tracks[i].Net, want)
		}
		if asg.Tracks[i].Layer != asg.Layer {
			t.Errorf("track %d layer = %q, want %q", i, asg.Tracks[i].Layer, asg.Layer)
		}
	}
}

func TestAssignPreferred(t *testing.T) {
	a := New(DefaultPool())

	asg, err := a.Assign("p1", []string{"N1"}, "User.5")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if asg.Layer != "User.5" {
		t.Errorf("layer = %q, want User.5", asg.Layer)
	}

	// Busy preferred layer falls back to the ordered scan.
	fallback, err := a.Assign("p2", []string{"N2"}, "User.5")
	if err != nil {
		t.Fatalf("assign with busy preference: %v", err)
	}
	if fallback.Layer != "Eco1.User" {
		t.Errorf("fallback layer = %q, want Eco1.User", fallback.Layer)
	}

	// Unknown preferred layer also falls back rather than failing.
	unknown, err := a.Assign("p3", []string{"N3"}, "F.Cu")
	if err != nil {
		t.Fatalf("assign with unknown preference: %v", err)
	}
	if unknown.Layer != "Eco2.User" {
		t.Errorf("unknown-preference layer = %q, want Eco2.User", unknown.Layer)
	}
}

func TestPoolExhaustion(t *testing.T) {
	a := New(DefaultPool())

	n := a.Capacity()
	if n != 11 {
		t.Fatalf("capacity = %d, want 11", n)
	}
	for i := 0; i < n; i++ {
		if _, err := a.Assign(fmt.Sprintf("p%d", i), []string{"N"}, ""); err != nil {
			t.Fatalf("assign %d: %v", i, err)
		}
	}
	if _, err := a.Assign("overflow", []string{"N"}, ""); !errors.Is(err, apperr.ErrNoFreeLayer) {
		t.Fatalf("overflow err = %v, want ErrNoFreeLayer", err)
	}

	// Releasing one assignment frees exactly one slot.
	if err := a.Release("p4"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := a.Assign("again", []string{"N"}, ""); err != nil {
		t.Fatalf("assign after release: %v", err)
	}
	if _, err := a.Assign("again2", []string{"N"}, ""); !errors.Is(err, apperr.ErrNoFreeLayer) {
		t.Fatalf("second assign after single release err = %v, want ErrNoFreeLayer", err)
	}
}

func TestReleaseIsolation(t *testing.T) {
	a := New(DefaultPool())

	p1, err := a.Assign("p1", []string{"N1"}, "")
	if err != nil {
		t.Fatalf("assign p1: %v", err)
	}
	if _, err := a.Assign("p2", []string{"N2"}, ""); err != nil {
		t.Fatalf("assign p2: %v", err)
	}

	if err := a.Release("p2"); err != nil {
		t.Fatalf("release p2: %v", err)
	}
	kept := a.Get("p1")
	if kept == nil {
		t.Fatal("p1 assignment gone after releasing p2")
	}
	if kept.Layer != p1.Layer {
		t.Errorf("p1 layer changed: %q -> %q", p1.Layer, kept.Layer)
	}
	if a.Get("p2") != nil {
		t.Error("p2 assignment still present after release")
	}
	if a.InUse() != 1 {
		t.Errorf("in use = %d, want 1", a.InUse())
	}
}

func TestReleaseUnknown(t *testing.T) {
	a := New(DefaultPool())
	if err := a.Release("nope"); !errors.Is(err, apperr.ErrPathNotFound) {
		t.Fatalf("err = %v, want ErrPathNotFound", err)
	}
}

func TestAssignDuplicatePath(t *testing.T) {
	a := New(DefaultPool())
	if _, err := a.Assign("p1", []string{"N1"}, ""); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := a.Assign("p1", []string{"N1"}, ""); !errors.Is(err, apperr.ErrAlreadyAssigned) {
		t.Fatalf("err = %v, want ErrAlreadyAssigned", err)
	}
}

func TestAssignmentsSorted(t *testing.T) {
	a := New(DefaultPool())
	for _, id := range []string{"c", "a", "b"} {
		if _, err := a.Assign(id, []string{"N"}, ""); err != nil {
			t.Fatalf("assign %s: %v", id, err)
		}
	}
	got := a.Assignments()
	if len(got) != 3 {
		t.Fatalf("assignments = %d, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].PathID != want {
			t.Errorf("assignment %d = %q, want %q", i, got[i].PathID, want)
		}
	}
}
