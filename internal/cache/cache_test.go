package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/starford/raido/internal/circuit"
	"github.com/starford/raido/internal/models"
)

func buildGraph(t *testing.T) *circuit.Graph {
	t.Helper()
	g, err := circuit.Build(&models.RawDesign{
		Components: []models.RawComponent{{Ref: "R1"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGetOrBuild_Idempotent(t *testing.T) {
	c := New()
	var builds int32
	build := func() (*circuit.Graph, error) {
		atomic.AddInt32(&builds, 1)
		return buildGraph(t), nil
	}

	first, err := c.GetOrBuild("a.net", "sig1", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.GetOrBuild("a.net", "sig1", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("same signature must return the identical graph object")
	}
	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("builds = %d, want 1", n)
	}
}

func TestGetOrBuild_RebuildOnSignatureChange(t *testing.T) {
	c := New()
	var builds int32
	build := func() (*circuit.Graph, error) {
		atomic.AddInt32(&builds, 1)
		return buildGraph(t), nil
	}

	first, _ := c.GetOrBuild("a.net", "sig1", build)
	second, _ := c.GetOrBuild("a.net", "sig2", build)

	if first == second {
		t.Error("changed signature must produce a new graph")
	}
	if n := atomic.LoadInt32(&builds); n != 2 {
		t.Errorf("builds = %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 (entry replaced, not added)", c.Len())
	}
}

func TestGetOrBuild_FailureNotCached(t *testing.T) {
	c := New()
	good := buildGraph(t)
	boom := errors.New("boom")

	if _, err := c.GetOrBuild("a.net", "sig1", func() (*circuit.Graph, error) {
		return good, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Failed build for a new signature must not clobber the good entry.
	if _, err := c.GetOrBuild("a.net", "sig2", func() (*circuit.Graph, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Get("a.net") != good {
		t.Error("prior good entry was lost after failed build")
	}
}

func TestGetOrBuild_SingleFlight(t *testing.T) {
	c := New()
	var builds int32
	release := make(chan struct{})
	build := func() (*circuit.Graph, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return buildGraph(t), nil
	}

	const callers = 8
	results := make([]*circuit.Graph, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			g, err := c.GetOrBuild("a.net", "sig1", build)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			results[i] = g
		}(i)
	}
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("builds = %d, want 1 (single-flight)", n)
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent callers received different graphs")
		}
	}
}

func TestClear(t *testing.T) {
	c := New()
	var builds int32
	build := func() (*circuit.Graph, error) {
		atomic.AddInt32(&builds, 1)
		return buildGraph(t), nil
	}

	_, _ = c.GetOrBuild("a.net", "sig1", build)
	c.Clear("a.net")
	if c.Get("a.net") != nil {
		t.Error("entry survived Clear")
	}
	_, _ = c.GetOrBuild("a.net", "sig1", build)
	if n := atomic.LoadInt32(&builds); n != 2 {
		t.Errorf("builds = %d, want 2 after Clear", n)
	}
}

func TestIndependentKeys(t *testing.T) {
	c := New()
	var builds int32
	build := func() (*circuit.Graph, error) {
		atomic.AddInt32(&builds, 1)
		return buildGraph(t), nil
	}

	_, _ = c.GetOrBuild("a.net", "s", build)
	_, _ = c.GetOrBuild("b.net", "s", build)
	if n := atomic.LoadInt32(&builds); n != 2 {
		t.Errorf("builds = %d, want 2", n)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}
