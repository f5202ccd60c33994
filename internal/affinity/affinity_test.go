package affinity_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/randomizedcoder/versioned-ring/internal/affinity"
)

func TestPin_InvalidCPU(t *testing.T) {
	if err := affinity.Pin(-1); err == nil {
		t.Error("expected error for cpu -1")
	}
}

func TestPin(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread affinity is only supported on linux")
	}

	allowed, err := affinity.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(allowed) == 0 {
		t.Fatal("expected at least one allowed CPU")
	}
	cpu := allowed[len(allowed)-1]

	errc := make(chan error, 1)
	got := make(chan []int, 1)
	go func() {
		// The goroutine exits locked, so its thread is discarded.
		if err := affinity.Pin(cpu); err != nil {
			errc <- err
			return
		}
		cpus, err := affinity.Current()
		errc <- err
		got <- cpus
	}()

	if err := <-errc; err != nil {
		t.Fatalf("Pin(%d): %v", cpu, err)
	}
	cpus := <-got
	if len(cpus) != 1 || cpus[0] != cpu {
		t.Errorf("expected affinity [%d], got %v", cpu, cpus)
	}
}

func TestUnsupported(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Skip("affinity is supported here")
	}
	if err := affinity.Pin(0); !errors.Is(err, affinity.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
