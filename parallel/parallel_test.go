package parallel

import (
	"context"
	"testing"
)

func TestCapacity(t *testing.T) {
	cpus := Capacity(0)
	if cpus < 1 {
		t.Fatalf("Capacity(0) = %d, want >= 1", cpus)
	}
	if got := Capacity(5); got != 5 {
		t.Errorf("Capacity(5) = %d, want 5", got)
	}
	if got := Capacity(-2); got != 2*cpus {
		t.Errorf("Capacity(-2) = %d, want %d", got, 2*cpus)
	}
	if got := Capacity(1 << 20); got != maxCapacity {
		t.Errorf("Capacity(huge) = %d, want cap %d", got, maxCapacity)
	}
}

func TestPoolRunsAndCapturesOutput(t *testing.T) {
	cmds := []Command{
		{Label: "ok", Path: "/bin/echo", Args: []string{"hello"}},
		{Label: "fail", Path: "/bin/sh", Args: []string{"-c", "exit 3"}},
	}
	slots, err := Pool(context.Background(), 2, cmds)
	if err != nil {
		t.Fatalf("Pool: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if slots[0].ExitCode != 0 {
		t.Errorf("slots[0].ExitCode = %d, want 0", slots[0].ExitCode)
	}
	if string(slots[0].Output) != "hello\n" {
		t.Errorf("slots[0].Output = %q, want %q", slots[0].Output, "hello\n")
	}
	if slots[1].ExitCode != 3 {
		t.Errorf("slots[1].ExitCode = %d, want 3", slots[1].ExitCode)
	}
}

func TestPoolEmpty(t *testing.T) {
	slots, err := Pool(context.Background(), 0, nil)
	if err != nil {
		t.Fatalf("Pool(nil): %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("len(slots) = %d, want 0", len(slots))
	}
}

func TestPoolOutputUnderCap(t *testing.T) {
	cmds := []Command{
		{Label: "small", Path: "/bin/sh", Args: []string{"-c", "exit 0"}},
	}
	// Sanity: a well-behaved command under the cap succeeds cleanly.
	slots, err := Pool(context.Background(), 1, cmds)
	if err != nil {
		t.Fatalf("Pool: %v", err)
	}
	if slots[0].Err != nil {
		t.Errorf("slots[0].Err = %v, want nil", slots[0].Err)
	}
}
