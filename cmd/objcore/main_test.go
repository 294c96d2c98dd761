package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jython/jython-sub004/pkg/config"
	"github.com/jython/jython-sub004/pkg/diag"
	"github.com/jython/jython-sub004/pkg/interpreter"
	"github.com/jython/jython-sub004/pkg/runtime"
)

func init() {
	diag.ConfigureTests()
}

func newTestSession() *session {
	return newSession(interpreter.New(config.Default(), loadHostClass))
}

func TestRunVersionAndUsage(t *testing.T) {
	if code := run([]string{"version"}); code != 0 {
		t.Fatalf("expected version to succeed, got %d", code)
	}
	if code := run(nil); code != 1 {
		t.Fatalf("expected usage failure, got %d", code)
	}
	if code := run([]string{"--config"}); code != 1 {
		t.Fatalf("expected missing path failure, got %d", code)
	}
	if code := run([]string{"bogus"}); code != 1 {
		t.Fatalf("expected unknown command failure, got %d", code)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("resolver:\n  nope: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code := run([]string{"--config=" + path, "demo"}); code != 1 {
		t.Fatalf("expected config failure, got %d", code)
	}
}

func TestDemoScript(t *testing.T) {
	var out bytes.Buffer
	if code := runDemo(interpreter.New(config.Default(), loadHostClass), &out); code != 0 {
		t.Fatalf("expected demo to succeed, got %d:\n%s", code, out.String())
	}
	for _, want := range []string{
		"D B C A object",
		"runtime: AttributeNotFound: 'D' object has no attribute 'missing'",
		"runtime: ArityMismatch: norm() takes no arguments (1 given)",
		"(6.0, 8.0)",
		"runtime: StopIteration",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected demo output to contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestSessionCommands(t *testing.T) {
	s := newTestSession()
	steps := []struct {
		line, want string
	}{
		{"type Base --slots a", "<class 'Base'>"},
		{"type Child Base --dict", "<class 'Child'>"},
		{"mro Child", "Child Base object"},
		{"new c Child", ""},
		{"set c a 1.5", ""},
		{"get c a", "1.5"},
		{"set c extra \"xy\"", ""},
		{"get c extra", `"xy"`},
		{"del c extra", ""},
		{"new p Point 1 0", ""},
		{"call p norm", "1.0"},
		{"gen g 2", ""},
		{"next g", "0"},
		{"close g", ""},
	}
	for _, step := range steps {
		got, err := s.exec(step.line)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", step.line, err)
		}
		if step.want != "" && got != step.want {
			t.Fatalf("%s: expected %q, got %q", step.line, step.want, got)
		}
	}
	if _, err := s.exec("get c extra"); !runtime.IsKind(err, runtime.AttributeNotFound) {
		t.Fatalf("expected deleted attribute to be gone, got %v", err)
	}
	if _, err := s.exec(":quit"); err != errQuit {
		t.Fatalf("expected quit, got %v", err)
	}
	if _, err := s.exec("frobnicate"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if _, err := s.exec("new q Nowhere"); !runtime.IsKind(err, runtime.AttributeNotFound) {
		t.Fatalf("expected unknown class, got %v", err)
	}
}
