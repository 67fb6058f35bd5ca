package config

import (
	"testing"
	"time"

	kit "brazebulk/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	braze := root.Prefix("BRAZE_")
	if got := braze.key("API_KEY"); got != "BRAZE_API_KEY" {
		t.Fatalf("key() = %q, want %q", got, "BRAZE_API_KEY")
	}
	// nested prefix
	imp := root.Prefix("CORE_").Prefix("IMPORT_")
	if got := imp.key("WORKERS"); got != "CORE_IMPORT_WORKERS" {
		t.Fatalf("nested key() = %q, want %q", got, "CORE_IMPORT_WORKERS")
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  brazebulk ")
	got := c.MustString("NAME")
	if got != "brazebulk" {
		t.Fatalf("MustString = %q, want %q", got, "brazebulk")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_BASE", "https://rest.iad-01.braze.com")
	u := c.MustURL("BASE")
	if !u.IsAbs() {
		t.Fatalf("MustURL returned non-absolute URL")
	}
	t.Setenv("U_BAD1", "://bad")
	kit.MustPanic(t, func() { _ = c.MustURL("BAD1") })
	t.Setenv("U_BAD2", "/relative")
	kit.MustPanic(t, func() { _ = c.MustURL("BAD2") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "x")
	t.Setenv("REQ_B", "y")
	// should not panic
	c.Require("A", "B")

	// missing C should panic
	kit.MustPanic(t, func() { c.Require("A", "C") })
}

func TestRequireWhitespaceIsMissing(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_WS", "   ")
	kit.MustPanic(t, func() { c.Require("WS") })
}

// May* fallbacks

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q, want %q", got, "def")
	}
	t.Setenv("S_NAME", " brazebulk ")
	if got := c.MayString("NAME", "x"); got != "brazebulk" {
		t.Fatalf("MayString value = %q, want %q", got, "brazebulk")
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 9); got != 9 {
		t.Fatalf("MayInt default = %d, want %d", got, 9)
	}
	t.Setenv("I_OK", " 7 ")
	if got := c.MayInt("OK", 0); got != 7 {
		t.Fatalf("MayInt ok = %d, want %d", got, 7)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 3); got != 3 {
		t.Fatalf("MayInt bad -> default = %d, want %d", got, 3)
	}
}

func TestMayInt64(t *testing.T) {
	c := New().Prefix("I64_")
	if got := c.MayInt64("MISSING", 9); got != 9 {
		t.Fatalf("MayInt64 default = %d, want %d", got, 9)
	}
	t.Setenv("I64_OK", "1048576")
	if got := c.MayInt64("OK", 0); got != 1048576 {
		t.Fatalf("MayInt64 ok = %d, want %d", got, 1048576)
	}
	t.Setenv("I64_BAD", "x")
	if got := c.MayInt64("BAD", 3); got != 3 {
		t.Fatalf("MayInt64 bad -> default = %d, want %d", got, 3)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if got := c.MayBool("MISSING", true); got != true {
		t.Fatalf("MayBool default true expected")
	}
	t.Setenv("B_T", "true")
	if got := c.MayBool("T", false); got != true {
		t.Fatalf("MayBool true expected")
	}
	t.Setenv("B_BAD", "nope")
	if got := c.MayBool("BAD", false); got != false {
		t.Fatalf("MayBool bad -> default false expected")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("DUR_")
	if got := c.MayDuration("MISS", 5*time.Second); got != 5*time.Second {
		t.Fatalf("MayDuration default expected")
	}
	t.Setenv("DUR_OK", "150ms")
	if got := c.MayDuration("OK", time.Second); got != 150*time.Millisecond {
		t.Fatalf("MayDuration ok = %v, want %v", got, 150*time.Millisecond)
	}
	t.Setenv("DUR_BAD", "nope")
	if got := c.MayDuration("BAD", time.Minute); got != time.Minute {
		t.Fatalf("MayDuration bad -> default expected")
	}
}
