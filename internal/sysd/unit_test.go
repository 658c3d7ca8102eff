package sysd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

/**
 * Test unit rendering produces sections in insertion order
 */
func TestUnitRenderSectionOrder(t *testing.T) {
	unit := NewUnit()

	unitSec := NewSection("Unit")
	unitSec.Set("Description", "demo")
	serviceSec := NewSection("Service")
	serviceSec.Set("ExecStart", "/usr/bin/true")
	installSec := NewSection("Install")
	installSec.Set("WantedBy", "multi-user.target")

	unit.AddSection(unitSec)
	unit.AddSection(serviceSec)
	unit.AddSection(installSec)

	rendered := unit.Render()
	expected := "[Unit]\nDescription=demo\n\n[Service]\nExecStart=/usr/bin/true\n\n[Install]\nWantedBy=multi-user.target\n"
	if rendered != expected {
		t.Errorf("rendered unit mismatch:\ngot:\n%s\nwant:\n%s", rendered, expected)
	}
}

/**
 * Test repeated directives keep their insertion order
 */
func TestSectionRepeatedDirectiveOrder(t *testing.T) {
	sec := NewSection("Service")
	pairs := []string{"B=2", "A=1", "C=3", "A=4"}
	for _, p := range pairs {
		if err := sec.Add("Environment", p); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	unit := NewUnit()
	unit.AddSection(sec)
	rendered := unit.Render()

	lines := strings.Split(strings.TrimSpace(rendered), "\n")[1:]
	if len(lines) != len(pairs) {
		t.Fatalf("expected %d Environment lines, got %d", len(pairs), len(lines))
	}
	for i, p := range pairs {
		if lines[i] != "Environment="+p {
			t.Errorf("line %d: got %q, want %q", i, lines[i], "Environment="+p)
		}
	}
}

/**
 * Test malformed directive keys and values are rejected at build time
 */
func TestSectionRejectsMalformedEntries(t *testing.T) {
	sec := NewSection("Service")

	if err := sec.Set("", "value"); err == nil {
		t.Error("empty key should be rejected")
	}
	if err := sec.Set("Key=Extra", "value"); err == nil {
		t.Error("key containing '=' should be rejected")
	}
	if err := sec.Set("Key\nOther", "value"); err == nil {
		t.Error("key containing newline should be rejected")
	}
	if err := sec.Set("Key", "line1\nline2"); err == nil {
		t.Error("multi-line value should be rejected")
	}
	// A pair missing '=' is still a legal verbatim value; shape
	// validation of Environment pairs belongs to the supervisor.
	if err := sec.Add("Environment", "NOEQUALS"); err != nil {
		t.Errorf("verbatim pair without '=' should pass through: %v", err)
	}
}

/**
 * Test Set replaces earlier values while Add appends
 */
func TestSectionSetReplacesAddAppends(t *testing.T) {
	sec := NewSection("Service")
	sec.Set("Restart", "always")
	sec.Set("Restart", "on-failure")

	values, ok := sec.Get("Restart")
	if !ok || len(values) != 1 || values[0] != "on-failure" {
		t.Errorf("Set should replace, got %v", values)
	}

	sec.Add("Environment", "A=1")
	sec.Add("Environment", "B=2")
	values, _ = sec.Get("Environment")
	if len(values) != 2 {
		t.Errorf("Add should append, got %v", values)
	}
}

/**
 * Test WriteFile lands the full rendered content at the destination
 * @description
 * - Also checks no temporary file is left behind after the rename
 */
func TestUnitWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.service")

	sec := NewSection("Unit")
	sec.Set("Description", "demo")
	unit := NewUnit()
	unit.AddSection(sec)

	if err := unit.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != unit.Render() {
		t.Errorf("file content mismatch: %q", string(data))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the unit file in %s, found %d entries", dir, len(entries))
	}
}
