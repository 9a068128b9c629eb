package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinSquare(t *testing.T) {
	cases, err := Builtin("square")
	if err != nil {
		t.Fatalf("builtin square: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("no cases generated")
	}
	for _, c := range cases {
		x, ok := c.Inputs["x"]
		if !ok {
			t.Fatalf("case %+v missing variable x", c)
		}
		if c.Target != x*x {
			t.Fatalf("target for x=%v is %v, want %v", x, c.Target, x*x)
		}
	}
}

func TestBuiltinUnknown(t *testing.T) {
	if _, err := Builtin("sawtooth"); err == nil {
		t.Fatal("expected error for unknown dataset")
	}
}

func TestNamesStable(t *testing.T) {
	first := Names()
	second := Names()
	if len(first) != 3 {
		t.Fatalf("got %d builtins, want 3", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("Names is not stable")
		}
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.csv")
	content := "x,y,target\n1,2,3\n4,5,9\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cases, variables, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if len(variables) != 2 || variables[0] != "x" || variables[1] != "y" {
		t.Fatalf("variables = %v", variables)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}
	if cases[1].Inputs["x"] != 4 || cases[1].Inputs["y"] != 5 || cases[1].Target != 9 {
		t.Fatalf("case 1 = %+v", cases[1])
	}
}

func TestLoadCSVErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		return path
	}

	cases := []struct {
		name    string
		content string
	}{
		{"header_only.csv", "x,target\n"},
		{"single_column.csv", "target\n1\n"},
		{"non_numeric_input.csv", "x,target\nbanana,1\n"},
		{"non_numeric_target.csv", "x,target\n1,banana\n"},
	}
	for _, tc := range cases {
		if _, _, err := LoadCSV(write(tc.name, tc.content)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	if _, _, err := LoadCSV(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
