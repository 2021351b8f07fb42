package plugin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nyash.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[libraries.counter]
plugin_path = "./libcounter.so"
provides = ["CounterBox"]

[types.CounterBox]
library = "counter"
type_id = 7

[types.CounterBox.methods.inc]
method_id = 1
arity = 0
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	lib, ok := cfg.Libraries["counter"]
	if !ok || lib.PluginPath != "./libcounter.so" {
		t.Fatalf("libraries = %+v", cfg.Libraries)
	}
	bt, ok := cfg.Types["CounterBox"]
	if !ok || bt.TypeID != 7 || bt.Methods["inc"].MethodID != 1 {
		t.Fatalf("types = %+v", cfg.Types)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "type references unknown library",
			body: "[types.CounterBox]\nlibrary = \"ghost\"\ntype_id = 1\n",
			want: "unknown library",
		},
		{
			name: "library missing plugin_path",
			body: "[libraries.counter]\nprovides = []\n",
			want: "missing plugin_path",
		},
		{
			name: "library provides undeclared type",
			body: "[libraries.counter]\nplugin_path = \"./x.so\"\nprovides = [\"NopeBox\"]\n",
			want: "undeclared type",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, c.body))
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error = %v, want substring %q", err, c.want)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestActivateSkipsBrokenLibraries(t *testing.T) {
	cfg := &Config{
		Libraries: map[string]Library{
			"good": {PluginPath: "./good.so"},
			"bad":  {PluginPath: "./bad.so"},
		},
	}
	f := NewFactory()
	err := f.Activate(cfg, func(lib Library) (Invoker, error) {
		if lib.PluginPath == "./bad.so" {
			return nil, os.ErrNotExist
		}
		return newLoopback(), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if f.Attached() != 1 {
		t.Fatalf("attached = %d, want 1 (broken library skipped)", f.Attached())
	}
}
