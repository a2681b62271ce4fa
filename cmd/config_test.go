package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigMerge(t *testing.T) {
	yes, no := true, false
	file := Config{Store: StoreSQLite, User: "file-user", AlphaVantageKey: "file-key", Mock: &yes}

	tests := []struct {
		name  string
		file  Config
		env   map[string]string
		flags Config
		check func(t *testing.T, c Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, c Config) {
				if c.Store != StoreFile || c.User != DefaultUser || c.DataDir == "" || c.Mock != nil {
					t.Errorf("defaults = %+v", c)
				}
			},
		},
		{
			name: "file",
			file: file,
			check: func(t *testing.T, c Config) {
				if c.Store != StoreSQLite || c.User != "file-user" || c.AlphaVantageKey != "file-key" || !*c.Mock {
					t.Errorf("file config = %+v", c)
				}
			},
		},
		{
			name: "environment over file",
			file: file,
			env: map[string]string{
				"ALPHAVANTAGE_API_KEY":       "env-key",
				"VITE_ALPHA_VANTAGE_API_KEY": "vite-key",
				"FOLIO_USER":                 "env-user",
				"VITE_ENABLE_MOCK_DATA":      "false",
			},
			check: func(t *testing.T, c Config) {
				if c.AlphaVantageKey != "env-key" || c.User != "env-user" || *c.Mock {
					t.Errorf("env config = %+v", c)
				}
			},
		},
		{
			name:  "flags over environment",
			file:  file,
			env:   map[string]string{"FOLIO_USER": "env-user", "FOLIO_MOCK_DATA": "false"},
			flags: Config{User: "flag-user", Mock: &yes, Strict: true},
			check: func(t *testing.T, c Config) {
				if c.User != "flag-user" || !*c.Mock || !c.Strict {
					t.Errorf("flag config = %+v", c)
				}
			},
		},
		{
			name:  "explicit false flag",
			file:  file,
			flags: Config{Mock: &no},
			check: func(t *testing.T, c Config) {
				if *c.Mock {
					t.Errorf("mock = true, want the flag value false")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.file.merge(mapEnv(tt.env), tt.flags)
			if err != nil {
				t.Fatalf("merge() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestConfigMerge_Errors(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		flags Config
	}{
		{"unknown store", nil, Config{Store: "postgres"}},
		{"firestore without project", nil, Config{Store: StoreFirestore}},
		{"invalid mock value", map[string]string{"FOLIO_MOCK_DATA": "maybe"}, Config{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (Config{}).merge(mapEnv(tt.env), tt.flags); err == nil {
				t.Error("merge() succeeded, want an error")
			}
		})
	}

	c, err := (Config{}).merge(mapEnv(map[string]string{"FIREBASE_PROJECT_ID": "demo"}), Config{Store: StoreFirestore})
	if err != nil || c.FirebaseProject != "demo" {
		t.Errorf("merge() = %+v, %v, want the project from the environment", c, err)
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "store: sqlite\nuser: alice\nalphavantage_key: abc\nmock: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if c.Store != StoreSQLite || c.User != "alice" || c.AlphaVantageKey != "abc" || c.Mock == nil || !*c.Mock {
		t.Errorf("ReadConfig() = %+v", c)
	}

	if c, err := ReadConfig(filepath.Join(dir, "missing.yaml")); err != nil || c.Store != "" {
		t.Errorf("ReadConfig(missing) = %+v, %v, want an empty config", c, err)
	}

	if err := os.WriteFile(path, []byte("store: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfig(path); err == nil {
		t.Error("ReadConfig(invalid yaml) succeeded")
	}
}
