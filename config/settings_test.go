package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("missing explicit file should fail, got %+v", s)
	}

	t.Chdir(t.TempDir())
	s, err = LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Engine.K != 8 || s.Engine.Alpha != 0.75 {
		t.Errorf("engine = %+v", s.Engine)
	}
	if s.Engine.CooldownWindow != 72*time.Hour {
		t.Errorf("cooldown = %v", s.Engine.CooldownWindow)
	}
	if s.Store.Driver != "memory" {
		t.Errorf("driver = %q", s.Store.Driver)
	}
	if s.Lexicon.IsZero() {
		t.Error("lexicon should default")
	}
	loc, err := s.Location()
	if err != nil || loc.String() != "Asia/Shanghai" {
		t.Errorf("location = %v, %v", loc, err)
	}
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canteen.yaml")
	yml := `
engine:
  k: 5
  alpha: 0.5
store:
  driver: sqlite
  sqlite_path: /tmp/canteen.db
rules:
  - dish.price > 30.0
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CANTEEN_ENGINE_K", "3")
	t.Setenv("CANTEEN_BLACKLIST", "d1, d2,,d3")
	t.Setenv("CANTEEN_ENGINE_COOLDOWN_WINDOW", "24h")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Engine.K != 3 {
		t.Errorf("k = %d, want env override 3", s.Engine.K)
	}
	if s.Engine.Alpha != 0.5 {
		t.Errorf("alpha = %v, want 0.5 from file", s.Engine.Alpha)
	}
	if s.Engine.CooldownWindow != 24*time.Hour {
		t.Errorf("cooldown = %v", s.Engine.CooldownWindow)
	}
	if s.Store.Driver != "sqlite" || s.Store.SQLitePath != "/tmp/canteen.db" {
		t.Errorf("store = %+v", s.Store)
	}
	if len(s.Rules) != 1 || s.Rules[0] != "dish.price > 30.0" {
		t.Errorf("rules = %v", s.Rules)
	}
	want := []string{"d1", "d2", "d3"}
	if len(s.Blacklist) != len(want) {
		t.Fatalf("blacklist = %v, want %v", s.Blacklist, want)
	}
	for i := range want {
		if s.Blacklist[i] != want[i] {
			t.Errorf("blacklist[%d] = %q, want %q", i, s.Blacklist[i], want[i])
		}
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"alpha out of range", map[string]string{"CANTEEN_ENGINE_ALPHA": "1.5"}},
		{"k too large", map[string]string{"CANTEEN_ENGINE_K": "51"}},
		{"unknown driver", map[string]string{"CANTEEN_STORE_DRIVER": "cassandra"}},
		{"bad timezone", map[string]string{"CANTEEN_ENGINE_TIMEZONE": "Mars/Olympus"}},
		{"mongo without uri", map[string]string{"CANTEEN_STORE_DRIVER": "mongo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadSettings(""); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"CANTEEN_ENGINE_PROFILE_DECAY_DAYS": "engine.profile_decay_days",
		"CANTEEN_STORE_REDIS_ADDR":          "store.redis_addr",
		"CANTEEN_LOG_LEVEL":                 "log.level",
		"CANTEEN_BLACKLIST":                 "blacklist",
		"CANTEEN_PIPELINE_FILE":             "pipeline_file",
		"CANTEEN_CONFIG":                    "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
