package refs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "refdb.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	def := DefaultConfig()
	if cfg.Lock.RetryIntervalMS != def.Lock.RetryIntervalMS || cfg.Lock.TimeoutMS != def.Lock.TimeoutMS {
		t.Errorf("cfg = %+v, want defaults %+v", cfg.Lock, def.Lock)
	}
	if len(cfg.AdditionalRefs) != len(additionalRefNames) {
		t.Errorf("AdditionalRefs = %v", cfg.AdditionalRefs)
	}
}

func TestLoadConfigParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refdb.toml")
	content := `additional_refs = ["MERGE_HEAD"]

[lock]
retry_interval_ms = 5
timeout_ms = 50
fsync = false

[resolution]
max_symbolic_depth = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Lock.RetryIntervalMS != 5 || cfg.Lock.TimeoutMS != 50 || cfg.Lock.FSync {
		t.Errorf("lock cfg = %+v", cfg.Lock)
	}
	if cfg.Resolution.MaxSymbolicDepth != 3 {
		t.Errorf("MaxSymbolicDepth = %d, want 3", cfg.Resolution.MaxSymbolicDepth)
	}
	if len(cfg.AdditionalRefs) != 1 || cfg.AdditionalRefs[0] != "MERGE_HEAD" {
		t.Errorf("AdditionalRefs = %v", cfg.AdditionalRefs)
	}
	if cfg.retryInterval() != 5*time.Millisecond {
		t.Errorf("retryInterval() = %v", cfg.retryInterval())
	}
	if cfg.timeout() != 50*time.Millisecond {
		t.Errorf("timeout() = %v", cfg.timeout())
	}
}
