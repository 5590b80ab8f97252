package registrationapi

import "testing"

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("FOUNDATHON_API_TRUST_PROXY", "")
	t.Setenv("FOUNDATHON_API_MAX_BODY_BYTES", "")

	cfg := LoadConfigFromEnv()
	if cfg.TrustProxy {
		t.Fatalf("TrustProxy: expected false")
	}
	if cfg.MaxBodyBytes != 64<<10 {
		t.Fatalf("MaxBodyBytes: got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("FOUNDATHON_API_TRUST_PROXY", "true")
	t.Setenv("FOUNDATHON_API_MAX_BODY_BYTES", "2048")

	cfg := LoadConfigFromEnv()
	if !cfg.TrustProxy {
		t.Fatalf("TrustProxy: expected true")
	}
	if cfg.MaxBodyBytes != 2048 {
		t.Fatalf("MaxBodyBytes: got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("FOUNDATHON_API_TRUST_PROXY", "maybe")
	t.Setenv("FOUNDATHON_API_MAX_BODY_BYTES", "-5")

	cfg := LoadConfigFromEnv()
	if cfg.TrustProxy {
		t.Fatalf("TrustProxy: expected default false")
	}
	if cfg.MaxBodyBytes != 64<<10 {
		t.Fatalf("MaxBodyBytes: got %d", cfg.MaxBodyBytes)
	}
}
