package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Mixer.TailSeconds != 5 || cfg.Mixer.FadeSeconds != 2 {
		t.Errorf("mixer defaults = %+v", cfg.Mixer)
	}
	if cfg.LLM.DefaultModel != "gpt-4o-mini" {
		t.Errorf("DefaultModel = %q", cfg.LLM.DefaultModel)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.RateLimitRPS != 100 || cfg.Server.RateLimitBurst != 200 {
		t.Errorf("rate limit = %v/%d", cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}
	if cfg.Addr() != "0.0.0.0:3000" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("MIX_TAIL_SECONDS", "3.5")
	t.Setenv("MUSIC_BASES", " http://a/music , ,http://b ")
	t.Setenv("MINIO_USE_SSL", "TRUE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Mixer.TailSeconds != 3.5 {
		t.Errorf("TailSeconds = %v", cfg.Mixer.TailSeconds)
	}
	if want := []string{"http://a/music", "http://b"}; !reflect.DeepEqual(cfg.Client.MusicBases, want) {
		t.Errorf("MusicBases = %v, want %v", cfg.Client.MusicBases, want)
	}
	if !cfg.Storage.MinioUseSSL {
		t.Error("MinioUseSSL should be true")
	}
}

func TestLoadInvalidNumber(t *testing.T) {
	t.Setenv("PORT", "eighty")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}

	t.Setenv("PORT", "")
	t.Setenv("MIX_FADE_SECONDS", "slow")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric MIX_FADE_SECONDS")
	}

	t.Setenv("MIX_FADE_SECONDS", "")
	t.Setenv("RATE_LIMIT_BURST", "lots")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric RATE_LIMIT_BURST")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{TTS: TTSConfig{Backend: "local"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing vars error")
	}

	cfg.Auth.SessionSecret = "s3cret"
	cfg.TTS.LocalModel = "voice.onnx"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
