package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := DefaultConfig()
	if cfg.GeminiModel != def.GeminiModel {
		t.Errorf("GeminiModel = %q, want %q", cfg.GeminiModel, def.GeminiModel)
	}
	if cfg.MaxDocumentBytes != def.MaxDocumentBytes {
		t.Errorf("MaxDocumentBytes = %d, want %d", cfg.MaxDocumentBytes, def.MaxDocumentBytes)
	}
	if cfg.WebPort != def.WebPort {
		t.Errorf("WebPort = %d, want %d", cfg.WebPort, def.WebPort)
	}
}

func TestLoad_OverlayWinsScalars(t *testing.T) {
	dir := t.TempDir()
	content := `{"gemini_model": "gemini-2.5-pro", "web_port": 9000}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("GeminiModel = %q, want overlay value", cfg.GeminiModel)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
	if cfg.LookupModel != DefaultConfig().LookupModel {
		t.Errorf("LookupModel = %q, want default kept", cfg.LookupModel)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on malformed config")
	}
}

func TestMerge_DisabledToolsDeduped(t *testing.T) {
	base := &Config{DisabledTools: []string{"email_draft", "backup_import"}}
	overlay := &Config{DisabledTools: []string{" email_draft ", "professor_lookup", ""}}

	merged := Merge(base, overlay)

	want := []string{"email_draft", "backup_import", "professor_lookup"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, tool := range want {
		if merged.DisabledTools[i] != tool {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], tool)
		}
	}
}
