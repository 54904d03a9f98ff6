package overlay

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseJSONConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"dilation_radius": 2, "classes": {"Epithelial": {"id": 0, "color": "#FF0000"}}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := ParseJSONConfigFromPath(path)
	if err != nil {
		t.Fatal(err)
	}

	if config.DilationRadius != 2 {
		t.Errorf("Expected dilation radius 2, got %d", config.DilationRadius)
	}
	if config.IoUThreshold != DefaultIoUThreshold || config.MatchPolicy != DefaultMatchPolicy {
		t.Errorf("Defaults not applied: %+v", config)
	}
	if config.Classes[ClassEpithelial].Color != "#ff0000" {
		t.Errorf("Expected lower-cased color, got %s", config.Classes[ClassEpithelial].Color)
	}
	if config.BorderColor != BorderColor {
		t.Errorf("Expected default border color, got %s", config.BorderColor)
	}
}

func TestParseJSONConfigSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"classes": `), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseJSONConfigFromPath(path); err == nil {
		t.Error("Expected a syntax error")
	}
}
