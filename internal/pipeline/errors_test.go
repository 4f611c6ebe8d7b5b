package pipeline

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorCategories(t *testing.T) {
	cfg := Configf("fps", "must be positive, got %d", -1)
	res := Resourcef("music file", fs.ErrNotExist)
	inv := Invariantf(3, "frame out of order")

	if !errors.Is(cfg, ErrConfig) || errors.Is(cfg, ErrResource) || errors.Is(cfg, ErrInvariant) {
		t.Errorf("Configf miscategorized: %v", cfg)
	}
	if !errors.Is(res, ErrResource) || errors.Is(res, ErrConfig) {
		t.Errorf("Resourcef miscategorized: %v", res)
	}
	if !errors.Is(inv, ErrInvariant) || errors.Is(inv, ErrConfig) {
		t.Errorf("Invariantf miscategorized: %v", inv)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := Configf("music_volume", "must be in [0,1], got %g", 1.5)
	if !strings.Contains(err.Error(), "music_volume") {
		t.Errorf("Field missing from message: %v", err)
	}

	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "music_volume" {
		t.Errorf("errors.As failed for ConfigError: %v", err)
	}
}

func TestResourceErrorKeepsCause(t *testing.T) {
	cause := fs.ErrPermission
	err := Resourcef("narration engine", cause)

	var re *ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("errors.As failed for ResourceError: %v", err)
	}
	if re.Cause() != cause {
		t.Errorf("Cause lost: got %v, want %v", re.Cause(), cause)
	}
	if !strings.Contains(err.Error(), "narration engine") {
		t.Errorf("Resource name missing from message: %v", err)
	}
}

func TestInvariantErrorContext(t *testing.T) {
	err := Invariantf(7, "canvas %dx%d does not match target", 100, 100)

	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("errors.As failed for InvariantError: %v", err)
	}
	if ie.Scene != 7 {
		t.Errorf("Scene index lost: got %d", ie.Scene)
	}
	if !strings.Contains(err.Error(), "scene 7") {
		t.Errorf("Scene missing from message: %v", err)
	}
}
