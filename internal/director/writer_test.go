package director

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/prompt2video/internal/config"
)

func TestStoryboardRoundTrip(t *testing.T) {
	volume := 0.25
	sb := &Storyboard{
		Version: CurrentVersion,
		Scenes: []config.SceneSpec{
			{
				Prompt:    "a quiet mountain lake",
				Duration:  6,
				Camera:    config.CameraZoom,
				Effect:    config.EffectVignette,
				Caption:   "Episode 1",
				Narration: "Our story begins here.",
			},
			{
				Prompt:   "the same lake at night",
				Duration: 4,
				Camera:   config.CameraPan,
				Effect:   config.EffectGradient,
				Backdrop: "pdf:slides.pdf#2",
			},
		},
		Music:       "input/audio/theme.mp3",
		MusicVolume: &volume,
		QRLink:      "https://example.com",
	}

	path := filepath.Join(t.TempDir(), "storyboard.yaml")
	if err := WriteStoryboard(sb, path); err != nil {
		t.Fatalf("WriteStoryboard failed: %v", err)
	}

	got, err := ReadStoryboard(path)
	if err != nil {
		t.Fatalf("ReadStoryboard failed: %v", err)
	}

	if got.Version != sb.Version {
		t.Errorf("Version: got %q, want %q", got.Version, sb.Version)
	}
	if len(got.Scenes) != 2 {
		t.Fatalf("Scenes: got %d, want 2", len(got.Scenes))
	}
	if got.Scenes[0] != sb.Scenes[0] || got.Scenes[1] != sb.Scenes[1] {
		t.Errorf("Scenes changed in round trip:\n got %+v\nwant %+v", got.Scenes, sb.Scenes)
	}
	if got.Music != sb.Music || got.QRLink != sb.QRLink {
		t.Errorf("Track settings changed: got %q/%q", got.Music, got.QRLink)
	}
	if got.MusicVolume == nil || *got.MusicVolume != volume {
		t.Errorf("MusicVolume: got %v, want %v", got.MusicVolume, volume)
	}
}

func TestReadStoryboardOmittedVolume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sb.yaml")
	data := []byte("version: \"1.0\"\nscenes:\n  - prompt: hello\n    duration: 5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadStoryboard(path)
	if err != nil {
		t.Fatalf("ReadStoryboard failed: %v", err)
	}
	if got.MusicVolume != nil {
		t.Errorf("Omitted music_volume must stay nil, got %v", *got.MusicVolume)
	}
	if got.Scenes[0].Prompt != "hello" || got.Scenes[0].Duration != 5 {
		t.Errorf("Scene parsed wrong: %+v", got.Scenes[0])
	}
}

func TestReadStoryboardMissingFile(t *testing.T) {
	if _, err := ReadStoryboard(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing storyboard file")
	}
}
