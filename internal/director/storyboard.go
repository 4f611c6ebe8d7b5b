package director

import (
	"github.com/ivlev/prompt2video/internal/config"
)

// Storyboard describes a whole shoot in one YAML file: the scene list
// plus track-level settings. It replaces index-aligned CLI lists when
// a render needs to be reproducible or versioned.
type Storyboard struct {
	Version string             `yaml:"version"`
	Scenes  []config.SceneSpec `yaml:"scenes"`
	// Music is a path to the background track; empty means no music.
	Music       string   `yaml:"music,omitempty"`
	MusicVolume *float64 `yaml:"music_volume,omitempty"`
	QRLink      string   `yaml:"qr_link,omitempty"`
}

// CurrentVersion is written into new storyboards.
const CurrentVersion = "1.0"
