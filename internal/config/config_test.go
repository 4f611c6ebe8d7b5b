package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/prompt2video/internal/pipeline"
)

func validConfig() *Config {
	return &Config{
		Scenes: []SceneSpec{
			{Prompt: "city", Duration: 4, Camera: CameraZoom, Effect: EffectGradient},
			{Prompt: "sea", Duration: 5, Camera: CameraPan, Effect: EffectVignette},
		},
		OutputVideo:  "output/test.mp4",
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		FPS:          DefaultFPS,
		Workers:      2,
		FadeDuration: DefaultFadeDuration,
		MusicVolume:  DefaultMusicVolume,
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateFailFast(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no scenes", func(c *Config) { c.Scenes = nil }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"volume above 1", func(c *Config) { c.MusicVolume = 1.2 }},
		{"negative fade", func(c *Config) { c.FadeDuration = -0.1 }},
		{"zero scene duration", func(c *Config) { c.Scenes[0].Duration = 0 }},
		{"unknown camera", func(c *Config) { c.Scenes[1].Camera = "spin" }},
		{"unknown effect", func(c *Config) { c.Scenes[1].Effect = "sepia" }},
		{"fade over half scene", func(c *Config) { c.FadeDuration = 2.5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, pipeline.ErrConfig), "want configuration error, got %v", err)
		})
	}
}

func TestValidateSingleSceneIgnoresFadeLimit(t *testing.T) {
	// With one scene there is no transition, so the half-duration rule
	// does not apply.
	cfg := validConfig()
	cfg.Scenes = cfg.Scenes[:1]
	cfg.FadeDuration = 3
	assert.NoError(t, cfg.Validate())
}

func TestBuildScenesDefaults(t *testing.T) {
	scenes, err := BuildScenes([]string{"a", "b"}, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, scenes, 2)

	assert.Equal(t, 7.0, scenes[0].Duration)
	assert.Equal(t, CameraZoom, scenes[0].Camera)
	assert.Equal(t, EffectGradient, scenes[0].Effect)
	assert.Empty(t, scenes[0].Caption)
}

func TestBuildScenesAligned(t *testing.T) {
	scenes, err := BuildScenes(
		[]string{"a", "b"},
		[]float64{3, 6},
		[]string{"pan", "static"},
		[]string{"blur", "none"},
		[]string{"Cap A", ""},
		[]string{"", "voice b"},
	)
	require.NoError(t, err)

	assert.Equal(t, 3.0, scenes[0].Duration)
	assert.Equal(t, CameraPan, scenes[0].Camera)
	assert.Equal(t, EffectBlur, scenes[0].Effect)
	assert.Equal(t, "Cap A", scenes[0].Caption)
	assert.Equal(t, CameraStatic, scenes[1].Camera)
	assert.Equal(t, "voice b", scenes[1].Narration)
}

func TestBuildScenesLengthMismatch(t *testing.T) {
	_, err := BuildScenes([]string{"a", "b"}, []float64{3}, nil, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrConfig))

	_, err = BuildScenes([]string{"a"}, nil, []string{"zoom", "pan"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestBuildScenesEmpty(t *testing.T) {
	_, err := BuildScenes(nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestBuildScenesRejectsUnknownEnums(t *testing.T) {
	_, err := BuildScenes([]string{"a"}, nil, []string{"orbit"}, nil, nil, nil)
	assert.Error(t, err)

	_, err = BuildScenes([]string{"a"}, nil, nil, []string{"posterize"}, nil, nil)
	assert.Error(t, err)
}

func TestParseCameraEffect(t *testing.T) {
	got, err := ParseCameraEffect("")
	require.NoError(t, err)
	assert.Equal(t, CameraStatic, got, "empty value falls back to static")

	_, err = ParseCameraEffect("dolly")
	assert.Error(t, err)
}
