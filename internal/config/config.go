package config

import (
	"github.com/ivlev/prompt2video/internal/pipeline"
)

// CameraEffect выбирает движение камеры внутри сцены.
type CameraEffect string

const (
	CameraZoom   CameraEffect = "zoom"
	CameraPan    CameraEffect = "pan"
	CameraStatic CameraEffect = "static"
)

// VisualEffect выбирает пост-фильтр кадра.
type VisualEffect string

const (
	EffectGradient VisualEffect = "gradient"
	EffectVignette VisualEffect = "vignette"
	EffectBlur     VisualEffect = "blur"
	EffectNone     VisualEffect = "none"
)

// ParseCameraEffect rejects unknown values instead of silently
// falling back, so a typo in a storyboard fails before rendering.
func ParseCameraEffect(s string) (CameraEffect, error) {
	switch CameraEffect(s) {
	case CameraZoom, CameraPan, CameraStatic:
		return CameraEffect(s), nil
	case "":
		return CameraStatic, nil
	default:
		return "", pipeline.Configf("camera_effect", "unknown value %q (want zoom, pan or static)", s)
	}
}

// ParseVisualEffect rejects unknown filter names.
func ParseVisualEffect(s string) (VisualEffect, error) {
	switch VisualEffect(s) {
	case EffectGradient, EffectVignette, EffectBlur, EffectNone:
		return VisualEffect(s), nil
	case "":
		return EffectNone, nil
	default:
		return "", pipeline.Configf("visual_effect", "unknown value %q (want gradient, vignette, blur or none)", s)
	}
}

// SceneSpec описывает одну сцену целиком. Один record на сцену вместо
// параллельных списков: выравнивание по индексам проверяется один раз
// на границе (BuildScenes), дальше ошибиться негде.
type SceneSpec struct {
	Prompt    string       `yaml:"prompt"`
	Duration  float64      `yaml:"duration"`
	Camera    CameraEffect `yaml:"camera"`
	Effect    VisualEffect `yaml:"effect"`
	Caption   string       `yaml:"caption,omitempty"`
	Narration string       `yaml:"narration,omitempty"`
	// Backdrop: путь к изображению или "pdf:file.pdf#3" вместо
	// процедурного фона. Пустая строка — фон из палитры.
	Backdrop string `yaml:"backdrop,omitempty"`
}

type Config struct {
	Scenes      []SceneSpec
	OutputVideo string
	Width       int
	Height      int
	FPS         int
	Workers     int
	// FadeDuration — длительность кроссфейда между сценами (сек).
	FadeDuration float64
	MusicPath    string
	MusicVolume  float64
	// NarrationAbort: true — падать при ошибке синтеза речи,
	// false — пропустить озвучку сцены и продолжить (по умолчанию).
	NarrationAbort bool
	QRLink         string
	VideoEncoder   string
	Quality        int
	ShowStats      bool
	BuildVersion   string
}

// Параметры выходного видео по умолчанию.
const (
	DefaultWidth        = 1920
	DefaultHeight       = 1080
	DefaultFPS          = 24
	DefaultFadeDuration = 0.5
	DefaultMusicVolume  = 0.3
)

// Validate выполняет все fail-fast проверки до начала рендеринга.
// После успешного Validate пайплайн не должен встречать ошибок
// конфигурации.
func (c *Config) Validate() error {
	if len(c.Scenes) == 0 {
		return pipeline.Configf("scenes", "at least one scene is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return pipeline.Configf("resolution", "invalid %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return pipeline.Configf("fps", "must be positive, got %d", c.FPS)
	}
	if c.MusicVolume < 0 || c.MusicVolume > 1 {
		return pipeline.Configf("music_volume", "must be in [0,1], got %g", c.MusicVolume)
	}
	if c.FadeDuration < 0 {
		return pipeline.Configf("fade", "must be non-negative, got %g", c.FadeDuration)
	}
	for i, s := range c.Scenes {
		if s.Duration <= 0 {
			return pipeline.Configf("scene_duration", "scene %d: must be positive, got %g", i, s.Duration)
		}
		if _, err := ParseCameraEffect(string(s.Camera)); err != nil {
			return pipeline.Configf("camera_effect", "scene %d: unknown value %q", i, s.Camera)
		}
		if _, err := ParseVisualEffect(string(s.Effect)); err != nil {
			return pipeline.Configf("visual_effect", "scene %d: unknown value %q", i, s.Effect)
		}
		// Окно перехода не может превышать половину сцены: иначе
		// соседние окна наложились бы внутри одной сцены.
		if c.FadeDuration > 0 && len(c.Scenes) > 1 && c.FadeDuration > s.Duration/2 {
			return pipeline.Configf("fade", "scene %d: transition %.2fs exceeds half of scene duration %.2fs", i, c.FadeDuration, s.Duration)
		}
	}
	return nil
}

// BuildScenes собирает []SceneSpec из параллельных списков CLI.
// Любое несовпадение длин — ошибка конфигурации до начала работы.
func BuildScenes(prompts []string, durations []float64, cameras, effects, captions, narrations []string) ([]SceneSpec, error) {
	n := len(prompts)
	if n == 0 {
		return nil, pipeline.Configf("prompts", "empty prompt list")
	}
	check := func(name string, l int) error {
		if l != 0 && l != n {
			return pipeline.Configf(name, "length %d does not match %d prompts", l, n)
		}
		return nil
	}
	if err := check("scene_durations", len(durations)); err != nil {
		return nil, err
	}
	if err := check("camera_effects", len(cameras)); err != nil {
		return nil, err
	}
	if err := check("visual_effects", len(effects)); err != nil {
		return nil, err
	}
	if err := check("text_overlays", len(captions)); err != nil {
		return nil, err
	}
	if err := check("voice_over_texts", len(narrations)); err != nil {
		return nil, err
	}

	scenes := make([]SceneSpec, n)
	for i := range scenes {
		scenes[i].Prompt = prompts[i]
		scenes[i].Duration = 7.0
		if len(durations) > 0 {
			scenes[i].Duration = durations[i]
		}
		// Дефолты сцены: zoom и gradient.
		scenes[i].Camera = CameraZoom
		scenes[i].Effect = EffectGradient
		if len(cameras) > 0 {
			cam, err := ParseCameraEffect(cameras[i])
			if err != nil {
				return nil, err
			}
			scenes[i].Camera = cam
		}
		if len(effects) > 0 {
			eff, err := ParseVisualEffect(effects[i])
			if err != nil {
				return nil, err
			}
			scenes[i].Effect = eff
		}
		if len(captions) > 0 {
			scenes[i].Caption = captions[i]
		}
		if len(narrations) > 0 {
			scenes[i].Narration = narrations[i]
		}
	}
	return scenes, nil
}
