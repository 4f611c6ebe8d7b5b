package tts

import (
	"context"
	"fmt"
	"os/exec"
	"sync/atomic"

	"github.com/ivlev/prompt2video/internal/audio"
	"github.com/ivlev/prompt2video/internal/pipeline"
	"github.com/ivlev/prompt2video/internal/system"
)

// Synthesizer — внешний провайдер озвучки. Пайплайн потребляет его
// как черный ящик: текст на входе, готовый сегмент на выходе.
// Недоступный движок — ResourceError; реакцию (пропустить озвучку
// сцены или оборвать рендер) выбирает вызывающая сторона.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*audio.Segment, error)
}

// EspeakSynthesizer озвучивает текст офлайн через espeak-ng и
// приводит результат к частоте пайплайна через ffmpeg — внешние
// процессы, как и энкодер.
type EspeakSynthesizer struct {
	Binary     string
	SampleRate int
	// WPM — скорость речи, слов в минуту.
	WPM int

	rc  *pipeline.Context
	seq atomic.Int64
}

func NewEspeakSynthesizer(rc *pipeline.Context, sampleRate int) *EspeakSynthesizer {
	return &EspeakSynthesizer{
		Binary:     "espeak-ng",
		SampleRate: sampleRate,
		WPM:        150,
		rc:         rc,
	}
}

func (s *EspeakSynthesizer) Synthesize(ctx context.Context, text string) (*audio.Segment, error) {
	n := s.seq.Add(1)
	rawPath := s.rc.TempPath(fmt.Sprintf("voice_raw_%d.wav", n))
	normPath := s.rc.TempPath(fmt.Sprintf("voice_%d.wav", n))

	cmd := exec.CommandContext(ctx, s.Binary,
		"-s", fmt.Sprintf("%d", s.WPM),
		"-w", rawPath,
		text,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, pipeline.Resourcef("narration engine",
			fmt.Errorf("%s: %v, output: %s", s.Binary, err, string(out)))
	}

	if err := system.TranscodeToWAV(ctx, rawPath, normPath, s.SampleRate, 1); err != nil {
		return nil, pipeline.Resourcef("narration engine", err)
	}

	return audio.ReadWAV(normPath)
}
