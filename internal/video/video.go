package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"

	"os/exec"

	"github.com/ivlev/prompt2video/internal/pipeline"
	"github.com/ivlev/prompt2video/internal/system"
)

// Frame — холст с абсолютной меткой таймлайна. Кадр потребляется
// энкодером ровно один раз и после записи возвращается в пул.
type Frame struct {
	Index     int
	Timestamp float64
	Image     *image.RGBA
}

type EncodeOptions struct {
	Width, Height int
	FPS           int
	// AudioPath — готовый WAV-трек; пустая строка — видео без звука.
	AudioPath string
	Encoder   string
	Quality   int
	Output    string
}

// Encoder — внешний sink кадров. Кадры приходят строго в порядке
// таймлайна; ошибки кодирования отдаются вызывающему как есть, без
// повторных попыток на этом уровне.
type Encoder interface {
	Encode(ctx context.Context, frames <-chan *Frame, opts EncodeOptions) error
}

// FFmpegEncoder кормит ffmpeg сырыми RGBA-кадрами через stdin и
// подмешивает аудио-дорожку вторым входом.
type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Encode(ctx context.Context, frames <-chan *Frame, opts EncodeOptions) error {
	args := e.buildFFmpegArgs(opts)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return pipeline.Resourcef("encoder", fmt.Errorf("stdin pipe error: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return pipeline.Resourcef("encoder", fmt.Errorf("ffmpeg start error: %w", err))
	}

	expect := 0
	var writeErr error
	for f := range frames {
		if writeErr != nil {
			// Дочитываем канал, чтобы не заблокировать продюсера.
			system.PutImage(f.Image)
			continue
		}
		if f.Index != expect {
			writeErr = pipeline.Invariantf(-1, "frame %d reached encoder out of order (want %d)", f.Index, expect)
			system.PutImage(f.Image)
			continue
		}
		expect++
		_, werr := stdin.Write(f.Image.Pix)
		system.PutImage(f.Image)
		if werr != nil {
			writeErr = werr
		}
	}
	stdin.Close()

	waitErr := cmd.Wait()
	if writeErr != nil || waitErr != nil {
		// Оборванный вывод не оставляем: либо файла нет, либо он целый.
		os.Remove(opts.Output)
		if waitErr != nil {
			return pipeline.Resourcef("encoder", fmt.Errorf("ffmpeg error: %v, output: %s", waitErr, out.String()))
		}
		return writeErr
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(opts EncodeOptions) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
	}

	if opts.AudioPath != "" {
		args = append(args, "-i", opts.AudioPath)
	}

	args = append(args,
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", opts.Encoder,
	)

	// Качество в зависимости от энкодера
	switch opts.Encoder {
	case "h264_videotoolbox":
		bitrate := opts.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", opts.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", opts.Quality), "-preset", "medium")
	}

	if opts.AudioPath != "" {
		args = append(args, "-c:a", "aac", "-shortest")
	}

	args = append(args, opts.Output)
	return args
}
