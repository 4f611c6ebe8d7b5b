package video

import (
	"strings"
	"testing"
)

func argsString(opts EncodeOptions) string {
	e := &FFmpegEncoder{}
	return strings.Join(e.buildFFmpegArgs(opts), " ")
}

func TestBuildFFmpegArgsVideoOnly(t *testing.T) {
	s := argsString(EncodeOptions{
		Width: 1920, Height: 1080, FPS: 24,
		Encoder: "libx264", Quality: 23, Output: "out.mp4",
	})

	for _, want := range []string{
		"-f rawvideo",
		"-pixel_format rgba",
		"-video_size 1920x1080",
		"-framerate 24",
		"-pix_fmt yuv420p",
		"-c:v libx264",
		"-crf 23",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Args missing %q: %s", want, s)
		}
	}
	if strings.Contains(s, "-c:a") {
		t.Errorf("No audio input, but audio codec present: %s", s)
	}
	if !strings.HasSuffix(s, "out.mp4") {
		t.Errorf("Output must be the last argument: %s", s)
	}
}

func TestBuildFFmpegArgsWithAudio(t *testing.T) {
	s := argsString(EncodeOptions{
		Width: 1280, Height: 720, FPS: 30,
		AudioPath: "/tmp/track.wav",
		Encoder:   "libx264", Quality: 23, Output: "out.mp4",
	})

	if !strings.Contains(s, "-i /tmp/track.wav") {
		t.Errorf("Audio input missing: %s", s)
	}
	if !strings.Contains(s, "-c:a aac") || !strings.Contains(s, "-shortest") {
		t.Errorf("Audio mux options missing: %s", s)
	}
}

func TestBuildFFmpegArgsEncoderQuality(t *testing.T) {
	s := argsString(EncodeOptions{
		Width: 1920, Height: 1080, FPS: 24,
		Encoder: "h264_videotoolbox", Quality: 75, Output: "o.mp4",
	})
	if !strings.Contains(s, "-b:v 7500k") {
		t.Errorf("VideoToolbox quality maps to bitrate: %s", s)
	}

	s = argsString(EncodeOptions{
		Width: 1920, Height: 1080, FPS: 24,
		Encoder: "h264_nvenc", Quality: 28, Output: "o.mp4",
	})
	if !strings.Contains(s, "-cq 28") {
		t.Errorf("NVENC quality maps to -cq: %s", s)
	}
}
