package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ivlev/prompt2video/internal/pipeline"
)

// ReadWAV декодирует WAV-файл в сегмент. Стерео сводится в моно
// усреднением каналов, битность приводится к 16; частота дискретизации
// остается исходной — выравнивает ее вызывающая сторона (ffmpeg).
func ReadWAV(path string) (*Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pipeline.Resourcef("audio file "+path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, pipeline.Resourcef("audio file "+path, fmt.Errorf("not a valid WAV file"))
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, pipeline.Resourcef("audio file "+path, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, pipeline.Resourcef("audio file "+path, fmt.Errorf("no channels"))
	}

	shift := uint(0)
	if buf.SourceBitDepth > 16 {
		shift = uint(buf.SourceBitDepth - 16)
	}
	scaleUp := uint(0)
	if buf.SourceBitDepth > 0 && buf.SourceBitDepth < 16 {
		scaleUp = uint(16 - buf.SourceBitDepth)
	}

	frames := len(buf.Data) / channels
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			v := buf.Data[i*channels+c]
			if shift > 0 {
				v >>= shift
			} else if scaleUp > 0 {
				v <<= scaleUp
			}
			sum += v
		}
		samples[i] = clip16(int32(sum / channels))
	}

	return &Segment{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// WriteWAV пишет сегмент как WAV PCM 16 бит моно.
func WriteWAV(path string, seg *Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return pipeline.Resourcef("audio file "+path, err)
	}

	enc := wav.NewEncoder(f, seg.SampleRate, 16, 1, 1)
	data := make([]int, len(seg.Samples))
	for i, s := range seg.Samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: seg.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return pipeline.Resourcef("audio file "+path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return pipeline.Resourcef("audio file "+path, err)
	}
	return f.Close()
}
