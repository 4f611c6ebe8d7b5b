package audio

import (
	"math"

	"github.com/ivlev/prompt2video/internal/pipeline"
)

// Clip — озвучка, привязанная к абсолютному старту своей сцены.
// Limit — граница сцены на таймлайне: длительность видео первична,
// и клип длиннее сцены усекается по Limit, а не растягивает видео.
type Clip struct {
	Segment *Segment
	Start   float64
	Limit   float64
}

// Assembler собирает звуковую дорожку таймлайна: зацикленная/
// обрезанная музыка с фиксированным множителем громкости плюс
// озвучка сцен, сведенные посэмплово с клиппингом.
type Assembler struct {
	SampleRate  int
	MusicVolume float64
}

func NewAssembler(rate int, musicVolume float64) *Assembler {
	return &Assembler{SampleRate: rate, MusicVolume: musicVolume}
}

// Assemble строит дорожку длиной ровно total секунд (с точностью до
// одного сэмпла округления).
func (a *Assembler) Assemble(total float64, music *Segment, clips []Clip) (*Segment, error) {
	if a.MusicVolume < 0 || a.MusicVolume > 1 {
		return nil, pipeline.Configf("music_volume", "must be in [0,1], got %g", a.MusicVolume)
	}
	n := int(math.Round(total * float64(a.SampleRate)))
	if n < 0 {
		n = 0
	}

	// Сведение в int32, клиппинг при финальном проходе: сумма двух
	// источников не должна давать переполнение 16 бит.
	mixed := make([]int32, n)

	if music != nil && len(music.Samples) > 0 {
		if music.SampleRate != a.SampleRate {
			return nil, pipeline.Invariantf(-1, "music sample rate %d does not match pipeline rate %d", music.SampleRate, a.SampleRate)
		}
		// Зацикливание с начала без паузы на стыке, хвост обрезается
		// точно по длине таймлайна.
		for i := 0; i < n; i++ {
			v := float64(music.Samples[i%len(music.Samples)]) * a.MusicVolume
			mixed[i] += int32(v)
		}
	}

	for idx, c := range clips {
		if c.Segment == nil || len(c.Segment.Samples) == 0 {
			continue
		}
		if c.Segment.SampleRate != a.SampleRate {
			return nil, pipeline.Invariantf(idx, "narration sample rate %d does not match pipeline rate %d", c.Segment.SampleRate, a.SampleRate)
		}
		start := int(math.Round(c.Start * float64(a.SampleRate)))
		end := int(math.Round(c.Limit * float64(a.SampleRate)))
		if end > n {
			end = n
		}
		for i, s := range c.Segment.Samples {
			pos := start + i
			if pos >= end {
				// Озвучка длиннее сцены: усечение по границе сцены.
				break
			}
			if pos < 0 {
				continue
			}
			mixed[pos] += int32(s)
		}
	}

	out := make([]int16, n)
	for i, v := range mixed {
		out[i] = clip16(v)
	}
	return &Segment{Samples: out, SampleRate: a.SampleRate}, nil
}

func clip16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
