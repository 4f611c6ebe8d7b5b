package engine

import (
	"math"

	"github.com/ivlev/prompt2video/internal/config"
	"github.com/ivlev/prompt2video/internal/pipeline"
	"github.com/ivlev/prompt2video/internal/transition"
)

// sceneTiming — производные времена одной сцены на выходном таймлайне.
type sceneTiming struct {
	// StartFrame — глобальный индекс локального кадра 0 сцены.
	// Для i>0 первые Window кадров сцены совпадают с хвостом
	// предыдущей: окно перехода общее.
	StartFrame int
	Frames     int
	// Window — длина окна перехода к СЛЕДУЮЩЕЙ сцене в кадрах
	// (0 у последней сцены).
	Window int
}

// timeline — план выходного потока кадров.
type timeline struct {
	FPS         int
	Scenes      []sceneTiming
	TotalFrames int
}

// frameJob — задание воркеру на один выходной кадр. Кадр либо
// принадлежит одной сцене (SceneB < 0), либо лежит в окне перехода
// и смешивает две.
type frameJob struct {
	Index  int
	SceneA int
	TA     float64
	SceneB int
	TB     float64
	Alpha  float64
	// FadeIn < 1 — вход первой сцены из черного.
	FadeIn float64
}

// buildTimeline рассчитывает длительности в кадрах и стыки сцен.
// Инвариант: кадры сцены i кончаются ровно там, где начинаются кадры
// сцены i+1, кроме общего окна перехода.
func buildTimeline(scenes []config.SceneSpec, fade float64, fps int) (*timeline, error) {
	comp := transition.New(fps)
	tl := &timeline{FPS: fps, Scenes: make([]sceneTiming, len(scenes))}

	for i, s := range scenes {
		n := int(math.Round(s.Duration * float64(fps)))
		if n < 1 {
			n = 1
		}
		tl.Scenes[i].Frames = n
	}

	for i := 0; i < len(scenes)-1; i++ {
		if err := comp.CheckWindow(fade, scenes[i].Duration, scenes[i+1].Duration, i); err != nil {
			return nil, err
		}
		w := comp.WindowFrames(fade)
		nA, nB := tl.Scenes[i].Frames, tl.Scenes[i+1].Frames
		if w > nA/2 || w > nB/2 {
			return nil, pipeline.Invariantf(i, "transition window %d frames exceeds half of adjacent scene (%d/%d frames)", w, nA, nB)
		}
		tl.Scenes[i].Window = w
	}

	start := 0
	for i := range tl.Scenes {
		tl.Scenes[i].StartFrame = start
		start += tl.Scenes[i].Frames - tl.Scenes[i].Window
	}
	tl.TotalFrames = tl.Scenes[len(tl.Scenes)-1].StartFrame + tl.Scenes[len(tl.Scenes)-1].Frames
	return tl, nil
}

// Duration — длительность итогового видео в секундах.
func (tl *timeline) Duration() float64 {
	return float64(tl.TotalFrames) / float64(tl.FPS)
}

// SceneStart — абсолютный старт сцены (сюда же выравнивается озвучка).
func (tl *timeline) SceneStart(i int) float64 {
	return float64(tl.Scenes[i].StartFrame) / float64(tl.FPS)
}

// SceneEnd — граница сцены на таймлайне; озвучка длиннее усекается
// по ней.
func (tl *timeline) SceneEnd(i int) float64 {
	return float64(tl.Scenes[i].StartFrame+tl.Scenes[i].Frames) / float64(tl.FPS)
}

// buildJobs раскладывает таймлайн в плоский список заданий, по одному
// на выходной кадр, в порядке таймлайна.
func (tl *timeline) buildJobs(fade float64) []frameJob {
	jobs := make([]frameJob, 0, tl.TotalFrames)

	// Вход из черного: первая сцена, окно той же длины что и переход,
	// но не больше половины сцены.
	fadeInFrames := transition.New(tl.FPS).WindowFrames(fade)
	if max := tl.Scenes[0].Frames / 2; fadeInFrames > max {
		fadeInFrames = max
	}

	last := len(tl.Scenes) - 1
	for i, sc := range tl.Scenes {
		lead := 0
		if i > 0 {
			lead = tl.Scenes[i-1].Window
		}
		for j := lead; j < sc.Frames; j++ {
			g := sc.StartFrame + j
			job := frameJob{
				Index:  g,
				SceneA: i,
				TA:     fraction(j, sc.Frames),
				SceneB: -1,
				FadeIn: 1,
			}
			if i < last && j >= sc.Frames-sc.Window {
				k := j - (sc.Frames - sc.Window)
				job.SceneB = i + 1
				job.TB = fraction(k, tl.Scenes[i+1].Frames)
				if sc.Window > 1 {
					job.Alpha = float64(k) / float64(sc.Window-1)
				} else {
					job.Alpha = 0.5
				}
			}
			if i == 0 && fadeInFrames > 0 && g < fadeInFrames {
				job.FadeIn = float64(g+1) / float64(fadeInFrames)
			}
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// fraction — доля прошедшего времени сцены для локального кадра j.
func fraction(j, frames int) float64 {
	if frames <= 1 {
		return 0
	}
	return float64(j) / float64(frames-1)
}
