package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/prompt2video/internal/audio"
	"github.com/ivlev/prompt2video/internal/background"
	"github.com/ivlev/prompt2video/internal/camera"
	"github.com/ivlev/prompt2video/internal/config"
	"github.com/ivlev/prompt2video/internal/filter"
	"github.com/ivlev/prompt2video/internal/overlay"
	"github.com/ivlev/prompt2video/internal/palette"
	"github.com/ivlev/prompt2video/internal/pipeline"
	"github.com/ivlev/prompt2video/internal/source"
	"github.com/ivlev/prompt2video/internal/system"
	"github.com/ivlev/prompt2video/internal/transition"
	"github.com/ivlev/prompt2video/internal/tts"
	"github.com/ivlev/prompt2video/internal/video"
)

// reorderWindow ограничивает число кадров в полете между воркерами и
// энкодером: кадры Full HD весят ~8МБ, бесконечная буферизация
// съела бы память на длинных таймлайнах.
const reorderWindow = 32

// scenePrep — подготовленные артефакты одной сцены: холст, слой
// подписи и озвучка. Холст после подготовки только читается, каждый
// воркер вырезает из него собственные кадры.
type scenePrep struct {
	canvas    *image.RGBA
	caption   *image.RGBA
	narration *audio.Segment
}

type VideoProject struct {
	Config  *config.Config
	Synth   tts.Synthesizer
	Encoder video.Encoder
	RC      *pipeline.Context
}

func NewVideoProject(cfg *config.Config, rc *pipeline.Context, synth tts.Synthesizer, enc video.Encoder) *VideoProject {
	return &VideoProject{
		Config:  cfg,
		Synth:   synth,
		Encoder: enc,
		RC:      rc,
	}
}

// Run прогоняет полный рендер: валидация, план таймлайна, подготовка
// сцен, покадровый рендер с барьером переупорядочивания перед
// энкодером и параллельная сборка аудио-дорожки.
func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()

	// Fail-fast: до этой точки ничего не рендерится и не пишется.
	if err := p.Config.Validate(); err != nil {
		return err
	}

	tl, err := buildTimeline(p.Config.Scenes, p.Config.FadeDuration, p.Config.FPS)
	if err != nil {
		return err
	}

	sceneCount := len(p.Config.Scenes)
	fmt.Println("--- [PROJECT: PROMPT ENGINE] ---")
	fmt.Printf("[*] Сцен: %d | Длительность: %.2fs\n", sceneCount, tl.Duration())
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Кадров: %d\n",
		p.Config.Width, p.Config.Height, p.Config.FPS, tl.TotalFrames)
	fmt.Println("-----------------------------")

	prepStart := time.Now()
	preps, err := p.prepareScenes(ctx)
	if err != nil {
		return err
	}
	prepTime := time.Since(prepStart)

	var qrLayer *image.RGBA
	if p.Config.QRLink != "" {
		ov, err := overlay.NewRenderer()
		if err != nil {
			return err
		}
		qrLayer, err = ov.QRBadge(p.Config.QRLink, p.Config.Width, p.Config.Height)
		if err != nil {
			return err
		}
	}

	if dir := filepath.Dir(p.Config.OutputVideo); dir != "." {
		os.MkdirAll(dir, 0755)
	}

	renderStart := time.Now()
	frames := make(chan *video.Frame, reorderWindow)

	g, gctx := errgroup.WithContext(ctx)

	// Кадровый конвейер: воркеры + барьер порядка. Закрывает frames.
	g.Go(func() error {
		return p.renderFrames(gctx, tl, preps, qrLayer, frames)
	})

	// Аудио собирается независимо от кадров; встреча — на запуске
	// энкодера, которому дорожка нужна как входной файл.
	g.Go(func() error {
		audioPath, err := p.buildAudioTrack(gctx, tl, preps)
		if err != nil {
			// Дренируем кадры, чтобы рендер-воркеры не зависли.
			go func() {
				for f := range frames {
					system.PutImage(f.Image)
				}
			}()
			return err
		}
		return p.Encoder.Encode(gctx, frames, video.EncodeOptions{
			Width:     p.Config.Width,
			Height:    p.Config.Height,
			FPS:       p.Config.FPS,
			AudioPath: audioPath,
			Encoder:   p.Config.VideoEncoder,
			Quality:   p.Config.Quality,
			Output:    p.Config.OutputVideo,
		})
	})

	if err := g.Wait(); err != nil {
		// Обрыв не оставляет усеченного файла.
		os.Remove(p.Config.OutputVideo)
		return err
	}
	renderTime := time.Since(renderStart)

	if p.Config.ShowStats {
		p.reportStats(startTime, prepTime, renderTime, tl.TotalFrames)
	}
	return nil
}

// prepareScenes готовит холсты, слои подписей и озвучку всех сцен
// параллельно: сцены независимы друг от друга до окна перехода.
func (p *VideoProject) prepareScenes(ctx context.Context) ([]scenePrep, error) {
	ov, err := overlay.NewRenderer()
	if err != nil {
		return nil, err
	}

	preps := make([]scenePrep, len(p.Config.Scenes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())

	for i := range p.Config.Scenes {
		g.Go(func() error {
			s := p.Config.Scenes[i]

			var canvas *image.RGBA
			if s.Backdrop != "" {
				var err error
				canvas, err = source.LoadBackdrop(s.Backdrop, p.Config.Width, p.Config.Height)
				if err != nil {
					return err
				}
			} else {
				canvas = background.Synthesize(palette.Derive(s.Prompt), p.Config.Width, p.Config.Height)
			}
			preps[i].canvas = canvas

			if s.Caption != "" {
				layer, err := ov.CaptionLayer(s.Caption, p.Config.Width, p.Config.Height)
				if err != nil {
					return err
				}
				preps[i].caption = layer
			}

			if s.Narration != "" {
				seg, err := p.Synth.Synthesize(gctx, s.Narration)
				if err != nil {
					if p.Config.NarrationAbort {
						return err
					}
					// Деградация по умолчанию: сцена идет без озвучки.
					p.RC.Log.Warn().Int("scene", i).Err(err).Msg("narration failed, scene continues without voice")
				} else {
					preps[i].narration = seg
				}
			}

			fmt.Printf("[>] Сцена готова: %d/%d\n", i+1, len(p.Config.Scenes))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return preps, nil
}

// renderFrames гонит задания через пул воркеров и восстанавливает
// порядок таймлайна перед отправкой энкодеру: ни один кадр не уходит
// в sink раньше предыдущего.
func (p *VideoProject) renderFrames(ctx context.Context, tl *timeline, preps []scenePrep, qrLayer *image.RGBA, out chan<- *video.Frame) error {
	defer close(out)

	jobs := make(chan frameJob)
	results := make(chan *video.Frame, reorderWindow)

	cam := camera.New(p.Config.Width, p.Config.Height)
	flt := filter.New(p.Config.Width, p.Config.Height)

	g, gctx := errgroup.WithContext(ctx)

	// Подача заданий.
	g.Go(func() error {
		defer close(jobs)
		for _, job := range tl.buildJobs(p.Config.FadeDuration) {
			select {
			case jobs <- job:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// Пул рендеринга (CPU bound).
	var wg errgroup.Group
	workers := p.workers()
	for w := 0; w < workers; w++ {
		wg.Go(func() error {
			for job := range jobs {
				img, err := p.renderFrame(cam, flt, preps, qrLayer, job)
				if err != nil {
					return err
				}
				f := &video.Frame{
					Index:     job.Index,
					Timestamp: float64(job.Index) / float64(p.Config.FPS),
					Image:     img,
				}
				select {
				case results <- f:
				case <-gctx.Done():
					system.PutImage(img)
					return gctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(results)
		return wg.Wait()
	})

	// Барьер порядка: буферизуем опережающие кадры и отпускаем их
	// строго по возрастанию индекса.
	g.Go(func() error {
		pending := make(map[int]*video.Frame, reorderWindow)
		next := 0
		for f := range results {
			pending[f.Index] = f
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				select {
				case out <- ready:
				case <-gctx.Done():
					system.PutImage(ready.Image)
					for _, rest := range pending {
						system.PutImage(rest.Image)
					}
					return gctx.Err()
				}
				next++
			}
		}
		if len(pending) != 0 {
			for _, rest := range pending {
				system.PutImage(rest.Image)
			}
			return pipeline.Invariantf(-1, "%d frames stuck in reorder buffer at index %d", len(pending), next)
		}
		return nil
	})

	return g.Wait()
}

// renderFrame собирает один выходной кадр: камера → фильтр → подпись,
// и для окна перехода — то же для второй сцены плюс кроссфейд.
func (p *VideoProject) renderFrame(cam *camera.Engine, flt *filter.Engine, preps []scenePrep, qrLayer *image.RGBA, job frameJob) (*image.RGBA, error) {
	frame, err := p.composeScene(cam, flt, preps, job.SceneA, job.TA)
	if err != nil {
		return nil, err
	}

	if job.SceneB >= 0 {
		other, err := p.composeScene(cam, flt, preps, job.SceneB, job.TB)
		if err != nil {
			system.PutImage(frame)
			return nil, err
		}
		transition.Blend(frame, frame, other, job.Alpha)
		system.PutImage(other)
	}

	if qrLayer != nil {
		overlay.Composite(frame, qrLayer)
	}
	if job.FadeIn < 1 {
		transition.FadeFromBlack(frame, job.FadeIn)
	}
	return frame, nil
}

func (p *VideoProject) composeScene(cam *camera.Engine, flt *filter.Engine, preps []scenePrep, idx int, t float64) (*image.RGBA, error) {
	s := p.Config.Scenes[idx]

	frame, err := cam.Frame(preps[idx].canvas, s.Camera, t, idx)
	if err != nil {
		return nil, err
	}
	if err := flt.Apply(frame, s.Effect, idx); err != nil {
		system.PutImage(frame)
		return nil, err
	}
	if preps[idx].caption != nil {
		overlay.Composite(frame, preps[idx].caption)
	}
	return frame, nil
}

// buildAudioTrack сводит музыку и озвучку в один WAV во временной
// директории рендера. Пустой результат — таймлайн без звука.
func (p *VideoProject) buildAudioTrack(ctx context.Context, tl *timeline, preps []scenePrep) (string, error) {
	var music *audio.Segment
	if p.Config.MusicPath != "" {
		if _, err := os.Stat(p.Config.MusicPath); err != nil {
			// Музыка запрошена явно — ее отсутствие обрывает рендер.
			return "", pipeline.Resourcef("music file "+p.Config.MusicPath, err)
		}
		wavPath := p.RC.TempPath("music.wav")
		if err := system.TranscodeToWAV(ctx, p.Config.MusicPath, wavPath, audio.DefaultSampleRate, 1); err != nil {
			return "", pipeline.Resourcef("music file "+p.Config.MusicPath, err)
		}
		seg, err := audio.ReadWAV(wavPath)
		if err != nil {
			return "", err
		}
		music = seg
	}

	var clips []audio.Clip
	for i := range preps {
		if preps[i].narration == nil {
			continue
		}
		clips = append(clips, audio.Clip{
			Segment: preps[i].narration,
			Start:   tl.SceneStart(i),
			Limit:   tl.SceneEnd(i),
		})
	}

	if music == nil && len(clips) == 0 {
		return "", nil
	}

	asm := audio.NewAssembler(audio.DefaultSampleRate, p.Config.MusicVolume)
	track, err := asm.Assemble(tl.Duration(), music, clips)
	if err != nil {
		return "", err
	}

	trackPath := p.RC.TempPath("track.wav")
	if err := audio.WriteWAV(trackPath, track); err != nil {
		return "", err
	}
	p.RC.Log.Info().Float64("duration", track.Duration()).Msg("audio track assembled")
	return trackPath, nil
}

func (p *VideoProject) workers() int {
	if p.Config.Workers > 0 {
		return p.Config.Workers
	}
	return system.DefaultWorkers()
}

func (p *VideoProject) reportStats(start time.Time, prep, render time.Duration, frames int) {
	total := time.Since(start)
	fps := float64(frames) / total.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Scene Prep: %.2fs\n"+
			"Render+Encode: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), prep.Seconds(), render.Seconds(), fps,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Scenes: %d | Frames: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		len(p.Config.Scenes),
		frames,
		total.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
