package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/prompt2video/internal/audio"
	"github.com/ivlev/prompt2video/internal/config"
	"github.com/ivlev/prompt2video/internal/director"
	"github.com/ivlev/prompt2video/internal/engine"
	"github.com/ivlev/prompt2video/internal/pipeline"
	"github.com/ivlev/prompt2video/internal/system"
	"github.com/ivlev/prompt2video/internal/tts"
	"github.com/ivlev/prompt2video/internal/video"
)

var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	storyboardPtr := flag.String("storyboard", "", "Путь к YAML-сценарию (заменяет -prompts и связанные списки)")
	promptsPtr := flag.String("prompts", "", "Промпты сцен через '|'")
	durationsPtr := flag.String("durations", "", "Длительности сцен в секундах через запятую (по умолчанию 7.0)")
	camerasPtr := flag.String("cameras", "", "Движение камеры по сценам через запятую: zoom, pan, static")
	effectsPtr := flag.String("effects", "", "Фильтры по сценам через запятую: gradient, vignette, blur, none")
	captionsPtr := flag.String("captions", "", "Подписи сцен через '|' (пустая строка — без подписи)")
	narrationsPtr := flag.String("narrations", "", "Тексты озвучки сцен через '|'")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	widthPtr := flag.Int("width", config.DefaultWidth, "Ширина")
	heightPtr := flag.Int("height", config.DefaultHeight, "Высота")
	fpsPtr := flag.Int("fps", config.DefaultFPS, "FPS")
	workersPtr := flag.Int("workers", system.DefaultWorkers(), "Потоки")
	fadePtr := flag.Float64("fade", config.DefaultFadeDuration, "Длительность перехода (сек)")
	musicPtr := flag.String("music", "", "Путь к фоновой музыке (по умолчанию: самый свежий файл в input/audio/)")
	musicVolumePtr := flag.Float64("music-volume", config.DefaultMusicVolume, "Громкость музыки 0..1")
	narrationAbortPtr := flag.Bool("narration-abort", false, "Прерывать рендер при ошибке синтеза речи (иначе сцена останется без озвучки)")
	qrLinkPtr := flag.String("qr-link", "", "Ссылка для QR-бейджа в углу кадра")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", true, "Выводить отчет о производительности")
	verbosePtr := flag.Bool("v", false, "Подробный лог")

	flag.Parse()

	level := zerolog.InfoLevel
	if *verbosePtr {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	width, height := *widthPtr, *heightPtr
	switch *presetPtr {
	case "16:9":
		width, height = 1920, 1080
	case "9:16":
		width, height = 1080, 1920
	case "4:5":
		width, height = 1080, 1350
	}

	musicPath := *musicPtr
	musicVolume := *musicVolumePtr
	qrLink := *qrLinkPtr

	var scenes []config.SceneSpec
	var err error

	if *storyboardPtr != "" {
		sb, rerr := director.ReadStoryboard(*storyboardPtr)
		if rerr != nil {
			log.Fatalf("[-] Ошибка чтения сценария: %v", rerr)
		}
		scenes = sb.Scenes
		if sb.Music != "" {
			musicPath = sb.Music
		}
		if sb.MusicVolume != nil {
			musicVolume = *sb.MusicVolume
		}
		if sb.QRLink != "" {
			qrLink = sb.QRLink
		}
		fmt.Printf("[*] Сценарий: %s (%d сцен)\n", *storyboardPtr, len(scenes))
	} else {
		durations, derr := parseFloats(*durationsPtr)
		if derr != nil {
			log.Fatalf("[-] Ошибка в -durations: %v", derr)
		}
		scenes, err = config.BuildScenes(
			splitList(*promptsPtr, "|"),
			durations,
			splitList(*camerasPtr, ","),
			splitList(*effectsPtr, ","),
			splitList(*captionsPtr, "|"),
			splitList(*narrationsPtr, "|"),
		)
		if err != nil {
			log.Fatalf("[-] Ошибка сцен: %v", err)
		}
	}

	// Музыка: как и раньше, по умолчанию берем самый свежий файл.
	if musicPath == "" {
		latest, ferr := system.FindLatestAudio("input/audio")
		if ferr == nil {
			musicPath = latest
			if dur, derr := system.GetAudioDuration(musicPath); derr == nil {
				fmt.Printf("[*] Выбрана музыка: %s (%.2fs)\n", musicPath, dur)
			} else {
				fmt.Printf("[*] Выбрана музыка: %s\n", musicPath)
			}
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		nameSource := "video"
		if len(scenes) > 0 && scenes[0].Prompt != "" {
			nameSource = scenes[0].Prompt
		}
		if len(nameSource) > 32 {
			nameSource = nameSource[:32]
		}
		cleanName := strings.ReplaceAll(strings.TrimSpace(nameSource), " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName, _ := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			quality = 28 // Эквивалент CRF для NVENC
		default:
			quality = 23 // Стандартный CRF для x264
		}
	}

	cfg := &config.Config{
		Scenes:         scenes,
		OutputVideo:    finalOutput,
		Width:          width,
		Height:         height,
		FPS:            *fpsPtr,
		Workers:        *workersPtr,
		FadeDuration:   *fadePtr,
		MusicPath:      musicPath,
		MusicVolume:    musicVolume,
		NarrationAbort: *narrationAbortPtr,
		QRLink:         qrLink,
		VideoEncoder:   encoderName,
		Quality:        quality,
		ShowStats:      *statsPtr,
		BuildVersion:   buildVersion,
	}

	rc, err := pipeline.NewContext(logger)
	if err != nil {
		log.Fatalf("[-] Ошибка рабочей директории: %v", err)
	}
	defer rc.Cleanup()

	// Инициализируем зависимости
	synth := tts.NewEspeakSynthesizer(rc, audio.DefaultSampleRate)
	ve := &video.FFmpegEncoder{}

	project := engine.NewVideoProject(cfg, rc, synth, ve)
	if err := project.Run(context.Background()); err != nil {
		rc.Cleanup()
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

// splitList разбирает список из флага; пустая строка — пустой список.
func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseFloats(s string) ([]float64, error) {
	items := splitList(s, ",")
	out := make([]float64, len(items))
	for i, it := range items {
		v, err := strconv.ParseFloat(it, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", it, err)
		}
		out[i] = v
	}
	return out, nil
}
