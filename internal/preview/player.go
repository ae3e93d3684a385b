// Package preview проигрывает превью песни выбранного набора: локальный
// аудиофайл с точки превью или онлайн-превью по ID набора
package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/streaming"
)

// DefaultPreviewURL шаблон адреса онлайн-превью по ID набора
const DefaultPreviewURL = "https://b.ppy.sh/preview/%d.mp3"

// Без заданной точки превью песня играет с этой доли длины
const defaultPreviewFraction = 0.4

// Status текущее состояние воспроизведения
type Status struct {
	Current    time.Duration // Позиция от начала песни
	Total      time.Duration
	IsPlaying  bool
	Remote     bool
	StuckCount int // Сколько раз подряд позиция не менялась
}

// Source откуда будет играть превью
type Source struct {
	Path   string // Локальный файл
	URL    string // Онлайн-превью
	Offset time.Duration
}

// Remote сообщает, что источник потоковый
func (s Source) Remote() bool {
	return s.URL != ""
}

// ResolveSource выбирает источник превью набора. Локальный аудиофайл имеет
// приоритет, онлайн-превью возможно только у наборов с ID из сети
func ResolveSource(set *data.BeatmapSet, previewURL string) (Source, error) {
	if set.Directory != "" && set.Metadata.AudioFile != "" {
		path := filepath.Join(set.Directory, filepath.FromSlash(set.Metadata.AudioFile))
		if _, err := os.Stat(path); err == nil {
			return Source{Path: path, Offset: previewOffset(set)}, nil
		}
	}

	if set.ID > 0 && previewURL != "" {
		return Source{URL: fmt.Sprintf(previewURL, set.ID)}, nil
	}
	return Source{}, fmt.Errorf("у набора %q нет доступного аудио", set.Metadata.Title)
}

func previewOffset(set *data.BeatmapSet) time.Duration {
	if set.Metadata.PreviewTime >= 0 {
		return time.Duration(set.Metadata.PreviewTime) * time.Millisecond
	}
	if set.Length > 0 {
		return time.Duration(float64(set.Length)*defaultPreviewFraction) * time.Second
	}
	return 0
}

// Player управляет воспроизведением превью
type Player struct {
	progressChan chan Status
	doneChan     chan bool
	previewURL   string

	ctx        context.Context
	cancel     context.CancelFunc
	mutex      sync.RWMutex
	sampleRate beep.SampleRate // Частота, с которой инициализирован speaker
	isPaused   bool
	current    *data.BeatmapSet
	remote     bool

	streamer     beep.StreamSeekCloser
	ctrl         *beep.Ctrl
	streamReader *streaming.Reader
}

// NewPlayer создает новый экземпляр плеера. previewURL задает шаблон адреса
// онлайн-превью, пустая строка отключает онлайн-превью
func NewPlayer(previewURL string) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		progressChan: make(chan Status, 1),
		doneChan:     make(chan bool, 1),
		previewURL:   previewURL,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Progress возвращает канал для получения обновлений прогресса
func (p *Player) Progress() <-chan Status {
	return p.progressChan
}

// Done возвращает канал, в который приходит сигнал о завершении песни
func (p *Player) Done() <-chan bool {
	return p.doneChan
}

// Play начинает воспроизведение превью набора
func (p *Player) Play(set *data.BeatmapSet) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopInternal()
	p.current = set

	src, err := ResolveSource(set, p.previewURL)
	if err != nil {
		return err
	}
	p.remote = src.Remote()

	streamer, format, err := p.open(src)
	if err != nil {
		return err
	}
	p.streamer = streamer

	if src.Offset > 0 {
		pos := format.SampleRate.N(src.Offset)
		if pos < streamer.Len() {
			if err := streamer.Seek(pos); err != nil {
				p.closeStreams()
				return fmt.Errorf("ошибка перехода к точке превью: %w", err)
			}
		}
	}

	if p.sampleRate == 0 {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/5)); err != nil {
			p.closeStreams()
			return fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
		p.sampleRate = format.SampleRate
	}

	var out beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		out = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}

	p.ctrl = &beep.Ctrl{Streamer: out}
	p.isPaused = false

	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		select {
		case p.doneChan <- true:
		default:
		}
	})))

	go p.monitorProgress(format)
	return nil
}

func (p *Player) open(src Source) (beep.StreamSeekCloser, beep.Format, error) {
	if src.Remote() {
		const bufferSize = 256 * 1024
		reader, err := streaming.NewReader(p.ctx, src.URL, bufferSize)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ошибка создания потокового ридера: %w", err)
		}
		p.streamReader = reader

		streamer, format, err := mp3.Decode(reader)
		if err != nil {
			reader.Close()
			p.streamReader = nil
			return nil, beep.Format{}, fmt.Errorf("ошибка декодирования MP3: %w", err)
		}
		return streamer, format, nil
	}

	file, err := os.Open(src.Path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("ошибка открытия аудиофайла: %w", err)
	}
	streamer, format, err := decode(file, src.Path)
	if err != nil {
		file.Close()
		return nil, beep.Format{}, err
	}
	return streamer, format, nil
}

func decode(rc io.ReadCloser, name string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		streamer, format, err := wav.Decode(rc)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ошибка декодирования WAV: %w", err)
		}
		return streamer, format, nil
	case ".mp3":
		streamer, format, err := mp3.Decode(rc)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ошибка декодирования MP3: %w", err)
		}
		return streamer, format, nil
	default:
		return nil, beep.Format{}, fmt.Errorf("неподдерживаемый формат аудио: %s", filepath.Ext(name))
	}
}

// Pause приостанавливает или возобновляет воспроизведение
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.isPaused = !p.isPaused
		p.ctrl.Paused = p.isPaused
		speaker.Unlock()
	}
}

// Stop останавливает воспроизведение
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopInternal()
}

// stopInternal вызывается под мьютексом
func (p *Player) stopInternal() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
	}
	p.closeStreams()
	p.current = nil
	p.isPaused = false
	p.remote = false
}

func (p *Player) closeStreams() {
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.streamReader != nil {
		p.streamReader.Close()
		p.streamReader = nil
	}
}

// Close закрывает плеер и освобождает ресурсы
func (p *Player) Close() error {
	p.cancel()
	p.Stop()
	close(p.progressChan)
	close(p.doneChan)
	return nil
}

// IsPlaying возвращает true, если превью воспроизводится
func (p *Player) IsPlaying() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.ctrl != nil && !p.isPaused
}

// Current возвращает набор, превью которого играет или пыталось играть
func (p *Player) Current() *data.BeatmapSet {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.current
}

func (p *Player) monitorProgress(format beep.Format) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastPosition := time.Duration(-1)
	stuckCount := 0

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.mutex.RLock()
			if p.streamer == nil || p.ctrl == nil {
				p.mutex.RUnlock()
				return
			}

			speaker.Lock()
			current := format.SampleRate.D(p.streamer.Position())
			total := format.SampleRate.D(p.streamer.Len())
			paused := p.isPaused
			speaker.Unlock()

			if p.current != nil && p.current.Length > 0 && !p.remote {
				total = time.Duration(p.current.Length) * time.Second
			}
			remote := p.remote
			p.mutex.RUnlock()

			if !paused && current == lastPosition {
				stuckCount++
			} else {
				stuckCount = 0
			}
			lastPosition = current

			status := Status{
				Current:    current,
				Total:      total,
				IsPlaying:  !paused,
				Remote:     remote,
				StuckCount: stuckCount,
			}

			select {
			case p.progressChan <- status:
			default:
			}
		}
	}
}
