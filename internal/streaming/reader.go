// Package streaming читает онлайн-превью по HTTP с буферизацией
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Клиент без общего таймаута: превью читается столько, сколько играет
var defaultClient = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       5 * time.Minute,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ExpectContinueTimeout: time.Second,
	},
}

// Reader буферизованный поток ответа HTTP
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
	size   int64
}

// NewReader открывает поток по url
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	return NewReaderWithClient(ctx, defaultClient, url, bufferSize)
}

// NewReaderWithClient открывает поток через заданный HTTP клиент
func NewReaderWithClient(ctx context.Context, client *http.Client, url string, bufferSize int) (*Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	// Сжатие мешает декодеру читать поток по мере загрузки
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("User-Agent", "go-songselect/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
		size:   resp.ContentLength,
	}, nil
}

// Read реализует io.Reader
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Size возвращает размер потока из заголовков или -1, если он неизвестен
func (sr *Reader) Size() int64 {
	return sr.size
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.resp.Body.Close()
}

// StatusText описание состояния потока по числу подряд зависших проверок
func StatusText(stuckCount int) string {
	switch {
	case stuckCount == 0:
		return "Потоковое воспроизведение"
	case stuckCount <= 3:
		return "Буферизация..."
	case stuckCount <= 5:
		return "Медленная загрузка"
	default:
		return "Возможная проблема с соединением"
	}
}
