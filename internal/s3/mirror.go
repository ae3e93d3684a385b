// Package s3 хранит архивы наборов .osz в S3-совместимом зеркале
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Config содержит настройки для S3
type Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

type uploadAPI interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type downloadAPI interface {
	DownloadWithContext(ctx aws.Context, w io.WriterAt, input *s3.GetObjectInput, opts ...func(*s3manager.Downloader)) (int64, error)
}

type objectAPI interface {
	DeleteObjectWithContext(ctx aws.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error)
}

// Mirror зеркало архивов наборов
type Mirror struct {
	uploader   uploadAPI
	downloader downloadAPI
	client     objectAPI
	config     *Config
}

// NewMirror создает клиент зеркала
func NewMirror(config *Config) (*Mirror, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
	}

	// Если указан endpoint, добавляем его
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return &Mirror{
		uploader:   s3manager.NewUploader(sess),
		downloader: s3manager.NewDownloader(sess),
		client:     s3.New(sess),
		config:     config,
	}, nil
}

// UploadFile загружает архив в зеркало и возвращает его URL
func (m *Mirror) UploadFile(ctx context.Context, reader io.Reader, key string) (string, error) {
	_, err := m.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(m.config.BucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String("application/x-osu-beatmap-archive"),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки: %w", err)
	}

	return m.ObjectURL(key), nil
}

// DownloadFile скачивает архив из зеркала в w и возвращает число байт
func (m *Mirror) DownloadFile(ctx context.Context, w io.WriterAt, key string) (int64, error) {
	n, err := m.downloader.DownloadWithContext(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(m.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка скачивания %s из S3: %w", key, err)
	}
	return n, nil
}

// DeleteFile удаляет архив из зеркала
func (m *Mirror) DeleteFile(ctx context.Context, key string) error {
	_, err := m.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления файла из S3: %w", err)
	}

	return nil
}

// ObjectURL формирует URL объекта в зеркале
func (m *Mirror) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", m.config.Endpoint, m.config.BucketName, key)
}

// KeyFromURL извлекает ключ объекта из URL, сформированного ObjectURL
func (m *Mirror) KeyFromURL(objectURL string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", m.config.Endpoint, m.config.BucketName)
	if !strings.HasPrefix(objectURL, prefix) {
		return "", fmt.Errorf("URL %s не относится к бакету %s", objectURL, m.config.BucketName)
	}

	key := strings.TrimPrefix(objectURL, prefix)
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	if key == "" {
		return "", fmt.Errorf("в URL %s нет ключа объекта", objectURL)
	}
	return key, nil
}
