// Package media загружает пользовательские изображения в S3-совместимое хранилище.
//
// Загрузчик работает с файлом, который уже сохранён во временный каталог, и
// удаляет этот файл после любой попытки загрузки.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/videotube/internal/config"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
)

var (
	// ErrEmptyPath возвращается, если путь к временному файлу не передан.
	ErrEmptyPath = errors.New("empty local path")
	// ErrForeignURL возвращается при попытке удалить объект не из нашего хранилища.
	ErrForeignURL = errors.New("url does not belong to media storage")
)

// ObjectAPI подмножество методов S3-клиента, которое использует загрузчик.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Uploader загружает файлы в бакет и строит их публичные URL.
type Uploader struct {
	log    *slog.Logger
	client ObjectAPI
	cfg    config.MediaStorage
	now    func() time.Time
}

// New создаёт S3-клиент из конфигурации хранилища.
func New(ctx context.Context, log *slog.Logger, cfg config.MediaStorage) (*Uploader, error) {
	const op = "media.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithClient(log, client, cfg), nil
}

// NewWithClient создаёт загрузчик поверх готового клиента.
func NewWithClient(log *slog.Logger, client ObjectAPI, cfg config.MediaStorage) *Uploader {
	return &Uploader{
		log:    log,
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Upload отправляет файл localPath в хранилище и возвращает его публичный URL.
// Локальный файл удаляется в любом случае.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	const op = "media.Upload"

	if strings.TrimSpace(localPath) == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyPath)
	}
	defer u.removeLocal(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	contentType, err := detectContentType(f, localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := u.objectKey(filepath.Ext(localPath))

	if u.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.RequestTimeout)
		defer cancel()
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return u.publicURL(key), nil
}

// Delete удаляет объект по его публичному URL.
func (u *Uploader) Delete(ctx context.Context, rawURL string) error {
	const op = "media.Delete"

	key, ok := u.keyFromURL(rawURL)
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrForeignURL)
	}

	if u.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.RequestTimeout)
		defer cancel()
	}

	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (u *Uploader) removeLocal(localPath string) {
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		u.log.Warn("failed to remove staged file", slog.String("path", localPath), sl.Err(err))
	}
}

func (u *Uploader) objectKey(ext string) string {
	d := u.now().UTC()
	name := uuid.NewString() + strings.ToLower(ext)
	return path.Join(strings.Trim(u.cfg.KeyPrefix, "/"),
		fmt.Sprintf("%d/%02d/%02d", d.Year(), d.Month(), d.Day()), name)
}

func (u *Uploader) baseURL() string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/")
	}
	return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket
}

func (u *Uploader) publicURL(key string) string {
	return u.baseURL() + "/" + key
}

func (u *Uploader) keyFromURL(rawURL string) (string, bool) {
	prefix := u.baseURL() + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	return key, key != ""
}

// detectContentType определяет MIME-тип по содержимому, при неудаче по расширению.
func detectContentType(f *os.File, name string) (string, error) {
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
			return byExt, nil
		}
		return "application/octet-stream", nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return "", err
	}
	ct := http.DetectContentType(buf[:n])
	if ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
			return byExt, nil
		}
	}
	return ct, nil
}
