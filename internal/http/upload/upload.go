// Package upload сохраняет файлы из multipart-запроса во временный каталог.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotMultipart возвращается, если тело запроса не multipart/form-data.
var ErrNotMultipart = errors.New("request is not multipart/form-data")

// ErrTooLarge возвращается, если тело запроса больше допустимого размера.
var ErrTooLarge = errors.New("request body is too large")

// Staged набор сохранённых файлов по именам полей формы.
type Staged struct {
	files map[string]string
}

// limitedBody запоминает, что чтение упёрлось в лимит http.MaxBytesReader.
type limitedBody struct {
	io.ReadCloser
	exceeded bool
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		b.exceeded = true
	}
	return n, err
}

// Stage разбирает multipart-форму не больше maxBytes байт и сохраняет первый
// файл каждого из полей fields в каталог dir. Отсутствующие поля пропускаются.
func Stage(w http.ResponseWriter, r *http.Request, dir string, maxBytes int64, fields ...string) (*Staged, error) {
	const op = "upload.Stage"

	if r.ContentLength > maxBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrTooLarge)
	}
	body := &limitedBody{ReadCloser: http.MaxBytesReader(w, r.Body, maxBytes)}
	r.Body = body

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if body.exceeded {
			return nil, fmt.Errorf("%s: %w", op, ErrTooLarge)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotMultipart)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	staged := &Staged{files: make(map[string]string, len(fields))}
	for _, field := range fields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}
		path, err := save(headers[0], dir)
		if err != nil {
			staged.Cleanup()
			return nil, fmt.Errorf("%s: field %s: %w", op, field, err)
		}
		staged.files[field] = path
	}
	return staged, nil
}

// Get возвращает путь к сохранённому файлу поля или пустую строку.
func (s *Staged) Get(field string) string {
	if s == nil {
		return ""
	}
	return s.files[field]
}

// Cleanup удаляет все сохранённые файлы. Повторный вызов безопасен.
func (s *Staged) Cleanup() {
	if s == nil {
		return
	}
	for field, path := range s.files {
		_ = os.Remove(path)
		delete(s.files, field)
	}
}

func save(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(filepath.Base(fh.Filename)))
	path := filepath.Join(dir, uuid.NewString()+ext)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err = dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
