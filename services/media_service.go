// File: /services/media_service.go
package services

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"bioloop-api/logger"
	"bioloop-api/models"
)

// MediaService validates, transforms and stores the image assets referenced by
// posts. Transforms are best-effort: a payload that fails to re-encode is
// stored untouched so the request still succeeds.
type MediaService struct {
	log       *logger.Logger
	uploadDir string
	maxBytes  int64
	maxWidth  int
	quality   int
}

func NewMediaService(log *logger.Logger, uploadDir string, maxBytes int64, maxWidth, quality int) (*MediaService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, &StorageError{Op: "create upload dir", Cause: err}
	}

	return &MediaService{
		log:       log.With("service", "MediaService"),
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		maxWidth:  maxWidth,
		quality:   quality,
	}, nil
}

// UploadDir returns the directory assets are stored under.
func (ms *MediaService) UploadDir() string {
	return ms.uploadDir
}

// Ingest validates and stores a multipart image upload, returning the asset
// reference to commit on the post record.
func (ms *MediaService) Ingest(fileHeader *multipart.FileHeader) (*models.ImageAsset, error) {
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, NewValidationError(ValidationUnsupportedMediaType, "only image uploads are allowed")
	}
	if fileHeader.Size > ms.maxBytes {
		return nil, NewValidationError(ValidationPayloadTooLarge,
			fmt.Sprintf("image exceeds the %d byte limit", ms.maxBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, &StorageError{Op: "open upload", Cause: err}
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, ms.maxBytes+1))
	if err != nil {
		return nil, &StorageError{Op: "read upload", Cause: err}
	}
	if int64(len(raw)) > ms.maxBytes {
		return nil, NewValidationError(ValidationPayloadTooLarge,
			fmt.Sprintf("image exceeds the %d byte limit", ms.maxBytes))
	}

	return ms.IngestBytes(raw, filepath.Ext(fileHeader.Filename))
}

// IngestBytes stores a validated image payload. The re-encode step caps the
// width, strips metadata and bounds the storage size; when it fails the
// original bytes are stored as-is and only a warning is logged.
func (ms *MediaService) IngestBytes(raw []byte, ext string) (*models.ImageAsset, error) {
	payload := raw
	width, height := 0, 0

	processed, w, h, err := ms.transform(raw)
	if err != nil {
		ms.log.Warn("image transform failed, storing original payload", "error", err)
		if cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(raw)); cfgErr == nil {
			width, height = cfg.Width, cfg.Height
		}
	} else {
		payload = processed
		width, height = w, h
		ext = ".jpg"
	}

	if ext == "" {
		ext = ".jpg"
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), randomSuffix(), ext)
	path := filepath.Join(ms.uploadDir, name)

	if err := writeFileSync(path, payload); err != nil {
		return nil, &StorageError{Op: "store asset", Cause: err}
	}

	return &models.ImageAsset{
		URL:    "/uploads/" + name,
		Width:  width,
		Height: height,
		Size:   int64(len(payload)),
	}, nil
}

// Retire removes a stored asset. Best-effort: an already-missing file is not
// an error, and any other failure is only logged. Only the base filename of
// the URL is honored, so a crafted reference cannot reach outside the
// upload directory.
func (ms *MediaService) Retire(url string) {
	name := filepath.Base(strings.TrimSpace(url))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return
	}

	err := os.Remove(filepath.Join(ms.uploadDir, name))
	if err != nil && !os.IsNotExist(err) {
		ms.log.Warn("failed to retire asset (ignored)", "asset", name, "error", err)
	}
}

// transform decodes the payload, downsamples anything wider than the cap
// (aspect preserved, never upscaled) and re-encodes as bounded-quality JPEG.
func (ms *MediaService) transform(raw []byte) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	if width > ms.maxWidth {
		height = height * ms.maxWidth / width
		width = ms.maxWidth

		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: ms.quality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}

	return out.Bytes(), width, height, nil
}

// writeFileSync writes the payload and fsyncs before the name is handed out,
// so a committed reference always points at a fully-written asset.
func writeFileSync(path string, payload []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func randomSuffix() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(b[:])
}
