package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// ImageStorage stores item photos and hands back an opaque reference.
type ImageStorage interface {
	// UploadImage uploads image from reader and returns the secure URL.
	UploadImage(ctx context.Context, r io.Reader, fileName string) (string, error)
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage builds the Cloudinary client from CLOUDINARY_URL when
// rawURL is empty (SDK default), otherwise from rawURL.
func NewCloudinaryStorage(rawURL, cloudName, folder string) (ImageStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if rawURL != "" {
		cld, err = cloudinary.NewFromURL(rawURL)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true
	if cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld, folder: folder}, nil
}

func (s *cloudinaryStorage) UploadImage(ctx context.Context, r io.Reader, fileName string) (string, error) {
	if !IsImage(fileName) {
		return "", ErrUnsupportedImage
	}

	params := uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicIDFor(fileName, time.Now()),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		Format:         "webp",
		Transformation: "q_auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

// IsImage reports whether the file extension is one we accept for item photos.
func IsImage(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
		return true
	}
	return false
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9_-]+`)

func publicIDFor(fileName string, now time.Time) string {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-")
	if base == "" {
		base = "item"
	}
	return fmt.Sprintf("%d-%s", now.UnixNano(), base)
}
