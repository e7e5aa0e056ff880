package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
	"github.com/kkampardi/educa-coursware/pkg/storage"
)

// MediaUpload describes a stored upload plus the signed token to fetch it.
type MediaUpload struct {
	Ref       string    `json:"ref"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MediaService stores uploaded item files and issues signed download tokens.
// File items reference uploads by ref, so stale uploads without a referencing
// item are harmless.
type MediaService struct {
	store  *storage.MediaStore
	signer *storage.SignedURLSigner
	maxLen int64
	logger *zap.Logger
}

// NewMediaService constructs a MediaService instance.
func NewMediaService(store *storage.MediaStore, signer *storage.SignedURLSigner, maxLen int64, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLen <= 0 {
		maxLen = 32 << 20
	}
	return &MediaService{store: store, signer: signer, maxLen: maxLen, logger: logger}
}

// MaxUploadBytes returns the configured upload size limit.
func (s *MediaService) MaxUploadBytes() int64 {
	return s.maxLen
}

// Upload stores the file under a fresh ref keyed by the owner and returns a
// signed download token for immediate use.
func (s *MediaService) Upload(ctx context.Context, ownerID, filename string, r io.Reader) (*MediaUpload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	ref := fmt.Sprintf("%s/%s%s", ownerID, uuid.NewString(), ext)

	limited := io.LimitReader(r, s.maxLen+1)
	saved, err := s.store.Save(ref, limited)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	token, expiresAt, err := s.signer.Generate(saved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Info("media uploaded",
		zap.String("owner_id", ownerID),
		zap.String("ref", saved))
	return &MediaUpload{Ref: saved, Token: token, ExpiresAt: expiresAt}, nil
}

// SignDownload issues a fresh signed token for an existing ref.
func (s *MediaService) SignDownload(ref string) (*MediaUpload, error) {
	token, expiresAt, err := s.signer.Generate(ref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return &MediaUpload{Ref: ref, Token: token, ExpiresAt: expiresAt}, nil
}

// Open validates a signed token and returns a handle on the stored file.
// Invalid and expired tokens read as unauthorized; a valid token for a
// missing blob reads as not found.
func (s *MediaService) Open(token string) (*os.File, error) {
	ref, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	file, err := s.store.Open(ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "media not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open media")
	}
	return file, nil
}
