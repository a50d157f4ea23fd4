package profilepic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/id"
)

var allowedTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

type UploadInput struct {
	UserID   string
	Filename string
	Reader   io.Reader
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*domain.ProfilePic, error)
	Get(ctx context.Context, userID string) (*domain.ProfilePic, error)
	Delete(ctx context.Context, userID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type picStore interface {
	GetByUser(ctx context.Context, userID string) (*domain.ProfilePic, error)
	Put(ctx context.Context, p *domain.ProfilePic) error
	DeleteByUser(ctx context.Context, userID string) error
}

type ServiceDeps struct {
	Objects  objectStore
	Pics     picStore
	MaxBytes int64
	Timeout  time.Duration
	Now      func() time.Time
}

type service struct {
	objects  objectStore
	pics     picStore
	maxBytes int64
	timeout  time.Duration
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		objects:  deps.Objects,
		pics:     deps.Pics,
		maxBytes: deps.MaxBytes,
		timeout:  deps.Timeout,
		now:      now,
	}
}

// upload carries the state shared by the upload steps.
type upload struct {
	input       UploadInput
	data        []byte
	contentType string
	previous    *domain.ProfilePic
	pic         *domain.ProfilePic
}

type step struct {
	name string
	run  func(ctx context.Context, u *upload) error
	undo func(ctx context.Context, u *upload)
}

// Upload replaces the user's picture. Steps run in order; when one fails the
// completed steps are undone in reverse.
func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.ProfilePic, error) {
	u := &upload{input: input}
	steps := []step{
		{name: "read", run: s.read},
		{name: "check_type", run: s.checkType},
		{name: "load_previous", run: s.loadPrevious},
		{name: "put_object", run: s.putObject, undo: s.removeObject},
		{name: "save_record", run: s.saveRecord},
		{name: "drop_previous", run: s.dropPrevious},
	}
	for i, st := range steps {
		if err := st.run(ctx, u); err != nil {
			for j := i - 1; j >= 0; j-- {
				if steps[j].undo != nil {
					steps[j].undo(ctx, u)
				}
			}
			slog.Debug("profile picture upload failed", "user_id", input.UserID, "step", st.name, "err", err)
			return nil, err
		}
	}
	return u.pic, nil
}

func (s *service) read(_ context.Context, u *upload) error {
	if u.input.Reader == nil {
		return fmt.Errorf("no file provided: %w", domain.ErrBadRequest)
	}
	limit := s.maxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(u.input.Reader, limit+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", domain.ErrBadRequest)
	}
	if n == 0 {
		return fmt.Errorf("empty file: %w", domain.ErrBadRequest)
	}
	if n > limit {
		return fmt.Errorf("file exceeds %d bytes: %w", limit, domain.ErrBadRequest)
	}
	u.data = buf.Bytes()
	return nil
}

func (s *service) checkType(_ context.Context, u *upload) error {
	want, ok := allowedTypes[strings.ToLower(path.Ext(u.input.Filename))]
	if !ok {
		return fmt.Errorf("only png, jpg and jpeg images are allowed: %w", domain.ErrBadRequest)
	}
	if !mimetype.Detect(u.data).Is(want) {
		return fmt.Errorf("file content is not %s: %w", want, domain.ErrBadRequest)
	}
	u.contentType = want
	return nil
}

func (s *service) loadPrevious(ctx context.Context, u *upload) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	prev, err := s.pics.GetByUser(ctx, u.input.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	u.previous = prev
	return nil
}

func (s *service) putObject(ctx context.Context, u *upload) error {
	name := id.New() + "-" + sanitizeFilename(u.input.Filename)
	pic := &domain.ProfilePic{
		ID:         id.New(),
		UserID:     u.input.UserID,
		FileName:   name,
		UploadDate: s.now().UTC(),
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	url, err := s.objects.Upload(ctx, pic.ObjectKey(), bytes.NewReader(u.data), u.contentType)
	if err != nil {
		return err
	}
	pic.URL = url
	u.pic = pic
	return nil
}

func (s *service) removeObject(ctx context.Context, u *upload) {
	ctx, cancel := withTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.objects.Delete(ctx, u.pic.ObjectKey()); err != nil {
		slog.Error("orphaned profile picture object", "key", u.pic.ObjectKey(), "err", err)
	}
}

func (s *service) saveRecord(ctx context.Context, u *upload) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.pics.Put(ctx, u.pic)
}

// dropPrevious never fails the upload: the new picture is already live.
func (s *service) dropPrevious(ctx context.Context, u *upload) error {
	if u.previous == nil {
		return nil
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.objects.Delete(ctx, u.previous.ObjectKey()); err != nil {
		slog.Warn("previous profile picture not removed", "key", u.previous.ObjectKey(), "err", err)
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.ProfilePic, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.pics.GetByUser(ctx, userID)
}

// Delete removes the record first so a failed object delete leaves at most
// an unreferenced object behind.
func (s *service) Delete(ctx context.Context, userID string) error {
	pic, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	rctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.pics.DeleteByUser(rctx, userID); err != nil {
		return err
	}
	octx, ocancel := withTimeout(ctx, s.timeout)
	defer ocancel()
	if err := s.objects.Delete(octx, pic.ObjectKey()); err != nil {
		slog.Error("profile picture object not removed", "key", pic.ObjectKey(), "err", err)
	}
	return nil
}

// sanitizeFilename strips directory components and keeps only alphanumerics,
// dot, dash and underscore so the name is safe inside an object key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
