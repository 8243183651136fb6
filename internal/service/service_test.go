package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamaccts/internal/client"
	"streamaccts/internal/config"
	"streamaccts/internal/events"
	"streamaccts/internal/repository"
)

func newTestRepos(t *testing.T) repository.Repositories {
	t.Helper()

	log, _ := test.NewNullLogger()
	db, err := client.OpenDatabase(config.Database{
		Driver: "sqlite",
		URL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, log)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return repository.NewGormRepositories(db)
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(ctx context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeMailer struct {
	sent []client.Mail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, mail client.Mail) error {
	m.sent = append(m.sent, mail)
	return m.err
}

type memoryUploader struct {
	keys []string
	err  error
}

func (u *memoryUploader) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.keys = append(u.keys, key)
	return "/uploads/" + key, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func assertKind(t *testing.T, err error, kind ErrorKind, message string) {
	t.Helper()
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr), "expected a service error, got %v", err)
	assert.Equal(t, kind, svcErr.Kind)
	if message != "" {
		assert.Equal(t, message, svcErr.Message)
	}
}
