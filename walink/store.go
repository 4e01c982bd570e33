// Package walink backs the messaging interfaces with whatsmeow. The gateway
// core never imports this package; cmd wires it in.
package walink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/chatbridge/go-wa-gateway/internal/errors"
	"github.com/chatbridge/go-wa-gateway/messaging"
)

// creds is the opaque credential handle the core passes around: the
// session's sqlite container plus the device registration it holds.
type creds struct {
	sessionID string
	container *sqlstore.Container
	device    *store.Device
}

// Store keeps one sqlite device store per session id under dir, mirroring
// the original gateway's one-auth-folder-per-session layout.
type Store struct {
	dir string
	log waLog.Logger
}

var _ messaging.CredentialStore = (*Store)(nil)

func NewStore(dir string) *Store {
	return &Store{dir: dir, log: waLog.Noop}
}

func (s *Store) Load(_ context.Context, sessionID string) (messaging.Credentials, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "walink.Store.Load %q", sessionID)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", s.path(sessionID))
	container, err := sqlstore.New("sqlite3", dsn, s.log)
	if err != nil {
		return nil, errors.Wrapf(err, "walink.Store.Load open container %q", sessionID)
	}

	// GetFirstDevice hands back fresh registration state when the store is
	// empty, so first pairing and silent resume share one path.
	device, err := container.GetFirstDevice()
	if err != nil {
		return nil, errors.Wrapf(err, "walink.Store.Load device %q", sessionID)
	}

	return &creds{sessionID: sessionID, container: container, device: device}, nil
}

func (s *Store) Save(_ context.Context, sessionID string, mc messaging.Credentials) error {
	c, ok := mc.(*creds)
	if !ok {
		return errors.Wrapf(errors.ErrUnsupported, "walink.Store.Save %q: foreign credentials", sessionID)
	}
	if c.device.ID == nil {
		// Nothing registered yet; whatsmeow persists the keys itself once
		// pairing completes.
		return nil
	}
	if err := c.device.Save(); err != nil {
		return errors.Wrapf(err, "walink.Store.Save %q", sessionID)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	base := s.path(sessionID)
	var firstErr error
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(base + suffix); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return errors.Wrapf(firstErr, "walink.Store.Delete %q", sessionID)
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".db")
}
