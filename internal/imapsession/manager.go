package imapsession

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"

	"inboxguardian/internal/model"
)

// ErrNoSession marks operations on an account that never connected (or was
// disconnected). The caller maps this to a 401.
var ErrNoSession = errors.New("no session found, connect first")

const (
	idPrefix    = "yahoo-"
	trashFolder = "Trash"
	inboxFolder = "INBOX"
)

// Manager is the registry of live sessions. All methods are safe for
// concurrent use; operations on the same account serialize on the registry
// lock because an IMAP connection handles one command at a time.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	dial    DialFunc
	addr    string
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewManager creates a registry dialing the given IMAP endpoint.
func NewManager(addr string, timeout time.Duration, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		sessions: make(map[string]*session),
		dial:     defaultDial,
		addr:     addr,
		timeout:  timeout,
		log:      log,
	}
}

// Identity normalizes an account address into the registry key.
func Identity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Connect dials and authenticates a fresh session, replacing any existing
// one for the same account.
func (m *Manager) Connect(email, appPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Identity(email)
	if old, ok := m.sessions[key]; ok {
		_ = old.client.Logout()
		delete(m.sessions, key)
	}

	s, err := m.openLocked(email, appPassword)
	if err != nil {
		return err
	}
	m.sessions[key] = s
	m.log.WithField("email", key).Info("imap session connected")
	return nil
}

// openLocked dials and logs in; the caller holds the registry lock.
func (m *Manager) openLocked(email, appPassword string) (*session, error) {
	c, err := m.dial(m.addr, m.timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", m.addr, err)
	}
	if err := c.Login(email, appPassword); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("login %s: %w", email, err)
	}
	return &session{client: c, email: email, appPassword: appPassword}, nil
}

// ensure returns a usable session, transparently reconnecting once with the
// cached credentials when the connection dropped. A reconnect failure is the
// operation's failure.
func (m *Manager) ensure(email string) (*session, error) {
	key := Identity(email)
	s, ok := m.sessions[key]
	if !ok {
		return nil, ErrNoSession
	}
	if s.authenticated() {
		return s, nil
	}

	m.log.WithField("email", key).Info("imap session dropped, reconnecting")
	_ = s.client.Logout()
	fresh, err := m.openLocked(s.email, s.appPassword)
	if err != nil {
		delete(m.sessions, key)
		return nil, fmt.Errorf("reconnect %s: %w", key, err)
	}
	m.sessions[key] = fresh
	return fresh, nil
}

// Disconnect drops the session. Unknown accounts are a no-op.
func (m *Manager) Disconnect(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Identity(email)
	if s, ok := m.sessions[key]; ok {
		_ = s.client.Logout()
		delete(m.sessions, key)
		m.log.WithField("email", key).Info("imap session disconnected")
	}
}

// IsConnected reports whether a session exists for the account. A dropped
// connection still counts: cached credentials allow reconnecting.
func (m *Manager) IsConnected(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[Identity(email)]
	return ok
}

// TrashEmails moves each message to the Trash folder, attempting every id
// independently. Malformed ids count as failed. The error return is reserved
// for failures that prevented the attempt entirely (no session, reconnect or
// inbox selection failure).
func (m *Manager) TrashEmails(email string, messageIds []string) (model.TrashOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.ensure(email)
	if err != nil {
		return model.TrashOutcome{}, err
	}
	if _, err := s.client.Select(inboxFolder, false); err != nil {
		return model.TrashOutcome{}, fmt.Errorf("select inbox: %w", err)
	}

	type target struct {
		id  string
		seq uint32
	}
	var targets []target
	var failed []string
	for _, id := range messageIds {
		seq, ok := parseID(id)
		if !ok {
			failed = append(failed, id)
			continue
		}
		targets = append(targets, target{id: id, seq: seq})
	}

	// Moving a message renumbers everything after it; walking the targets
	// from the highest sequence number down keeps the remaining ones valid.
	sort.Slice(targets, func(a, b int) bool { return targets[a].seq > targets[b].seq })

	trashed := 0
	for _, t := range targets {
		seqSet := new(imap.SeqSet)
		seqSet.AddNum(t.seq)
		if err := s.client.Move(seqSet, trashFolder); err != nil {
			m.log.WithField("id", t.id).WithError(err).Warn("trash failed")
			failed = append(failed, t.id)
			continue
		}
		trashed++
	}

	out := model.TrashOutcome{
		Success:      len(failed) == 0,
		TrashedCount: trashed,
		FailedIDs:    failed,
	}
	if len(failed) > 0 {
		out.ErrorMessage = fmt.Sprintf("Failed to trash %d email(s)", len(failed))
	}
	return out, nil
}

// parseID extracts the sequence number from a "yahoo-<seq>" id.
func parseID(id string) (uint32, bool) {
	if !strings.HasPrefix(id, idPrefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(id, idPrefix), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint32(n), true
}

func formatID(seq uint32) string {
	return idPrefix + strconv.FormatUint(uint64(seq), 10)
}
