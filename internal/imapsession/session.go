// Package imapsession holds live Yahoo IMAP sessions for the proxy server.
// Sessions are keyed by lowercased account address and keep the app password
// so a dropped connection can be reestablished without asking the user again.
package imapsession

import (
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// conn is the slice of the IMAP client the manager uses. The real
// implementation is *client.Client; tests substitute a fake.
type conn interface {
	State() imap.ConnState
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	Move(seqset *imap.SeqSet, dest string) error
	Logout() error
}

// DialFunc opens a logged-out connection to the IMAP endpoint.
type DialFunc func(addr string, timeout time.Duration) (conn, error)

func defaultDial(addr string, timeout time.Duration) (conn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	c, err := client.DialWithDialerTLS(dialer, addr, nil)
	if err != nil {
		return nil, err
	}
	c.Timeout = timeout
	return c, nil
}

// session is one account's live connection plus the credentials needed to
// reestablish it.
type session struct {
	client      conn
	email       string
	appPassword string
}

func (s *session) authenticated() bool {
	return s.client.State()&imap.AuthenticatedState != 0
}
