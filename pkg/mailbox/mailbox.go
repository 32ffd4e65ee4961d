package mailbox

import (
	"fmt"
	"io"
	"net"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/yurifrl/nettou/pkg/config"
	"github.com/yurifrl/nettou/pkg/models"
)

const defaultPort = "993"

// Client is the part of the go-imap client a Session needs.
type Client interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

// Dialer opens a connection to an IMAP server.
type Dialer func(addr string) (Client, error)

// DialTLS connects over implicit TLS.
func DialTLS(addr string) (Client, error) {
	return client.DialTLS(addr, nil)
}

// Session is a logged in, single use IMAP connection. Close must be called
// on every path once Open succeeded.
type Session struct {
	client Client
	logger *log.Logger
	closed bool
}

// Open validates the credentials, connects and logs in. A
// *config.ConfigurationError is returned before any network call when the
// user or password is empty.
func Open(cfg config.Mailbox, dial Dialer, logger *log.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dial == nil {
		dial = DialTLS
	}

	addr := address(cfg.Server)
	logger.Debug("connecting to mail server", "addr", addr)
	c, err := dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	if err := c.Login(cfg.User, cfg.Password); err != nil {
		if lerr := c.Logout(); lerr != nil {
			logger.Debug("logout after failed login", "error", lerr)
		}
		return nil, fmt.Errorf("failed to log in as %s: %w", cfg.User, err)
	}
	logger.Info("logged in", "server", addr, "user", cfg.User)

	return &Session{client: c, logger: logger}, nil
}

// Search selects folder read-only and returns the sequence numbers of the
// messages sent by sender.
func (s *Session) Search(folder, sender string) ([]uint32, error) {
	status, err := s.client.Select(folder, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select folder %s: %w", folder, err)
	}
	s.logger.Debug("selected folder", "folder", folder, "messages", status.Messages)

	criteria := imap.NewSearchCriteria()
	if sender != "" {
		criteria.Header.Add("From", sender)
	}
	ids, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search folder %s: %w", folder, err)
	}
	s.logger.Info("found messages", "folder", folder, "sender", sender, "count", len(ids))
	return ids, nil
}

// Fetch downloads the body text and arrival date of each message. Messages
// are returned ordered by sequence number.
func (s *Session) Fetch(ids []uint32) ([]models.RawMessage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.TextSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchInternalDate}

	ch := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqset, items, ch)
	}()

	var (
		out      []models.RawMessage
		firstErr error
	)
	// The channel is drained completely so the fetch can finish.
	for msg := range ch {
		if firstErr != nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			firstErr = fmt.Errorf("message %d has no body", msg.SeqNum)
			continue
		}
		data, err := io.ReadAll(body)
		if err != nil {
			firstErr = fmt.Errorf("failed to read message %d: %w", msg.SeqNum, err)
			continue
		}
		out = append(out, models.RawMessage{
			SeqNum:       msg.SeqNum,
			InternalDate: msg.InternalDate,
			Body:         data,
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SeqNum < out[j].SeqNum })
	s.logger.Debug("fetched messages", "count", len(out))
	return out, nil
}

// Close logs out. Calling it more than once is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.client.Logout(); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	s.logger.Debug("logged out")
	return nil
}

func address(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, defaultPort)
}
