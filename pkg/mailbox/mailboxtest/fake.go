// Package mailboxtest provides an in-memory IMAP client for tests.
package mailboxtest

import (
	"bytes"
	"errors"
	"time"

	"github.com/emersion/go-imap"

	"github.com/yurifrl/nettou/pkg/mailbox"
)

// Message is a stored message of the fake mailbox.
type Message struct {
	From         string
	InternalDate time.Time
	Body         string
}

// Client implements mailbox.Client over a fixed list of messages. Sequence
// numbers are the 1-based positions in Messages.
type Client struct {
	User     string
	Password string
	Messages []Message

	LoginErr error
	FetchErr error

	Addr         string
	Selected     string
	ReadOnly     bool
	SearchedFrom []string
	LogoutCalls  int
}

// Dialer returns a mailbox.Dialer handing out c.
func (c *Client) Dialer() mailbox.Dialer {
	return func(addr string) (mailbox.Client, error) {
		c.Addr = addr
		return c, nil
	}
}

func (c *Client) Login(username, password string) error {
	if c.LoginErr != nil {
		return c.LoginErr
	}
	if username != c.User || password != c.Password {
		return errors.New("authentication failed")
	}
	return nil
}

func (c *Client) Select(name string, readOnly bool) (*imap.MailboxStatus, error) {
	c.Selected = name
	c.ReadOnly = readOnly
	status := imap.NewMailboxStatus(name, nil)
	status.Messages = uint32(len(c.Messages))
	status.ReadOnly = readOnly
	return status, nil
}

func (c *Client) Search(criteria *imap.SearchCriteria) ([]uint32, error) {
	from := criteria.Header.Get("From")
	c.SearchedFrom = append(c.SearchedFrom, from)

	var ids []uint32
	for i, m := range c.Messages {
		if from == "" || m.From == from {
			ids = append(ids, uint32(i+1))
		}
	}
	return ids, nil
}

// Fetch delivers the requested messages in reverse order, like a server is
// free to, and closes ch.
func (c *Client) Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error {
	defer close(ch)
	if c.FetchErr != nil {
		return c.FetchErr
	}

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.TextSpecifier},
	}
	for i := len(c.Messages); i >= 1; i-- {
		if !seqset.Contains(uint32(i)) {
			continue
		}
		m := c.Messages[i-1]
		ch <- &imap.Message{
			SeqNum:       uint32(i),
			InternalDate: m.InternalDate,
			Body: map[*imap.BodySectionName]imap.Literal{
				section: bytes.NewBufferString(m.Body),
			},
		}
	}
	return nil
}

func (c *Client) Logout() error {
	c.LogoutCalls++
	return nil
}
