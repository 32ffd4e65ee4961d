package mailbox_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/nettou/pkg/config"
	"github.com/yurifrl/nettou/pkg/mailbox"
	"github.com/yurifrl/nettou/pkg/mailbox/mailboxtest"
)

func testMailbox() config.Mailbox {
	return config.Mailbox{
		Server:   "imap.example.com",
		User:     "user",
		Password: "secret",
		Folder:   "Netto",
		Sender:   config.DefaultSender,
	}
}

func TestOpenRequiresCredentials(t *testing.T) {
	dialed := false
	dial := func(addr string) (mailbox.Client, error) {
		dialed = true
		return nil, errors.New("should not dial")
	}

	cfg := testMailbox()
	cfg.Password = ""

	_, err := mailbox.Open(cfg, dial, log.New(io.Discard))
	var cerr *config.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if dialed {
		t.Error("Expected no connection attempt without credentials")
	}
}

func TestOpenLoginFailure(t *testing.T) {
	fake := &mailboxtest.Client{User: "user", Password: "other"}

	_, err := mailbox.Open(testMailbox(), fake.Dialer(), log.New(io.Discard))
	if err == nil {
		t.Fatal("Expected login error")
	}
	if fake.LogoutCalls != 1 {
		t.Errorf("Expected connection to be released after failed login, logout calls: %d", fake.LogoutCalls)
	}
}

func TestSessionSearchAndFetch(t *testing.T) {
	t1 := time.Date(2020, 7, 23, 12, 2, 4, 0, time.UTC)
	t2 := time.Date(2020, 8, 1, 9, 30, 0, 0, time.UTC)
	fake := &mailboxtest.Client{
		User:     "user",
		Password: "secret",
		Messages: []mailboxtest.Message{
			{From: config.DefaultSender, InternalDate: t1, Body: "first"},
			{From: "someone@example.com", InternalDate: t1, Body: "spam"},
			{From: config.DefaultSender, InternalDate: t2, Body: "second"},
		},
	}

	s, err := mailbox.Open(testMailbox(), fake.Dialer(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if fake.Addr != "imap.example.com:993" {
		t.Errorf("Expected default IMAPS port, dialed %q", fake.Addr)
	}

	ids, err := s.Search("Netto", config.DefaultSender)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if fake.Selected != "Netto" || !fake.ReadOnly {
		t.Errorf("Expected read-only select of Netto, got %q readOnly=%v", fake.Selected, fake.ReadOnly)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("Expected ids [1 3], got %v", ids)
	}

	msgs, err := s.Fetch(ids)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].SeqNum != 1 || string(msgs[0].Body) != "first" || !msgs[0].InternalDate.Equal(t1) {
		t.Errorf("Unexpected first message: %+v", msgs[0])
	}
	if msgs[1].SeqNum != 3 || string(msgs[1].Body) != "second" || !msgs[1].InternalDate.Equal(t2) {
		t.Errorf("Unexpected second message: %+v", msgs[1])
	}
}

func TestSessionFetchError(t *testing.T) {
	fake := &mailboxtest.Client{
		User:     "user",
		Password: "secret",
		Messages: []mailboxtest.Message{{From: config.DefaultSender, Body: "x"}},
		FetchErr: errors.New("connection reset"),
	}

	s, err := mailbox.Open(testMailbox(), fake.Dialer(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Fetch([]uint32{1}); err == nil {
		t.Fatal("Expected fetch error")
	}
}

func TestSessionCloseOnce(t *testing.T) {
	fake := &mailboxtest.Client{User: "user", Password: "secret"}

	cfg := testMailbox()
	cfg.Server = "imap.example.com:1993"
	s, err := mailbox.Open(cfg, fake.Dialer(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if fake.Addr != "imap.example.com:1993" {
		t.Errorf("Expected explicit port to be kept, dialed %q", fake.Addr)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if fake.LogoutCalls != 1 {
		t.Errorf("Expected exactly one logout, got %d", fake.LogoutCalls)
	}
}

func TestFetchNothing(t *testing.T) {
	fake := &mailboxtest.Client{User: "user", Password: "secret"}
	s, err := mailbox.Open(testMailbox(), fake.Dialer(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	msgs, err := s.Fetch(nil)
	if err != nil || msgs != nil {
		t.Errorf("Expected no messages and no error, got %v, %v", msgs, err)
	}
}
