package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/nettou/pkg/config"
	"github.com/yurifrl/nettou/pkg/mailbox"
	"github.com/yurifrl/nettou/pkg/models"
	"github.com/yurifrl/nettou/pkg/parser"
	"github.com/yurifrl/nettou/pkg/report"
)

var receiptExtensions = map[string]bool{
	".eml":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
}

type Processor struct {
	config *config.Config
	logger *log.Logger
	parser *parser.Parser
	dial   mailbox.Dialer
}

func NewProcessor(cfg *config.Config, logger *log.Logger) *Processor {
	return &Processor{
		config: cfg,
		logger: logger,
		parser: parser.New(logger),
		dial:   mailbox.DialTLS,
	}
}

// WithDialer replaces the connection factory used by ProcessMailbox.
func (p *Processor) WithDialer(dial mailbox.Dialer) *Processor {
	p.dial = dial
	return p
}

// ProcessMailbox fetches every receipt from the configured folder and
// parses it. The session is logged out on every path. The first parse
// error aborts the run.
func (p *Processor) ProcessMailbox() (_ *models.Ledger, err error) {
	mb := p.config.Mailbox

	session, err := mailbox.Open(mb, p.dial, p.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			if err == nil {
				err = cerr
				return
			}
			p.logger.Warn("failed to log out", "error", cerr)
		}
	}()

	ids, err := session.Search(mb.Folder, mb.Sender)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("could not find any emails from %s in %s: %w", mb.Sender, mb.Folder, report.ErrEmptyLedger)
	}

	msgs, err := session.Fetch(ids)
	if err != nil {
		return nil, err
	}

	ledger := models.NewLedger()
	for _, msg := range msgs {
		batch, err := p.parser.ParseMessage(msg)
		if err != nil {
			return nil, err
		}
		ledger.Add(batch)
	}

	p.logger.Info("processed mailbox", "folder", mb.Folder, "emails", len(msgs), "records", ledger.Len())
	return ledger, nil
}

// ProcessPath parses receipts saved to disk. pattern may name a file, a
// directory or a glob.
func (p *Processor) ProcessPath(pattern string) (*models.Ledger, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files found matching pattern %s", pattern)
	}

	ledger := models.NewLedger()
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", match, err)
		}

		if info.IsDir() {
			if err := p.ProcessDirectory(match, ledger); err != nil {
				return nil, err
			}
			continue
		}

		batch, err := p.ProcessFile(match)
		if err != nil {
			return nil, err
		}
		ledger.Add(batch)
	}

	return ledger, nil
}

// ProcessDirectory adds every receipt file directly inside dir to ledger.
func (p *Processor) ProcessDirectory(dir string, ledger *models.Ledger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !receiptExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		batch, err := p.ProcessFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		ledger.Add(batch)
	}

	return nil
}

func (p *Processor) ProcessFile(path string) (models.MessageBatch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.MessageBatch{}, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.MessageBatch{}, fmt.Errorf("failed to read file: %w", err)
	}

	p.logger.Info("processing file", "path", path)
	batch, err := p.parser.ProcessBytes(data, filepath.Base(path), info.ModTime())
	if err != nil {
		return models.MessageBatch{}, fmt.Errorf("failed to process file %s: %w", path, err)
	}
	return batch, nil
}
