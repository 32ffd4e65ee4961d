package parser

import (
	"bytes"
	"fmt"
	"io"
	"mime/quotedprintable"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/yurifrl/nettou/pkg/models"
)

type FileType string

const (
	// EmailFile is a complete RFC 5322 message, headers included.
	EmailFile FileType = "eml"
	// BodyFile is a bare quoted-printable encoded HTML body.
	BodyFile FileType = "body"
)

type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// ParseMessage extracts the records of one fetched receipt email. All
// records share the message arrival time.
func (p *Parser) ParseMessage(msg models.RawMessage) (models.MessageBatch, error) {
	records, err := p.ParseBody(msg.Body, msg.InternalDate)
	if err != nil {
		return models.MessageBatch{}, err
	}
	p.logger.Debug("parsed message", "seq", msg.SeqNum, "time", msg.InternalDate, "records", len(records))
	return models.MessageBatch{Time: msg.InternalDate, Records: records}, nil
}

// ParseBody decodes a quoted-printable HTML body and returns its item rows.
func (p *Parser) ParseBody(body []byte, t time.Time) ([]models.PurchaseRecord, error) {
	decoded, err := decodeQuotedPrintable(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode message from %s: %w", t.Format(time.DateTime), err)
	}
	return p.ParseHTML(bytes.NewReader(decoded), t)
}

// ParseHTML reads an already decoded HTML document.
func (p *Parser) ParseHTML(r io.Reader, t time.Time) ([]models.PurchaseRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html from %s: %w", t.Format(time.DateTime), err)
	}
	return p.parseTable(doc, t)
}

// ProcessBytes parses a receipt saved to disk. For .eml files the Date
// header is used as purchase time; otherwise fallback is used.
func (p *Parser) ProcessBytes(data []byte, filename string, fallback time.Time) (models.MessageBatch, error) {
	fileType := detectType(filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	t := fallback
	body := data
	if fileType == EmailFile {
		msg, err := mail.ReadMessage(bytes.NewReader(data))
		if err != nil {
			return models.MessageBatch{}, fmt.Errorf("failed to read email %s: %w", filename, err)
		}
		if date, err := msg.Header.Date(); err == nil {
			t = date
		} else {
			p.logger.Debug("email has no usable Date header", "filename", filename, "error", err)
		}
		body, err = io.ReadAll(msg.Body)
		if err != nil {
			return models.MessageBatch{}, fmt.Errorf("failed to read email body %s: %w", filename, err)
		}
	}

	return p.ParseMessage(models.RawMessage{InternalDate: t, Body: body})
}

func detectType(filename string) FileType {
	if strings.EqualFold(filepath.Ext(filename), ".eml") {
		return EmailFile
	}
	return BodyFile
}

func decodeQuotedPrintable(body []byte) ([]byte, error) {
	return io.ReadAll(quotedprintable.NewReader(bytes.NewReader(body)))
}
