package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yurifrl/nettou/pkg/models"
)

const (
	itemRowClass = "items"
	quantityUnit = "stk"
)

var (
	ErrCellCount       = errors.New("item row must have exactly three cells")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidDeposit  = errors.New("invalid deposit annotation")

	// A product with deposit lists its price as "4,50\n+ pant 3,00".
	depositRegex = regexp.MustCompile(`(?is)^(.*?)\s*\+\s*pant\s*(.*)$`)
)

// parseTable walks every row of the first table in doc and returns the
// records of the rows marked as items. The first malformed row aborts.
func (p *Parser) parseTable(doc *goquery.Document, t time.Time) ([]models.PurchaseRecord, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		p.logger.Debug("no table found in message", "time", t)
		return nil, nil
	}

	var (
		records []models.PurchaseRecord
		err     error
	)
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if !row.HasClass(itemRowClass) {
			return true
		}
		var recs []models.PurchaseRecord
		recs, err = parseRow(row, t)
		if err != nil {
			err = &ParseError{Row: rowText(row), Time: t, Err: err}
			return false
		}
		records = append(records, recs...)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// parseRow turns a product/quantity/price row into one record, or two when
// the price carries a deposit. The deposit record comes first.
func parseRow(row *goquery.Selection, t time.Time) ([]models.PurchaseRecord, error) {
	cells := row.Find("td")
	if cells.Length() != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrCellCount, cells.Length())
	}

	product := strings.TrimSpace(cells.Eq(0).Text())

	amount, err := parseQuantity(cells.Eq(1).Text())
	if err != nil {
		return nil, err
	}

	priceText := strings.TrimSpace(cells.Eq(2).Text())

	var records []models.PurchaseRecord
	if strings.Contains(strings.ToLower(priceText), "pant") {
		base, deposit, err := splitDeposit(priceText)
		if err != nil {
			return nil, err
		}
		depositPrice, err := ParseEUDecimal(deposit)
		if err != nil {
			return nil, fmt.Errorf("deposit: %w", err)
		}
		records = append(records, models.NewDepositRecord(t, depositPrice))
		priceText = base
	}

	price, err := ParseEUDecimal(priceText)
	if err != nil {
		return nil, err
	}

	return append(records, models.NewPurchaseRecord(t, product, amount, price)), nil
}

// parseQuantity reads cells like "2 stk".
func parseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, quantityUnit))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return n, nil
}

// splitDeposit separates "4,50\n+ pant 3,00" into "4,50" and "3,00".
func splitDeposit(s string) (string, string, error) {
	m := depositRegex.FindStringSubmatch(s)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDeposit, s)
	}
	base, deposit := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	if base == "" || deposit == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDeposit, s)
	}
	return base, deposit, nil
}

func rowText(row *goquery.Selection) string {
	if html, err := goquery.OuterHtml(row); err == nil {
		return html
	}
	return strings.TrimSpace(row.Text())
}
