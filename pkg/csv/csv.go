package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Record interface {
	Time() time.Time
	Product() string
	Amount() int
	Price() decimal.Decimal
}

type FilterFunc[T Record] func(T) bool

// Create renders records as CSV with a time,product,amount,price header.
// Prices use a decimal point regardless of the receipt locale. Nil is
// returned if the rows could not be encoded.
func Create[T Record](records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	if err := Write(&buf, records, filter); err != nil {
		return nil
	}
	return buf.Bytes()
}

// Write streams the same CSV as Create to out.
func Write[T Record](out io.Writer, records []T, filter FilterFunc[T]) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "product", "amount", "price"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if filter != nil && !filter(r) {
			continue
		}
		row := []string{
			r.Time().Format(time.DateTime),
			r.Product(),
			strconv.Itoa(r.Amount()),
			r.Price().StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", r.Product(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
