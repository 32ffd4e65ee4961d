package csv

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/nettou/pkg/models"
)

func TestCreate(t *testing.T) {
	ts := time.Date(2020, 7, 23, 12, 2, 4, 0, time.UTC)
	records := []models.PurchaseRecord{
		models.NewPurchaseRecord(ts, "Coca-Cola 1,5 l", 1, decimal.RequireFromString("4.5")),
		models.NewDepositRecord(ts, decimal.RequireFromString("3")),
		models.NewPurchaseRecord(ts, "Mælk", 2, decimal.RequireFromString("25.90")),
	}

	got := string(Create(records, nil))
	want := "time,product,amount,price\n" +
		"2020-07-23 12:02:04,\"Coca-Cola 1,5 l\",1,4.50\n" +
		"2020-07-23 12:02:04,Pant,1,3.00\n" +
		"2020-07-23 12:02:04,Mælk,2,25.90\n"
	if got != want {
		t.Errorf("Unexpected csv:\nExpected:\n%s\nGot:\n%s", want, got)
	}

	noDeposit := func(r models.PurchaseRecord) bool { return !r.IsDeposit() }
	filtered := string(Create(records, noDeposit))
	wantFiltered := "time,product,amount,price\n" +
		"2020-07-23 12:02:04,\"Coca-Cola 1,5 l\",1,4.50\n" +
		"2020-07-23 12:02:04,Mælk,2,25.90\n"
	if filtered != wantFiltered {
		t.Errorf("Unexpected filtered csv:\nExpected:\n%s\nGot:\n%s", wantFiltered, filtered)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteReportsErrors(t *testing.T) {
	ts := time.Date(2020, 7, 23, 12, 2, 4, 0, time.UTC)
	records := []models.PurchaseRecord{
		models.NewPurchaseRecord(ts, "Mælk", 2, decimal.RequireFromString("25.90")),
	}

	err := Write(failingWriter{}, records, nil)
	if err == nil {
		t.Fatal("Expected error from failing writer, got nil")
	}
	if err.Error() != "failed to flush csv: disk full" {
		t.Errorf("Unexpected error: %v", err)
	}
}
