package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/yurifrl/nettou/pkg/models"
)

const filterDateLayout = "2006/01/02"

type filters struct {
	startDate string
	endDate   string
	product   string
	noDeposit bool
}

func (f *filters) toFilterFunc() (func(models.PurchaseRecord) bool, error) {
	var start, end time.Time
	var err error
	if f.startDate != "" {
		if start, err = time.Parse(filterDateLayout, f.startDate); err != nil {
			return nil, fmt.Errorf("invalid --start date: %w", err)
		}
	}
	if f.endDate != "" {
		if end, err = time.Parse(filterDateLayout, f.endDate); err != nil {
			return nil, fmt.Errorf("invalid --end date: %w", err)
		}
	}
	product := strings.ToLower(f.product)

	return func(r models.PurchaseRecord) bool {
		date, _ := time.Parse(filterDateLayout, r.Date())
		if !start.IsZero() && date.Before(start) {
			return false
		}
		if !end.IsZero() && date.After(end) {
			return false
		}
		if product != "" && !strings.Contains(strings.ToLower(r.Product()), product) {
			return false
		}
		if f.noDeposit && r.IsDeposit() {
			return false
		}
		return true
	}, nil
}
