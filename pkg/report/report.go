package report

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/yurifrl/nettou/pkg/models"
)

// ErrEmptyLedger is returned when there is nothing to summarise, i.e. no
// receipt emails were found.
var ErrEmptyLedger = errors.New("no purchase records found")

// ProductTotal is the cumulative amount and spend of one product.
type ProductTotal struct {
	Product string          `yaml:"product"`
	Amount  int             `yaml:"amount"`
	Price   decimal.Decimal `yaml:"price"`
}

// TripTotal is the spend of one shopping trip, i.e. one receipt timestamp.
type TripTotal struct {
	Time  time.Time       `yaml:"time"`
	Total decimal.Decimal `yaml:"total"`
}

type Summary struct {
	Trips         int             `yaml:"trips"`
	Records       int             `yaml:"records"`
	Total         decimal.Decimal `yaml:"total"`
	TripMean      float64         `yaml:"trip_mean"`
	TripStdDev    float64         `yaml:"trip_std_dev"`
	MostPurchased ProductTotal    `yaml:"most_purchased"`
	MostExpensive ProductTotal    `yaml:"most_expensive"`
	Products      []ProductTotal  `yaml:"products"`
	TripTotals    []TripTotal     `yaml:"trip_totals"`
}

// Summarize aggregates the ledger. Records are grouped into trips by their
// timestamp and into products by name. The standard deviation is the
// sample deviation and is 0 for a single trip.
func Summarize(ledger *models.Ledger) (*Summary, error) {
	if ledger == nil || ledger.Empty() {
		return nil, ErrEmptyLedger
	}

	records := ledger.Records()

	products := make(map[string]*ProductTotal)
	trips := make(map[time.Time]*TripTotal)
	total := decimal.Zero

	for _, r := range records {
		total = total.Add(r.Price())

		p, ok := products[r.Product()]
		if !ok {
			p = &ProductTotal{Product: r.Product(), Price: decimal.Zero}
			products[r.Product()] = p
		}
		p.Amount += r.Amount()
		p.Price = p.Price.Add(r.Price())

		key := r.Time().UTC()
		trip, ok := trips[key]
		if !ok {
			trip = &TripTotal{Time: key, Total: decimal.Zero}
			trips[key] = trip
		}
		trip.Total = trip.Total.Add(r.Price())
	}

	s := &Summary{
		Trips:   len(trips),
		Records: len(records),
		Total:   total,
	}

	for _, p := range products {
		s.Products = append(s.Products, *p)
	}
	sort.Slice(s.Products, func(i, j int) bool { return s.Products[i].Product < s.Products[j].Product })

	for _, t := range trips {
		s.TripTotals = append(s.TripTotals, *t)
	}
	sort.Slice(s.TripTotals, func(i, j int) bool { return s.TripTotals[i].Time.Before(s.TripTotals[j].Time) })

	s.TripMean, s.TripStdDev = tripStats(s.TripTotals)
	s.MostPurchased, s.MostExpensive = topProducts(s.Products)

	return s, nil
}

func tripStats(trips []TripTotal) (mean, std float64) {
	values := make([]float64, len(trips))
	for i, t := range trips {
		values[i] = t.Total.InexactFloat64()
	}
	if len(values) < 2 {
		return stat.Mean(values, nil), 0
	}
	return stat.MeanStdDev(values, nil)
}

// topProducts expects products sorted by name, so ties go to the first name.
func topProducts(products []ProductTotal) (byAmount, byPrice ProductTotal) {
	for i, p := range products {
		if i == 0 || p.Amount > byAmount.Amount {
			byAmount = p
		}
		if i == 0 || p.Price.GreaterThan(byPrice.Price) {
			byPrice = p
		}
	}
	return byAmount, byPrice
}
