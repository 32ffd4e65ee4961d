package models

import "time"

// MessageBatch holds the records extracted from a single receipt email.
type MessageBatch struct {
	Time    time.Time
	Records []PurchaseRecord
}

// Ledger is the in-memory concatenation of every batch processed in a run.
type Ledger struct {
	Batches []MessageBatch
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Add appends a batch. Batches keep the order they were fetched in.
func (l *Ledger) Add(batch MessageBatch) {
	l.Batches = append(l.Batches, batch)
}

// Records returns all records of all batches in fetch order.
func (l *Ledger) Records() []PurchaseRecord {
	out := make([]PurchaseRecord, 0, l.Len())
	for _, b := range l.Batches {
		out = append(out, b.Records...)
	}
	return out
}

// Len returns the number of records in the ledger.
func (l *Ledger) Len() int {
	n := 0
	for _, b := range l.Batches {
		n += len(b.Records)
	}
	return n
}

func (l *Ledger) Empty() bool {
	return l.Len() == 0
}

// Filter returns a new ledger holding only the records keep accepts. Batches
// left without records are dropped.
func (l *Ledger) Filter(keep func(PurchaseRecord) bool) *Ledger {
	if keep == nil {
		return l
	}
	out := NewLedger()
	for _, b := range l.Batches {
		var recs []PurchaseRecord
		for _, r := range b.Records {
			if keep(r) {
				recs = append(recs, r)
			}
		}
		if len(recs) > 0 {
			out.Add(MessageBatch{Time: b.Time, Records: recs})
		}
	}
	return out
}
