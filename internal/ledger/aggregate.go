package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
)

// Aggregation is pure read-side computation over a snapshot of cashflow
// entries. Totals, breakdowns, and trends count VERIFIED entries only;
// pending and rejected entries contribute nothing. Nothing here mutates or
// caches: callers pass the current committed set on every call.

// Summary holds the verified cashflow totals plus status counts over the
// whole input set.
type Summary struct {
	TotalInflow   decimal.Decimal
	TotalOutflow  decimal.Decimal
	Net           decimal.Decimal
	PendingCount  int
	VerifiedCount int
	RejectedCount int
}

// Summarize computes verified inflow/outflow totals and status counts.
func Summarize(entries []domain.CashflowEntry) Summary {
	s := Summary{
		TotalInflow:  decimal.Zero,
		TotalOutflow: decimal.Zero,
	}
	for _, e := range entries {
		switch e.Status {
		case enum.EntryStatusPending:
			s.PendingCount++
			continue
		case enum.EntryStatusRejected:
			s.RejectedCount++
			continue
		case enum.EntryStatusVerified:
			s.VerifiedCount++
		default:
			continue
		}
		if e.Direction == enum.DirectionInflow {
			s.TotalInflow = s.TotalInflow.Add(e.Amount)
		} else {
			s.TotalOutflow = s.TotalOutflow.Add(e.Amount)
		}
	}
	s.Net = s.TotalInflow.Sub(s.TotalOutflow)
	return s
}

// CategoryTotal is one category's verified sum for a direction.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// ByCategory groups verified entries of the given direction by category.
// The group sums always add up to the direction total of Summarize over the
// same input. Output is ordered largest first, ties by name.
func ByCategory(entries []domain.CashflowEntry, direction string) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.Status != enum.EntryStatusVerified || e.Direction != direction {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TrendPoint is one bucket of the cashflow trend series.
type TrendPoint struct {
	Start   time.Time
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
}

// Trend buckets verified entries between from (inclusive) and to (exclusive)
// at the requested granularity. The series has fixed length: buckets with no
// entries are present with zero sums, so charts never skip a period.
// Unknown bucket names fall back to daily.
func Trend(entries []domain.CashflowEntry, from, to time.Time, bucket string) []TrendPoint {
	if !from.Before(to) {
		return []TrendPoint{}
	}

	var points []TrendPoint
	index := make(map[int64]int)
	for cur := bucketStart(from, bucket); cur.Before(to); cur = nextBucket(cur, bucket) {
		index[cur.Unix()] = len(points)
		points = append(points, TrendPoint{Start: cur, Inflow: decimal.Zero, Outflow: decimal.Zero})
	}

	for _, e := range entries {
		if e.Status != enum.EntryStatusVerified {
			continue
		}
		if e.OccurredAt.Before(from) || !e.OccurredAt.Before(to) {
			continue
		}
		i, ok := index[bucketStart(e.OccurredAt.In(from.Location()), bucket).Unix()]
		if !ok {
			continue
		}
		if e.Direction == enum.DirectionInflow {
			points[i].Inflow = points[i].Inflow.Add(e.Amount)
		} else {
			points[i].Outflow = points[i].Outflow.Add(e.Amount)
		}
	}
	return points
}

// Margin is the profit margin with an explicit no-data state. When no
// verified inflow exists the margin is undefined — reported as Valid=false,
// never as zero and never as a division artifact.
type Margin struct {
	Ratio decimal.Decimal
	Valid bool
}

// ProfitMargin computes net / totalInflow for a summary.
func ProfitMargin(s Summary) Margin {
	if s.TotalInflow.IsZero() {
		return Margin{}
	}
	return Margin{Ratio: s.Net.Div(s.TotalInflow), Valid: true}
}

// CategorySummary is the per-category rollup of a report's line items,
// keeping category-level sales traceability even though the derived inflow
// entry is per-report.
type CategorySummary struct {
	Category string
	Count    int32
	Amount   decimal.Decimal
}

// SummarizeItems groups a report's line items by category.
func SummarizeItems(items []domain.SalesLineItem) []CategorySummary {
	byCat := make(map[string]*CategorySummary)
	order := make([]string, 0)
	for _, it := range items {
		cs, ok := byCat[it.Category]
		if !ok {
			cs = &CategorySummary{Category: it.Category, Amount: decimal.Zero}
			byCat[it.Category] = cs
			order = append(order, it.Category)
		}
		cs.Count += it.Quantity
		cs.Amount = cs.Amount.Add(it.Total)
	}

	out := make([]CategorySummary, 0, len(order))
	for _, cat := range order {
		out = append(out, *byCat[cat])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func bucketStart(t time.Time, bucket string) time.Time {
	switch bucket {
	case enum.TrendBucketWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		// back up to Monday
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case enum.TrendBucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

func nextBucket(t time.Time, bucket string) time.Time {
	switch bucket {
	case enum.TrendBucketWeek:
		return t.AddDate(0, 0, 7)
	case enum.TrendBucketMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}
