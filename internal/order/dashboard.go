package order

import (
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/grocery-store/internal/validation"
)

const (
	RangeToday  = "today"
	RangeWeek   = "week"
	RangeMonth  = "month"
	RangeYear   = "year"
	RangeAll    = "all"
	RangeCustom = "custom"
)

// Window is a half-open [Start, End) interval. A zero bound is open.
type Window struct {
	Name  string
	Start time.Time
	End   time.Time
}

func (w Window) contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// ParseWindow resolves a dashboard range name against now. Custom ranges take
// from/to in any format dateparse understands; a date-only "to" includes the
// whole day.
func ParseWindow(name, from, to string, now time.Time) (Window, error) {
	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch strings.ToLower(strings.TrimSpace(name)) {
	case RangeToday:
		return Window{Name: RangeToday, Start: midnight}, nil
	case RangeWeek:
		return Window{Name: RangeWeek, Start: midnight.AddDate(0, 0, -6)}, nil
	case RangeMonth:
		return Window{Name: RangeMonth, Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)}, nil
	case RangeYear:
		return Window{Name: RangeYear, Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)}, nil
	case "", RangeAll:
		return Window{Name: RangeAll}, nil
	case RangeCustom:
		w := Window{Name: RangeCustom}
		if from != "" {
			t, err := dateparse.ParseIn(from, loc)
			if err != nil {
				return Window{}, validation.New("from", "is not a recognised date")
			}
			w.Start = t
		}
		if to != "" {
			t, err := dateparse.ParseIn(to, loc)
			if err != nil {
				return Window{}, validation.New("to", "is not a recognised date")
			}
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
				t = t.AddDate(0, 0, 1)
			}
			w.End = t
		}
		if !w.Start.IsZero() && !w.End.IsZero() && !w.Start.Before(w.End) {
			return Window{}, validation.New("to", "must be after from")
		}
		return w, nil
	}
	return Window{}, validation.New("range", "must be one of: today week month year all custom")
}

// ProductSales is the quantity sold of one product.
type ProductSales struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// Summary is the admin dashboard for one window.
type Summary struct {
	Range        string         `json:"range"`
	From         *time.Time     `json:"from,omitempty"`
	To           *time.Time     `json:"to,omitempty"`
	Orders       int            `json:"orders"`
	Pending      int            `json:"pending"`
	Delivered    int            `json:"delivered"`
	Customers    int            `json:"customers"`
	ItemsSold    int            `json:"itemsSold"`
	Revenue      float64        `json:"revenue"`
	AverageOrder float64        `json:"averageOrder"`
	MedianOrder  float64        `json:"medianOrder"`
	TopProducts  []ProductSales `json:"topProducts"`
}

const topProducts = 5

func summarize(w Window, orders []Order) Summary {
	out := Summary{Range: w.Name, TopProducts: []ProductSales{}}
	if !w.Start.IsZero() {
		start := w.Start
		out.From = &start
	}
	if !w.End.IsZero() {
		end := w.End
		out.To = &end
	}

	revenue := decimal.Zero
	amounts := make(stats.Float64Data, 0, len(orders))
	customers := map[int64]bool{}
	sales := map[int]*ProductSales{}

	for _, o := range orders {
		if !w.contains(o.CreatedAt) {
			continue
		}
		out.Orders++
		switch o.Status {
		case StatusDelivered:
			out.Delivered++
		default:
			out.Pending++
		}
		customers[o.UserID] = true
		revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
		amounts = append(amounts, o.TotalAmount)

		for _, it := range o.Items {
			out.ItemsSold += it.Quantity
			ps, ok := sales[it.ID]
			if !ok {
				ps = &ProductSales{ProductID: it.ID, Name: it.Name}
				sales[it.ID] = ps
			}
			ps.Quantity += it.Quantity
			ps.Revenue = decimal.NewFromFloat(ps.Revenue).Add(it.LineTotal()).InexactFloat64()
		}
	}

	out.Customers = len(customers)
	out.Revenue = revenue.Round(2).InexactFloat64()
	if mean, err := amounts.Mean(); err == nil {
		out.AverageOrder = decimal.NewFromFloat(mean).Round(2).InexactFloat64()
	}
	if median, err := amounts.Median(); err == nil {
		out.MedianOrder = decimal.NewFromFloat(median).Round(2).InexactFloat64()
	}

	for _, ps := range sales {
		out.TopProducts = append(out.TopProducts, *ps)
	}
	sort.Slice(out.TopProducts, func(i, j int) bool {
		a, b := out.TopProducts[i], out.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductID < b.ProductID
	})
	if len(out.TopProducts) > topProducts {
		out.TopProducts = out.TopProducts[:topProducts]
	}
	return out
}
