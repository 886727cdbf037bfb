package stats

import (
	"context"
	"sort"
	"time"

	"github.com/graciacafe/cafe-orders/internal/cafe"
)

type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"  // 7 hari terakhir
	WindowMonth Window = "month" // month-to-date
)

func (w Window) Valid() bool {
	return w == WindowToday || w == WindowWeek || w == WindowMonth
}

type MenuStat struct {
	MenuID  string `json:"menu_id"`
	Name    string `json:"name"`
	Units   int    `json:"units"`
	Revenue int64  `json:"revenue"` // confirmed-only
}

type GroupStat struct {
	Group   string `json:"group"`
	Orders  int    `json:"orders"`
	Revenue int64  `json:"revenue"` // confirmed-only
}

type Report struct {
	Window          Window      `json:"window"`
	From            time.Time   `json:"from"`
	To              time.Time   `json:"to"`
	TotalOrders     int         `json:"total_orders"`
	CancelledOrders int         `json:"cancelled_orders"`
	TotalRevenue    int64       `json:"total_revenue"` // confirmed-only
	PerMenu         []MenuStat  `json:"per_menu"`
	PerGroup        []GroupStat `json:"per_group"`
	HourCounts      [24]int     `json:"hour_counts"` // jam created_at lokal
}

type Source interface {
	ListOrdersBetween(ctx context.Context, from, to time.Time) ([]cafe.Order, error)
}

// Aggregator menghitung ulang dari isi store saat dipanggil; tidak ada
// materialized view. Biaya linear terhadap jumlah order dalam window.
type Aggregator struct {
	Source Source
	Now    func() time.Time // nil = time.Now
}

func (a *Aggregator) Report(ctx context.Context, w Window) (*Report, error) {
	if !w.Valid() {
		return nil, &cafe.ValidationError{Field: "window", Reason: "must be today, week, or month"}
	}
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	from, to := Bounds(w, now)

	orders, err := a.Source.ListOrdersBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	r := Compute(orders)
	r.Window, r.From, r.To = w, from, to
	return r, nil
}

func Bounds(w Window, now time.Time) (from, to time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch w {
	case WindowWeek:
		return day.AddDate(0, 0, -6), now
	case WindowMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	default:
		return day, now
	}
}

// Compute adalah fungsi murni atas snapshot order dalam window.
// Seluruh angka revenue (top-line, per-menu, per-group) hanya menghitung
// payment_status=confirmed; jumlah order/unit menghitung semua order
// yang tidak dibatalkan.
func Compute(orders []cafe.Order) *Report {
	r := &Report{}
	menuStats := map[string]*MenuStat{}
	groupStats := map[string]*GroupStat{}

	for i := range orders {
		o := &orders[i]
		r.TotalOrders++
		r.HourCounts[o.CreatedAt.Hour()]++
		if o.Status == cafe.StatusCancelled {
			r.CancelledOrders++
			continue
		}
		confirmed := o.PaymentStatus == cafe.PaymentConfirmed
		if confirmed {
			r.TotalRevenue += o.TotalAmount
		}

		for _, it := range o.Items {
			ms, ok := menuStats[it.MenuID]
			if !ok {
				ms = &MenuStat{MenuID: it.MenuID, Name: it.MenuName}
				menuStats[it.MenuID] = ms
			}
			ms.Units += it.Quantity
			if confirmed {
				ms.Revenue += it.TotalPrice
			}
		}

		group := o.ChurchGroup
		if group == "" {
			group = "-"
		}
		gs, ok := groupStats[group]
		if !ok {
			gs = &GroupStat{Group: group}
			groupStats[group] = gs
		}
		gs.Orders++
		if confirmed {
			gs.Revenue += o.TotalAmount
		}
	}

	for _, ms := range menuStats {
		r.PerMenu = append(r.PerMenu, *ms)
	}
	sort.Slice(r.PerMenu, func(i, j int) bool {
		if r.PerMenu[i].Revenue != r.PerMenu[j].Revenue {
			return r.PerMenu[i].Revenue > r.PerMenu[j].Revenue
		}
		return r.PerMenu[i].Name < r.PerMenu[j].Name
	})
	for _, gs := range groupStats {
		r.PerGroup = append(r.PerGroup, *gs)
	}
	sort.Slice(r.PerGroup, func(i, j int) bool {
		if r.PerGroup[i].Revenue != r.PerGroup[j].Revenue {
			return r.PerGroup[i].Revenue > r.PerGroup[j].Revenue
		}
		return r.PerGroup[i].Group < r.PerGroup[j].Group
	})
	return r
}
