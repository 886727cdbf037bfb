package cafe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemInput struct {
	MenuID     string `json:"menu_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	TotalPrice int64  `json:"total_price"`
	Notes      string `json:"notes,omitempty"`
}

type Filter struct {
	Status        Status
	UserID        string
	PaymentStatus PaymentStatus
}

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx menyimpan order + seluruh item dalam satu transaksi.
// Gagal insert item mana pun -> rollback semuanya (tidak ada orphan order).
// Harga item dipakai apa adanya dari cart (snapshot saat submit); yang
// dicek di sini hanya eksistensi & availability menu.
func (r *Repo) CreateOrderTx(ctx context.Context, o *Order, items []ItemInput) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	menuIDs := make([]string, 0, len(items))
	for _, it := range items {
		menuIDs = append(menuIDs, it.MenuID)
	}
	rows, err := tx.Query(ctx, `SELECT id, available FROM menus WHERE id = ANY($1)`, menuIDs)
	if err != nil {
		return err
	}
	available := map[string]bool{}
	for rows.Next() {
		var id string
		var av bool
		if err := rows.Scan(&id, &av); err != nil {
			rows.Close()
			return err
		}
		available[id] = av
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, it := range items {
		av, ok := available[it.MenuID]
		if !ok {
			return &ValidationError{Field: "items.menu_id", Reason: fmt.Sprintf("menu not found: %s", it.MenuID)}
		}
		if !av {
			return &ValidationError{Field: "items.menu_id", Reason: fmt.Sprintf("menu not available: %s", it.MenuID)}
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, customer_name, church_group, total_amount,
		                   status, payment_method, payment_status, notes)
		VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.UserID, o.CustomerName, o.ChurchGroup, o.TotalAmount,
		o.Status, o.PaymentMethod, o.PaymentStatus, o.Notes,
	)
	if err != nil {
		return err
	}

	o.Items = o.Items[:0]
	for _, it := range items {
		item := OrderItem{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			MenuID:     it.MenuID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
			Notes:      it.Notes,
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, menu_id, quantity, unit_price, total_price, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.MenuID, item.Quantity, item.UnitPrice, item.TotalPrice, item.Notes,
		); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	// stempel waktu dari DB tidak dibaca ulang di sini; GetOrder yang akurat
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

const orderColumns = `id, COALESCE(user_id::text,''), customer_name, COALESCE(church_group,''),
	total_amount, status, payment_method, payment_status, COALESCE(notes,''),
	COALESCE(cancellation_reason,''), created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.ChurchGroup,
		&o.TotalAmount, &o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.Notes,
		&o.CancellationReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// GetOrder mengembalikan order + item + nama menu (join).
func (r *Repo) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return o, nil
}

// GetOrderStatus cuma membaca kolom status, untuk endpoint tracking.
func (r *Repo) GetOrderStatus(ctx context.Context, id string) (Status, error) {
	var s Status
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return s, nil
}

func (r *Repo) itemsFor(ctx context.Context, orderIDs []string) (map[string][]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT i.id, i.order_id, i.menu_id, m.name, i.quantity, i.unit_price, i.total_price, COALESCE(i.notes,'')
		FROM order_items i
		JOIN menus m ON m.id = i.menu_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]OrderItem{}
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuID, &it.MenuName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Notes); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// ListOrders: filter opsional, urut created_at menurun.
func (r *Repo) ListOrders(ctx context.Context, f Filter) ([]Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		q += fmt.Sprintf(" AND user_id=$%d", len(args))
	}
	if f.PaymentStatus != "" {
		args = append(args, f.PaymentStatus)
		q += fmt.Sprintf(" AND payment_status=$%d", len(args))
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

// UpdateStatusCond: update kondisional (WHERE status = from) supaya race
// dua admin hanya dimenangkan satu; yang kalah dapat ErrStaleState.
func (r *Repo) UpdateStatusCond(ctx context.Context, id string, from, to Status) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	return r.staleOrMissing(ctx, id)
}

// CancelCond membatalkan hanya kalau masih pending, sekalian menyimpan alasan.
func (r *Repo) CancelCond(ctx context.Context, id, reason string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, cancellation_reason=$3, updated_at=now()
		WHERE id=$1 AND status=$4`, id, StatusCancelled, reason, StatusPending)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	return r.staleOrMissing(ctx, id)
}

// ConfirmPaymentCond: pending -> confirmed, dan hanya saat status completed.
func (r *Repo) ConfirmPaymentCond(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET payment_status=$2, updated_at=now()
		WHERE id=$1 AND payment_status=$3 AND status=$4`,
		id, PaymentConfirmed, PaymentPending, StatusCompleted)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	var st Status
	var ps PaymentStatus
	err = r.DB.QueryRow(ctx, `SELECT status, payment_status FROM orders WHERE id=$1`, id).Scan(&st, &ps)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if st != StatusCompleted {
		return &InvalidTransitionError{From: st, To: StatusCompleted}
	}
	// status sudah completed tapi payment sudah confirmed -> kalah race
	return ErrStaleState
}

func (r *Repo) staleOrMissing(ctx context.Context, id string) error {
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStaleState
}

// HardDelete: escape hatch admin, irreversible. Item ikut terhapus di tx
// yang sama (tidak mengandalkan cascade).
func (r *Repo) HardDelete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// ListOrdersBetween dipakai Sales Aggregator: scan window [from, to).
func (r *Repo) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *Repo) ListMenus(ctx context.Context) ([]Menu, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, price, category, available, created_at, updated_at
		FROM menus ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Menu
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Category, &m.Available, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
