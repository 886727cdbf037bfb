package cafe

import "time"

// Role datang dari identity provider; core percaya nilainya apa adanya.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Actor adalah identitas + role yang melakukan mutasi.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

type Menu struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Category  string    `json:"category"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Order struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"user_id,omitempty"` // kosong = pesanan tanpa akun
	CustomerName       string        `json:"customer_name"`
	ChurchGroup        string        `json:"church_group,omitempty"`
	TotalAmount        int64         `json:"total_amount"`
	Status             Status        `json:"status"`
	PaymentMethod      PaymentMethod `json:"payment_method"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	Notes              string        `json:"notes,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	Items              []OrderItem   `json:"items,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	MenuID     string `json:"menu_id"`
	MenuName   string `json:"menu_name,omitempty"` // diisi dari join saat baca
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	TotalPrice int64  `json:"total_price"`
	Notes      string `json:"notes,omitempty"`
}

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

type NotificationType string

const (
	NotifOrderReceived    NotificationType = "order_received"
	NotifOrderPreparing   NotificationType = "order_preparing"
	NotifOrderReady       NotificationType = "order_ready"
	NotifOrderCompleted   NotificationType = "order_completed"
	NotifOrderCancelled   NotificationType = "order_cancelled"
	NotifPaymentConfirmed NotificationType = "payment_confirmed"
)

// Notification immutable kecuali Status (unread -> read).
type Notification struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	OrderID   string             `json:"order_id"`
	Type      NotificationType   `json:"type"`
	Message   string             `json:"message"`
	Status    NotificationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// User adalah cermin minimal dari identity provider, dipakai untuk
// fan-out notifikasi ke semua admin.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
