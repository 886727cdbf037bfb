package cafe

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
)

// AllStatuses dipakai validasi filter dan tes closure.
var AllStatuses = []Status{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal: tidak ada transisi keluar dari completed / cancelled.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCancelled }

// validNext: jalur maju satu langkah, tanpa skip, tanpa mundur.
// cancelled hanya bisa dicapai dari pending.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing: {StatusReady: true},
	StatusReady:     {StatusCompleted: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// AllowedActor memeriksa siapa boleh menjalankan transisi tersebut.
// Admin boleh semua transisi yang sah; customer hanya boleh membatalkan
// pesanannya sendiri selama masih pending. Pemeriksaan kepemilikan
// (ownerID) dilakukan di sini juga supaya aturannya satu pintu.
func AllowedActor(from, to Status, actor Actor, ownerID string) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	if actor.IsAdmin() {
		return nil
	}
	if to == StatusCancelled && ownerID != "" && actor.ID == ownerID {
		return nil
	}
	return ErrForbidden
}
