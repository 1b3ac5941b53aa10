package domain

type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "DIPINJAM"
	BorrowReturned BorrowStatus = "DIKEMBALIKAN"
	BorrowOverdue  BorrowStatus = "TERLAMBAT"
)

// Borrow is a loan of club equipment to a member.
type Borrow struct {
	ID          int64        `json:"id,omitempty"`
	UserID      int64        `json:"userId"`
	EquipmentID int64        `json:"equipmentId"`
	BorrowDate  string       `json:"borrowDate"`
	ReturnDate  string       `json:"returnDate,omitempty"`
	Status      BorrowStatus `json:"borrowStatus"`
	OverdueDays int          `json:"overdueDays,omitempty"`
	Quantity    int          `json:"jumlahDipinjam"`
	Notes       string       `json:"notes,omitempty"`
}

// IsReturned reports whether the loan is closed.
func (b *Borrow) IsReturned() bool {
	return b.Status == BorrowReturned
}

// StatusLabel returns the display name for the borrow status.
func (b *Borrow) StatusLabel() string {
	switch b.Status {
	case BorrowActive:
		return "Dipinjam"
	case BorrowReturned:
		return "Dikembalikan"
	case BorrowOverdue:
		return "Terlambat"
	default:
		return string(b.Status)
	}
}
