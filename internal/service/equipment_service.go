package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ukmcatur/caturbot/internal/domain"
)

var (
	ErrEquipmentNotFound = errors.New("alat tidak ditemukan")
	ErrNotEnoughStock    = errors.New("stok alat tidak mencukupi")
	ErrBorrowNotFound    = errors.New("peminjaman tidak ditemukan")
	ErrAlreadyReturned   = errors.New("alat sudah dikembalikan")
)

type equipmentAPI interface {
	GetAllEquipment() ([]*domain.Equipment, error)
	CreateEquipment(token string, e *domain.Equipment) error
	UpdateEquipment(token string, id int64, e *domain.Equipment) error
	DeleteEquipment(token string, id int64) error
	BorrowEquipment(token string, borrow *domain.Borrow) (*domain.Borrow, error)
	ReturnEquipment(token string, id int64) (*domain.Borrow, error)
	GetAllBorrows(token string) ([]*domain.Borrow, error)
	GetBorrowsByUser(token string, userID int64) ([]*domain.Borrow, error)
}

type EquipmentService struct {
	api      equipmentAPI
	validate *validator.Validate
}

func NewEquipmentService(api equipmentAPI) *EquipmentService {
	return &EquipmentService{api: api, validate: validator.New()}
}

// List returns the club inventory in backend order.
func (s *EquipmentService) List() ([]*domain.Equipment, error) {
	equipment, err := s.api.GetAllEquipment()
	if err != nil {
		return nil, fmt.Errorf("ambil alat: %w", err)
	}
	return equipment, nil
}

// Get returns one equipment item by id.
func (s *EquipmentService) Get(id int64) (*domain.Equipment, error) {
	equipment, err := s.api.GetAllEquipment()
	if err != nil {
		return nil, fmt.Errorf("ambil alat: %w", err)
	}
	for _, e := range equipment {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrEquipmentNotFound
}

// Borrow opens a loan for the session's user. Stock is checked against
// jumlahTersedia first so the backend is not asked for impossible
// quantities.
func (s *EquipmentService) Borrow(sess *domain.Session, equipmentID int64, qty int, now time.Time) (*domain.Borrow, error) {
	if qty < 1 {
		return nil, errors.New("jumlah pinjam minimal 1")
	}
	e, err := s.Get(equipmentID)
	if err != nil {
		return nil, err
	}
	if qty > e.AvailableCount() {
		return nil, ErrNotEnoughStock
	}

	created, err := s.api.BorrowEquipment(sess.Token, &domain.Borrow{
		UserID:      sess.UserID,
		EquipmentID: equipmentID,
		BorrowDate:  now.Format("2006-01-02"),
		Status:      domain.BorrowActive,
		Quantity:    qty,
	})
	if err != nil {
		return nil, fmt.Errorf("pinjam alat: %w", err)
	}
	return created, nil
}

// Return closes one of the session user's open loans.
func (s *EquipmentService) Return(sess *domain.Session, borrowID int64) (*domain.Borrow, error) {
	borrows, err := s.api.GetBorrowsByUser(sess.Token, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("ambil pinjaman: %w", err)
	}
	var mine *domain.Borrow
	for _, b := range borrows {
		if b.ID == borrowID {
			mine = b
			break
		}
	}
	if mine == nil {
		return nil, ErrBorrowNotFound
	}
	if mine.IsReturned() {
		return nil, ErrAlreadyReturned
	}

	returned, err := s.api.ReturnEquipment(sess.Token, borrowID)
	if err != nil {
		return nil, fmt.Errorf("kembalikan alat: %w", err)
	}
	return returned, nil
}

// MyBorrows returns the session user's loans, open loans first.
func (s *EquipmentService) MyBorrows(sess *domain.Session) ([]*domain.Borrow, error) {
	borrows, err := s.api.GetBorrowsByUser(sess.Token, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("ambil pinjaman: %w", err)
	}
	var open, closed []*domain.Borrow
	for _, b := range borrows {
		if b.IsReturned() {
			closed = append(closed, b)
		} else {
			open = append(open, b)
		}
	}
	return append(open, closed...), nil
}

// AllBorrows returns every loan in the club, for admin monitoring.
func (s *EquipmentService) AllBorrows(sess *domain.Session) ([]*domain.Borrow, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	borrows, err := s.api.GetAllBorrows(sess.Token)
	if err != nil {
		return nil, fmt.Errorf("ambil peminjaman: %w", err)
	}
	return borrows, nil
}

// === Admin CRUD ===

// EquipmentForm carries the admin add/edit dialog fields.
type EquipmentForm struct {
	Name        string  `validate:"required"`
	Type        string  `validate:"required"`
	Brand       string  `validate:"required"`
	Price       float64 `validate:"gte=0"`
	Quantity    int     `validate:"gte=1"`
	Condition   string
	Description string
}

// ParseEquipmentArgs parses the pipe-separated admin form:
// "nama | tipe | merek | harga | jumlah | kondisi | deskripsi".
func (s *EquipmentService) ParseEquipmentArgs(args string) (*EquipmentForm, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 5 {
		return nil, errors.New("format: nama | tipe | merek | harga | jumlah | kondisi | deskripsi")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return nil, errors.New("harga harus angka")
	}
	qty, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil, errors.New("jumlah harus angka")
	}

	form := &EquipmentForm{
		Name:     parts[0],
		Type:     parts[1],
		Brand:    parts[2],
		Price:    price,
		Quantity: qty,
	}
	if len(parts) > 5 && parts[5] != "" {
		form.Condition = strings.ToUpper(strings.ReplaceAll(parts[5], " ", "_"))
	}
	if len(parts) > 6 {
		form.Description = parts[6]
	}

	if err := s.validate.Struct(form); err != nil {
		return nil, errors.New("nama, tipe, merek, harga, dan jumlah wajib diisi")
	}
	return form, nil
}

func (s *EquipmentService) Create(sess *domain.Session, form *EquipmentForm) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	err := s.api.CreateEquipment(sess.Token, &domain.Equipment{
		Name:        form.Name,
		Type:        form.Type,
		Brand:       form.Brand,
		Price:       form.Price,
		Quantity:    form.Quantity,
		Condition:   form.Condition,
		Description: form.Description,
	})
	if err != nil {
		return fmt.Errorf("tambah alat: %w", err)
	}
	return nil
}

func (s *EquipmentService) Update(sess *domain.Session, id int64, form *EquipmentForm) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	err := s.api.UpdateEquipment(sess.Token, id, &domain.Equipment{
		ID:          id,
		Name:        form.Name,
		Type:        form.Type,
		Brand:       form.Brand,
		Price:       form.Price,
		Quantity:    form.Quantity,
		Condition:   form.Condition,
		Description: form.Description,
	})
	if err != nil {
		return fmt.Errorf("ubah alat: %w", err)
	}
	return nil
}

func (s *EquipmentService) Delete(sess *domain.Session, id int64) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	if err := s.api.DeleteEquipment(sess.Token, id); err != nil {
		return fmt.Errorf("hapus alat: %w", err)
	}
	return nil
}

// === Formatting ===

// FormatList renders the inventory listing.
func (s *EquipmentService) FormatList(equipment []*domain.Equipment) string {
	if len(equipment) == 0 {
		return "Belum ada alat yang terdaftar"
	}
	var sb strings.Builder
	for _, e := range equipment {
		sb.WriteString(fmt.Sprintf("♟ <b>%s</b> (%s %s)\n", e.Name, e.Brand, e.Type))
		sb.WriteString(fmt.Sprintf("  Tersedia: %d dari %d • Kondisi: %s\n\n", e.AvailableCount(), e.Quantity, e.ConditionLabel()))
	}
	return sb.String()
}

// FormatBorrows renders a loan listing, resolving equipment names when
// the inventory is available.
func (s *EquipmentService) FormatBorrows(borrows []*domain.Borrow) string {
	if len(borrows) == 0 {
		return "Tidak ada peminjaman"
	}

	byID := map[int64]*domain.Equipment{}
	if equipment, err := s.api.GetAllEquipment(); err == nil {
		for _, e := range equipment {
			byID[e.ID] = e
		}
	}

	var sb strings.Builder
	for _, b := range borrows {
		name := fmt.Sprintf("Alat #%d", b.EquipmentID)
		if e, ok := byID[b.EquipmentID]; ok {
			name = e.Name
		}
		sb.WriteString(fmt.Sprintf("• <b>%s</b> × %d — %s\n", name, b.Quantity, b.StatusLabel()))
		sb.WriteString(fmt.Sprintf("  Dipinjam: %s", b.BorrowDate))
		if b.ReturnDate != "" {
			sb.WriteString(" • Kembali: " + b.ReturnDate)
		}
		if b.Status == domain.BorrowOverdue && b.OverdueDays > 0 {
			sb.WriteString(fmt.Sprintf(" • Terlambat %d hari", b.OverdueDays))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}
