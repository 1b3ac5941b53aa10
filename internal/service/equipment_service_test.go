package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ukmcatur/caturbot/internal/domain"
)

type fakeEquipmentAPI struct {
	equipment []*domain.Equipment
	borrows   []*domain.Borrow
	borrowed  []*domain.Borrow
	returned  []int64
}

func intPtr(n int) *int { return &n }

func (f *fakeEquipmentAPI) GetAllEquipment() ([]*domain.Equipment, error) {
	return f.equipment, nil
}

func (f *fakeEquipmentAPI) CreateEquipment(token string, e *domain.Equipment) error {
	f.equipment = append(f.equipment, e)
	return nil
}

func (f *fakeEquipmentAPI) UpdateEquipment(token string, id int64, e *domain.Equipment) error {
	return nil
}

func (f *fakeEquipmentAPI) DeleteEquipment(token string, id int64) error {
	return nil
}

func (f *fakeEquipmentAPI) BorrowEquipment(token string, borrow *domain.Borrow) (*domain.Borrow, error) {
	borrow.ID = int64(len(f.borrowed) + 1)
	f.borrowed = append(f.borrowed, borrow)
	return borrow, nil
}

func (f *fakeEquipmentAPI) ReturnEquipment(token string, id int64) (*domain.Borrow, error) {
	f.returned = append(f.returned, id)
	for _, b := range f.borrows {
		if b.ID == id {
			b.Status = domain.BorrowReturned
			return b, nil
		}
	}
	return nil, errAPI
}

func (f *fakeEquipmentAPI) GetAllBorrows(token string) ([]*domain.Borrow, error) {
	return f.borrows, nil
}

func (f *fakeEquipmentAPI) GetBorrowsByUser(token string, userID int64) ([]*domain.Borrow, error) {
	return f.borrows, nil
}

func TestBorrowWithinStock(t *testing.T) {
	api := &fakeEquipmentAPI{equipment: []*domain.Equipment{
		{ID: 1, Name: "Papan Catur", Quantity: 10, Available: intPtr(3)},
	}}
	svc := NewEquipmentService(api)

	b, err := svc.Borrow(memberSession(), 1, 3, testNow)
	require.NoError(t, err)
	require.Equal(t, domain.BorrowActive, b.Status)
	require.Equal(t, "2025-12-10", b.BorrowDate)
	require.Equal(t, 3, b.Quantity)
}

func TestBorrowOverStockRejected(t *testing.T) {
	api := &fakeEquipmentAPI{equipment: []*domain.Equipment{
		{ID: 1, Name: "Jam Catur", Quantity: 5, Available: intPtr(2)},
	}}
	svc := NewEquipmentService(api)

	_, err := svc.Borrow(memberSession(), 1, 3, testNow)
	require.ErrorIs(t, err, ErrNotEnoughStock)
	require.Empty(t, api.borrowed)
}

func TestBorrowNeverBorrowedUsesQuantity(t *testing.T) {
	api := &fakeEquipmentAPI{equipment: []*domain.Equipment{
		{ID: 1, Name: "Buku Pembukaan", Quantity: 4},
	}}
	svc := NewEquipmentService(api)

	_, err := svc.Borrow(memberSession(), 1, 4, testNow)
	require.NoError(t, err)
}

func TestBorrowUnknownEquipment(t *testing.T) {
	svc := NewEquipmentService(&fakeEquipmentAPI{})

	_, err := svc.Borrow(memberSession(), 99, 1, testNow)
	require.ErrorIs(t, err, ErrEquipmentNotFound)
}

func TestReturnClosesLoan(t *testing.T) {
	api := &fakeEquipmentAPI{borrows: []*domain.Borrow{
		{ID: 5, UserID: 7, EquipmentID: 1, Status: domain.BorrowActive, Quantity: 1},
	}}
	svc := NewEquipmentService(api)

	b, err := svc.Return(memberSession(), 5)
	require.NoError(t, err)
	require.True(t, b.IsReturned())

	_, err = svc.Return(memberSession(), 5)
	require.ErrorIs(t, err, ErrAlreadyReturned)
}

func TestMyBorrowsOpenFirst(t *testing.T) {
	api := &fakeEquipmentAPI{borrows: []*domain.Borrow{
		{ID: 1, Status: domain.BorrowReturned},
		{ID: 2, Status: domain.BorrowActive},
		{ID: 3, Status: domain.BorrowOverdue},
	}}
	svc := NewEquipmentService(api)

	borrows, err := svc.MyBorrows(memberSession())
	require.NoError(t, err)
	require.Equal(t, int64(2), borrows[0].ID)
	require.Equal(t, int64(3), borrows[1].ID)
	require.Equal(t, int64(1), borrows[2].ID)
}

func TestAllBorrowsAdminOnly(t *testing.T) {
	svc := NewEquipmentService(&fakeEquipmentAPI{})

	_, err := svc.AllBorrows(memberSession())
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AllBorrows(adminSession())
	require.NoError(t, err)
}

func TestParseEquipmentArgs(t *testing.T) {
	svc := NewEquipmentService(&fakeEquipmentAPI{})

	form, err := svc.ParseEquipmentArgs("Papan Catur | Papan | Staunton | 150000 | 10 | rusak ringan | Kayu jati")
	require.NoError(t, err)
	require.Equal(t, "Papan Catur", form.Name)
	require.Equal(t, 150000.0, form.Price)
	require.Equal(t, 10, form.Quantity)
	require.Equal(t, "RUSAK_RINGAN", form.Condition)

	_, err = svc.ParseEquipmentArgs("Papan | Papan | Staunton | mahal | 10")
	require.Error(t, err)

	_, err = svc.ParseEquipmentArgs("Papan | Papan")
	require.Error(t, err)
}

func TestEquipmentCRUDRequiresAdmin(t *testing.T) {
	api := &fakeEquipmentAPI{}
	svc := NewEquipmentService(api)
	form := &EquipmentForm{Name: "Jam", Type: "Jam", Brand: "DGT", Price: 500000, Quantity: 2}

	require.ErrorIs(t, svc.Create(memberSession(), form), ErrForbidden)
	require.NoError(t, svc.Create(adminSession(), form))
	require.ErrorIs(t, svc.Update(memberSession(), 1, form), ErrForbidden)
	require.ErrorIs(t, svc.Delete(memberSession(), 1), ErrForbidden)
}
