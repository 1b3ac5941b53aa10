package domain

// Equipment is a club asset members can borrow. Field names follow the
// backend wire shapes, which are Indonesian.
type Equipment struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"nama"`
	Type        string  `json:"tipe"`
	Brand       string  `json:"merek"`
	Price       float64 `json:"harga"`
	Quantity    int     `json:"jumlah"`
	Available   *int    `json:"jumlahTersedia,omitempty"`
	Description string  `json:"deskripsi,omitempty"`
	Condition   string  `json:"kondisi,omitempty"`
}

// AvailableCount returns how many units can currently be borrowed.
// The backend omits jumlahTersedia for never-borrowed equipment.
func (e *Equipment) AvailableCount() int {
	if e.Available != nil {
		return *e.Available
	}
	return e.Quantity
}

// ConditionLabel returns the display name for the condition code.
func (e *Equipment) ConditionLabel() string {
	switch e.Condition {
	case "BAIK", "":
		return "Baik"
	case "RUSAK_RINGAN":
		return "Rusak Ringan"
	case "RUSAK_BERAT":
		return "Rusak Berat"
	default:
		return e.Condition
	}
}
