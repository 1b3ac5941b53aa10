package domain

type ParticipationStatus string

const (
	StatusRegistered ParticipationStatus = "REGISTERED"
	StatusCancelled  ParticipationStatus = "CANCELLED"
)

// Participation links a user to a schedule. Only REGISTERED rows count
// toward quota and toward "joined" state in the screens.
type Participation struct {
	ID               int64               `json:"id,omitempty"`
	UserID           int64               `json:"userId"`
	ScheduleID       int64               `json:"scheduleId"`
	RegistrationDate string              `json:"registrationDate"`
	Status           ParticipationStatus `json:"status"`
}

// IsRegistered reports whether the participation is active.
func (p *Participation) IsRegistered() bool {
	return p.Status == StatusRegistered
}

// CountRegistered returns how many participations are active.
func CountRegistered(participations []*Participation) int {
	n := 0
	for _, p := range participations {
		if p.IsRegistered() {
			n++
		}
	}
	return n
}
