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
	ErrScheduleNotFound = errors.New("kegiatan tidak ditemukan")
	ErrActivityPast     = errors.New("kegiatan sudah berlalu")
	ErrAlreadyJoined    = errors.New("kamu sudah terdaftar di kegiatan ini")
	ErrActivityFull     = errors.New("kuota peserta sudah penuh")
	ErrNotJoined        = errors.New("kamu tidak terdaftar di kegiatan ini")
	ErrForbidden        = errors.New("hanya admin yang boleh melakukan ini")
)

type scheduleAPI interface {
	GetAllSchedules() ([]*domain.Schedule, error)
	CreateSchedule(token string, sched *domain.Schedule) (*domain.Schedule, error)
	UpdateSchedule(token string, id int64, sched *domain.Schedule) error
	DeleteSchedule(token string, id int64) error
	RegisterParticipation(token string, p *domain.Participation) (*domain.Participation, error)
	CancelParticipation(token string, id int64, p *domain.Participation) error
	GetParticipationsBySchedule(token string, scheduleID int64) ([]*domain.Participation, error)
	GetParticipationsByUser(token string, userID int64) ([]*domain.Participation, error)
}

type ScheduleService struct {
	api      scheduleAPI
	validate *validator.Validate
}

func NewScheduleService(api scheduleAPI) *ScheduleService {
	return &ScheduleService{api: api, validate: validator.New()}
}

// List returns schedules for one tab, in backend order.
func (s *ScheduleService) List(tab domain.Tab, now time.Time) ([]*domain.Schedule, error) {
	schedules, err := s.api.GetAllSchedules()
	if err != nil {
		return nil, fmt.Errorf("ambil jadwal: %w", err)
	}
	return domain.FilterByTab(schedules, tab, now), nil
}

// Get returns one schedule by id.
func (s *ScheduleService) Get(id int64) (*domain.Schedule, error) {
	schedules, err := s.api.GetAllSchedules()
	if err != nil {
		return nil, fmt.Errorf("ambil jadwal: %w", err)
	}
	for _, sched := range schedules {
		if sched.ID == id {
			return sched, nil
		}
	}
	return nil, ErrScheduleNotFound
}

// Quota is the participant headcount of a schedule.
type Quota struct {
	Registered int
	Max        int
}

func (q *Quota) Unlimited() bool {
	return q.Max <= 0
}

func (q *Quota) Full() bool {
	return !q.Unlimited() && q.Registered >= q.Max
}

func (q *Quota) Label() string {
	if q.Unlimited() {
		return fmt.Sprintf("%d peserta • tidak dibatasi", q.Registered)
	}
	return fmt.Sprintf("%d / %d peserta • %d slot tersisa", q.Registered, q.Max, q.Max-q.Registered)
}

// Participations lists a schedule's registrations for the session user
// to inspect.
func (s *ScheduleService) Participations(sess *domain.Session, scheduleID int64) ([]*domain.Participation, error) {
	participations, err := s.api.GetParticipationsBySchedule(sess.Token, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("ambil peserta: %w", err)
	}
	return participations, nil
}

// Quota counts REGISTERED participations against the cap.
func (s *ScheduleService) Quota(token string, sched *domain.Schedule) (*Quota, error) {
	participations, err := s.api.GetParticipationsBySchedule(token, sched.ID)
	if err != nil {
		return nil, fmt.Errorf("ambil peserta: %w", err)
	}
	return &Quota{
		Registered: domain.CountRegistered(participations),
		Max:        sched.MaxParticipants,
	}, nil
}

// Join registers the session's user for an activity. Past and
// unparseable-dated activities are never joinable; duplicates and full
// quotas are rejected before the backend is asked.
func (s *ScheduleService) Join(sess *domain.Session, scheduleID int64, now time.Time) (*domain.Participation, error) {
	sched, err := s.Get(scheduleID)
	if err != nil {
		return nil, err
	}
	if !domain.IsJoinable(sched, now) {
		return nil, ErrActivityPast
	}

	participations, err := s.api.GetParticipationsBySchedule(sess.Token, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("ambil peserta: %w", err)
	}
	for _, p := range participations {
		if p.IsRegistered() && p.UserID == sess.UserID {
			return nil, ErrAlreadyJoined
		}
	}
	if !sched.Unlimited() && domain.CountRegistered(participations) >= sched.MaxParticipants {
		return nil, ErrActivityFull
	}

	created, err := s.api.RegisterParticipation(sess.Token, &domain.Participation{
		UserID:           sess.UserID,
		ScheduleID:       scheduleID,
		RegistrationDate: now.Format("2006-01-02T15:04:05"),
		Status:           domain.StatusRegistered,
	})
	if err != nil {
		return nil, fmt.Errorf("daftar kegiatan: %w", err)
	}
	return created, nil
}

// Cancel withdraws the session's registration for an activity. Same
// cutoff as joining: once the activity day has arrived, the
// registration stands.
func (s *ScheduleService) Cancel(sess *domain.Session, scheduleID int64, now time.Time) error {
	sched, err := s.Get(scheduleID)
	if err != nil {
		return err
	}
	if !domain.IsCancelable(sched, now) {
		return ErrActivityPast
	}

	participations, err := s.api.GetParticipationsBySchedule(sess.Token, scheduleID)
	if err != nil {
		return fmt.Errorf("ambil peserta: %w", err)
	}

	var mine *domain.Participation
	for _, p := range participations {
		if p.IsRegistered() && p.UserID == sess.UserID {
			mine = p
			break
		}
	}
	if mine == nil {
		return ErrNotJoined
	}

	mine.Status = domain.StatusCancelled
	if err := s.api.CancelParticipation(sess.Token, mine.ID, mine); err != nil {
		return fmt.Errorf("batalkan kegiatan: %w", err)
	}
	return nil
}

// Activity is one row of the my-activities screen: a registration plus
// its resolved schedule. Fallback marks rows whose schedule could not
// be resolved; they still render, with a placeholder title.
type Activity struct {
	Participation *domain.Participation
	Schedule      *domain.Schedule
	Fallback      bool
}

// MyActivities joins the user's registrations with the schedule list in
// memory. The registrations are the primary data: when the schedule
// lookup fails or a schedule is gone, the row falls back to a
// placeholder instead of dropping the listing. Fallback rows have no
// parseable date, so the fail-closed rule files them under Completed.
func (s *ScheduleService) MyActivities(sess *domain.Session, tab domain.Tab, now time.Time) ([]*Activity, error) {
	participations, err := s.api.GetParticipationsByUser(sess.Token, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("ambil kegiatanku: %w", err)
	}

	byID := map[int64]*domain.Schedule{}
	if schedules, err := s.api.GetAllSchedules(); err == nil {
		for _, sched := range schedules {
			byID[sched.ID] = sched
		}
	}

	var out []*Activity
	for _, p := range participations {
		if !p.IsRegistered() {
			continue
		}

		sched, ok := byID[p.ScheduleID]
		if !ok {
			sched = &domain.Schedule{
				ID:    p.ScheduleID,
				Title: fmt.Sprintf("Kegiatan #%d", p.ScheduleID),
			}
		}

		if tab == domain.TabUpcoming && !sched.IsUpcoming(now) {
			continue
		}
		if tab == domain.TabCompleted && sched.IsUpcoming(now) {
			continue
		}

		out = append(out, &Activity{Participation: p, Schedule: sched, Fallback: !ok})
	}
	return out, nil
}

// === Admin CRUD ===

// ScheduleForm carries the admin add/edit dialog fields.
type ScheduleForm struct {
	Title           string `validate:"required"`
	ActivityType    string `validate:"required"`
	DateTime        string `validate:"required"`
	Location        string `validate:"required"`
	MaxParticipants int    `validate:"gte=0"`
	Description     string
}

// ParseScheduleArgs parses the pipe-separated admin form:
// "judul | TIPE | 15 Desember 2025 • 18:00 | lokasi | 20 | deskripsi".
func (s *ScheduleService) ParseScheduleArgs(args string) (*ScheduleForm, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 4 {
		return nil, errors.New("format: judul | tipe | tanggal • jam | lokasi | maks peserta | deskripsi")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	form := &ScheduleForm{
		Title:        parts[0],
		ActivityType: strings.ToUpper(parts[1]),
		DateTime:     parts[2],
		Location:     parts[3],
	}
	if len(parts) > 4 && parts[4] != "" {
		max, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, errors.New("maks peserta harus angka (0 = tidak dibatasi)")
		}
		form.MaxParticipants = max
	}
	if len(parts) > 5 {
		form.Description = parts[5]
	}

	if err := s.validate.Struct(form); err != nil {
		return nil, errors.New("judul, tipe, tanggal, dan lokasi wajib diisi")
	}
	if _, ok := domain.ParseDateLabel(form.DateTime); !ok {
		return nil, errors.New("tanggal tidak dikenali, contoh: 15 Desember 2025 • 18:00")
	}
	return form, nil
}

// Create adds a new activity.
func (s *ScheduleService) Create(sess *domain.Session, form *ScheduleForm) (*domain.Schedule, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	created, err := s.api.CreateSchedule(sess.Token, &domain.Schedule{
		Title:           form.Title,
		ActivityType:    form.ActivityType,
		DateTime:        form.DateTime,
		Location:        form.Location,
		MaxParticipants: form.MaxParticipants,
		Description:     form.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("buat jadwal: %w", err)
	}
	return created, nil
}

// Update edits an existing activity.
func (s *ScheduleService) Update(sess *domain.Session, id int64, form *ScheduleForm) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	err := s.api.UpdateSchedule(sess.Token, id, &domain.Schedule{
		ID:              id,
		Title:           form.Title,
		ActivityType:    form.ActivityType,
		DateTime:        form.DateTime,
		Location:        form.Location,
		MaxParticipants: form.MaxParticipants,
		Description:     form.Description,
	})
	if err != nil {
		return fmt.Errorf("ubah jadwal: %w", err)
	}
	return nil
}

// Delete removes an activity.
func (s *ScheduleService) Delete(sess *domain.Session, id int64) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	if err := s.api.DeleteSchedule(sess.Token, id); err != nil {
		return fmt.Errorf("hapus jadwal: %w", err)
	}
	return nil
}

// === Formatting ===

// FormatList renders schedules for one tab.
func (s *ScheduleService) FormatList(schedules []*domain.Schedule, tab domain.Tab, now time.Time) string {
	if len(schedules) == 0 {
		switch tab {
		case domain.TabUpcoming:
			return "Belum ada kegiatan yang akan datang"
		case domain.TabCompleted:
			return "Belum ada kegiatan yang selesai"
		default:
			return "Belum ada kegiatan"
		}
	}

	var sb strings.Builder
	for _, sched := range schedules {
		marker := ""
		if !sched.IsUpcoming(now) {
			marker = " ✔️"
		}
		sb.WriteString(fmt.Sprintf("%s <b>%s</b>%s\n", sched.TypeEmoji(), sched.Title, marker))
		sb.WriteString(fmt.Sprintf("  📅 %s", sched.DateLabel()))
		if t := sched.TimeLabel(); t != "" {
			sb.WriteString(" • " + t)
		}
		sb.WriteString(fmt.Sprintf("\n  📍 %s\n\n", sched.Location))
	}
	return sb.String()
}

// FormatDetail renders one schedule's dialog body.
func (s *ScheduleService) FormatDetail(sched *domain.Schedule, quota *Quota, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n", sched.TypeEmoji(), sched.Title))
	sb.WriteString(fmt.Sprintf("Tipe: %s\n", sched.TypeLabel()))
	sb.WriteString(fmt.Sprintf("📅 %s", sched.DateLabel()))
	if t := sched.TimeLabel(); t != "" {
		sb.WriteString(" • " + t)
	}
	sb.WriteString(fmt.Sprintf("\n📍 %s\n", sched.Location))
	if sched.Description != "" {
		sb.WriteString(sched.Description + "\n")
	}
	if quota != nil {
		sb.WriteString("👥 " + quota.Label() + "\n")
	}
	if !sched.IsUpcoming(now) {
		sb.WriteString("\n<b>Kegiatan telah selesai</b>")
	}
	return sb.String()
}
