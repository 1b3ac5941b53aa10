package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ukmcatur/caturbot/internal/domain"
)

var errAPI = errors.New("API error 500: boom")

type fakeScheduleAPI struct {
	schedules      []*domain.Schedule
	participations map[int64][]*domain.Participation
	userParts      []*domain.Participation
	schedulesErr   error
	registered     []*domain.Participation
	cancelled      []*domain.Participation
	nextID         int64
}

func (f *fakeScheduleAPI) GetAllSchedules() ([]*domain.Schedule, error) {
	if f.schedulesErr != nil {
		return nil, f.schedulesErr
	}
	return f.schedules, nil
}

func (f *fakeScheduleAPI) CreateSchedule(token string, sched *domain.Schedule) (*domain.Schedule, error) {
	f.nextID++
	sched.ID = f.nextID
	f.schedules = append(f.schedules, sched)
	return sched, nil
}

func (f *fakeScheduleAPI) UpdateSchedule(token string, id int64, sched *domain.Schedule) error {
	return nil
}

func (f *fakeScheduleAPI) DeleteSchedule(token string, id int64) error {
	return nil
}

func (f *fakeScheduleAPI) RegisterParticipation(token string, p *domain.Participation) (*domain.Participation, error) {
	f.nextID++
	p.ID = f.nextID
	f.registered = append(f.registered, p)
	return p, nil
}

func (f *fakeScheduleAPI) CancelParticipation(token string, id int64, p *domain.Participation) error {
	f.cancelled = append(f.cancelled, p)
	return nil
}

func (f *fakeScheduleAPI) GetParticipationsBySchedule(token string, scheduleID int64) ([]*domain.Participation, error) {
	return f.participations[scheduleID], nil
}

func (f *fakeScheduleAPI) GetParticipationsByUser(token string, userID int64) ([]*domain.Participation, error) {
	return f.userParts, nil
}

var testNow = time.Date(2025, 12, 10, 14, 30, 0, 0, time.UTC)

func memberSession() *domain.Session {
	return &domain.Session{ChatID: 100, Token: "tok", UserID: 7, Role: domain.RoleMember, LoggedIn: true}
}

func adminSession() *domain.Session {
	return &domain.Session{ChatID: 101, Token: "tok", UserID: 1, Role: domain.RoleAdmin, LoggedIn: true}
}

func TestListByTab(t *testing.T) {
	api := &fakeScheduleAPI{schedules: []*domain.Schedule{
		{ID: 1, Title: "Latihan Rutin", DateTime: "2025-12-15 • 18:00"},
		{ID: 2, Title: "Turnamen Lalu", DateTime: "01/12/2025"},
		{ID: 3, Title: "Rapat", DateTime: "kapan-kapan"},
	}}
	svc := NewScheduleService(api)

	upcoming, err := svc.List(domain.TabUpcoming, testNow)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	require.Equal(t, int64(1), upcoming[0].ID)

	completed, err := svc.List(domain.TabCompleted, testNow)
	require.NoError(t, err)
	require.Len(t, completed, 2)

	all, err := svc.List(domain.TabAll, testNow)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestJoinUpcoming(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules:      []*domain.Schedule{{ID: 1, Title: "Latihan", DateTime: "15 Desember 2025 • 18:00", MaxParticipants: 2}},
		participations: map[int64][]*domain.Participation{},
	}
	svc := NewScheduleService(api)

	p, err := svc.Join(memberSession(), 1, testNow)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRegistered, p.Status)
	require.Equal(t, int64(7), p.UserID)
	require.Equal(t, "2025-12-10T14:30:00", p.RegistrationDate)
}

func TestJoinPastRejected(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, DateTime: "2025-12-10"}},
	}
	svc := NewScheduleService(api)

	_, err := svc.Join(memberSession(), 1, testNow)
	require.ErrorIs(t, err, ErrActivityPast)
	require.Empty(t, api.registered)
}

func TestJoinUnparseableDateRejected(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, DateTime: "besok sore"}},
	}
	svc := NewScheduleService(api)

	_, err := svc.Join(memberSession(), 1, testNow)
	require.ErrorIs(t, err, ErrActivityPast)
}

func TestJoinDuplicateRejected(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, DateTime: "2025-12-15"}},
		participations: map[int64][]*domain.Participation{
			1: {{ID: 5, UserID: 7, ScheduleID: 1, Status: domain.StatusRegistered}},
		},
	}
	svc := NewScheduleService(api)

	_, err := svc.Join(memberSession(), 1, testNow)
	require.ErrorIs(t, err, ErrAlreadyJoined)
}

func TestJoinAfterCancelAllowed(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, DateTime: "2025-12-15"}},
		participations: map[int64][]*domain.Participation{
			1: {{ID: 5, UserID: 7, ScheduleID: 1, Status: domain.StatusCancelled}},
		},
	}
	svc := NewScheduleService(api)

	_, err := svc.Join(memberSession(), 1, testNow)
	require.NoError(t, err)
}

func TestJoinFullRejected(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, DateTime: "2025-12-15", MaxParticipants: 1}},
		participations: map[int64][]*domain.Participation{
			1: {{ID: 5, UserID: 9, ScheduleID: 1, Status: domain.StatusRegistered}},
		},
	}
	svc := NewScheduleService(api)

	_, err := svc.Join(memberSession(), 1, testNow)
	require.ErrorIs(t, err, ErrActivityFull)
}

func TestJoinUnlimitedIgnoresHeadcount(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, DateTime: "2025-12-15", MaxParticipants: 0}},
		participations: map[int64][]*domain.Participation{
			1: {
				{ID: 5, UserID: 9, ScheduleID: 1, Status: domain.StatusRegistered},
				{ID: 6, UserID: 10, ScheduleID: 1, Status: domain.StatusRegistered},
			},
		},
	}
	svc := NewScheduleService(api)

	_, err := svc.Join(memberSession(), 1, testNow)
	require.NoError(t, err)
}

func TestCancelFlipsStatus(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, DateTime: "2025-12-15"}},
		participations: map[int64][]*domain.Participation{
			1: {{ID: 5, UserID: 7, ScheduleID: 1, Status: domain.StatusRegistered}},
		},
	}
	svc := NewScheduleService(api)

	err := svc.Cancel(memberSession(), 1, testNow)
	require.NoError(t, err)
	require.Len(t, api.cancelled, 1)
	require.Equal(t, domain.StatusCancelled, api.cancelled[0].Status)
}

func TestCancelPastRejected(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, DateTime: "2025-12-10"}},
		participations: map[int64][]*domain.Participation{
			1: {{ID: 5, UserID: 7, ScheduleID: 1, Status: domain.StatusRegistered}},
		},
	}
	svc := NewScheduleService(api)

	err := svc.Cancel(memberSession(), 1, testNow)
	require.ErrorIs(t, err, ErrActivityPast)
	require.Empty(t, api.cancelled)
}

func TestMyActivitiesFallbackRow(t *testing.T) {
	api := &fakeScheduleAPI{
		schedules: []*domain.Schedule{{ID: 1, Title: "Latihan", DateTime: "2025-12-15"}},
		userParts: []*domain.Participation{
			{ID: 5, UserID: 7, ScheduleID: 1, Status: domain.StatusRegistered},
			{ID: 6, UserID: 7, ScheduleID: 99, Status: domain.StatusRegistered},
			{ID: 7, UserID: 7, ScheduleID: 1, Status: domain.StatusCancelled},
		},
	}
	svc := NewScheduleService(api)

	all, err := svc.MyActivities(memberSession(), domain.TabAll, testNow)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.False(t, all[0].Fallback)
	require.True(t, all[1].Fallback)
	require.Equal(t, "Kegiatan #99", all[1].Schedule.Title)

	// fallback rows have no parseable date and land in Completed
	completed, err := svc.MyActivities(memberSession(), domain.TabCompleted, testNow)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.True(t, completed[0].Fallback)
}

func TestMyActivitiesSurvivesScheduleFetchFailure(t *testing.T) {
	api := &fakeScheduleAPI{
		schedulesErr: errAPI,
		userParts: []*domain.Participation{
			{ID: 5, UserID: 7, ScheduleID: 1, Status: domain.StatusRegistered},
		},
	}
	svc := NewScheduleService(api)

	all, err := svc.MyActivities(memberSession(), domain.TabAll, testNow)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].Fallback)
}

func TestParseScheduleArgs(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleAPI{})

	form, err := svc.ParseScheduleArgs("Latihan Rutin | latihan | 15 Desember 2025 • 18:00 | Sekretariat UKM | 20 | Bawa papan sendiri")
	require.NoError(t, err)
	require.Equal(t, "Latihan Rutin", form.Title)
	require.Equal(t, "LATIHAN", form.ActivityType)
	require.Equal(t, 20, form.MaxParticipants)
	require.Equal(t, "Bawa papan sendiri", form.Description)

	_, err = svc.ParseScheduleArgs("Latihan | LATIHAN | 15 Desember 2025")
	require.Error(t, err)

	_, err = svc.ParseScheduleArgs("Latihan | LATIHAN | besok | Sekretariat")
	require.Error(t, err)
}

func TestAdminCRUDRequiresAdmin(t *testing.T) {
	api := &fakeScheduleAPI{}
	svc := NewScheduleService(api)
	form := &ScheduleForm{Title: "T", ActivityType: "LATIHAN", DateTime: "2025-12-15", Location: "Aula"}

	_, err := svc.Create(memberSession(), form)
	require.ErrorIs(t, err, ErrForbidden)

	created, err := svc.Create(adminSession(), form)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	require.ErrorIs(t, svc.Update(memberSession(), created.ID, form), ErrForbidden)
	require.ErrorIs(t, svc.Delete(memberSession(), created.ID), ErrForbidden)
	require.NoError(t, svc.Delete(adminSession(), created.ID))
}
