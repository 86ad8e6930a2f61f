package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/attendance"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	testutil "github.com/trezcool/shule/tests"
)

func setNow(t *testing.T, year int, month time.Month, day int) {
	core.NowFunc = func() time.Time { return time.Date(year, month, day, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { core.NowFunc = time.Now })
}

func TestService_Mark(t *testing.T) {
	db := inmemdb.NewDB()
	accounts := inmemdb.NewAccountRepository(db)
	svc := attendance.NewService(inmemdb.NewAttendanceRepository(db), account.NewService(accounts, nil, nil))
	ctx := context.Background()

	bea := testutil.CreateStudent(t, accounts, "Bea", "bea@test.cd", "pwd", 0)
	abe := testutil.CreateStudent(t, accounts, "Abe", "abe@test.cd", "pwd", 0)
	cat := testutil.CreateStudent(t, accounts, "Cat", "cat@test.cd", "pwd", 0)
	tchr := testutil.CreateTeacher(t, accounts, "Tea", "tea@test.cd", "pwd")

	roster, err := svc.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, []string{"Abe", "Bea", "Cat"}, []string{roster[0].Name, roster[1].Name, roster[2].Name})

	setNow(t, 2024, 3, 4)
	n, err := svc.Mark(ctx, tchr.ID, map[int]string{
		bea.ID: "Present",
		abe.ID: "absent",
		cat.ID: "  ",
		999:    "present", // not a student
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	setNow(t, 2024, 3, 5)
	n, err = svc.Mark(ctx, tchr.ID, map[int]string{bea.ID: "late", abe.ID: "PRESENT"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tests := []struct {
		name        string
		studentID   int
		wantTotal   int
		wantPresent int
		wantDisplay string
		wantDates   []string
	}{
		{name: "bea", studentID: bea.ID, wantTotal: 2, wantPresent: 1, wantDisplay: "50.00", wantDates: []string{"04-03-2024", "05-03-2024"}},
		{name: "abe", studentID: abe.ID, wantTotal: 2, wantPresent: 1, wantDisplay: "50.00", wantDates: []string{"04-03-2024", "05-03-2024"}},
		{name: "no records", studentID: cat.ID, wantDisplay: "0.00", wantDates: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := svc.ForStudent(ctx, tt.studentID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, rep.Total)
			assert.Equal(t, tt.wantPresent, rep.Present)
			assert.Equal(t, tt.wantDisplay, rep.PercentageDisplay())

			dates := make([]string, 0, len(rep.Records))
			for _, rec := range rep.Records {
				assert.Equal(t, tchr.ID, rec.TeacherID)
				dates = append(dates, core.FormatDisplayDate(rec.Date))
			}
			assert.Equal(t, tt.wantDates, dates)
		})
	}
}

func TestReport_PercentageDisplay(t *testing.T) {
	tests := []struct {
		statuses []string
		want     string
	}{
		{statuses: []string{"present", "present", "absent"}, want: "66.67"},
		{statuses: []string{" Present "}, want: "100.00"},
		{statuses: []string{"absent", "late", "excused"}, want: "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			db := inmemdb.NewDB()
			accounts := inmemdb.NewAccountRepository(db)
			repo := inmemdb.NewAttendanceRepository(db)
			svc := attendance.NewService(repo, account.NewService(accounts, nil, nil))

			std := testutil.CreateStudent(t, accounts, "Stu", "stu@test.cd", "pwd", 0)
			for i, status := range tt.statuses {
				_, err := repo.CreateAttendance(context.Background(), attendance.Attendance{
					StudentID: std.ID,
					TeacherID: 1,
					Date:      time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
					Status:    status,
				})
				require.NoError(t, err)
			}

			rep, err := svc.ForStudent(context.Background(), std.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rep.PercentageDisplay())
		})
	}
}
