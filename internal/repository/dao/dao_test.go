package dao_test

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/ingetuto/ingetuto-api/internal/repository/dao"
)

var testDB *gorm.DB

// TestMain starts a throwaway Postgres container. Without Docker, or with -short,
// the tests in this package skip.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, skipping dao tests: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=ingetuto",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=ingetuto",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres: %v", err)
	}
	_ = resource.Expire(180)

	dsn := fmt.Sprintf("postgres://ingetuto:secret@%s/ingetuto?sslmode=disable", resource.GetHostPort("5432/tcp"))
	pool.MaxWait = 90 * time.Second
	err = pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err = sqlDB.Ping(); err != nil {
			return err
		}
		testDB = db
		return nil
	})
	if err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("could not connect to postgres: %v", err)
	}

	if err = dao.InitTables(testDB); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("dao.InitTables: %v", err)
	}

	code := m.Run()
	_ = pool.Purge(resource)
	os.Exit(code)
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres not available")
	}

	require.NoError(t, testDB.Exec(`TRUNCATE users, user_roles, subjects, tutor_subjects, tutor_requests,
		weekly_blocks, monthly_blocks, tutoring_sessions, session_cancellations RESTART IDENTITY CASCADE`).Error)

	return testDB
}

func insertUser(t *testing.T, users *dao.UserDAO, email string, roles ...string) dao.User {
	t.Helper()
	ctx := context.Background()

	user, err := users.Insert(ctx, dao.User{FirstName: "Test", LastName: "User", Email: email})
	require.NoError(t, err)
	if len(roles) > 0 {
		found, err := users.FindRolesByName(ctx, roles)
		require.NoError(t, err)
		require.NoError(t, users.ReplaceRoles(ctx, user.ID, found, nil))
	}

	return user
}

func TestUserDAO(t *testing.T) {
	db := newDB(t)
	users := dao.NewUserDAO(db)
	ctx := context.Background()

	ana := insertUser(t, users, "ana@udea.edu.co", "ESTUDIANTE", "TUTOR")

	_, err := users.Insert(ctx, dao.User{FirstName: "Otra", LastName: "Ana", Email: "ana@udea.edu.co"})
	assert.ErrorIs(t, err, dao.ErrUserEmailExists)

	found, err := users.FindByEmail(ctx, "ana@udea.edu.co")
	require.NoError(t, err)
	assert.Len(t, found.Roles, 2)

	_, err = users.FindRolesByName(ctx, []string{"ESTUDIANTE", "DECANO"})
	assert.ErrorIs(t, err, dao.ErrRoleNotFound)

	require.NoError(t, users.UpdatePhone(ctx, ana.ID, "3001234567"))
	assert.ErrorIs(t, users.UpdatePhone(ctx, 999, "3001234567"), dao.ErrUserNotFound)

	require.NoError(t, users.Delete(ctx, ana.ID))
	_, err = users.FindByID(ctx, ana.ID)
	assert.ErrorIs(t, err, dao.ErrUserNotFound)
}

func TestUserDAO_ReplaceRolesRevokingTutor(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	users := dao.NewUserDAO(db)

	tutor := insertUser(t, users, "tutor@udea.edu.co", "ESTUDIANTE", "TUTOR")
	subject, err := dao.NewSubjectDAO(db).Insert(ctx, dao.Subject{Name: "Física", Code: "FIS-201"})
	require.NoError(t, err)

	day := time.Date(2030, time.March, 4, 0, 0, 0, 0, time.UTC)
	rows := []interface{}{
		&dao.TutorSubject{TutorID: tutor.ID, SubjectID: subject.ID},
		&dao.WeeklyBlock{TutorID: tutor.ID, Day: "LUNES", StartTime: "08:00:00", EndTime: "09:00:00", Modality: "VIRTUAL"},
		&dao.MonthlyBlock{TutorID: tutor.ID, SlotDate: day, StartTime: "08:00:00", EndTime: "09:00:00", Status: "DISPONIBLE", Origin: "PLANTILLA"},
		&dao.MonthlyBlock{TutorID: tutor.ID, SlotDate: day, StartTime: "10:00:00", EndTime: "11:00:00", Status: "RESERVADO", Origin: "PLANTILLA"},
		&dao.TutorRequest{ApplicantID: tutor.ID, SubjectID: subject.ID, SubmittedOn: day, Status: "APROBADO", AcademicRecord: "4.5", SupportFile: "hv.pdf"},
	}
	for _, row := range rows {
		require.NoError(t, db.Omit(clause.Associations).Create(row).Error)
	}

	student, err := users.FindRolesByName(ctx, []string{"ESTUDIANTE"})
	require.NoError(t, err)
	require.NoError(t, users.ReplaceRoles(ctx, tutor.ID, student,
		&dao.TutorRevocation{ApprovedStatus: "APROBADO", RevokedStatus: "REVOCADO"}))

	found, err := users.FindByID(ctx, tutor.ID)
	require.NoError(t, err)
	require.Len(t, found.Roles, 1)
	assert.Equal(t, "ESTUDIANTE", found.Roles[0].Name)

	var links, weekly int64
	require.NoError(t, db.Model(&dao.TutorSubject{}).Where("tutor_id = ?", tutor.ID).Count(&links).Error)
	require.NoError(t, db.Model(&dao.WeeklyBlock{}).Where("tutor_id = ?", tutor.ID).Count(&weekly).Error)
	assert.Zero(t, links)
	assert.Zero(t, weekly)

	var monthly []dao.MonthlyBlock
	require.NoError(t, db.Where("tutor_id = ?", tutor.ID).Find(&monthly).Error)
	require.Len(t, monthly, 1)
	assert.Equal(t, "RESERVADO", monthly[0].Status)

	var request dao.TutorRequest
	require.NoError(t, db.First(&request, "applicant_id = ?", tutor.ID).Error)
	assert.Equal(t, "REVOCADO", request.Status)
}

func TestSubjectDAO(t *testing.T) {
	db := newDB(t)
	subjects := dao.NewSubjectDAO(db)
	ctx := context.Background()

	calc, err := subjects.Insert(ctx, dao.Subject{Name: "Cálculo", Code: "MAT-101"})
	require.NoError(t, err)

	_, err = subjects.Insert(ctx, dao.Subject{Name: "Otra", Code: "MAT-101"})
	assert.ErrorIs(t, err, dao.ErrSubjectCodeExists)

	byCode, err := subjects.FindByCode(ctx, "MAT-101")
	require.NoError(t, err)
	assert.Equal(t, calc.ID, byCode.ID)

	_, err = subjects.FindByID(ctx, 999)
	assert.ErrorIs(t, err, dao.ErrSubjectNotFound)
	assert.ErrorIs(t, subjects.Delete(ctx, 999), dao.ErrSubjectNotFound)
}

func TestTutoringDAO_ReserveAndCancel(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	users := dao.NewUserDAO(db)
	tutoring := dao.NewTutoringDAO(db)

	tutor := insertUser(t, users, "tutor@udea.edu.co", "ESTUDIANTE", "TUTOR")
	student := insertUser(t, users, "student@udea.edu.co", "ESTUDIANTE")
	other := insertUser(t, users, "other@udea.edu.co", "ESTUDIANTE")
	subject, err := dao.NewSubjectDAO(db).Insert(ctx, dao.Subject{Name: "Física", Code: "FIS-201"})
	require.NoError(t, err)

	day := time.Date(2030, time.March, 4, 0, 0, 0, 0, time.UTC)
	block := dao.MonthlyBlock{
		TutorID: tutor.ID, SlotDate: day, StartTime: "08:00:00", EndTime: "09:00:00",
		Modality: "VIRTUAL", Status: "DISPONIBLE", Origin: "PLANTILLA",
	}
	_, err = dao.NewAvailabilityDAO(db).ReplaceMonth(ctx, tutor.ID, day, day.AddDate(0, 1, 0), []dao.MonthlyBlock{block})
	require.NoError(t, err)
	blocks, err := dao.NewAvailabilityDAO(db).FindMonthly(ctx, tutor.ID, day, day.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	session := dao.Session{
		StudentID: student.ID, SubjectID: subject.ID, BlockID: blocks[0].ID,
		Topic: "Cinemática", RequestedAt: time.Now(),
	}
	reserved, err := tutoring.Reserve(ctx, session, "RESERVADA")
	require.NoError(t, err)
	assert.Equal(t, "RESERVADA", reserved.Status)
	assert.Equal(t, tutor.ID, reserved.TutorID)
	assert.Equal(t, "08:00:00", reserved.StartTime)

	session.StudentID = other.ID
	_, err = tutoring.Reserve(ctx, session, "RESERVADA")
	assert.ErrorIs(t, err, dao.ErrBlockNotAvailable)

	_, err = dao.NewAvailabilityDAO(db).ReplaceMonth(ctx, tutor.ID, day, day.AddDate(0, 1, 0), nil)
	assert.ErrorIs(t, err, dao.ErrMonthHasBookings)

	cancelled, err := tutoring.Cancel(ctx, reserved.ID, student.ID, "no puedo asistir", []string{"RESERVADA", "PROGRAMADA"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELADA", cancelled.Status)

	_, err = tutoring.Cancel(ctx, reserved.ID, student.ID, "otra vez", []string{"RESERVADA", "PROGRAMADA"})
	assert.ErrorIs(t, err, dao.ErrSessionStateChanged)

	again, err := tutoring.Reserve(ctx, session, "RESERVADA")
	require.NoError(t, err)
	assert.Equal(t, other.ID, again.StudentID)
}
