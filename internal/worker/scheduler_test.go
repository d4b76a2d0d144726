package worker

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/ndt-worklog/internal/database"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type SchedulerTestSuite struct {
	suite.Suite
	db        *gorm.DB
	registry  *prometheus.Registry
	settings  *services.SettingsService
	scheduler *Scheduler
}

// 2025-03-19 20:00 UTC is already the 19th in Rome.
var scanTime = time.Date(2025, time.March, 19, 20, 0, 0, 0, time.UTC)

func (suite *SchedulerTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(suite.db.AutoMigrate(database.Models()...))

	suite.registry = prometheus.NewRegistry()
	m := metrics.New(suite.registry, suite.registry, "test")
	suite.settings = services.NewSettingsService(repository.NewSettingsRepository(suite.db), "Europe/Rome", "8", nil)

	suite.scheduler = NewScheduler(Deps{
		Users:          repository.NewUserRepository(suite.db),
		WorkHours:      repository.NewWorkHourRepository(suite.db),
		Equipment:      repository.NewEquipmentRepository(suite.db),
		Qualifications: repository.NewQualificationRepository(suite.db),
		Settings:       suite.settings,
		Metrics:        m,
	}, zerolog.Nop())
	suite.scheduler.now = func() time.Time { return scanTime }
}

func (suite *SchedulerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *SchedulerTestSuite) createUser(username string, role models.Role, enabled bool) *models.User {
	user := &models.User{Username: &username, Role: role, Enabled: enabled, AuthSource: models.AuthSourceLocal}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *SchedulerTestSuite) logHours(userID uint64, date time.Time) {
	suite.Require().NoError(suite.db.Create(&models.WorkHourEntry{
		UserID:       userID,
		OperatorName: "op",
		WorkDate:     date,
		JobNumber:    "J-1",
		JobName:      "Hull",
		ActivityType: models.ActivityNDEUT,
		HoursWorked:  decimal.NewFromInt(8),
	}).Error)
}

func (suite *SchedulerTestSuite) enableReminders() {
	admin := suite.createUser("admin", models.RoleAdmin, true)
	on := true
	_, err := suite.settings.Update(policy.Actor{ID: admin.ID, Role: admin.Role}, services.UpdateSettingsInput{DailyReminders: &on})
	suite.Require().NoError(err)
	suite.logHours(admin.ID, time.Date(2025, time.March, 19, 0, 0, 0, 0, time.UTC))
}

func (suite *SchedulerTestSuite) TestReminders_Disabled() {
	suite.createUser("mario", models.RoleOperator, true)

	missing, err := suite.scheduler.Reminders()
	suite.Require().NoError(err)
	suite.Empty(missing)
}

func (suite *SchedulerTestSuite) TestReminders_ListsUsersWithoutEntries() {
	suite.enableReminders()
	mario := suite.createUser("mario", models.RoleOperator, true)
	luigi := suite.createUser("luigi", models.RoleOperator, true)
	suite.createUser("retired", models.RoleOperator, false)

	suite.logHours(luigi.ID, time.Date(2025, time.March, 19, 0, 0, 0, 0, time.UTC))
	suite.logHours(mario.ID, time.Date(2025, time.March, 18, 0, 0, 0, 0, time.UTC))

	missing, err := suite.scheduler.Reminders()
	suite.Require().NoError(err)
	suite.Require().Len(missing, 1)
	suite.Equal(mario.ID, missing[0].ID)
}

func (suite *SchedulerTestSuite) TestExpiryScan() {
	op := suite.createUser("mario", models.RoleOperator, true)
	soon := scanTime.AddDate(0, 0, 10)
	later := scanTime.AddDate(0, 0, 90)
	expired := scanTime.AddDate(0, 0, -3)

	suite.Require().NoError(suite.db.Create(&[]models.Equipment{
		{EquipmentType: models.EquipmentMagneticYoke, Brand: "A", InternalSerialNumber: "1", CalibrationExpiry: &soon, Status: models.EquipmentActive},
		{EquipmentType: models.EquipmentUTInstrument, Brand: "B", InternalSerialNumber: "2", CalibrationExpiry: &expired, Status: models.EquipmentMaintenance},
		{EquipmentType: models.EquipmentUTInstrument, Brand: "C", InternalSerialNumber: "3", CalibrationExpiry: &later, Status: models.EquipmentActive},
		{EquipmentType: models.EquipmentUTInstrument, Brand: "D", InternalSerialNumber: "4", CalibrationExpiry: &soon, Status: models.EquipmentRetired},
	}).Error)

	issue := scanTime.AddDate(-5, 0, 0)
	suite.Require().NoError(suite.db.Create(&[]models.Qualification{
		{OperatorID: op.ID, QualificationType: models.MethodUT, Level: models.Level2, IssuingBody: "RINA", IssueDate: issue, ExpiryDate: soon, Status: models.QualificationActive},
		{OperatorID: op.ID, QualificationType: models.MethodMT, Level: models.Level2, IssuingBody: "RINA", IssueDate: issue, ExpiryDate: soon, Status: models.QualificationSuspended},
		{OperatorID: op.ID, QualificationType: models.MethodPT, Level: models.Level1, IssuingBody: "RINA", IssueDate: issue, ExpiryDate: later, Status: models.QualificationActive},
	}).Error)

	report, err := suite.scheduler.ExpiryScan()
	suite.Require().NoError(err)
	suite.Len(report.Equipment, 2)
	suite.Equal("2", report.Equipment[0].InternalSerialNumber)
	suite.Require().Len(report.Qualifications, 1)
	suite.Equal(models.MethodUT, report.Qualifications[0].QualificationType)

	count, err := testutil.GatherAndCount(suite.registry, "ndt_worklog_expiry_warnings")
	suite.Require().NoError(err)
	suite.Equal(2, count)
}

func (suite *SchedulerTestSuite) TestWeeklyReport_Disabled() {
	mario := suite.createUser("mario", models.RoleOperator, true)
	suite.logHours(mario.ID, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC))

	totals, err := suite.scheduler.WeeklyReport()
	suite.Require().NoError(err)
	suite.Empty(totals)
}

func (suite *SchedulerTestSuite) TestWeeklyReport_TotalsLastFullWeek() {
	admin := suite.createUser("admin", models.RoleAdmin, true)
	on := true
	_, err := suite.settings.Update(policy.Actor{ID: admin.ID, Role: admin.Role}, services.UpdateSettingsInput{WeeklyReports: &on})
	suite.Require().NoError(err)

	mario := suite.createUser("mario", models.RoleOperator, true)
	retired := suite.createUser("retired", models.RoleOperator, false)

	// scanTime is Wednesday 2025-03-19: the reported week is 10 to 16 March.
	suite.logHours(mario.ID, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	suite.logHours(mario.ID, time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC))
	suite.logHours(mario.ID, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC))
	suite.logHours(mario.ID, time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC))
	suite.logHours(retired.ID, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC))

	totals, err := suite.scheduler.WeeklyReport()
	suite.Require().NoError(err)
	suite.Require().Len(totals, 2)

	byUser := map[uint64]decimal.Decimal{}
	for _, t := range totals {
		byUser[t.User.ID] = t.Hours
	}
	suite.True(byUser[mario.ID].Equal(decimal.NewFromInt(16)), byUser[mario.ID].String())
	suite.True(byUser[admin.ID].IsZero())
	suite.NotContains(byUser, retired.ID)
}

func (suite *SchedulerTestSuite) TestRegister() {
	suite.Require().NoError(suite.scheduler.Register("0 18 * * 1-5", "0 7 * * *", "0 8 * * 1"))
	suite.Len(suite.scheduler.cron.Entries(), 3)

	suite.Error(suite.scheduler.Register("not a schedule", "", ""))
	suite.Error(suite.scheduler.Register("", "", "weekly"))
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}
