package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/ndt-worklog/internal/database"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (suite *RepositoryTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	// One connection keeps every query on the same in-memory database
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(suite.db.AutoMigrate(database.Models()...))
}

func (suite *RepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *RepositoryTestSuite) createUser(username string, role models.Role) *models.User {
	user := &models.User{Username: &username, Role: role, Enabled: true, AuthSource: models.AuthSourceLocal}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *RepositoryTestSuite) createEntry(userID uint64, date, hours, job string) *models.WorkHourEntry {
	d, err := time.Parse("2006-01-02", date)
	suite.Require().NoError(err)
	entry := &models.WorkHourEntry{
		UserID:       userID,
		OperatorName: "Operator",
		WorkDate:     d,
		JobNumber:    job,
		JobName:      job + " MOD 1",
		ActivityType: models.ActivityNDEUT,
		HoursWorked:  decimal.RequireFromString(hours),
	}
	suite.Require().NoError(suite.db.Create(entry).Error)
	return entry
}

func date(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func (suite *RepositoryTestSuite) TestWorkHours_ListFilters() {
	repo := NewWorkHourRepository(suite.db)
	alice := suite.createUser("alice", models.RoleOperator)
	bob := suite.createUser("bob", models.RoleOperator)

	suite.createEntry(alice.ID, "2025-03-01", "8", "J-1")
	suite.createEntry(alice.ID, "2025-03-15", "4", "J-2")
	suite.createEntry(alice.ID, "2025-03-31", "6", "J-1")
	suite.createEntry(bob.ID, "2025-03-15", "7", "J-1")

	entries, total, err := repo.List(WorkHoursFilter{UserID: &alice.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Equal("2025-03-31", entries[0].WorkDate.Format("2006-01-02"))

	// End date is inclusive
	entries, total, err = repo.List(WorkHoursFilter{StartDate: date("2025-03-15"), EndDate: date("2025-03-31")})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(entries, 3)

	entries, _, err = repo.List(WorkHoursFilter{JobNumber: "J-1", EndDate: date("2025-03-15")})
	suite.Require().NoError(err)
	suite.Len(entries, 2)

	entries, total, err = repo.List(WorkHoursFilter{Page: 2, PageSize: 3})
	suite.Require().NoError(err)
	suite.Equal(int64(4), total)
	suite.Len(entries, 1)
}

func (suite *RepositoryTestSuite) TestWorkHours_ModuleDerivedOnSave() {
	repo := NewWorkHourRepository(suite.db)
	user := suite.createUser("carla", models.RoleOperator)
	entry := suite.createEntry(user.ID, "2025-03-10", "8", "J-9")

	found, err := repo.FindByID(entry.ID)
	suite.Require().NoError(err)
	suite.Equal("MOD 1", found.ModuleNumber)
	suite.True(decimal.RequireFromString("8").Equal(found.HoursWorked))

	found.JobName = "Deck"
	suite.Require().NoError(repo.Update(found))
	found, err = repo.FindByID(entry.ID)
	suite.Require().NoError(err)
	suite.Equal(models.OtherModule, found.ModuleNumber)
}

func (suite *RepositoryTestSuite) TestWorkHours_Aggregates() {
	repo := NewWorkHourRepository(suite.db)
	alice := suite.createUser("alice", models.RoleOperator)
	bob := suite.createUser("bob", models.RoleOperator)

	suite.createEntry(alice.ID, "2025-02-28", "8", "J-1")
	suite.createEntry(alice.ID, "2025-03-03", "0.1", "J-1")
	suite.createEntry(bob.ID, "2025-03-03", "0.2", "J-1")
	suite.createEntry(bob.ID, "2025-03-04", "5", "J-1")

	sum, err := repo.SumHoursSince(*date("2025-03-01"))
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("5.3").Equal(sum), sum.String())

	ids, err := repo.UserIDsWithEntriesOn(*date("2025-03-03"))
	suite.Require().NoError(err)
	suite.ElementsMatch([]uint64{alice.ID, bob.ID}, ids)

	since, err := repo.ListSince(alice.ID, *date("2025-03-01"))
	suite.Require().NoError(err)
	suite.Len(since, 1)

	suite.ErrorIs(repo.Delete(9999), gorm.ErrRecordNotFound)
}

func (suite *RepositoryTestSuite) TestUser_DeleteCascades() {
	users := NewUserRepository(suite.db)
	hoursRepo := NewWorkHourRepository(suite.db)
	equipment := NewEquipmentRepository(suite.db)

	alice := suite.createUser("alice", models.RoleOperator)
	bob := suite.createUser("bob", models.RoleOperator)
	suite.createEntry(alice.ID, "2025-03-01", "8", "J-1")
	suite.createEntry(bob.ID, "2025-03-01", "8", "J-1")

	item := &models.Equipment{EquipmentType: models.EquipmentUTProbe, Brand: "Olympus", InternalSerialNumber: "P-1", AssignedOperatorID: &alice.ID}
	suite.Require().NoError(equipment.Create(item))
	suite.Require().NoError(suite.db.Create(&models.Qualification{
		OperatorID: alice.ID, QualificationType: models.MethodUT, Level: models.Level2,
		IssuingBody: "RINA", IssueDate: *date("2024-01-01"), ExpiryDate: *date("2029-01-01"),
	}).Error)

	suite.Require().NoError(users.Delete(alice.ID))

	_, total, err := hoursRepo.List(WorkHoursFilter{})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)

	reloaded, err := equipment.FindByID(item.ID)
	suite.Require().NoError(err)
	suite.Nil(reloaded.AssignedOperatorID)

	var qualifications int64
	suite.db.Model(&models.Qualification{}).Count(&qualifications)
	suite.Zero(qualifications)

	suite.ErrorIs(users.Delete(alice.ID), gorm.ErrRecordNotFound)
}

func (suite *RepositoryTestSuite) TestUser_Lookups() {
	users := NewUserRepository(suite.db)
	suite.createUser("zed", models.RoleAdmin)
	suite.createUser("amy", models.RoleOperator)

	email := "ext@example.com"
	external := &models.User{Email: &email, Enabled: true, Role: models.RoleOperator,
		AuthSource: models.AuthSourceExternal, ExternalProvider: "google", ExternalID: "g-1"}
	suite.Require().NoError(users.Create(external))

	found, err := users.FindByExternalID("google", "g-1")
	suite.Require().NoError(err)
	suite.Equal(external.ID, found.ID)

	found, err = users.FindByEmail(email)
	suite.Require().NoError(err)
	suite.Nil(found.Username)

	admin := models.RoleAdmin
	count, err := users.Count(&admin)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)

	list, err := users.List(nil)
	suite.Require().NoError(err)
	suite.Len(list, 3)

	// Duplicate usernames are rejected by the unique index
	dup := "amy"
	err = users.Create(&models.User{Username: &dup, Enabled: true, Role: models.RoleOperator})
	suite.ErrorIs(err, gorm.ErrDuplicatedKey)
}

func (suite *RepositoryTestSuite) TestProcedure_CurrentRevisionDemotesSiblings() {
	repo := NewProcedureRepository(suite.db)

	rev0 := &models.Procedure{JobNumber: "J-1", ProcedureCode: "UT-01", ProcedureName: "UT welds",
		ProcedureType: models.MethodUT, Revision: "Rev. 0", IsCurrentRevision: true, Status: models.ProcedureApproved}
	suite.Require().NoError(repo.Create(rev0))

	other := &models.Procedure{JobNumber: "J-2", ProcedureCode: "UT-01", ProcedureName: "UT welds",
		ProcedureType: models.MethodUT, IsCurrentRevision: true, Status: models.ProcedureDraft}
	suite.Require().NoError(repo.Create(other))

	rev1 := &models.Procedure{JobNumber: "J-1", ProcedureCode: "UT-01", ProcedureName: "UT welds",
		ProcedureType: models.MethodUT, Revision: "Rev. 1", IsCurrentRevision: true, Status: models.ProcedureDraft}
	suite.Require().NoError(repo.Create(rev1))

	old, err := repo.FindByID(rev0.ID)
	suite.Require().NoError(err)
	suite.False(old.IsCurrentRevision)
	suite.Equal(models.ProcedureSuperseded, old.Status)

	untouched, err := repo.FindByID(other.ID)
	suite.Require().NoError(err)
	suite.True(untouched.IsCurrentRevision)

	current, err := repo.List(ProcedureFilter{JobNumber: "J-1", CurrentOnly: true})
	suite.Require().NoError(err)
	suite.Require().Len(current, 1)
	suite.Equal(rev1.ID, current[0].ID)

	all, err := repo.List(ProcedureFilter{JobNumber: "J-1"})
	suite.Require().NoError(err)
	suite.Len(all, 2)

	// A draft saved as non-current stays non-current
	draft := &models.Procedure{JobNumber: "J-1", ProcedureCode: "UT-01", ProcedureName: "UT welds",
		ProcedureType: models.MethodUT, Revision: "Rev. 2", IsCurrentRevision: false, Status: models.ProcedureDraft}
	suite.Require().NoError(repo.Create(draft))
	reloaded, err := repo.FindByID(draft.ID)
	suite.Require().NoError(err)
	suite.False(reloaded.IsCurrentRevision)
}

func (suite *RepositoryTestSuite) TestExpiryQueries() {
	equipment := NewEquipmentRepository(suite.db)
	qualifications := NewQualificationRepository(suite.db)
	op := suite.createUser("op", models.RoleOperator)

	suite.Require().NoError(equipment.Create(&models.Equipment{EquipmentType: models.EquipmentMagneticYoke, Brand: "Parker",
		InternalSerialNumber: "Y-1", CalibrationExpiry: date("2025-03-20")}))
	suite.Require().NoError(equipment.Create(&models.Equipment{EquipmentType: models.EquipmentUTInstrument, Brand: "GE",
		InternalSerialNumber: "U-1", CalibrationExpiry: date("2026-01-01")}))
	suite.Require().NoError(equipment.Create(&models.Equipment{EquipmentType: models.EquipmentUTInstrument, Brand: "GE",
		InternalSerialNumber: "U-2", CalibrationExpiry: date("2025-03-01"), Status: models.EquipmentRetired}))

	due, err := equipment.ListCalibrationDueBefore(*date("2025-04-01"))
	suite.Require().NoError(err)
	suite.Require().Len(due, 1)
	suite.Equal("Y-1", due[0].InternalSerialNumber)

	suite.Require().NoError(qualifications.Create(&models.Qualification{OperatorID: op.ID, QualificationType: models.MethodMT,
		Level: models.Level2, IssuingBody: "RINA", IssueDate: *date("2020-01-01"), ExpiryDate: *date("2025-03-25")}))
	suite.Require().NoError(qualifications.Create(&models.Qualification{OperatorID: op.ID, QualificationType: models.MethodUT,
		Level: models.Level2, IssuingBody: "RINA", IssueDate: *date("2020-01-01"), ExpiryDate: *date("2025-03-25"),
		Status: models.QualificationSuspended}))

	expiring, err := qualifications.ListExpiringBefore(*date("2025-04-01"))
	suite.Require().NoError(err)
	suite.Require().Len(expiring, 1)
	suite.Equal(models.MethodMT, expiring[0].QualificationType)
	suite.Equal(op.ID, expiring[0].Operator.ID)
}

func (suite *RepositoryTestSuite) TestSettings_Upsert() {
	repo := NewSettingsRepository(suite.db)

	_, err := repo.Get()
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	suite.Require().NoError(repo.Save(&models.AppSettings{Timezone: "Europe/Rome", StandardHours: decimal.NewFromInt(8)}))
	suite.Require().NoError(repo.Save(&models.AppSettings{Timezone: "UTC", StandardHours: decimal.RequireFromString("7.5"), DailyReminders: true}))

	settings, err := repo.Get()
	suite.Require().NoError(err)
	suite.Equal("UTC", settings.Timezone)
	suite.True(settings.DailyReminders)

	var count int64
	suite.db.Model(&models.AppSettings{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *RepositoryTestSuite) TestJobOrders() {
	repo := NewJobOrderRepository(suite.db)
	suite.Require().NoError(repo.Create(&models.JobOrder{JobNumber: "J-2", JobName: "Hull"}))
	suite.Require().NoError(repo.Create(&models.JobOrder{JobNumber: "J-1", JobName: "Deck", Status: models.JobOrderCompleted}))

	orders, err := repo.List(nil)
	suite.Require().NoError(err)
	suite.Require().Len(orders, 2)
	suite.Equal("J-1", orders[0].JobNumber)
	suite.Equal(models.JobOrderActive, orders[1].Status)

	active := models.JobOrderActive
	count, err := repo.Count(&active)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)

	found, err := repo.FindByNumber("J-2")
	suite.Require().NoError(err)
	suite.Equal("Hull", found.JobName)

	suite.ErrorIs(repo.Create(&models.JobOrder{JobNumber: "J-2", JobName: "Again"}), gorm.ErrDuplicatedKey)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
