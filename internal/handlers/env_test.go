package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/ndt-worklog/internal/database"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"github.com/yukikurage/ndt-worklog/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "supersecret"

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	files  *storage.FileStore

	auth  *services.AuthService
	users *services.UserService

	admin      *models.User
	teamLeader *models.User
	operator   *models.User
	other      *models.User

	adminPassword string
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(database.Models()...))

	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	log := zerolog.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg, "test")

	userRepo := repository.NewUserRepository(db)
	jobOrderRepo := repository.NewJobOrderRepository(db)
	settings := services.NewSettingsService(repository.NewSettingsRepository(db), "Europe/Rome", "8", nil)

	env := &testEnv{
		db:    db,
		files: files,
		auth:  services.NewAuthService(userRepo, log),
		users: services.NewUserService(userRepo),
	}
	env.router = NewRouter(RouterDeps{
		DB:             db,
		SessionStore:   cookie.NewStore([]byte("secret")),
		Logger:         log,
		Metrics:        m,
		Files:          files,
		UserRepo:       userRepo,
		Auth:           env.auth,
		Users:          env.users,
		WorkHours:      services.NewWorkHoursService(repository.NewWorkHourRepository(db), userRepo, jobOrderRepo, settings, nil, m),
		JobOrders:      services.NewJobOrderService(jobOrderRepo),
		Equipment:      services.NewEquipmentService(repository.NewEquipmentRepository(db), userRepo, files, m, log),
		Procedures:     services.NewProcedureService(repository.NewProcedureRepository(db), files, m, log),
		Qualifications: services.NewQualificationService(repository.NewQualificationRepository(db), userRepo, files, m, log),
		Settings:       settings,
	})

	env.adminPassword, err = env.auth.EnsureAdmin("admin")
	require.NoError(t, err)
	env.admin, err = env.auth.Login(services.LoginInput{Username: "admin", Password: env.adminPassword})
	require.NoError(t, err)

	env.teamLeader, err = env.users.Create(actorFor(env.admin), services.RegisterInput{
		Username:  "leader",
		Password:  testPassword,
		FirstName: "Anna",
		LastName:  "Bianchi",
		Role:      models.RoleTeamLeader,
	})
	require.NoError(t, err)
	env.operator = env.register(t, "mario", "Mario", "Rossi")
	env.other = env.register(t, "luigi", "Luigi", "Verdi")

	return env
}

func (env *testEnv) register(t *testing.T, username, first, last string) *models.User {
	t.Helper()
	user, err := env.auth.Register(services.RegisterInput{
		Username:  username,
		Password:  testPassword,
		FirstName: first,
		LastName:  last,
	})
	require.NoError(t, err)
	return user
}

func actorFor(u *models.User) policy.Actor {
	return policy.Actor{ID: u.ID, Role: u.Role}
}

// login authenticates through the API and returns the session cookies.
func (env *testEnv) login(t *testing.T, user *models.User) []*http.Cookie {
	t.Helper()
	password := testPassword
	if user.ID == env.admin.ID {
		password = env.adminPassword
	}
	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": *user.Username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
	return cookies
}

// do sends a JSON request with the given cookies. A nil payload sends no body.
func (env *testEnv) do(t *testing.T, method, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return env.send(req, cookies)
}

func (env *testEnv) send(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}
