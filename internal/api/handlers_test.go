package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lksmaxx/enroll-api/internal/api/middleware"
	"github.com/lksmaxx/enroll-api/internal/domain/agegroup"
	"github.com/lksmaxx/enroll-api/internal/domain/enrollment"
	"github.com/lksmaxx/enroll-api/internal/usecase"
)

type nopPublisher struct {
	count int
}

func (p *nopPublisher) Publish(ctx context.Context, key, value []byte) error {
	p.count++
	return nil
}

type testEnv struct {
	handler http.Handler
	store   *enrollment.MemoryStore
	catalog *agegroup.MemoryCatalog
	pub     *nopPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := enrollment.NewMemoryStore()
	catalog := agegroup.NewMemoryCatalog()
	require.NoError(t, catalog.Create(context.Background(), &agegroup.AgeGroup{
		ID: "g1", MinAge: 18, MaxAge: 25, CreatedAt: time.Now(),
	}))

	pub := &nopPublisher{}
	handlers := NewHandlers(
		usecase.NewSubmitEnrollment(catalog, store, pub),
		usecase.NewGetEnrollment(nil, store),
		usecase.NewAgeGroups(catalog),
	)

	auth, err := middleware.NewBasicAuth("test", "admin:adminpw:admin,operator:userpw:user")
	require.NoError(t, err)

	return &testEnv{
		handler: NewRouter(handlers, auth, nil),
		store:   store,
		catalog: catalog,
		pub:     pub,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body, user, pass string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.SetBasicAuth(user, pass)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateEnrollment(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/enrollments/", `{"name":"Ana","age":22,"cpf":"111.444.777-35"}`, "operator", "userpw")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, "pending", resp["status"])
	assert.Equal(t, 1, env.pub.count)
}

func TestCreateEnrollmentValidationErrorsListEveryField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/enrollments/", `{"name":"","age":0,"cpf":"111.111.111-11"}`, "operator", "userpw")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Errors, 3)
	assert.Equal(t, 0, env.pub.count, "rejected submissions must not be enqueued")
}

func TestCreateEnrollmentNoMatchingAgeGroup(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/enrollments/", `{"name":"Ana","age":99,"cpf":"11144477735"}`, "operator", "userpw")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "age")
	assert.Equal(t, 0, env.pub.count)
}

func TestGetEnrollment(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/enrollments/", `{"name":"Ana","age":22,"cpf":"11144477735"}`, "operator", "userpw")
	require.Equal(t, http.StatusOK, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, "/enrollments/"+created["id"], "", "operator", "userpw")
	require.Equal(t, http.StatusOK, rec.Code)

	var dto usecase.EnrollmentStatusDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, created["id"], dto.ID)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, "g1", dto.AgeGroupID)
}

func TestGetEnrollmentNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/enrollments/unknown", "", "operator", "userpw")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrollmentsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/enrollments/", `{"name":"Ana","age":22,"cpf":"11144477735"}`, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = env.do(t, http.MethodPost, "/enrollments/", `{"name":"Ana","age":22,"cpf":"11144477735"}`, "operator", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAgeGroupsAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/age-groups/", "", "operator", "userpw")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/age-groups/", "", "admin", "adminpw")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAgeGroupCrud(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/age-groups/", `{"min_age":26,"max_age":35}`, "admin", "adminpw")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created agegroup.AgeGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = env.do(t, http.MethodGet, "/age-groups/"+created.ID, "", "admin", "adminpw")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/age-groups/"+created.ID, `{"min_age":26,"max_age":40}`, "admin", "adminpw")
	require.Equal(t, http.StatusOK, rec.Code)
	var updated agegroup.AgeGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 40, updated.MaxAge)

	rec = env.do(t, http.MethodDelete, "/age-groups/"+created.ID, "", "admin", "adminpw")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/age-groups/"+created.ID, "", "admin", "adminpw")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAgeGroupInvalidRange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/age-groups/", `{"min_age":40,"max_age":30}`, "admin", "adminpw")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/age-groups/", `{"min_age":0,"max_age":200}`, "admin", "adminpw")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
