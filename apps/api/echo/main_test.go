package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/material"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	"github.com/trezcool/shule/storage/files"
)

const (
	adminUser = "admin"
	adminPwd  = "s3cret"
	password  = "pa55word"
)

type testApp struct {
	server        *echoapi.Server
	blobs         core.BlobStore
	mails         *emailsvc.ConsoleServiceMock
	accountSvc    *account.Service
	courseSvc     *course.Service
	classroomSvc  *classroom.Service
	materialSvc   *material.Service
	attendanceSvc *attendance.Service
}

func setup(t *testing.T) *testApp {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Server.DisableReqLogs = true
	conf.Uploads.MaxSize = "10M"
	conf.Admin.Username = adminUser
	conf.Admin.Password = adminPwd

	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	blobs, err := files.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	db := inmemdb.NewDB()
	mails := emailsvc.NewConsoleServiceMock(conf, logger)
	accountSvc := account.NewService(inmemdb.NewAccountRepository(db), blobs, mails)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	app := &testApp{
		blobs:         blobs,
		mails:         mails,
		accountSvc:    accountSvc,
		courseSvc:     courseSvc,
		classroomSvc:  classroom.NewService(inmemdb.NewClassroomRepository(db), accountSvc, courseSvc, blobs),
		materialSvc:   material.NewService(inmemdb.NewMaterialRepository(db), blobs),
		attendanceSvc: attendance.NewService(inmemdb.NewAttendanceRepository(db), accountSvc),
	}
	app.server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		Blobs:         blobs,
		AccountSvc:    app.accountSvc,
		CourseSvc:     app.courseSvc,
		ClassroomSvc:  app.classroomSvc,
		MaterialSvc:   app.materialSvc,
		AttendanceSvc: app.attendanceSvc,
	})
	return app
}

// Fixtures

func (app *testApp) createCourse(t *testing.T, name string) course.Course {
	crs, err := app.courseSvc.Create(context.Background(), course.NewCourse{Name: name})
	require.NoError(t, err)
	return crs
}

func (app *testApp) createStudent(t *testing.T, name, email string, age, courseID int) account.Student {
	std, err := app.accountSvc.RegisterStudent(context.Background(), account.NewStudent{
		Name:          name,
		Email:         email,
		Password:      password,
		Age:           age,
		Grade:         "10",
		CourseID:      courseID,
		ParentName:    name + " Sr",
		ParentContact: "0999",
	})
	require.NoError(t, err)
	return std
}

func (app *testApp) createTeacher(t *testing.T, name, email string) account.Teacher {
	tchr, err := app.accountSvc.RegisterTeacher(context.Background(), account.NewTeacher{
		Name:     name,
		Email:    email,
		Password: password,
	}, nil)
	require.NoError(t, err)
	return tchr
}

func (app *testApp) createParent(t *testing.T, name, email string) account.Parent {
	prnt, err := app.accountSvc.RegisterParent(context.Background(), account.NewParent{
		Name:     name,
		Email:    email,
		Password: password,
		Contact:  "0888",
	})
	require.NoError(t, err)
	return prnt
}

// client keeps the cookies set by the server between requests, like a browser.
type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
	auth    [2]string // basic auth
}

func (app *testApp) newClient(t *testing.T) *client {
	return &client{t: t, app: app, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	if c.auth[0] != "" {
		req.SetBasicAuth(c.auth[0], c.auth[1])
	}

	rec := httptest.NewRecorder()
	c.app.server.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.cookies, cookie.Name)
		} else {
			c.cookies[cookie.Name] = cookie
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return c.do(req)
}

type formFile struct {
	field    string
	filename string
	content  string
}

func (c *client) postMultipart(path string, fields map[string]string, fileList ...formFile) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	for _, f := range fileList {
		fw, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(c.t, err)
		_, err = io.WriteString(fw, f.content)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return c.do(req)
}

func (c *client) login(email string) {
	rec := c.postForm("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

type page struct {
	Name    string          `json:"page"`
	Flashes []echoapi.Flash `json:"flashes"`
	Data    json.RawMessage `json:"data"`
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) page {
	var p page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p), rec.Body.String())
	return p
}

func (p page) decodeData(t *testing.T, v interface{}) {
	require.NoError(t, json.Unmarshal(p.Data, v), string(p.Data))
}

func (p page) messages() []string {
	msgs := make([]string, 0, len(p.Flashes))
	for _, f := range p.Flashes {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

// assertRedirect checks the response redirects to `location`, follows it and returns the resulting page.
func (c *client) assertRedirect(rec *httptest.ResponseRecorder, location string) page {
	require.Equal(c.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(c.t, location, rec.Header().Get("Location"))
	return decodePage(c.t, c.get(location))
}

func TestServer_health(t *testing.T) {
	app := setup(t)
	rec := app.newClient(t).get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServer_metrics(t *testing.T) {
	app := setup(t)
	app.createStudent(t, "Jane", "jane@test.cd", 20, 0)

	c := app.newClient(t)
	c.login("jane@test.cd")
	rec := c.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shule_logins_total{result="success"} 1`)
}

func TestServer_notFound(t *testing.T) {
	app := setup(t)
	rec := app.newClient(t).get("/media/videos/nope.mp4")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodePage(t, rec).Name)
}

func TestServer_flashes(t *testing.T) {
	app := setup(t)
	c := app.newClient(t)

	rec := c.get("/student/dashboard")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie, ok := c.cookies["shule_flash"]
	require.True(t, ok)
	assert.NotContains(t, cookie.Value, "Please login first!")

	// read once
	assert.Equal(t, []string{"Please login first!"}, decodePage(t, c.get("/login")).messages())
	assert.Empty(t, decodePage(t, c.get("/login")).Flashes)

	t.Run("tampered cookie is ignored", func(t *testing.T) {
		c.get("/student/dashboard")
		c.cookies["shule_flash"].Value = "x" + c.cookies["shule_flash"].Value[1:]

		rec := c.get("/login")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodePage(t, rec).Flashes)
	})
}
