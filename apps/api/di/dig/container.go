package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/material"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
	"github.com/trezcool/shule/storage/files"
)

// EngineMemory keeps everything in process, for demos.
const EngineMemory = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repos is the set of repositories backing the services.
type Repos struct {
	dig.Out
	Pinger     core.Pinger
	Account    account.Repository
	Course     course.Repository
	Classroom  classroom.Repository
	Material   material.Repository
	Attendance attendance.Repository
}

type serverParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	Blobs         core.BlobStore
	DB            core.Pinger
	AccountSvc    *account.Service
	CourseSvc     *course.Service
	ClassroomSvc  *classroom.Service
	MaterialSvc   *material.Service
	AttendanceSvc *attendance.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newSqlxDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.OpenSqlx(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB, "up"); err != nil {
		return nil, err
	}
	return db, nil
}

func newRepos(conf *core.Config, loggerParam DBLoggerParam) Repos {
	if conf.Database.Engine == EngineMemory {
		db := inmemdb.NewDB()
		return Repos{
			Account:    inmemdb.NewAccountRepository(db),
			Course:     inmemdb.NewCourseRepository(db),
			Classroom:  inmemdb.NewClassroomRepository(db),
			Material:   inmemdb.NewMaterialRepository(db),
			Attendance: inmemdb.NewAttendanceRepository(db),
		}
	}

	db, err := newSqlxDB(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Repos{
		Pinger:     db,
		Account:    sqlxrepos.NewAccountRepository(db),
		Course:     sqlxrepos.NewCourseRepository(db),
		Classroom:  sqlxrepos.NewClassroomRepository(db),
		Material:   sqlxrepos.NewMaterialRepository(db),
		Attendance: sqlxrepos.NewAttendanceRepository(db),
	}
}

func newBlobStore(conf *core.Config, logger core.Logger) core.BlobStore {
	blobs, err := files.New(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up uploads: %v", err), err)
	}
	return blobs
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Blobs:         p.Blobs,
		DB:            p.DB,
		AccountSvc:    p.AccountSvc,
		CourseSvc:     p.CourseSvc,
		ClassroomSvc:  p.ClassroomSvc,
		MaterialSvc:   p.MaterialSvc,
		AttendanceSvc: p.AttendanceSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepos))
	must(c.Provide(newBlobStore))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(account.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(material.NewService))
	must(c.Provide(func(accSvc *account.Service) classroom.StudentGetter { return accSvc }))
	must(c.Provide(func(accSvc *account.Service) attendance.StudentLister { return accSvc }))
	must(c.Provide(func(courseSvc *course.Service) classroom.CourseGetter { return courseSvc }))
	must(c.Provide(classroom.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
