package logsvc

import (
	"log"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

// RollbarLogger writes every entry to a std logger and reports it to Rollbar when enabled.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// personID is how an account shows in Rollbar, e.g. "teacher:12".
func personID(id account.Identity) string {
	return string(id.Role) + ":" + strconv.Itoa(id.ID)
}

// splitArgs separates the session Identity, if any, from the extra data of an entry.
func splitArgs(args []interface{}) (account.Identity, []interface{}) {
	var who account.Identity
	extras := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if id, ok := arg.(account.Identity); ok {
			if who.IsZero() {
				who = id
			}
			continue
		}
		extras = append(extras, arg)
	}
	return who, extras
}

func (l RollbarLogger) log(level, msg string, args []interface{}) {
	who, extras := splitArgs(args)

	if who.IsZero() {
		rollbar.ClearPerson()
	} else {
		rollbar.SetPerson(personID(who), string(who.Role), "")
	}
	rollbar.Log(level, append([]interface{}{msg}, extras...)...)

	if who.IsZero() {
		l.std.Printf("[%s] %s", level, msg)
	} else {
		l.std.Printf("[%s] %s (%s)", level, msg, personID(who))
	}
	for _, extra := range extras {
		l.std.Printf("%+v", extra)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.DEBUG, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.INFO, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.WARN, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.ERR, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
