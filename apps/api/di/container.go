// Package di wires the API dependencies with a dig.Container.
package di

import (
	"context"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/promotion"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	reportsvc "github.com/trezcool/darasa/services/report"
	"github.com/trezcool/darasa/storage"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// NewLogger returns a Rollbar logger when a token is configured, a zap logger otherwise.
func NewLogger(conf *core.Config, prefix string) (core.Logger, error) {
	if conf.RollbarToken != "" {
		std := log.New(os.Stdout, prefix+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
		return logsvc.NewRollbarLogger(std, conf), nil
	}
	return logsvc.NewZapLogger(conf)
}

func newAPILogger(conf *core.Config) (core.Logger, error) {
	return NewLogger(conf, "API")
}

func newDBLogger(conf *core.Config) (core.Logger, error) {
	return NewLogger(conf, "DB")
}

func newStores(conf *core.Config, loggerParam DBLoggerParam) (*storage.Stores, error) {
	stores, err := storage.Open(context.Background(), conf, true /* migrate */)
	if err != nil {
		return nil, errors.Wrap(err, "setting up storage")
	}
	loggerParam.Logger.Info("storage ready: " + stores.Backend)
	return stores, nil
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	academic.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return reg
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newReportGenerator(conf *core.Config) promotion.ReportGenerator {
	return reportsvc.NewPDFGenerator(conf.AppName)
}

func newUserService(conf *core.Config, stores *storage.Stores) user.Service {
	return user.NewService(stores.Users, conf.Auth)
}

func newStudentService(stores *storage.Stores) student.Service {
	return student.NewService(stores.Students)
}

func newGradeService(stores *storage.Stores, validate *validator.Validate) grade.Service {
	return grade.NewService(stores.Grades, stores.Students, validate)
}

type promotionParams struct {
	dig.In
	Conf    *core.Config
	Logger  core.Logger
	Stores  *storage.Stores
	Reg     prometheus.Registerer
	MailSvc core.EmailService
	Reports promotion.ReportGenerator
}

func newPromotionService(p promotionParams) promotion.Service {
	var notifier promotion.Notifier
	if p.Conf.Promotion.NotifyGuardians {
		notifier = promotion.NewGuardianNotifier(p.MailSvc, p.Reports, p.Logger, p.Conf.FrontendBaseURL)
	}
	return promotion.NewService(promotion.Options{
		Students:     p.Stores.Students,
		Grades:       p.Stores.Grades,
		Records:      p.Stores.Promotions,
		Transactor:   p.Stores.Transactor,
		Logger:       p.Logger,
		Notifier:     notifier,
		Metrics:      promotion.NewMetrics(p.Reg),
		BatchWorkers: p.Conf.Promotion.BatchWorkers,
	})
}

type serverParams struct {
	dig.In
	Conf         *core.Config
	Logger       core.Logger
	Gatherer     prometheus.Gatherer
	UserSvc      user.Service
	StudentSvc   student.Service
	GradeSvc     grade.Service
	PromotionSvc promotion.Service
	Reports      promotion.ReportGenerator
	Validate     *validator.Validate
	Translator   ut.Translator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Gatherer:     p.Gatherer,
		UserSvc:      p.UserSvc,
		StudentSvc:   p.StudentSvc,
		GradeSvc:     p.GradeSvc,
		PromotionSvc: p.PromotionSvc,
		Reports:      p.Reports,
		Validate:     p.Validate,
		Translator:   p.Translator,
	})
}

// New returns a new dependency injection dig.Container; newConfig provides the *core.Config.
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newAPILogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStores))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newRegistry, dig.As(new(prometheus.Registerer), new(prometheus.Gatherer))))
	must(c.Provide(newEmailService))
	must(c.Provide(newReportGenerator))
	must(c.Provide(newUserService))
	must(c.Provide(newStudentService))
	must(c.Provide(newGradeService))
	must(c.Provide(newPromotionService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
