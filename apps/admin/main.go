package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/promotion"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage"
)

func main() {
	conf := core.NewConfig()

	logger, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	// set up storage; migrations are run explicitly with `admin migrate`
	ctx := context.Background()
	stores, err := storage.Open(ctx, conf, false /* migrate */)
	if err != nil {
		logger.Fatal("setting up storage", err)
	}

	// start CLI
	cli := commandLine{
		stores:   stores,
		usrSvc:   user.NewService(stores.Users, conf.Auth),
		students: student.NewService(stores.Students),
		promoSvc: promotion.NewService(promotion.Options{
			Students:     stores.Students,
			Grades:       stores.Grades,
			Records:      stores.Promotions,
			Transactor:   stores.Transactor,
			Logger:       logger,
			BatchWorkers: conf.Promotion.BatchWorkers,
		}),
		out: os.Stdout,
	}
	err = cli.run(os.Args)
	if cErr := stores.Close(ctx); cErr != nil {
		logger.Error("closing storage", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error("admin: "+err.Error(), err)
		}
		os.Exit(1)
	}
}
