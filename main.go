package main

import (
	"net/http"
	"os"

	"fabline/account"
	"fabline/attachment"
	"fabline/bizerror"
	"fabline/client/es"
	"fabline/client/oss"
	"fabline/domain"
	"fabline/domain/externaljob"
	"fabline/domain/order"
	"fabline/domain/rules"
	"fabline/event"
	"fabline/indices"
	"fabline/indices/search"
	"fabline/infra/tracing"
	"fabline/persistence"
	"fabline/servehttp"
	"fabline/session"
	"fabline/sessions"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{},
		&event.EventRecord{},
		&rules.Ruleset{},
		&domain.Order{},
		&domain.OrderStatusRecord{},
		&domain.ExternalJob{},
		&domain.ExternalJobStatusRecord{},
		&domain.Attachment{},
		&domain.Comment{},
		&domain.ChecklistMark{},
	).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}

	tracingCloser, err := tracing.Bootstrap()
	if err != nil {
		logrus.Fatalf("tracing bootstrap failed %v", err)
	}
	defer tracingCloser.Close()

	oss.Bootstrap()
	es.CreateClientFromEnv()

	event.EventHandlers = append(event.EventHandlers, indices.IndexOrderEventHandle)
	indices.StartCron()

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "fabline")
	})

	sessions.RegisterSessionsRestAPI(engine)
	sessions.RegisterSessionRestAPI(engine, session.SimpleAuthFilter())
	account.RegisterUsersRestAPI(engine, session.SimpleAuthFilter())

	rules.RegisterRulesetsRestAPI(engine, session.SimpleAuthFilter())
	order.RegisterOrdersRestAPI(engine, session.SimpleAuthFilter())
	order.RegisterOrderStatusTransitionsRestAPI(engine, session.SimpleAuthFilter())
	order.RegisterAssignmentsRestAPI(engine, session.SimpleAuthFilter())
	order.RegisterChecklistMarksRestAPI(engine, session.SimpleAuthFilter())
	order.RegisterCommentsRestAPI(engine, session.SimpleAuthFilter())
	externaljob.RegisterExternalJobsRestAPI(engine, session.SimpleAuthFilter())
	attachment.RegisterAttachmentsRestAPI(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())
	search.RegisterOrderSearchRestAPI(engine, session.SimpleAuthFilter())

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	servehttp.StartHTTPServer(engine)
}
