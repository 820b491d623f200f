package main

import (
	"log"
	"net/http"
	"voltflow/account"
	"voltflow/bizerror"
	"voltflow/client/es"
	"voltflow/client/s3"
	"voltflow/common"
	"voltflow/domain"
	"voltflow/domain/approval"
	"voltflow/domain/client"
	"voltflow/domain/flow"
	"voltflow/domain/task"
	"voltflow/domain/task/checklist"
	"voltflow/domain/work"
	"voltflow/domain/work/docs"
	"voltflow/event"
	"voltflow/indices"
	"voltflow/indices/search"
	"voltflow/infra/tracing"
	"voltflow/persistence"
	"voltflow/session"
	"voltflow/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	tracingCloser := tracing.Bootstrap()
	defer tracingCloser.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{},
		&domain.Client{},
		&domain.Work{},
		&domain.Task{},
		&domain.WorkflowConfig{},
		&domain.DeadlineApproval{},
		&checklist.CheckItem{},
		&event.EventRecord{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		log.Fatalf("default security configuration failed %v\n", err)
	}

	es.CreateClientFromEnv()
	s3.Bootstrap()

	event.EventHandlers = append(event.EventHandlers, indices.IndexWorkEventHandle)

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine)

	authFilter := session.SimpleAuthFilter()
	account.RegisterUsersRestAPI(engine, authFilter)
	client.RegisterClientsRestAPI(engine, authFilter)
	work.RegisterWorksRestAPI(engine, authFilter)
	docs.RegisterWorkDocumentsRestAPI(engine, authFilter)
	task.RegisterTasksRestAPI(engine, authFilter)
	checklist.RegisterCheckItemsRestAPI(engine, authFilter)
	flow.RegisterWorkflowConfigsRestAPI(engine, authFilter)
	approval.RegisterApprovalsRestAPI(engine, authFilter)
	indices.RegisterIndicesRestAPI(engine, authFilter)
	search.RegisterWorkSearchRestAPI(engine, authFilter)

	err = engine.Run(":80")
	if err != nil {
		panic(err)
	}
}
