package models

import (
	"log"

	"bitbucket.org/mmdatafocus/gstrecon_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&GSTRecord{},
		&ReconciliationMatch{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
