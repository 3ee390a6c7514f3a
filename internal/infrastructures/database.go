package infrastructures

import (
	"github.com/hotspotcentral/hotspot-core/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase() *gorm.DB {
	db, err := gorm.Open(postgres.Open(Config.DATABASE_URL), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&models.Voucher{}, &models.Transaction{}); err != nil {
		logrus.Fatalf("failed to migrate schema: %v", err)
	}

	return db
}
