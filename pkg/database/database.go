package database

import (
	"fmt"
	"learnpulse_backend/internal/config"
	"learnpulse_backend/internal/model"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.SupportTicket{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// Seed a demo instructor so the assistant is usable out of the box.
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err == nil {
			demo := &model.User{
				Email:    "instructor@school.com",
				Password: string(hashed),
				Name:     "Demo Instructor",
				Role:     model.RoleInstructor,
				Classes:  "4B,5A",
			}
			db.Create(demo)
		}
	}

	return db, nil
}
