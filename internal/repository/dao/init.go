package dao

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedRoles = []Role{
	{Name: "ADMIN", Description: "Administrador del sistema"},
	{Name: "FUNCIONARIO_BIENESTAR", Description: "Funcionario de Bienestar Universitario"},
	{Name: "ESTUDIANTE", Description: "Estudiante"},
	{Name: "TUTOR", Description: "Tutor aprobado"},
}

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Role{},
		&User{},
		&Subject{},
		&TutorSubject{},
		&TutorRequest{},
		&WeeklyBlock{},
		&MonthlyBlock{},
		&Session{},
		&Cancellation{},
	)
	if err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	roles := make([]Role, len(seedRoles))
	copy(roles, seedRoles)
	if err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
		return fmt.Errorf("seed roles -> %w", err)
	}

	return nil
}
