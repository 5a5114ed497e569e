package services

import (
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
)

func TestNewLabService(t *testing.T) {
	type args struct {
		repo      repositories.Repository
		db        *gorm.DB
		logger    *slog.Logger
		validator *validator.Validator
	}
	tests := []struct {
		name string
		args args
		want LabService
	}{
		{name: "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NewLabService(tt.args.repo, tt.args.db, tt.args.logger, tt.args.validator)
		})
	}
}
