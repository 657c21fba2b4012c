// Package settings stores the company letterhead printed on contract
// documents. Values are read per call and handed to the document builder.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
)

const keyPrefix = "letterhead."

// Letterhead is the company header on printed documents. Each Show flag
// controls whether the matching field is printed.
type Letterhead struct {
	CompanyName   string `json:"companyName"`
	LogoURL       string `json:"logoUrl" validate:"omitempty,url"`
	TaxNumber     string `json:"taxNumber"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	ShowName      bool   `json:"showName"`
	ShowLogo      bool   `json:"showLogo"`
	ShowTaxNumber bool   `json:"showTaxNumber"`
	ShowPhone     bool   `json:"showPhone"`
	ShowEmail     bool   `json:"showEmail"`
}

// DefaultLetterhead seeds the letterhead from configuration with every field
// visible.
func DefaultLetterhead(cfg config.CompanyConfig) Letterhead {
	return Letterhead{
		CompanyName:   cfg.Name,
		LogoURL:       cfg.LogoURL,
		TaxNumber:     cfg.TaxNumber,
		Phone:         cfg.Phone,
		Email:         cfg.Email,
		ShowName:      true,
		ShowLogo:      true,
		ShowTaxNumber: true,
		ShowPhone:     true,
		ShowEmail:     true,
	}
}

// Visible returns the letterhead with hidden fields blanked.
func (l Letterhead) Visible() Letterhead {
	out := l
	if !l.ShowName {
		out.CompanyName = ""
	}
	if !l.ShowLogo {
		out.LogoURL = ""
	}
	if !l.ShowTaxNumber {
		out.TaxNumber = ""
	}
	if !l.ShowPhone {
		out.Phone = ""
	}
	if !l.ShowEmail {
		out.Email = ""
	}
	return out
}

func (l Letterhead) toRows(now time.Time) []models.Setting {
	values := map[string]string{
		"companyName":   l.CompanyName,
		"logoUrl":       l.LogoURL,
		"taxNumber":     l.TaxNumber,
		"phone":         l.Phone,
		"email":         l.Email,
		"showName":      strconv.FormatBool(l.ShowName),
		"showLogo":      strconv.FormatBool(l.ShowLogo),
		"showTaxNumber": strconv.FormatBool(l.ShowTaxNumber),
		"showPhone":     strconv.FormatBool(l.ShowPhone),
		"showEmail":     strconv.FormatBool(l.ShowEmail),
	}
	rows := make([]models.Setting, 0, len(values))
	for key, value := range values {
		rows = append(rows, models.Setting{Key: keyPrefix + key, Value: value, UpdatedAt: now})
	}
	return rows
}

func (l *Letterhead) apply(key, value string) {
	flag := func() bool {
		parsed, err := strconv.ParseBool(value)
		return err == nil && parsed
	}
	switch strings.TrimPrefix(key, keyPrefix) {
	case "companyName":
		l.CompanyName = value
	case "logoUrl":
		l.LogoURL = value
	case "taxNumber":
		l.TaxNumber = value
	case "phone":
		l.Phone = value
	case "email":
		l.Email = value
	case "showName":
		l.ShowName = flag()
	case "showLogo":
		l.ShowLogo = flag()
	case "showTaxNumber":
		l.ShowTaxNumber = flag()
	case "showPhone":
		l.ShowPhone = flag()
	case "showEmail":
		l.ShowEmail = flag()
	}
}

type Service interface {
	Letterhead(ctx context.Context) (Letterhead, error)
	SaveLetterhead(ctx context.Context, letterhead Letterhead) (Letterhead, error)
}

type service struct {
	db       *gorm.DB
	defaults Letterhead
	now      func() time.Time
}

func NewService(conn *gorm.DB, company config.CompanyConfig) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("database required")
	}
	return &service{db: conn, defaults: DefaultLetterhead(company), now: time.Now}, nil
}

// Letterhead overlays stored values on the configured defaults. An
// unprovisioned settings table yields the defaults.
func (s *service) Letterhead(ctx context.Context) (Letterhead, error) {
	out := s.defaults
	var rows []models.Setting
	err := s.db.WithContext(ctx).Where("key LIKE ?", keyPrefix+"%").Find(&rows).Error
	if err != nil {
		if db.IsUndefinedTable(err) {
			return out, nil
		}
		return Letterhead{}, db.Classify(err, "load letterhead")
	}
	for _, row := range rows {
		out.apply(row.Key, row.Value)
	}
	return out, nil
}

func (s *service) SaveLetterhead(ctx context.Context, letterhead Letterhead) (Letterhead, error) {
	letterhead.CompanyName = strings.TrimSpace(letterhead.CompanyName)
	if letterhead.ShowName && letterhead.CompanyName == "" {
		return Letterhead{}, pkgerrors.FieldErrors("invalid letterhead", map[string]string{
			"companyName": "is required while showName is on",
		})
	}

	rows := letterhead.toRows(s.now().UTC())
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return Letterhead{}, db.Classify(err, "save letterhead")
	}
	return letterhead, nil
}
