package players

import (
	"strings"
	"time"

	"club-import/common"
)

// TemplateHeader is the header row offered as the players CSV template
const TemplateHeader = "parent_name,email,phone_number,player_last_name,player_first_name,date_of_birth,gender,grade,team_name,branch,season"

// PlayerModel is a registered player
type PlayerModel struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	FullName    string    `gorm:"not null;index" json:"full_name"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `gorm:"index" json:"email"`
	Phone       string    `json:"phone"`
	ParentName  string    `json:"parent_name"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Grade       string    `json:"grade"`
	TeamID      string    `gorm:"index" json:"team_id"`
	TeamName    string    `json:"team_name"` // free text as imported
	Branch      string    `json:"branch"`
	Season      string    `json:"season"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (PlayerModel) TableName() string {
	return "players"
}

// AutoMigrate creates the players table
func AutoMigrate() error {
	return common.GetDB().AutoMigrate(&PlayerModel{})
}

func (m *PlayerModel) columns() map[string]*string {
	return map[string]*string{
		"full_name":     &m.FullName,
		"first_name":    &m.FirstName,
		"last_name":     &m.LastName,
		"email":         &m.Email,
		"phone":         &m.Phone,
		"parent_name":   &m.ParentName,
		"date_of_birth": &m.DateOfBirth,
		"gender":        &m.Gender,
		"grade":         &m.Grade,
		"team_id":       &m.TeamID,
		"team_name":     &m.TeamName,
		"branch":        &m.Branch,
		"season":        &m.Season,
	}
}

// Apply copies the fields present in a normalized record onto the model.
// Fields missing from the record keep their current value.
func (m *PlayerModel) Apply(record common.Record) {
	for key, dst := range m.columns() {
		if v, ok := record[key]; ok {
			*dst = strings.TrimSpace(v)
		}
	}
}

// ToRecord flattens the model into normalized field names
func (m *PlayerModel) ToRecord() common.Record {
	out := common.Record{"id": m.ID}
	for key, src := range m.columns() {
		out[key] = *src
	}
	return out
}

// TemplateRow returns the model in TemplateHeader column order
func (m *PlayerModel) TemplateRow() []string {
	return []string{
		m.ParentName, m.Email, m.Phone, m.LastName, m.FirstName, m.DateOfBirth,
		m.Gender, m.Grade, m.TeamName, m.Branch, m.Season,
	}
}

// Validate rejects players the store cannot hold
func (m *PlayerModel) Validate() error {
	if err := common.ValidateRequired("full_name", m.FullName); err != nil {
		return err
	}
	if err := common.ValidateOptionalEmail("email", m.Email); err != nil {
		return err
	}
	return nil
}
