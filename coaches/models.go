package coaches

import (
	"strings"
	"time"

	"club-import/common"
)

// TemplateHeader is the header row offered as the coaches CSV template
const TemplateHeader = "first_name,last_name,email_address,phone_number,branch"

// CoachModel is a club coach and the teams they run
type CoachModel struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	FullName  string    `gorm:"not null;index" json:"full_name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone"`
	Branch    string    `json:"branch"`
	TeamIDs   []string  `gorm:"type:text;serializer:json" json:"team_ids"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CoachModel) TableName() string {
	return "coaches"
}

// AutoMigrate creates the coaches table
func AutoMigrate() error {
	return common.GetDB().AutoMigrate(&CoachModel{})
}

func (m *CoachModel) columns() map[string]*string {
	return map[string]*string{
		"full_name":  &m.FullName,
		"first_name": &m.FirstName,
		"last_name":  &m.LastName,
		"email":      &m.Email,
		"phone":      &m.Phone,
		"branch":     &m.Branch,
	}
}

// Apply copies the fields present in a normalized record onto the model
func (m *CoachModel) Apply(record common.Record) {
	for key, dst := range m.columns() {
		if v, ok := record[key]; ok {
			*dst = strings.TrimSpace(v)
		}
	}
}

// ToRecord flattens the model into normalized field names. team_ids is joined
// with ";".
func (m *CoachModel) ToRecord() common.Record {
	out := common.Record{"id": m.ID, "team_ids": strings.Join(m.TeamIDs, ";")}
	for key, src := range m.columns() {
		out[key] = *src
	}
	return out
}

// TemplateRow returns the model in TemplateHeader column order
func (m *CoachModel) TemplateRow() []string {
	return []string{m.FirstName, m.LastName, m.Email, m.Phone, m.Branch}
}

func (m *CoachModel) Validate() error {
	if err := common.ValidateRequired("full_name", m.FullName); err != nil {
		return err
	}
	if err := common.ValidateOptionalEmail("email", m.Email); err != nil {
		return err
	}
	return nil
}

// AddTeam appends teamID to the coach's team list unless already present.
// It reports whether the list changed.
func (m *CoachModel) AddTeam(teamID string) bool {
	for _, id := range m.TeamIDs {
		if id == teamID {
			return false
		}
	}
	m.TeamIDs = append(m.TeamIDs, teamID)
	return true
}
