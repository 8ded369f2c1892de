package teams

import (
	"strings"
	"time"

	"club-import/common"
)

// TemplateHeader is the header row offered as the teams CSV template
const TemplateHeader = "name,age_group,League,season"

// TeamModel is a club team
type TeamModel struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	AgeGroup  string    `json:"age_group"`
	League    string    `json:"league"`
	Season    string    `json:"season"`
	Branch    string    `json:"branch"`
	Coach     string    `json:"coach"` // free text as imported
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TeamModel) TableName() string {
	return "teams"
}

// AutoMigrate creates the teams table
func AutoMigrate() error {
	return common.GetDB().AutoMigrate(&TeamModel{})
}

func (m *TeamModel) columns() map[string]*string {
	return map[string]*string{
		"name":      &m.Name,
		"age_group": &m.AgeGroup,
		"league":    &m.League,
		"season":    &m.Season,
		"branch":    &m.Branch,
		"coach":     &m.Coach,
	}
}

// Apply copies the fields present in a normalized record onto the model
func (m *TeamModel) Apply(record common.Record) {
	for key, dst := range m.columns() {
		if v, ok := record[key]; ok {
			*dst = strings.TrimSpace(v)
		}
	}
}

// ToRecord flattens the model into normalized field names
func (m *TeamModel) ToRecord() common.Record {
	out := common.Record{"id": m.ID}
	for key, src := range m.columns() {
		out[key] = *src
	}
	return out
}

// TemplateRow returns the model in TemplateHeader column order
func (m *TeamModel) TemplateRow() []string {
	return []string{m.Name, m.AgeGroup, m.League, m.Season}
}

func (m *TeamModel) Validate() error {
	if err := common.ValidateRequired("name", m.Name); err != nil {
		return err
	}
	return nil
}
