package core

import (
	"time"
)

// QualifyingScore is the composite score at or above which a candidate
// passes the initial screen.
const QualifyingScore = 60

// ScreeningResult is the durable output of successfully processing one
// work item. At most one result exists per non-empty fingerprint; a newer
// result for the same fingerprint replaces the older row.
type ScreeningResult struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	SourceItemID uint `gorm:"index"`

	// Parsed candidate fields.
	Name              string `gorm:"size:100"`
	Position          string `gorm:"size:100"` // label assigned by classification
	Phone             string `gorm:"size:50"`
	Email             string `gorm:"size:100"`
	LatestCompany     string `gorm:"size:100"`
	WorkExperience    string `gorm:"size:100"`
	HighestEducation  string `gorm:"size:50"`
	HighestUniversity string `gorm:"size:100"`
	Channel           string `gorm:"size:100"` // resume source channel

	// Component scores with evaluation detail.
	EducationScore   int
	EducationDetail  string `gorm:"type:text"`
	TechnicalScore   int
	TechnicalDetail  string `gorm:"type:text"`
	InnovationScore  int
	InnovationDetail string `gorm:"type:text"`
	GrowthScore      int
	GrowthDetail     string `gorm:"type:text"`
	StartupScore     int
	StartupDetail    string `gorm:"type:text"`
	TeamworkScore    int
	TeamworkDetail   string `gorm:"type:text"`

	TotalScore int  `gorm:"index;default:0"`
	Qualified  bool `gorm:"default:false"`

	Risk      string `gorm:"type:text"`
	Questions string `gorm:"type:text"`

	Fingerprint string `gorm:"index;size:32"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ComputeTotals sums the component scores into TotalScore and derives the
// qualification flag. Call after filling component scores.
func (r *ScreeningResult) ComputeTotals() {
	r.TotalScore = r.EducationScore + r.TechnicalScore + r.InnovationScore +
		r.GrowthScore + r.StartupScore + r.TeamworkScore
	r.Qualified = r.TotalScore >= QualifyingScore
}
