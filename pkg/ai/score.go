package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/starORAIT/HRAgent/pkg/core"
)

const scoreSystemPrompt = "You are a senior HR recruiting consultant."

const scoreUserPrompt = `You are a senior HR expert with over ten years of experience evaluating
technical talent for AI startups. Assess the candidate below for the position "%s".

Score six dimensions, each from 0 to 20:
education, technical, innovation, growth, startup mindset, teamwork.

Resume:
%s

Reply only with a JSON object, no explanations or code fences:
{
  "parsed_info": {
    "name": "",
    "experience": "",
    "latest_company": "",
    "highest_education": "",
    "highest_university": "",
    "phone": "",
    "email": ""
  },
  "analysis": {
    "education_score": 0,
    "education_detail": "",
    "technical_score": 0,
    "technical_detail": "",
    "innovation_score": 0,
    "innovation_detail": "",
    "growth_score": 0,
    "growth_detail": "",
    "startup_score": 0,
    "startup_detail": "",
    "teamwork_score": 0,
    "teamwork_detail": "",
    "risk": "",
    "questions": ""
  }
}`

// maxScoreExcerpt bounds how much resume text goes into the prompt.
const maxScoreExcerpt = 12000

type scoreReply struct {
	ParsedInfo struct {
		Name              string `json:"name"`
		Experience        string `json:"experience"`
		LatestCompany     string `json:"latest_company"`
		HighestEducation  string `json:"highest_education"`
		HighestUniversity string `json:"highest_university"`
		Phone             string `json:"phone"`
		Email             string `json:"email"`
	} `json:"parsed_info"`
	Analysis struct {
		EducationScore   int    `json:"education_score"`
		EducationDetail  string `json:"education_detail"`
		TechnicalScore   int    `json:"technical_score"`
		TechnicalDetail  string `json:"technical_detail"`
		InnovationScore  int    `json:"innovation_score"`
		InnovationDetail string `json:"innovation_detail"`
		GrowthScore      int    `json:"growth_score"`
		GrowthDetail     string `json:"growth_detail"`
		StartupScore     int    `json:"startup_score"`
		StartupDetail    string `json:"startup_detail"`
		TeamworkScore    int    `json:"teamwork_score"`
		TeamworkDetail   string `json:"teamwork_detail"`
		Risk             string `json:"risk"`
		Questions        string `json:"questions"`
	} `json:"analysis"`
}

// Score evaluates resume content against a position label.
func (c *Client) Score(ctx context.Context, content, label string) (*core.ScreeningResult, error) {
	excerpt := content
	if len(excerpt) > maxScoreExcerpt {
		excerpt = excerpt[:maxScoreExcerpt]
	}

	reply, err := c.complete(ctx, scoreSystemPrompt, fmt.Sprintf(scoreUserPrompt, label, excerpt))
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(reply)
	if err != nil {
		return nil, core.Malformed(err)
	}

	var parsed scoreReply
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, core.Malformed(fmt.Errorf("parse screening reply: %w", err))
	}

	result := &core.ScreeningResult{
		Name:              parsed.ParsedInfo.Name,
		WorkExperience:    parsed.ParsedInfo.Experience,
		LatestCompany:     parsed.ParsedInfo.LatestCompany,
		HighestEducation:  parsed.ParsedInfo.HighestEducation,
		HighestUniversity: parsed.ParsedInfo.HighestUniversity,
		Phone:             parsed.ParsedInfo.Phone,
		Email:             parsed.ParsedInfo.Email,

		EducationScore:   parsed.Analysis.EducationScore,
		EducationDetail:  parsed.Analysis.EducationDetail,
		TechnicalScore:   parsed.Analysis.TechnicalScore,
		TechnicalDetail:  parsed.Analysis.TechnicalDetail,
		InnovationScore:  parsed.Analysis.InnovationScore,
		InnovationDetail: parsed.Analysis.InnovationDetail,
		GrowthScore:      parsed.Analysis.GrowthScore,
		GrowthDetail:     parsed.Analysis.GrowthDetail,
		StartupScore:     parsed.Analysis.StartupScore,
		StartupDetail:    parsed.Analysis.StartupDetail,
		TeamworkScore:    parsed.Analysis.TeamworkScore,
		TeamworkDetail:   parsed.Analysis.TeamworkDetail,

		Risk:      parsed.Analysis.Risk,
		Questions: parsed.Analysis.Questions,
	}
	result.ComputeTotals()
	return result, nil
}
