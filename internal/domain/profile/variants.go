package profile

import (
	"strings"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/user"
)

type FundingStage string

const (
	StagePreSeed FundingStage = "pre-seed"
	StageSeed    FundingStage = "seed"
	StageSeriesA FundingStage = "series-a"
	StageSeriesB FundingStage = "series-b"
	StageSeriesC FundingStage = "series-c"
)

func (s FundingStage) Valid() bool {
	switch s {
	case StagePreSeed, StageSeed, StageSeriesA, StageSeriesB, StageSeriesC:
		return true
	}
	return false
}

type TeamMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type Skill struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

type PortfolioLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Founder is a startup profile.
type Founder struct {
	Base
	Name             string       `json:"name"`
	Tagline          string       `json:"tagline"`
	Industry         string       `json:"industry"`
	Stage            FundingStage `json:"stage"`
	Website          string       `json:"website"`
	FoundingYear     *int         `json:"founding_year"`
	MRR              *float64     `json:"mrr"`
	UserCount        *int         `json:"user_count"`
	GrowthRate       *float64     `json:"growth_rate"`
	FundingGoal      *float64     `json:"funding_goal"`
	EquityOffered    *float64     `json:"equity_offered"`
	UseOfFunds       string       `json:"use_of_funds"`
	TechStack        []string     `json:"tech_stack"`
	RequiredSkills   []string     `json:"required_skills"`
	ProblemStatement string       `json:"problem_statement"`
	TeamMembers      []TeamMember `json:"team_members"`
}

var founderRequired = []string{
	"name", "tagline", "industry", "stage",
	"problem_statement", "funding_goal", "required_skills", "tech_stack",
}

func (f *Founder) Role() user.Role { return user.RoleFounder }
func (f *Founder) Source() embedding.TextSource { return embedding.SourceProfile }
func (f *Founder) RequiredFields() []string { return founderRequired }

func (f *Founder) FieldPresent(name string) bool {
	switch name {
	case "name":
		return textPresent(f.Name)
	case "tagline":
		return textPresent(f.Tagline)
	case "industry":
		return textPresent(f.Industry)
	case "stage":
		return f.Stage != ""
	case "website":
		return textPresent(f.Website)
	case "founding_year":
		return f.FoundingYear != nil
	case "mrr":
		return f.MRR != nil
	case "user_count":
		return f.UserCount != nil
	case "growth_rate":
		return f.GrowthRate != nil
	case "funding_goal":
		return f.FundingGoal != nil
	case "equity_offered":
		return f.EquityOffered != nil
	case "use_of_funds":
		return textPresent(f.UseOfFunds)
	case "tech_stack":
		return len(f.TechStack) > 0
	case "required_skills":
		return len(f.RequiredSkills) > 0
	case "problem_statement":
		return textPresent(f.ProblemStatement)
	case "team_members":
		return len(f.TeamMembers) > 0
	}
	return false
}

func (f *Founder) EmbeddingText() string {
	return joinText(f.Name, f.Tagline, f.ProblemStatement, strings.Join(f.TechStack, " "))
}

// Talent is an individual looking to join a startup.
type Talent struct {
	Base
	Name            string          `json:"name"`
	Headline        string          `json:"headline"`
	Location        string          `json:"location"`
	Skills          []Skill         `json:"skills"`
	Bio             string          `json:"bio"`
	CVPath          string          `json:"cv_path"`
	ExperienceLevel string          `json:"experience_level"`
	PortfolioLinks  []PortfolioLink `json:"portfolio_links"`
}

var talentRequired = []string{"name", "headline", "location", "skills", "bio", "experience_level"}

func (t *Talent) Role() user.Role { return user.RoleTalent }
func (t *Talent) Source() embedding.TextSource { return embedding.SourceProfile }
func (t *Talent) RequiredFields() []string { return talentRequired }

func (t *Talent) FieldPresent(name string) bool {
	switch name {
	case "name":
		return textPresent(t.Name)
	case "headline":
		return textPresent(t.Headline)
	case "location":
		return textPresent(t.Location)
	case "skills":
		return len(t.Skills) > 0
	case "bio":
		return textPresent(t.Bio)
	case "cv_path":
		return textPresent(t.CVPath)
	case "experience_level":
		return textPresent(t.ExperienceLevel)
	case "portfolio_links":
		return len(t.PortfolioLinks) > 0
	}
	return false
}

func (t *Talent) EmbeddingText() string {
	skills := make([]string, 0, len(t.Skills))
	for _, s := range t.Skills {
		skills = append(skills, s.Name)
	}
	return joinText(t.Headline, t.Bio, strings.Join(skills, " "), t.ExperienceLevel)
}

// Investor holds an investment thesis.
type Investor struct {
	Base
	Name             string         `json:"name"`
	Fund             string         `json:"fund"`
	Type             string         `json:"type"`
	InvestmentStage  []FundingStage `json:"investment_stage"`
	ThesisText       string         `json:"thesis_text"`
	PreferredSectors []string       `json:"preferred_sectors"`
	CheckSizeMin     *float64       `json:"check_size_min"`
	CheckSizeMax     *float64       `json:"check_size_max"`
	GeographyFocus   string         `json:"geography_focus"`
	KeySignals       []string       `json:"key_signals"`
}

var investorRequired = []string{
	"name", "thesis_text", "preferred_sectors", "investment_stage", "check_size_min", "check_size_max",
}

func (i *Investor) Role() user.Role { return user.RoleInvestor }
func (i *Investor) Source() embedding.TextSource { return embedding.SourceThesis }
func (i *Investor) RequiredFields() []string { return investorRequired }

func (i *Investor) FieldPresent(name string) bool {
	switch name {
	case "name":
		return textPresent(i.Name)
	case "fund":
		return textPresent(i.Fund)
	case "type":
		return textPresent(i.Type)
	case "investment_stage":
		return len(i.InvestmentStage) > 0
	case "thesis_text":
		return textPresent(i.ThesisText)
	case "preferred_sectors":
		return len(i.PreferredSectors) > 0
	case "check_size_min":
		return i.CheckSizeMin != nil
	case "check_size_max":
		return i.CheckSizeMax != nil
	case "geography_focus":
		return textPresent(i.GeographyFocus)
	case "key_signals":
		return len(i.KeySignals) > 0
	}
	return false
}

func (i *Investor) EmbeddingText() string {
	return joinText(i.ThesisText, strings.Join(i.PreferredSectors, " "), strings.Join(i.KeySignals, " "))
}
