package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/neplaunch/internal/application/usecase/ranking"
	"github.com/khoahotran/neplaunch/internal/domain/job"
	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
)

// Auth DTOs

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

func ToUserDTO(u *user.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// Profile DTOs

type ProfileResponse struct {
	Role              user.Role       `json:"role"`
	Profile           profile.Profile `json:"profile"`
	CompletenessScore float64         `json:"completeness_score"`
	EmbeddingStale    bool            `json:"embedding_stale,omitempty"`
}

func ToProfileResponse(p profile.Profile, stale bool) ProfileResponse {
	return ProfileResponse{
		Role:              p.Role(),
		Profile:           p,
		CompletenessScore: p.Meta().CompletenessScore,
		EmbeddingStale:    stale,
	}
}

type FounderProfileRequest struct {
	Name             *string               `json:"name"`
	Tagline          *string               `json:"tagline"`
	Industry         *string               `json:"industry"`
	Stage            *profile.FundingStage `json:"stage"`
	Website          *string               `json:"website"`
	FoundingYear     *int                  `json:"founding_year"`
	MRR              *float64              `json:"mrr"`
	UserCount        *int                  `json:"user_count"`
	GrowthRate       *float64              `json:"growth_rate"`
	FundingGoal      *float64              `json:"funding_goal"`
	EquityOffered    *float64              `json:"equity_offered"`
	UseOfFunds       *string               `json:"use_of_funds"`
	TechStack        []string              `json:"tech_stack"`
	RequiredSkills   []string              `json:"required_skills"`
	ProblemStatement *string               `json:"problem_statement"`
	TeamMembers      []profile.TeamMember  `json:"team_members"`
}

func (r FounderProfileRequest) ToPatch() profile.Patch {
	return profile.FounderPatch{
		Name:             r.Name,
		Tagline:          r.Tagline,
		Industry:         r.Industry,
		Stage:            r.Stage,
		Website:          r.Website,
		FoundingYear:     r.FoundingYear,
		MRR:              r.MRR,
		UserCount:        r.UserCount,
		GrowthRate:       r.GrowthRate,
		FundingGoal:      r.FundingGoal,
		EquityOffered:    r.EquityOffered,
		UseOfFunds:       r.UseOfFunds,
		TechStack:        r.TechStack,
		RequiredSkills:   r.RequiredSkills,
		ProblemStatement: r.ProblemStatement,
		TeamMembers:      r.TeamMembers,
	}
}

type TalentProfileRequest struct {
	Name            *string                 `json:"name"`
	Headline        *string                 `json:"headline"`
	Location        *string                 `json:"location"`
	Skills          []profile.Skill         `json:"skills"`
	Bio             *string                 `json:"bio"`
	CVPath          *string                 `json:"cv_path"`
	ExperienceLevel *string                 `json:"experience_level"`
	PortfolioLinks  []profile.PortfolioLink `json:"portfolio_links"`
}

func (r TalentProfileRequest) ToPatch() profile.Patch {
	return profile.TalentPatch{
		Name:            r.Name,
		Headline:        r.Headline,
		Location:        r.Location,
		Skills:          r.Skills,
		Bio:             r.Bio,
		CVPath:          r.CVPath,
		ExperienceLevel: r.ExperienceLevel,
		PortfolioLinks:  r.PortfolioLinks,
	}
}

type InvestorProfileRequest struct {
	Name             *string                `json:"name"`
	Fund             *string                `json:"fund"`
	Type             *string                `json:"type"`
	InvestmentStage  []profile.FundingStage `json:"investment_stage"`
	ThesisText       *string                `json:"thesis_text"`
	PreferredSectors []string               `json:"preferred_sectors"`
	CheckSizeMin     *float64               `json:"check_size_min"`
	CheckSizeMax     *float64               `json:"check_size_max"`
	GeographyFocus   *string                `json:"geography_focus"`
	KeySignals       []string               `json:"key_signals"`
}

func (r InvestorProfileRequest) ToPatch() profile.Patch {
	return profile.InvestorPatch{
		Name:             r.Name,
		Fund:             r.Fund,
		Type:             r.Type,
		InvestmentStage:  r.InvestmentStage,
		ThesisText:       r.ThesisText,
		PreferredSectors: r.PreferredSectors,
		CheckSizeMin:     r.CheckSizeMin,
		CheckSizeMax:     r.CheckSizeMax,
		GeographyFocus:   r.GeographyFocus,
		KeySignals:       r.KeySignals,
	}
}

// Match DTOs

type CandidateDTO struct {
	UserID  uuid.UUID       `json:"user_id"`
	Role    user.Role       `json:"role"`
	Score   float64         `json:"score"`
	Profile profile.Profile `json:"profile"`
}

func ToCandidateDTOs(in []ranking.RankedCandidate) []CandidateDTO {
	out := make([]CandidateDTO, len(in))
	for i, c := range in {
		out[i] = CandidateDTO{UserID: c.UserID, Role: c.Role, Score: c.Score, Profile: c.Profile}
	}
	return out
}

type ProposeMatchRequest struct {
	TargetID uuid.UUID  `json:"target_id" binding:"required"`
	JobID    *uuid.UUID `json:"job_id"`
	Message  *string    `json:"message"`
}

type RespondMatchRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

type MatchDTO struct {
	ID          uuid.UUID    `json:"id"`
	RequesterID uuid.UUID    `json:"requester_id"`
	TargetID    uuid.UUID    `json:"target_id"`
	JobID       *uuid.UUID   `json:"job_id,omitempty"`
	MatchScore  *float64     `json:"match_score"`
	Status      match.Status `json:"status"`
	Message     *string      `json:"message,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	RespondedAt *time.Time   `json:"responded_at,omitempty"`
}

func ToMatchDTO(m *match.Match) MatchDTO {
	return MatchDTO{
		ID:          m.ID,
		RequesterID: m.RequesterID,
		TargetID:    m.TargetID,
		JobID:       m.JobID,
		MatchScore:  m.MatchScore,
		Status:      m.Status,
		Message:     m.Message,
		CreatedAt:   m.CreatedAt,
		RespondedAt: m.RespondedAt,
	}
}

func ToMatchDTOs(ms []*match.Match) []MatchDTO {
	out := make([]MatchDTO, len(ms))
	for i, m := range ms {
		out[i] = ToMatchDTO(m)
	}
	return out
}

// Job DTOs

type JobRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	Requirements   string   `json:"requirements"`
	RequiredSkills []string `json:"required_skills"`
	Location       string   `json:"location"`
	JobType        string   `json:"job_type"`
	Compensation   string   `json:"compensation"`
}

type JobDTO struct {
	ID             uuid.UUID `json:"id"`
	FounderID      uuid.UUID `json:"founder_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Requirements   string    `json:"requirements"`
	RequiredSkills []string  `json:"required_skills"`
	Location       string    `json:"location"`
	JobType        string    `json:"job_type"`
	Compensation   string    `json:"compensation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ToJobDTO(p *job.Posting) JobDTO {
	skills := p.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	return JobDTO{
		ID:             p.ID,
		FounderID:      p.FounderID,
		Title:          p.Title,
		Description:    p.Description,
		Requirements:   p.Requirements,
		RequiredSkills: skills,
		Location:       p.Location,
		JobType:        p.JobType,
		Compensation:   p.Compensation,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
