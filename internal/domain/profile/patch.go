package profile

import "fmt"

type FounderPatch struct {
	Name             *string
	Tagline          *string
	Industry         *string
	Stage            *FundingStage
	Website          *string
	FoundingYear     *int
	MRR              *float64
	UserCount        *int
	GrowthRate       *float64
	FundingGoal      *float64
	EquityOffered    *float64
	UseOfFunds       *string
	TechStack        []string
	RequiredSkills   []string
	ProblemStatement *string
	TeamMembers      []TeamMember
}

func (fp FounderPatch) ApplyTo(p Profile) error {
	f, ok := p.(*Founder)
	if !ok {
		return fmt.Errorf("%w: expected founder, got %s", ErrRoleMismatch, p.Role())
	}
	if fp.Stage != nil && *fp.Stage != "" && !fp.Stage.Valid() {
		return ErrInvalidStage
	}
	setString(&f.Name, fp.Name)
	setString(&f.Tagline, fp.Tagline)
	setString(&f.Industry, fp.Industry)
	if fp.Stage != nil {
		f.Stage = *fp.Stage
	}
	setString(&f.Website, fp.Website)
	setPtr(&f.FoundingYear, fp.FoundingYear)
	setPtr(&f.MRR, fp.MRR)
	setPtr(&f.UserCount, fp.UserCount)
	setPtr(&f.GrowthRate, fp.GrowthRate)
	setPtr(&f.FundingGoal, fp.FundingGoal)
	setPtr(&f.EquityOffered, fp.EquityOffered)
	setString(&f.UseOfFunds, fp.UseOfFunds)
	if fp.TechStack != nil {
		f.TechStack = fp.TechStack
	}
	if fp.RequiredSkills != nil {
		f.RequiredSkills = fp.RequiredSkills
	}
	setString(&f.ProblemStatement, fp.ProblemStatement)
	if fp.TeamMembers != nil {
		f.TeamMembers = fp.TeamMembers
	}
	return nil
}

type TalentPatch struct {
	Name            *string
	Headline        *string
	Location        *string
	Skills          []Skill
	Bio             *string
	CVPath          *string
	ExperienceLevel *string
	PortfolioLinks  []PortfolioLink
}

func (tp TalentPatch) ApplyTo(p Profile) error {
	t, ok := p.(*Talent)
	if !ok {
		return fmt.Errorf("%w: expected talent, got %s", ErrRoleMismatch, p.Role())
	}
	setString(&t.Name, tp.Name)
	setString(&t.Headline, tp.Headline)
	setString(&t.Location, tp.Location)
	if tp.Skills != nil {
		t.Skills = tp.Skills
	}
	setString(&t.Bio, tp.Bio)
	setString(&t.CVPath, tp.CVPath)
	setString(&t.ExperienceLevel, tp.ExperienceLevel)
	if tp.PortfolioLinks != nil {
		t.PortfolioLinks = tp.PortfolioLinks
	}
	return nil
}

type InvestorPatch struct {
	Name             *string
	Fund             *string
	Type             *string
	InvestmentStage  []FundingStage
	ThesisText       *string
	PreferredSectors []string
	CheckSizeMin     *float64
	CheckSizeMax     *float64
	GeographyFocus   *string
	KeySignals       []string
}

func (ip InvestorPatch) ApplyTo(p Profile) error {
	inv, ok := p.(*Investor)
	if !ok {
		return fmt.Errorf("%w: expected investor, got %s", ErrRoleMismatch, p.Role())
	}
	for _, s := range ip.InvestmentStage {
		if !s.Valid() {
			return ErrInvalidStage
		}
	}

	lo, hi := inv.CheckSizeMin, inv.CheckSizeMax
	if ip.CheckSizeMin != nil {
		lo = ip.CheckSizeMin
	}
	if ip.CheckSizeMax != nil {
		hi = ip.CheckSizeMax
	}
	if lo != nil && hi != nil && *lo > *hi {
		return ErrInvalidCheck
	}

	setString(&inv.Name, ip.Name)
	setString(&inv.Fund, ip.Fund)
	setString(&inv.Type, ip.Type)
	if ip.InvestmentStage != nil {
		inv.InvestmentStage = ip.InvestmentStage
	}
	setString(&inv.ThesisText, ip.ThesisText)
	if ip.PreferredSectors != nil {
		inv.PreferredSectors = ip.PreferredSectors
	}
	inv.CheckSizeMin, inv.CheckSizeMax = lo, hi
	setString(&inv.GeographyFocus, ip.GeographyFocus)
	if ip.KeySignals != nil {
		inv.KeySignals = ip.KeySignals
	}
	return nil
}

// AvatarPatch only touches the shared avatar URL.
type AvatarPatch struct {
	URL string
}

func (ap AvatarPatch) ApplyTo(p Profile) error {
	p.Meta().AvatarURL = ap.URL
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		c := *v
		*dst = &c
	}
}
