package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
)

// ExecuteFeed builds a syndication feed of one founder's postings. Item
// links are rooted at baseURL, e.g. "http://host/api/jobs".
func (uc *JobUseCase) ExecuteFeed(ctx context.Context, founderID uuid.UUID, baseURL string) (*feeds.Feed, error) {
	founder, err := uc.userRepo.FindByID(ctx, founderID)
	if err != nil {
		return nil, err
	}
	if founder.Role != user.RoleFounder {
		return nil, apperror.NewInvalidInput("job feeds exist only for founders", nil)
	}

	postings, err := uc.jobRepo.ListByFounder(ctx, founderID)
	if err != nil {
		uc.logger.Error("Failed to list postings for job feed", err, zap.String("founder_id", founderID.String()))
		return nil, err
	}

	baseURL = strings.TrimRight(baseURL, "/")
	feed := &feeds.Feed{
		Title:       "NepLaunch openings",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s?founder_id=%s", baseURL, founderID)},
		Description: "Open roles posted by " + founder.Email,
		Author:      &feeds.Author{Email: founder.Email},
		Id:          "urn:uuid:" + founderID.String(),
		Created:     time.Now().UTC(),
	}

	items := make([]*feeds.Item, 0, len(postings))
	for _, p := range postings {
		items = append(items, &feeds.Item{
			Id:          "urn:uuid:" + p.ID.String(),
			Title:       p.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/%s", baseURL, p.ID)},
			Description: postingSummary(p.Description, p.Location, p.JobType, p.RequiredSkills),
			Created:     p.CreatedAt,
			Updated:     p.UpdatedAt,
		})
		if p.UpdatedAt.After(feed.Updated) {
			feed.Updated = p.UpdatedAt
		}
	}
	feed.Items = items

	uc.logger.Debug("Job feed generated", zap.String("founder_id", founderID.String()), zap.Int("item_count", len(items)))
	return feed, nil
}

func postingSummary(description, location, jobType string, skills []string) string {
	parts := make([]string, 0, 4)
	if d := strings.TrimSpace(description); d != "" {
		parts = append(parts, d)
	}
	if location != "" {
		parts = append(parts, "Location: "+location)
	}
	if jobType != "" {
		parts = append(parts, "Type: "+jobType)
	}
	if len(skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(skills, ", "))
	}
	return strings.Join(parts, "\n")
}
