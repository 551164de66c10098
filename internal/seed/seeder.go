package seed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ticketly/system-tests/pkg/client/auth"
	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

const organizationName = "Ticketly Seeded Organization"

// Record captures what a seeding run created, so a later cleanup run can
// tear it down.
type Record struct {
	OrganizationID string        `json:"organizationId"`
	Events         []SeededEvent `json:"events"`
}

type SeededEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SessionID string `json:"sessionId"`
}

type Options struct {
	Count      int
	ImagesDir  string
	OutputPath string
}

// Seeder populates a deployment with approved events under a single fresh
// organization. The user identity creates, the admin identity approves.
type Seeder struct {
	command *ticketly.CommandClient
	user    *auth.TokenCache
	admin   *auth.TokenCache
	builder *Builder
}

func NewSeeder(command *ticketly.CommandClient, user, admin *auth.TokenCache, builder *Builder) *Seeder {
	return &Seeder{command: command, user: user, admin: admin, builder: builder}
}

// Run creates the organization and events, approves each event, and writes
// the record to opts.OutputPath. Individual event failures are logged and
// skipped so one bad payload does not abort a long seeding run.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Record, error) {
	userToken, err := s.user.Token(ctx)
	if err != nil {
		return nil, err
	}
	adminToken, err := s.admin.Token(ctx)
	if err != nil {
		return nil, err
	}

	log.Infof("creating organization %q", organizationName)
	organization, err := s.command.CreateOrganization(ctx, userToken, organizationName)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create organization")
	}
	log.Infof("organization created: %s", organization.ID)

	categories, err := s.command.ListCategories(ctx, userToken)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list categories")
	}
	leaves := leafCategories(categories)
	if len(leaves) == 0 {
		return nil, errors.New("no sub-categories found, cannot seed events")
	}
	log.Infof("found %d leaf categories", len(leaves))

	images := listImages(opts.ImagesDir)
	log.Infof("found %d cover images in %s", len(images), opts.ImagesDir)

	record := &Record{OrganizationID: organization.ID}
	for i := 0; i < opts.Count; i++ {
		payload := s.builder.Event(i, organization.ID, leaves[i%len(leaves)])

		imagePath := ""
		if len(images) > 0 {
			imagePath = images[i%len(images)]
		}

		log.Infof("creating event %d/%d: %s", i+1, opts.Count, payload.Title)
		event, err := s.createEvent(ctx, userToken, payload, imagePath)
		if err != nil {
			log.WithError(err).Errorf("failed to create event %q", payload.Title)
			continue
		}

		if err := s.command.ApproveEvent(ctx, adminToken, event.ID); err != nil {
			log.WithError(err).Errorf("failed to approve event %s", event.ID)
			continue
		}

		record.Events = append(record.Events, SeededEvent{
			ID:        event.ID,
			Title:     payload.Title,
			SessionID: payload.Sessions[0].ID,
		})
	}

	if err := WriteRecord(opts.OutputPath, record); err != nil {
		return record, err
	}
	log.Infof("seeded 1 organization and %d events, record written to %s",
		len(record.Events), opts.OutputPath)
	return record, nil
}

// createEvent retries without the cover image when a multipart upload fails,
// matching how flaky object storage in test deployments is worked around.
func (s *Seeder) createEvent(ctx context.Context, token string, payload *ticketly.EventPayload, imagePath string) (*ticketly.Event, error) {
	event, err := s.command.CreateEvent(ctx, token, payload, imagePath)
	if err != nil && imagePath != "" {
		log.WithError(err).Warnf("upload with image %s failed, retrying without image", filepath.Base(imagePath))
		event, err = s.command.CreateEvent(ctx, token, payload, "")
	}
	return event, err
}

// leafCategories flattens the category tree into its sellable leaves.
func leafCategories(categories []ticketly.Category) []ticketly.Category {
	var leaves []ticketly.Category
	for _, category := range categories {
		leaves = append(leaves, category.SubCategories...)
	}
	return leaves
}

func listImages(dir string) []string {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithError(err).Warnf("cannot read images directory %s", dir)
		return nil
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif":
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	return images
}

func WriteRecord(path string, record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write seed record to %s", path)
	}
	return nil
}

func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read seed record from %s", path)
	}
	record := &Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, errors.Wrapf(err, "seed record %s is not valid JSON", path)
	}
	return record, nil
}
