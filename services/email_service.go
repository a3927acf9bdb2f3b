package services

import (
	"context"
	"fmt"

	"KinderTube/mail"
	"KinderTube/repositories"
)

// EmailNotifier duplicates notifications to the parent's email address.
type EmailNotifier struct {
	Mailer     mail.Mailer
	ParentRepo repositories.ParentRepository
}

func NewEmailNotifier(mailer mail.Mailer, parentRepo repositories.ParentRepository) *EmailNotifier {
	return &EmailNotifier{Mailer: mailer, ParentRepo: parentRepo}
}

func (s *EmailNotifier) NotifyParent(ctx context.Context, parentID uint, n Notification) error {
	parent, err := s.ParentRepo.FindByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("parent not found: %w", err)
	}
	if parent.Email == "" || !parent.IsActive {
		return nil
	}

	name := parent.FirstName
	if name == "" {
		name = parent.Username
	}
	body := fmt.Sprintf(`Hello %s!

%s

Open KinderTube to approve or reject the request.

This email was sent automatically, please do not reply.
`, name, n.Body)

	return s.Mailer.Send(ctx, parent.Email, "KinderTube: "+n.Title, body)
}
