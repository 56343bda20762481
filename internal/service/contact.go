package service

import (
	"context"

	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/repository"
)

// ContactService handles contact-form messages and newsletter subscriptions.
type ContactService struct {
	contactRepo      repository.ContactRepository
	subscriptionRepo repository.SubscriptionRepository
	logger           *logging.Logger
}

// NewContactService creates a new contact service.
func NewContactService(
	contactRepo repository.ContactRepository,
	subscriptionRepo repository.SubscriptionRepository,
) *ContactService {
	return &ContactService{
		contactRepo:      contactRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logging.NewLogger("contact-service"),
	}
}

// GetContact retrieves a contact message by ID.
func (s *ContactService) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return s.contactRepo.GetByID(ctx, id)
}

// ListContacts retrieves all contact messages.
func (s *ContactService) ListContacts(ctx context.Context) ([]*models.Contact, error) {
	return s.contactRepo.List(ctx)
}

// UpdateContact marks a message read or attaches internal notes.
func (s *ContactService) UpdateContact(ctx context.Context, id string, req *models.UpdateContactRequest) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Read != nil {
		contact.Read = *req.Read
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes a contact message.
func (s *ContactService) DeleteContact(ctx context.Context, id string) error {
	return s.contactRepo.Delete(ctx, id)
}

// UnreadCount returns the number of unread contact messages.
func (s *ContactService) UnreadCount(ctx context.Context) (int, error) {
	return s.contactRepo.UnreadCount(ctx)
}

// ListSubscriptions retrieves all newsletter signups.
func (s *ContactService) ListSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	return s.subscriptionRepo.List(ctx)
}

// CountSubscriptions returns the number of newsletter signups.
func (s *ContactService) CountSubscriptions(ctx context.Context) (int, error) {
	return s.subscriptionRepo.Count(ctx)
}

// DeleteSubscription removes a newsletter signup.
func (s *ContactService) DeleteSubscription(ctx context.Context, id string) error {
	s.logger.Info("Subscription removed", logging.Fields{"subscription_id": id})
	return s.subscriptionRepo.Delete(ctx, id)
}
