package clerk

import (
	"errors"

	"github.com/rachitpednekar/cloudshare/app/models"
	"github.com/rachitpednekar/cloudshare/app/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dispatcher routes verified lifecycle events to the profile store and
// credit ledger. Profile and ledger writes are separate stores, so a partial
// failure (profile created, ledger init failed) is possible; the error is
// surfaced and the provider's redelivery heals it.
type Dispatcher struct {
	profiles repository.ProfileRepository
	credits  repository.CreditsRepository
	log      zerolog.Logger
}

// NewDispatcher creates a dispatcher with injected stores.
func NewDispatcher(profiles repository.ProfileRepository, credits repository.CreditsRepository, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		profiles: profiles,
		credits:  credits,
		log:      log,
	}
}

// Dispatch branches on the event kind. Unhandled kinds are logged and
// dropped, never an error.
func (d *Dispatcher) Dispatch(event *UserEvent) error {
	switch event.Type {
	case EventUserCreated:
		return d.handleUserCreated(event)
	case EventUserUpdated:
		return d.handleUserUpdated(event)
	case EventUserDeleted:
		return d.handleUserDeleted(event)
	default:
		d.log.Info().
			Str("event_type", event.RawType).
			Msg("ignoring unhandled webhook event type")
		return nil
	}
}

func (d *Dispatcher) handleUserCreated(event *UserEvent) error {
	profile := &models.Profile{
		ClerkID:   event.ClerkID,
		Email:     event.Email,
		FirstName: event.FirstName,
		LastName:  event.LastName,
		PhotoURL:  event.PhotoURL,
	}
	if err := d.profiles.Create(profile); err != nil {
		d.log.Error().Err(err).Str("clerk_id", event.ClerkID).Msg("profile creation failed")
		return err
	}
	if _, err := d.credits.InitZeroBalance(event.ClerkID); err != nil {
		d.log.Error().Err(err).Str("clerk_id", event.ClerkID).Msg("initial credits provisioning failed")
		return err
	}
	d.log.Info().Str("clerk_id", event.ClerkID).Msg("user provisioned")
	return nil
}

func (d *Dispatcher) handleUserUpdated(event *UserEvent) error {
	profile := &models.Profile{
		ClerkID:   event.ClerkID,
		Email:     event.Email,
		FirstName: event.FirstName,
		LastName:  event.LastName,
		PhotoURL:  event.PhotoURL,
	}
	err := d.profiles.Update(profile)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Out-of-order delivery: the update arrived before the create.
		// Treating it as a create keeps the stores self-healing.
		d.log.Warn().Str("clerk_id", event.ClerkID).Msg("update for unknown profile, creating instead")
		return d.handleUserCreated(event)
	}
	if err != nil {
		d.log.Error().Err(err).Str("clerk_id", event.ClerkID).Msg("profile update failed")
	}
	return err
}

func (d *Dispatcher) handleUserDeleted(event *UserEvent) error {
	// The credit ledger and transaction history are retained on deletion as
	// an audit trail; only the profile record goes away.
	if err := d.profiles.Delete(event.ClerkID); err != nil {
		d.log.Error().Err(err).Str("clerk_id", event.ClerkID).Msg("profile deletion failed")
		return err
	}
	d.log.Info().Str("clerk_id", event.ClerkID).Msg("user profile deleted")
	return nil
}
