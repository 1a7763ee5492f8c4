package authorization

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// Service is the admission gate for charging sessions. Rejections come back
// as authorization statuses, never as errors; errors mean storage failed.
type Service struct {
	tags         ports.IdTagRepository
	reservations ports.ReservationRepository
	cards        ports.CardRepository
	log          *zap.Logger
}

func NewService(
	tags ports.IdTagRepository,
	reservations ports.ReservationRepository,
	cards ports.CardRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		tags:         tags,
		reservations: reservations,
		cards:        cards,
		log:          log,
	}
}

// Authorize checks the tag alone. An unknown tag is Invalid; a known tag is
// Accepted only when its stored status is "Accepted" and its expiry is
// strictly in the future, otherwise Expired.
func (s *Service) Authorize(ctx context.Context, idTag string, now time.Time) (domain.AuthorizationStatus, error) {
	tag, err := s.tags.FindByID(ctx, idTag)
	if err != nil {
		return "", err
	}
	if tag == nil {
		s.log.Info("Authorize rejected: unknown tag", zap.String("id_tag", idTag))
		return domain.AuthorizationInvalid, nil
	}
	if tag.Status != string(domain.AuthorizationAccepted) || !tag.ValidUntilTime().After(now) {
		s.log.Info("Authorize rejected",
			zap.String("id_tag", idTag),
			zap.String("stored_status", tag.Status),
			zap.String("valid_until", tag.ValidUntil),
		)
		return domain.AuthorizationExpired, nil
	}
	return domain.AuthorizationAccepted, nil
}

// AdmitStart runs the three admission gates in order: tag validity, active
// reservation, prepaid balance. The first failing gate determines the
// returned status. The reservation is consumed as soon as its gate passes
// and stays consumed even when the balance gate rejects afterwards.
func (s *Service) AdmitStart(ctx context.Context, chargePointID string, connectorID int, idTag string, now time.Time) (domain.AuthorizationStatus, error) {
	status, err := s.Authorize(ctx, idTag, now)
	if err != nil {
		return "", err
	}
	if status != domain.AuthorizationAccepted {
		return status, nil
	}

	_, err = s.reservations.ConsumeActive(ctx, chargePointID, idTag, now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("StartTransaction rejected: no active reservation",
				zap.String("charge_point_id", chargePointID),
				zap.String("id_tag", idTag),
			)
			return domain.AuthorizationExpired, nil
		}
		return "", err
	}

	card, err := s.cards.FindByCardID(ctx, idTag)
	if err != nil {
		return "", err
	}
	if card == nil {
		s.log.Warn("StartTransaction rejected: no card account", zap.String("id_tag", idTag))
		return domain.AuthorizationInvalid, nil
	}
	if card.Balance < domain.MinStartBalance {
		s.log.Warn("StartTransaction rejected: insufficient balance",
			zap.String("id_tag", idTag),
			zap.Float64("balance", card.Balance),
		)
		return domain.AuthorizationBlocked, nil
	}

	return domain.AuthorizationAccepted, nil
}
