package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// AdminHandler serves the record-management endpoints: id tags, users and
// reservations. Thin wrappers over the repositories; no protocol logic.
type AdminHandler struct {
	tags         ports.IdTagRepository
	users        ports.UserRepository
	reservations ports.ReservationRepository
	log          *zap.Logger
}

func NewAdminHandler(
	tags ports.IdTagRepository,
	users ports.UserRepository,
	reservations ports.ReservationRepository,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		tags:         tags,
		users:        users,
		reservations: reservations,
		log:          log,
	}
}

// --- id tags ---

type idTagRequest struct {
	IdTag      string `json:"id_tag"`
	Status     string `json:"status"`
	ValidUntil string `json:"valid_until"`
}

func (h *AdminHandler) ListIdTags(c *fiber.Ctx) error {
	tags, err := h.tags.FindAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(tags)
}

func (h *AdminHandler) GetIdTag(c *fiber.Ctx) error {
	tag, err := h.tags.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if tag == nil {
		return domain.ErrNotFound
	}
	return c.JSON(tag)
}

func (h *AdminHandler) CreateIdTag(c *fiber.Ctx) error {
	var req idTagRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.IdTag == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id_tag is required"})
	}
	tag := &domain.IdTag{IdTag: req.IdTag, Status: req.Status, ValidUntil: req.ValidUntil}
	if err := h.tags.Create(c.Context(), tag); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

func (h *AdminHandler) UpdateIdTag(c *fiber.Ctx) error {
	existing, err := h.tags.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	var req idTagRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Status != "" {
		existing.Status = req.Status
	}
	if req.ValidUntil != "" {
		existing.ValidUntil = req.ValidUntil
	}
	if err := h.tags.Save(c.Context(), existing); err != nil {
		return err
	}
	return c.JSON(existing)
}

func (h *AdminHandler) DeleteIdTag(c *fiber.Ctx) error {
	if err := h.tags.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// --- users ---

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.FindAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	return c.JSON(user)
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var user domain.User
	if err := c.BodyParser(&user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if user.IdTag == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id_tag is required"})
	}
	if err := h.users.Create(c.Context(), &user); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	existing, err := h.users.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	var req domain.User
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Department != "" {
		existing.Department = req.Department
	}
	if req.CardNumber != "" {
		existing.CardNumber = req.CardNumber
	}
	if err := h.users.Save(c.Context(), existing); err != nil {
		return err
	}
	return c.JSON(existing)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.users.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// --- reservations ---

type reservationRequest struct {
	ChargePointID string    `json:"charge_point_id"`
	IdTag         string    `json:"id_tag"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
}

func (h *AdminHandler) ListReservations(c *fiber.Ctx) error {
	reservations, err := h.reservations.FindAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(reservations)
}

func (h *AdminHandler) GetReservation(c *fiber.Ctx) error {
	res, err := h.reservations.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if res == nil {
		return domain.ErrNotFound
	}
	return c.JSON(res)
}

func (h *AdminHandler) CreateReservation(c *fiber.Ctx) error {
	var req reservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.ChargePointID == "" || req.IdTag == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "charge_point_id and id_tag are required"})
	}
	status := domain.ReservationStatus(req.Status)
	if status == "" {
		status = domain.ReservationStatusActive
	}
	res := &domain.Reservation{
		ID:            uuid.New().String(),
		ChargePointID: req.ChargePointID,
		IdTag:         req.IdTag,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        status,
	}
	if err := h.reservations.Save(c.Context(), res); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *AdminHandler) UpdateReservation(c *fiber.Ctx) error {
	existing, err := h.reservations.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	var req reservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.ChargePointID != "" {
		existing.ChargePointID = req.ChargePointID
	}
	if req.IdTag != "" {
		existing.IdTag = req.IdTag
	}
	if !req.StartTime.IsZero() {
		existing.StartTime = req.StartTime
	}
	if !req.EndTime.IsZero() {
		existing.EndTime = req.EndTime
	}
	if req.Status != "" {
		existing.Status = domain.ReservationStatus(req.Status)
	}
	if err := h.reservations.Save(c.Context(), existing); err != nil {
		return err
	}
	return c.JSON(existing)
}

func (h *AdminHandler) DeleteReservation(c *fiber.Ctx) error {
	if err := h.reservations.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}
