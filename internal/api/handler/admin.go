package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
)

// AdminHandler は管理者APIのハンドラー
type AdminHandler struct {
	reservationService ReservationServiceInterface
}

// NewAdminHandler は新しいAdminHandlerを作成する
func NewAdminHandler(reservationService ReservationServiceInterface) *AdminHandler {
	return &AdminHandler{
		reservationService: reservationService,
	}
}

// ListReservations は全予約を一覧する
// GET /api/v1/admin/reservations
func (h *AdminHandler) ListReservations(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}

	limit, offset := listParams(c)
	reservations, err := h.reservationService.ListAllReservations(c.Request().Context(), actor, limit, offset)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reservations": toReservationResponses(reservations),
	})
}

// UpdateStatusRequest は管理者による状態更新リクエスト
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled" example:"confirmed"`
}

// UpdateStatus は管理者権限で予約の状態を更新する
// 指定できる状態は confirmed と cancelled のみ
// PATCH /api/v1/admin/reservations/:id
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, booking.ErrForbidden.Error())
	}

	id, err := reservationID(c)
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var reservation *booking.Reservation
	switch booking.Status(req.Status) {
	case booking.StatusConfirmed:
		reservation, err = h.reservationService.ConfirmReservation(c.Request().Context(), id, actor)
	case booking.StatusCancelled:
		reservation, err = h.reservationService.CancelReservation(c.Request().Context(), id, actor)
	}
	if err != nil {
		var ce *booking.ConflictError
		if errors.As(err, &ce) {
			return conflictResponse(c, ce)
		}
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, toReservationResponse(reservation))
}
