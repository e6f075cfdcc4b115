package admin

import (
	"errors"
	"net/http"
	"strings"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/reqparam"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

type updateOrderRequest struct {
	Status model.OrderStatus `json:"status"`
}

// ListOrders 订单分页列表（状态、时间范围、用户邮箱）
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	filter := model.OrderFilter{
		Status: model.OrderStatus(q.Get("status")),
		Search: strings.TrimSpace(q.Get("search")),
		Page:   reqparam.Page(r),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return apierr.Validation("invalid status %q", filter.Status)
	}
	var err error
	if filter.From, err = reqparam.OptionalTime(r, "from", false); err != nil {
		return err
	}
	if filter.To, err = reqparam.OptionalTime(r, "to", true); err != nil {
		return err
	}

	orders, total, err := h.store.ListOrders(r.Context(), filter)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"orders":     orders,
		"pagination": model.NewPagination(filter.Page, total),
	})
	return nil
}

func orderNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apierr.NotFound("order not found")
	}
	return err
}

// GetOrder 订单详情（含订单行）
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		return orderNotFound(err)
	}
	apierr.WriteJSON(w, http.StatusOK, order)
	return nil
}

// UpdateOrder 修改订单状态，不限制状态流转
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	var req updateOrderRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	if !req.Status.Valid() {
		return apierr.Validation("invalid status %q", req.Status).
			WithDetails(map[string]interface{}{"allowed": model.OrderStatuses})
	}
	if err := h.store.UpdateOrderStatus(r.Context(), id, req.Status); err != nil {
		return orderNotFound(err)
	}
	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		return orderNotFound(err)
	}
	apierr.WriteJSON(w, http.StatusOK, order)
	return nil
}

// DeleteOrder 删除订单
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteOrder(r.Context(), id); err != nil {
		return orderNotFound(err)
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
	return nil
}
