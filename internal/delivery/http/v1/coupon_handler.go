package v1

import (
	"encoding/json"
	"net/http"

	"zelora-backend/internal/usecase"
	"zelora-backend/pkg/utils"
)

// CouponHandler is the admin coupon CRUD surface.
type CouponHandler struct {
	couponUC *usecase.CouponUsecase
}

func NewCouponHandler(couponUC *usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{couponUC: couponUC}
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	coupon, err := h.couponUC.Create(r.Context(), req)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, coupon)
}

func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.couponUC.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, coupon)
}

func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := utils.ParseInt(q.Get("page"), 1)
	limit := utils.ParseInt(q.Get("limit"), 20)

	coupons, total, err := h.couponUC.List(r.Context(), page, limit)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"coupons": coupons,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	coupon, err := h.couponUC.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, coupon)
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.couponUC.Delete(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Coupon deleted"})
}
