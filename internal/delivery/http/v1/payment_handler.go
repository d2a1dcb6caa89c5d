package v1

import (
	"encoding/json"
	"net/http"

	"zelora-backend/internal/usecase"
	"zelora-backend/pkg/utils"
)

type PaymentHandler struct {
	checkoutUC *usecase.CheckoutUsecase
}

func NewPaymentHandler(checkoutUC *usecase.CheckoutUsecase) *PaymentHandler {
	return &PaymentHandler{checkoutUC: checkoutUC}
}

// CreateOrder registers the current cart total with the payment gateway
// and returns the remote order for the client-side capture widget.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	remote, err := h.checkoutUC.CreatePaymentOrder(r.Context(), user.ID)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, remote)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := userFrom(r); !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		GatewayOrderID   string `json:"gatewayOrderId"`
		GatewayPaymentID string `json:"gatewayPaymentId"`
		Signature        string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.checkoutUC.VerifyPayment(req.GatewayOrderID, req.GatewayPaymentID, req.Signature); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
