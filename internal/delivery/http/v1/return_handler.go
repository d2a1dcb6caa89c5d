package v1

import (
	"encoding/json"
	"net/http"

	"zelora-backend/internal/domain"
	"zelora-backend/internal/usecase"
	"zelora-backend/pkg/utils"
)

type ReturnHandler struct {
	returnUC *usecase.ReturnUsecase
}

func NewReturnHandler(returnUC *usecase.ReturnUsecase) *ReturnHandler {
	return &ReturnHandler{returnUC: returnUC}
}

func (h *ReturnHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req usecase.CreateReturnInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	ret, err := h.returnUC.Create(r.Context(), user.ID, req)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, ret)
}

func (h *ReturnHandler) GetMyReturns(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	returns, err := h.returnUC.GetMyReturns(r.Context(), user.ID)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, returns)
}

func (h *ReturnHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ret, err := h.returnUC.Get(r.Context(), user.ID, user.Role, r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ret)
}

// Cancel withdraws a pending return request.
func (h *ReturnHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.returnUC.Cancel(r.Context(), user.ID, r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Return request cancelled"})
}

// --- Admin ---

type AdminReturnHandler struct {
	returnUC *usecase.ReturnUsecase
}

func NewAdminReturnHandler(returnUC *usecase.ReturnUsecase) *AdminReturnHandler {
	return &AdminReturnHandler{returnUC: returnUC}
}

func (h *AdminReturnHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ReturnFilter{
		Page:   utils.ParseInt(q.Get("page"), 1),
		Limit:  utils.ParseInt(q.Get("limit"), 20),
		Status: q.Get("status"),
	}

	returns, total, err := h.returnUC.List(r.Context(), filter)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"returns": returns,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

func (h *AdminReturnHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdateReturnInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	ret, err := h.returnUC.UpdateStatus(r.Context(), r.PathValue("id"), req)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ret)
}
