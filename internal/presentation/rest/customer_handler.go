package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/application/usecase"
)

// CustomerHandler serves the customer endpoints.
type CustomerHandler struct {
	createCustomer *usecase.CreateCustomerUseCase
	updateCustomer *usecase.UpdateCustomerUseCase
	getCustomer    *usecase.GetCustomerUseCase
	listCustomers  *usecase.ListCustomersUseCase
	logger         *slog.Logger
}

// NewCustomerHandler creates the customer HTTP handler.
func NewCustomerHandler(
	createCustomer *usecase.CreateCustomerUseCase,
	updateCustomer *usecase.UpdateCustomerUseCase,
	getCustomer *usecase.GetCustomerUseCase,
	listCustomers *usecase.ListCustomersUseCase,
	logger *slog.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		createCustomer: createCustomer,
		updateCustomer: updateCustomer,
		getCustomer:    getCustomer,
		listCustomers:  listCustomers,
		logger:         logger,
	}
}

// RegisterRoutes attaches the customer routes.
func (h *CustomerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/customers", h.handleCreate).Methods("POST")
	r.HandleFunc("/api/customers", h.handleList).Methods("GET")
	r.HandleFunc("/api/customers/{id}", h.handleGet).Methods("GET")
	r.HandleFunc("/api/customers/{id}", h.handleUpdate).Methods("PUT")
}

func (h *CustomerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp, err := h.createCustomer.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CustomerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	resp, err := h.listCustomers.Execute(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getCustomer.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCustomerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.CustomerID = mux.Vars(r)["id"]
	resp, err := h.updateCustomer.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
