package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/application/usecase"
	"github.com/microfin/loanbook/internal/domain/apperror"
)

// LoanHandler serves the loan and payment endpoints.
type LoanHandler struct {
	createLoan  *usecase.CreateLoanUseCase
	updateLoan  *usecase.UpdateLoanUseCase
	getLoan     *usecase.GetLoanUseCase
	listLoans   *usecase.ListLoansUseCase
	deleteLoan  *usecase.DeleteLoanUseCase
	getSchedule *usecase.GetScheduleUseCase
	loanStats   *usecase.LoanStatsUseCase
	payment     *usecase.PayInstallmentUseCase
	bulkPayment *usecase.BulkPaymentUseCase
	addPayment  *usecase.AddPaymentUseCase
	override    *usecase.OverrideInstallmentUseCase
	defaulted   *usecase.MarkDefaultedUseCase
	sweep       *usecase.SweepOverdueUseCase
	logger      *slog.Logger
}

// NewLoanHandler creates the loan HTTP handler.
func NewLoanHandler(
	createLoan *usecase.CreateLoanUseCase,
	updateLoan *usecase.UpdateLoanUseCase,
	getLoan *usecase.GetLoanUseCase,
	listLoans *usecase.ListLoansUseCase,
	deleteLoan *usecase.DeleteLoanUseCase,
	getSchedule *usecase.GetScheduleUseCase,
	loanStats *usecase.LoanStatsUseCase,
	payment *usecase.PayInstallmentUseCase,
	bulkPayment *usecase.BulkPaymentUseCase,
	addPayment *usecase.AddPaymentUseCase,
	override *usecase.OverrideInstallmentUseCase,
	defaulted *usecase.MarkDefaultedUseCase,
	sweep *usecase.SweepOverdueUseCase,
	logger *slog.Logger,
) *LoanHandler {
	return &LoanHandler{
		createLoan:  createLoan,
		updateLoan:  updateLoan,
		getLoan:     getLoan,
		listLoans:   listLoans,
		deleteLoan:  deleteLoan,
		getSchedule: getSchedule,
		loanStats:   loanStats,
		payment:     payment,
		bulkPayment: bulkPayment,
		addPayment:  addPayment,
		override:    override,
		defaulted:   defaulted,
		sweep:       sweep,
		logger:      logger,
	}
}

// RegisterRoutes attaches the loan routes. Fixed paths are registered before
// the {id} patterns so they are not captured as loan IDs.
func (h *LoanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/loans/stats", h.handleStats).Methods("GET")
	r.HandleFunc("/api/loans/sweep-overdue", h.handleSweep).Methods("POST")

	r.HandleFunc("/api/loans", h.handleCreate).Methods("POST")
	r.HandleFunc("/api/loans", h.handleList).Methods("GET")
	r.HandleFunc("/api/loans/{id}", h.handleGet).Methods("GET")
	r.HandleFunc("/api/loans/{id}", h.handleUpdate).Methods("PUT")
	r.HandleFunc("/api/loans/{id}", h.handleDelete).Methods("DELETE")
	r.HandleFunc("/api/loans/{id}/schedule", h.handleSchedule).Methods("GET")
	r.HandleFunc("/api/loans/{id}/default", h.handleDefault).Methods("POST")
	r.HandleFunc("/api/loans/{id}/payments", h.handleAddPayment).Methods("POST")
	r.HandleFunc("/api/loans/{id}/bulk-payment", h.handleBulkPayment).Methods("POST")
	r.HandleFunc("/api/loans/{id}/installments/{number}/pay", h.handlePayInstallment).Methods("POST")
	r.HandleFunc("/api/loans/{id}/installments/{number}", h.handleOverride).Methods("PUT")
}

func (h *LoanHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp, err := h.createLoan.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *LoanHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	resp, err := h.listLoans.Execute(r.Context(), dto.ListLoansRequest{
		CustomerID: q.Get("customer"),
		Status:     q.Get("status"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getLoan.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateLoanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.updateLoan.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deleteLoan.Execute(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LoanHandler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getSchedule.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.loanStats.Execute(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleSweep(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sweep.Execute(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleDefault(w http.ResponseWriter, r *http.Request) {
	resp, err := h.defaulted.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.AddPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.addPayment.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleBulkPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.bulkPayment.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	number, err := installmentNumber(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req dto.PayInstallmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	req.InstallmentNumber = number
	resp, err := h.payment.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) handleOverride(w http.ResponseWriter, r *http.Request) {
	number, err := installmentNumber(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req dto.OverrideInstallmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	req.InstallmentNumber = number
	resp, err := h.override.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func installmentNumber(r *http.Request) (int, error) {
	raw := mux.Vars(r)["number"]
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		return 0, apperror.Validation("invalid installment number %q", raw)
	}
	return number, nil
}
