package handler

import (
	"strconv"

	"marketplace-wallet/internal/adapter/http/dto"
	"marketplace-wallet/internal/adapter/http/middleware"
	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"
	"marketplace-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles the admin wallet endpoints.
type WalletHandler struct {
	walletSvc    ports.WalletService
	ledgerSvc    ports.LedgerService
	freezeSvc    ports.FreezeService
	creditSvc    ports.CreditService
	noteSvc      ports.NoteService
	reportingSvc ports.ReportingService
	reconcileSvc ports.ReconcileService
	ledgerRepo   ports.LedgerRepository
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(
	walletSvc ports.WalletService,
	ledgerSvc ports.LedgerService,
	freezeSvc ports.FreezeService,
	creditSvc ports.CreditService,
	noteSvc ports.NoteService,
	reportingSvc ports.ReportingService,
	reconcileSvc ports.ReconcileService,
	ledgerRepo ports.LedgerRepository,
) *WalletHandler {
	return &WalletHandler{
		walletSvc:    walletSvc,
		ledgerSvc:    ledgerSvc,
		freezeSvc:    freezeSvc,
		creditSvc:    creditSvc,
		noteSvc:      noteSvc,
		reportingSvc: reportingSvc,
		reconcileSvc: reconcileSvc,
		ledgerRepo:   ledgerRepo,
	}
}

func walletIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return uuid.Nil, false
	}
	return id, true
}

// EnsureWallet handles POST /api/v1/wallets.
func (h *WalletHandler) EnsureWallet(c *gin.Context) {
	var req dto.EnsureWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	wallet, err := h.walletSvc.EnsureWallet(c.Request.Context(), userID, req.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToWalletResponse(wallet))
}

// GetDetails handles GET /api/v1/wallets/:id/details.
func (h *WalletHandler) GetDetails(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	details, err := h.reportingSvc.GetWalletDetails(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWalletDetailsResponse(details))
}

// AdjustBalance handles POST /api/v1/wallets/:id/adjust-balance.
func (h *WalletHandler) AdjustBalance(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.walletSvc.GetByID(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	amount, err := dto.ParseAmount(req.Amount, wallet.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.AdjustBalance(c.Request.Context(), ports.AdjustmentRequest{
		WalletID:  walletID,
		Amount:    amount,
		Type:      domain.TransactionType(req.Type),
		Reason:    req.Reason,
		Reference: req.Reference,
		Actor:     middleware.AdminID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToTransactionResponse(txn))
}

// Freeze handles POST /api/v1/wallets/:id/freeze.
func (h *WalletHandler) Freeze(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.walletSvc.GetByID(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	amount, err := dto.ParseAmount(req.Amount, wallet.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	frozen, err := h.freezeSvc.Freeze(c.Request.Context(), ports.FreezeRequest{
		WalletID: walletID,
		Amount:   amount,
		Reason:   req.Reason,
		Actor:    middleware.AdminID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWalletResponse(frozen))
}

// Unfreeze handles POST /api/v1/wallets/unfreeze. The wallet is addressed
// by owner and currency rather than wallet id.
func (h *WalletHandler) Unfreeze(c *gin.Context) {
	var req dto.UnfreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	wallet, err := h.walletSvc.GetByUser(c.Request.Context(), userID, req.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	amount, err := dto.ParseAmount(req.Amount, wallet.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	unfrozen, err := h.freezeSvc.Unfreeze(c.Request.Context(), ports.FreezeRequest{
		WalletID: wallet.ID,
		Amount:   amount,
		Reason:   req.Reason,
		Actor:    middleware.AdminID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWalletResponse(unfrozen))
}

// SetCreditLimit handles POST /api/v1/wallets/:id/credit-limit.
func (h *WalletHandler) SetCreditLimit(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.CreditLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.walletSvc.GetByID(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, err := dto.ParseAmount(req.CreditLimit, wallet.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.creditSvc.SetCreditLimit(c.Request.Context(), ports.CreditLimitRequest{
		WalletID: walletID,
		NewLimit: limit,
		Reason:   req.Reason,
		Actor:    middleware.AdminID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWalletResponse(updated))
}

// SetCreditLimitByUser handles POST /api/v1/wallets/credit-limit, addressing
// the wallet by owner and currency the way Unfreeze does.
func (h *WalletHandler) SetCreditLimitByUser(c *gin.Context) {
	var req dto.CreditLimitByUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	wallet, err := h.walletSvc.GetByUser(c.Request.Context(), userID, req.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, err := dto.ParseAmount(req.CreditLimit, wallet.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.creditSvc.SetCreditLimit(c.Request.Context(), ports.CreditLimitRequest{
		WalletID: wallet.ID,
		NewLimit: limit,
		Reason:   req.Reason,
		Actor:    middleware.AdminID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWalletResponse(updated))
}

// AddNote handles POST /api/v1/wallets/:id/notes.
func (h *WalletHandler) AddNote(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.noteSvc.AddNote(c.Request.Context(), walletID, middleware.AdminID(c), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToWalletResponse(wallet))
}

// Suspend handles POST /api/v1/wallets/:id/suspend.
func (h *WalletHandler) Suspend(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.walletSvc.Suspend(c.Request.Context(), walletID, req.Reason, middleware.AdminID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWalletResponse(wallet))
}

// Reinstate handles POST /api/v1/wallets/:id/reinstate.
func (h *WalletHandler) Reinstate(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	wallet, err := h.walletSvc.Reinstate(c.Request.Context(), walletID, middleware.AdminID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWalletResponse(wallet))
}

// ListTransactions handles GET /api/v1/wallets/:id/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	params := ports.LedgerListParams{WalletID: walletID, Page: 1, PageSize: 20}
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		params.Page = p
	}
	if ps, err := strconv.Atoi(c.Query("page_size")); err == nil && ps > 0 && ps <= 100 {
		params.PageSize = ps
	}
	if typ := c.Query("type"); typ != "" {
		t := domain.TransactionType(typ)
		params.Type = &t
	}
	if status := c.Query("status"); status != "" {
		s := domain.TransactionStatus(status)
		params.Status = &s
	}

	items, total, err := h.ledgerRepo.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	totalPages := int(total) / params.PageSize
	if int(total)%params.PageSize > 0 {
		totalPages++
	}
	response.OK(c, dto.TransactionListResponse{
		Items:      dto.ToTransactionResponses(items),
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

// Reconcile handles GET /api/v1/wallets/:id/reconcile.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	wallet, err := h.walletSvc.GetByID(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reconcileSvc.CheckWallet(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToReconcileResponse(report, wallet.Currency))
}
