package handler

import (
	"wallet-service/internal/adapter/http/dto"
	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// CreateWallet handles POST /api/v1/wallets.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(dto.BindingMessage(err)))
		return
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), *req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewWalletResponse(wallet))
}

// PerformOperation handles POST /api/v1/wallets/:wallet_id/operation.
func (h *WalletHandler) PerformOperation(c *gin.Context) {
	walletID := c.Param("wallet_id")

	var req dto.OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(dto.BindingMessage(err)))
		return
	}

	kind, err := domain.ParseOperationKind(req.OperationType)
	if err != nil {
		response.Error(c, apperror.ErrInvalidOperationKind())
		return
	}

	wallet, err := h.walletSvc.PerformOperation(c.Request.Context(), walletID, kind, *req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

// GetBalance handles GET /api/v1/wallets/:wallet_id/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), c.Param("wallet_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}
