package handler

import (
	"net/http"
	"secure-banking-api/common"
	"secure-banking-api/logger"
	"secure-banking-api/model"

	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	users  UserService
	ledger LedgerService
}

func NewAccountHandler(users UserService, ledger LedgerService) *AccountHandler {
	return &AccountHandler{users: users, ledger: ledger}
}

// currentUser resolves the request's identity to a stored user.
func (h *AccountHandler) currentUser(r *http.Request) (*model.User, *common.AppError) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		return nil, common.NewAppError(http.StatusUnauthorized, "Authentication required", nil)
	}

	user, err := h.users.GetByUsername(r.Context(), identity.Username)
	if err != nil {
		return nil, serviceError(err, "Could not resolve user")
	}
	return user, nil
}

// GetBalance godoc
// @Summary      Get balance
// @Description  Returns the caller's balance as a bare JSON number.
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {number}  number
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/account/balance [get]
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := h.currentUser(r)
	if appErr != nil {
		return appErr
	}

	balance, err := h.ledger.GetBalance(r.Context(), user)
	if err != nil {
		return serviceError(err, "Could not retrieve balance")
	}

	common.WriteJSON(w, http.StatusOK, balance)
	return nil
}

// Deposit godoc
// @Summary      Deposit money
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        deposit body model.AmountRequest true "Amount to deposit"
// @Success      200  {object}  model.OperationResponse
// @Failure      400  {object}  common.AppError "Invalid amount"
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/account/deposit [post]
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := h.currentUser(r)
	if appErr != nil {
		return appErr
	}

	var req model.AmountRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	account, transaction, err := h.ledger.Deposit(r.Context(), user, req.Amount)
	if err != nil {
		return serviceError(err, "Could not process deposit")
	}

	common.WriteJSON(w, http.StatusOK, model.OperationResponse{
		Message:     "Deposit successful",
		Balance:     account.Balance,
		Transaction: transaction,
	})
	return nil
}

// Withdraw godoc
// @Summary      Withdraw money
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        withdraw body model.AmountRequest true "Amount to withdraw"
// @Success      200  {object}  model.OperationResponse
// @Failure      400  {object}  common.AppError "Invalid amount or insufficient funds"
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/account/withdraw [post]
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := h.currentUser(r)
	if appErr != nil {
		return appErr
	}

	var req model.AmountRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	account, transaction, err := h.ledger.Withdraw(r.Context(), user, req.Amount)
	if err != nil {
		return serviceError(err, "Could not process withdrawal")
	}

	common.WriteJSON(w, http.StatusOK, model.OperationResponse{
		Message:     "Withdraw successful",
		Balance:     account.Balance,
		Transaction: transaction,
	})
	return nil
}

// Transfer godoc
// @Summary      Transfer money to another user
// @Description  Moves the amount from the caller's account to the account of toUsername.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        transfer body model.TransferRequest true "Recipient and amount"
// @Success      200  {object}  model.OperationResponse
// @Failure      400  {object}  common.AppError "Invalid amount, insufficient funds or self transfer"
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError "Sender or recipient not found"
// @Failure      500  {object}  common.AppError
// @Router       /api/account/transfer [post]
func (h *AccountHandler) Transfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := h.currentUser(r)
	if appErr != nil {
		return appErr
	}

	var req model.TransferRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"from":   user.Username,
		"to":     req.ToUsername,
		"amount": req.Amount.String(),
	}).Info("Transfer request received")

	account, transaction, err := h.ledger.Transfer(r.Context(), user, req.ToUsername, req.Amount)
	if err != nil {
		return serviceError(err, "Could not process transfer")
	}

	common.WriteJSON(w, http.StatusOK, model.OperationResponse{
		Message:     "Transfer successful",
		Balance:     account.Balance,
		Transaction: transaction,
	})
	return nil
}

// ListTransactions godoc
// @Summary      List account transaction history
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Transaction
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/account/transactions [get]
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := h.currentUser(r)
	if appErr != nil {
		return appErr
	}

	transactions, err := h.ledger.ListTransactions(r.Context(), user)
	if err != nil {
		return serviceError(err, "Could not retrieve transactions")
	}

	common.WriteJSON(w, http.StatusOK, transactions)
	return nil
}

// ListAccounts godoc
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Account
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError
// @Router       /api/admin/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	accounts, err := h.ledger.ListAllAccounts(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}
	if accounts == nil {
		accounts = []*model.Account{}
	}

	common.WriteJSON(w, http.StatusOK, accounts)
	return nil
}
