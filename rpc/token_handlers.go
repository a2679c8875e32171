package rpc

import (
	"net/http"

	"cinechain/native/token"
)

type tokenBalanceParams struct {
	Address string `json:"address"`
}

type tokenTransferParams struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type tokenApproveParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type tokenMintParams struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type tokenBalanceResult struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Balance string `json:"balance"`
}

func (s *Server) handleTokenBalanceOf(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenBalanceParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	addr, rpcErr := parseAddressParam("address", params.Address)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	balance, err := s.node.TokenBalanceOf(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "balance lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, tokenBalanceResult{
		Address: params.Address,
		Symbol:  token.Symbol,
		Balance: bigString(balance),
	})
}

func (s *Server) handleTokenTotalSupply(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	supply, err := s.node.TokenTotalSupply()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "supply lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]string{
		"symbol":      token.Symbol,
		"totalSupply": bigString(supply),
	})
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenTransferParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	from, rpcErr := parseAddressParam("from", params.From)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	to, rpcErr := parseAddressParam("to", params.To)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	if err := s.node.TokenTransfer(from, to, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "transfer failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]string{"transferred": bigString(amount)})
}

func (s *Server) handleTokenApprove(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenApproveParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	owner, rpcErr := parseAddressParam("owner", params.Owner)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	spender, rpcErr := parseAddressParam("spender", params.Spender)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	if err := s.node.TokenApprove(owner, spender, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "approve failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]string{"approved": bigString(amount)})
}

func (s *Server) handleTokenMint(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenMintParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	to, rpcErr := parseAddressParam("to", params.To)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	if err := s.node.TokenMint(caller, to, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "mint failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]string{"minted": bigString(amount)})
}
