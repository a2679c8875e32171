package rpc

import (
	"math/big"
	"net/http"

	"cinechain/native/certificate"
)

type certMintParams struct {
	Caller      string `json:"caller"`
	To          string `json:"to"`
	CampaignID  uint64 `json:"campaignId"`
	Amount      string `json:"amount"`
	MetadataURI string `json:"metadataUri"`
	RoyaltyBps  uint32 `json:"royaltyBps"`
}

type certBatchMintParams struct {
	Caller       string   `json:"caller"`
	To           string   `json:"to"`
	CampaignID   uint64   `json:"campaignId"`
	Amounts      []string `json:"amounts"`
	MetadataURIs []string `json:"metadataUris"`
	RoyaltyBps   []uint32 `json:"royaltyBps"`
}

type certTransferParams struct {
	Caller  string `json:"caller"`
	From    string `json:"from"`
	To      string `json:"to"`
	TokenID uint64 `json:"tokenId"`
}

type certRoyaltyParams struct {
	Caller     string `json:"caller"`
	TokenID    uint64 `json:"tokenId"`
	RoyaltyBps uint32 `json:"royaltyBps"`
}

type certTransferabilityParams struct {
	Caller       string `json:"caller"`
	TokenID      uint64 `json:"tokenId"`
	Transferable bool   `json:"transferable"`
}

type certMaxSupplyParams struct {
	Caller    string `json:"caller"`
	MaxSupply uint64 `json:"maxSupply"`
}

type certResult struct {
	TokenID          uint64 `json:"tokenId"`
	CampaignID       uint64 `json:"campaignId"`
	Holder           string `json:"holder"`
	OriginalAmount   string `json:"originalAmount"`
	RoyaltyBps       uint32 `json:"royaltyBps"`
	RoyaltyRecipient string `json:"royaltyRecipient"`
	Transferable     bool   `json:"transferable"`
	MetadataURI      string `json:"metadataUri"`
	MintedAt         int64  `json:"mintedAt"`
}

type certSupplyResult struct {
	Minted    uint64 `json:"minted"`
	MaxSupply uint64 `json:"maxSupply"`
}

func formatCertificate(c *certificate.Certificate) certResult {
	return certResult{
		TokenID:          c.TokenID,
		CampaignID:       c.CampaignID,
		Holder:           c.Holder.Hex(),
		OriginalAmount:   bigString(c.OriginalAmount),
		RoyaltyBps:       c.RoyaltyBps,
		RoyaltyRecipient: c.RoyaltyRecipient.Hex(),
		Transferable:     c.Transferable,
		MetadataURI:      c.MetadataURI,
		MintedAt:         c.MintedAt,
	}
}

func (s *Server) handleCertMint(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params certMintParams
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
	cert, err := s.node.MintCertificate(caller, to, params.CampaignID, amount, params.MetadataURI, params.RoyaltyBps)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to mint certificate", err.Error())
		return
	}
	writeResult(w, req.ID, formatCertificate(cert))
}

func (s *Server) handleCertBatchMint(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params certBatchMintParams
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
	amounts := make([]*big.Int, 0, len(params.Amounts))
	for _, raw := range params.Amounts {
		amount, rpcErr := parseAmount(raw)
		if rpcErr != nil {
			writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
			return
		}
		amounts = append(amounts, amount)
	}
	minted, err := s.node.BatchMintCertificates(caller, to, params.CampaignID, amounts, params.MetadataURIs, params.RoyaltyBps)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to batch mint certificates", err.Error())
		return
	}
	results := make([]certResult, 0, len(minted))
	for _, cert := range minted {
		results = append(results, formatCertificate(cert))
	}
	writeResult(w, req.ID, results)
}

func (s *Server) handleCertTransfer(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params certTransferParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
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
	cert, err := s.node.TransferCertificate(caller, from, to, params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to transfer certificate", err.Error())
		return
	}
	writeResult(w, req.ID, formatCertificate(cert))
}

func (s *Server) handleCertUpdateRoyalty(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params certRoyaltyParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	cert, err := s.node.UpdateCertificateRoyalty(caller, params.TokenID, params.RoyaltyBps)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to update royalty", err.Error())
		return
	}
	writeResult(w, req.ID, formatCertificate(cert))
}

func (s *Server) handleCertUpdateTransferability(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params certTransferabilityParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	cert, err := s.node.UpdateCertificateTransferability(caller, params.TokenID, params.Transferable)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to update transferability", err.Error())
		return
	}
	writeResult(w, req.ID, formatCertificate(cert))
}

func (s *Server) handleCertUpdateMaxSupply(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params certMaxSupplyParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	if err := s.node.UpdateCertificateMaxSupply(caller, params.MaxSupply); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to update max supply", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]uint64{"maxSupply": params.MaxSupply})
}

func (s *Server) handleCertGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		TokenID uint64 `json:"tokenId"`
	}
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	cert, err := s.node.Certificate(params.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "certificate lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, formatCertificate(cert))
}

func (s *Server) handleCertGetByHolder(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Holder string `json:"holder"`
	}
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	holder, rpcErr := parseAddressParam("holder", params.Holder)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	ids, err := s.node.CertificatesByHolder(holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "holder lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"holder": params.Holder, "tokenIds": ids})
}

func (s *Server) handleCertGetByCampaign(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params campaignIDParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	ids, err := s.node.CertificatesByCampaign(params.CampaignID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "campaign lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"campaignId": params.CampaignID, "tokenIds": ids})
}

func (s *Server) handleCertSupply(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	supply, err := s.node.CertificateSupply()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load supply", err.Error())
		return
	}
	writeResult(w, req.ID, certSupplyResult{Minted: supply.Minted, MaxSupply: supply.MaxSupply})
}
