package rpc

import (
	"math/big"
	"net/http"

	"cinechain/core/types"
	"cinechain/native/royalty"
)

type royaltyCreateAccountParams struct {
	Caller           string `json:"caller"`
	CampaignID       uint64 `json:"campaignId"`
	Creator          string `json:"creator"`
	TotalRaised      string `json:"totalRaised"`
	CreatorShareBps  uint32 `json:"creatorShareBps"`
	PlatformShareBps uint32 `json:"platformShareBps"`
}

type royaltyInvestorParams struct {
	Caller       string `json:"caller"`
	CampaignID   uint64 `json:"campaignId"`
	Investor     string `json:"investor"`
	Contribution string `json:"contribution"`
}

type royaltyRevenueParams struct {
	CampaignID uint64 `json:"campaignId"`
	Payer      string `json:"payer"`
	Amount     string `json:"amount"`
}

type royaltyClaimParams struct {
	Caller string `json:"caller"`
}

type royaltyAccountResult struct {
	CampaignID       uint64 `json:"campaignId"`
	Creator          string `json:"creator"`
	TotalRaised      string `json:"totalRaised"`
	CreatorShareBps  uint32 `json:"creatorShareBps"`
	PlatformShareBps uint32 `json:"platformShareBps"`
	TotalRevenue     string `json:"totalRevenue"`
	TotalDistributed string `json:"totalDistributed"`
	Undistributed    string `json:"undistributed"`
	CreatorBalance   string `json:"creatorBalance"`
	PlatformBalance  string `json:"platformBalance"`
	CreatedAt        int64  `json:"createdAt"`
}

type investorShareResult struct {
	CampaignID   uint64 `json:"campaignId"`
	Ref          uint64 `json:"ref"`
	Investor     string `json:"investor"`
	Contribution string `json:"contribution"`
	ShareBps     uint32 `json:"shareBps"`
	Balance      string `json:"balance"`
}

type claimResult struct {
	Caller  string `json:"caller"`
	Claimed string `json:"claimed"`
}

func formatRevenueAccount(a *royalty.CampaignAccount) royaltyAccountResult {
	return royaltyAccountResult{
		CampaignID:       a.CampaignID,
		Creator:          a.Creator.Hex(),
		TotalRaised:      bigString(a.TotalRaised),
		CreatorShareBps:  a.CreatorShareBps,
		PlatformShareBps: a.PlatformShareBps,
		TotalRevenue:     bigString(a.TotalRevenue),
		TotalDistributed: bigString(a.TotalDistributed),
		Undistributed:    bigString(a.Undistributed()),
		CreatorBalance:   bigString(a.CreatorBalance),
		PlatformBalance:  bigString(a.PlatformBalance),
		CreatedAt:        a.CreatedAt,
	}
}

func formatInvestorShare(s *royalty.InvestorShare) investorShareResult {
	return investorShareResult{
		CampaignID:   s.CampaignID,
		Ref:          s.Ref,
		Investor:     s.Investor.Hex(),
		Contribution: bigString(s.Contribution),
		ShareBps:     s.ShareBps,
		Balance:      bigString(s.Balance),
	}
}

func (s *Server) handleRoyaltyCreateAccount(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params royaltyCreateAccountParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	creator, rpcErr := parseAddressParam("creator", params.Creator)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	raised, rpcErr := parseAmount(params.TotalRaised)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	account, err := s.node.CreateRevenueAccount(caller, params.CampaignID, creator, raised, params.CreatorShareBps, params.PlatformShareBps)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to create revenue account", err.Error())
		return
	}
	writeResult(w, req.ID, formatRevenueAccount(account))
}

func (s *Server) handleRoyaltyAddInvestorShare(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params royaltyInvestorParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	investor, rpcErr := parseAddressParam("investor", params.Investor)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	contribution, rpcErr := parseAmount(params.Contribution)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	share, err := s.node.AddInvestorShare(caller, params.CampaignID, investor, contribution)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to add investor share", err.Error())
		return
	}
	writeResult(w, req.ID, formatInvestorShare(share))
}

func (s *Server) handleRoyaltyReceiveRevenue(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params royaltyRevenueParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	payer, rpcErr := parseAddressParam("payer", params.Payer)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	account, err := s.node.ReceiveRevenue(params.CampaignID, payer, amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to receive revenue", err.Error())
		return
	}
	writeResult(w, req.ID, formatRevenueAccount(account))
}

func (s *Server) handleRoyaltyDistribute(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params campaignIDParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	account, err := s.node.DistributeRoyalties(params.CampaignID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to distribute royalties", err.Error())
		return
	}
	writeResult(w, req.ID, formatRevenueAccount(account))
}

func (s *Server) handleRoyaltyClaimCreator(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleRoyaltyClaim(w, req, s.node.ClaimCreatorRoyalties)
}

func (s *Server) handleRoyaltyClaimInvestor(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleRoyaltyClaim(w, req, s.node.ClaimInvestorRoyalties)
}

func (s *Server) handleRoyaltyClaimPlatform(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleRoyaltyClaim(w, req, s.node.ClaimPlatformFees)
}

func (s *Server) handleRoyaltyClaim(w http.ResponseWriter, req *RPCRequest, claim func(caller types.Address) (*big.Int, error)) {
	var params royaltyClaimParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	claimed, err := claim(caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to claim royalties", err.Error())
		return
	}
	writeResult(w, req.ID, claimResult{Caller: params.Caller, Claimed: bigString(claimed)})
}

func (s *Server) handleRoyaltyGetAccount(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params campaignIDParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	account, err := s.node.RevenueAccount(params.CampaignID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "revenue account lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, formatRevenueAccount(account))
}

func (s *Server) handleRoyaltyGetShares(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params campaignIDParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	shares, err := s.node.InvestorShares(params.CampaignID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "share listing failed", err.Error())
		return
	}
	results := make([]investorShareResult, 0, len(shares))
	for _, share := range shares {
		results = append(results, formatInvestorShare(share))
	}
	writeResult(w, req.ID, results)
}
