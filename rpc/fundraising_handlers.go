package rpc

import (
	"net/http"
	"strings"

	"cinechain/core/types"
	"cinechain/native/fundraising"
)

type createCampaignParams struct {
	Creator     string `json:"creator"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FundingGoal string `json:"fundingGoal"`
	Duration    int64  `json:"durationSeconds"`
}

type contributeParams struct {
	CampaignID  uint64 `json:"campaignId"`
	Contributor string `json:"contributor"`
	Amount      string `json:"amount"`
}

type campaignIDParams struct {
	CampaignID uint64 `json:"campaignId"`
}

type contributionParams struct {
	CampaignID  uint64 `json:"campaignId"`
	Contributor string `json:"contributor"`
}

type bulkRefundParams struct {
	CampaignID   uint64   `json:"campaignId"`
	Contributors []string `json:"contributors"`
}

type platformFeeParams struct {
	Caller string `json:"caller"`
	FeeBps uint32 `json:"feeBps"`
}

type platformWalletParams struct {
	Caller string `json:"caller"`
	Wallet string `json:"wallet"`
}

type campaignResult struct {
	ID             uint64 `json:"id"`
	Creator        string `json:"creator"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	FundingGoal    string `json:"fundingGoal"`
	CurrentFunding string `json:"currentFunding"`
	StartTime      int64  `json:"startTime"`
	EndTime        int64  `json:"endTime"`
	Status         string `json:"status"`
	BackerCount    uint64 `json:"backerCount"`
}

type refundResult struct {
	CampaignID  uint64 `json:"campaignId"`
	Contributor string `json:"contributor,omitempty"`
	Refunded    string `json:"refunded"`
	Count       int    `json:"count,omitempty"`
}

type platformParamsResult struct {
	PlatformFeeBps uint32 `json:"platformFeeBps"`
	PlatformWallet string `json:"platformWallet"`
}

func formatCampaign(c *fundraising.Campaign) campaignResult {
	return campaignResult{
		ID:             c.ID,
		Creator:        c.Creator.Hex(),
		Title:          c.Title,
		Description:    c.Description,
		FundingGoal:    bigString(c.FundingGoal),
		CurrentFunding: bigString(c.CurrentFunding),
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		Status:         c.Status.String(),
		BackerCount:    c.BackerCount,
	}
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params createCampaignParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	creator, rpcErr := parseAddressParam("creator", params.Creator)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	goal, rpcErr := parseAmount(params.FundingGoal)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	campaign, err := s.node.CreateCampaign(creator, strings.TrimSpace(params.Title), params.Description, goal, params.Duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to create campaign", err.Error())
		return
	}
	writeResult(w, req.ID, formatCampaign(campaign))
}

func (s *Server) handleContribute(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contributeParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	contributor, rpcErr := parseAddressParam("contributor", params.Contributor)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	campaign, err := s.node.Contribute(params.CampaignID, contributor, amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to contribute", err.Error())
		return
	}
	writeResult(w, req.ID, formatCampaign(campaign))
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params campaignIDParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	campaign, err := s.node.GetCampaign(params.CampaignID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "campaign lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, formatCampaign(campaign))
}

func (s *Server) handleGetContribution(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contributionParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	contributor, rpcErr := parseAddressParam("contributor", params.Contributor)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, err := s.node.ContributionOf(params.CampaignID, contributor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "contribution lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]interface{}{
		"campaignId":   params.CampaignID,
		"contributor":  params.Contributor,
		"contribution": bigString(amount),
	})
}

func (s *Server) handleMarkFailed(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller     string `json:"caller"`
		CampaignID uint64 `json:"campaignId"`
	}
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	campaign, err := s.node.MarkCampaignFailed(caller, params.CampaignID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to mark campaign failed", err.Error())
		return
	}
	writeResult(w, req.ID, formatCampaign(campaign))
}

func (s *Server) handleProcessRefund(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contributionParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	contributor, rpcErr := parseAddressParam("contributor", params.Contributor)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	refunded, err := s.node.ProcessRefund(params.CampaignID, contributor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to process refund", err.Error())
		return
	}
	writeResult(w, req.ID, refundResult{
		CampaignID:  params.CampaignID,
		Contributor: params.Contributor,
		Refunded:    bigString(refunded),
	})
}

func (s *Server) handleProcessBulkRefunds(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		bulkRefundParams
	}
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	contributors := make([]types.Address, 0, len(params.Contributors))
	for _, raw := range params.Contributors {
		addr, rpcErr := parseAddressParam("contributor", raw)
		if rpcErr != nil {
			writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
			return
		}
		contributors = append(contributors, addr)
	}
	count, total, err := s.node.ProcessBulkRefunds(caller, params.CampaignID, contributors)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to process bulk refunds", err.Error())
		return
	}
	writeResult(w, req.ID, refundResult{
		CampaignID: params.CampaignID,
		Refunded:   bigString(total),
		Count:      count,
	})
}

func (s *Server) handleUpdatePlatformFee(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params platformFeeParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	if err := s.node.UpdatePlatformFee(caller, params.FeeBps); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to update platform fee", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]uint32{"platformFeeBps": params.FeeBps})
}

func (s *Server) handleUpdatePlatformWallet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params platformWalletParams
	if rpcErr := parseSingleParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := parseAddressParam("caller", params.Caller)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	wallet, rpcErr := parseAddressParam("wallet", params.Wallet)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	if err := s.node.UpdatePlatformWallet(caller, wallet); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to update platform wallet", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]string{"platformWallet": wallet.Hex()})
}

func (s *Server) handlePlatformParams(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params, err := s.node.PlatformParams()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load platform params", err.Error())
		return
	}
	writeResult(w, req.ID, platformParamsResult{
		PlatformFeeBps: params.PlatformFeeBps,
		PlatformWallet: params.PlatformWallet.Hex(),
	})
}
