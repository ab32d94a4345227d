package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"nft_minter/internal/common"
	"nft_minter/internal/minter"
	"nft_minter/internal/model"
	sol "nft_minter/internal/solana"
)

type uploadMetadataRequest struct {
	Metadata json.RawMessage `json:"metadata"`
}

type uploadMetadataResponse struct {
	MetadataURI string `json:"metadataUri"`
}

// handleUploadMetadata POST /api/upload-metadata
func (s *Server) handleUploadMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req uploadMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Metadata) == 0 || string(req.Metadata) == "null" {
		writeError(w, http.StatusBadRequest, "Missing metadata")
		return
	}

	start := time.Now()
	uri, err := s.deps.Publisher.Publish(r.Context(), req.Metadata)
	if err != nil {
		s.metrics.incUpload("error", time.Since(start).Seconds())
		common.Log.WithError(err).Error("上传元数据到 Filebase 失败")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.incUpload("success", time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, uploadMetadataResponse{MetadataURI: uri})
}

// handleMint POST /api/mint
func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	if s.deps.Minter == nil {
		writeError(w, http.StatusServiceUnavailable, "minting is not configured")
		return
	}

	var form model.MintForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 客户端断开不取消已开始的铸造
	ctx := context.WithoutCancel(r.Context())
	view, err := s.deps.Minter.Mint(ctx, form)
	if errors.Is(err, minter.ErrMintInProgress) {
		s.metrics.incMint("in_progress")
		writeJSON(w, http.StatusConflict, view)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch {
	case view.State == model.MintStateSuccess:
		s.metrics.incMint("success")
		writeJSON(w, http.StatusOK, view)
	case view.FailedStage == model.MintStateValidating:
		s.metrics.incMint("rejected")
		writeJSON(w, http.StatusBadRequest, view)
	default:
		s.metrics.incMint("failed")
		writeJSON(w, http.StatusBadGateway, view)
	}
}

// handleView GET /api/mint
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if s.deps.Minter == nil {
		writeError(w, http.StatusServiceUnavailable, "minting is not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Minter.View())
}

type componentHealth struct {
	Connected bool    `json:"connected"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
	Address   string  `json:"address,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// handleHealth GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthy := true

	rpcInfo := componentHealth{Connected: true}
	if s.deps.RPCHealth != nil {
		start := time.Now()
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.RPCHealth(ctx); err != nil {
			rpcInfo = componentHealth{Error: err.Error()}
			healthy = false
		} else {
			rpcInfo.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
		}
	}

	walletInfo := componentHealth{}
	if s.deps.Wallet != nil && s.deps.Wallet.Connected() {
		walletInfo.Connected = true
		walletInfo.Address = s.deps.Wallet.PublicKey().String()
	} else {
		walletInfo.Error = sol.ErrWalletNotConnected.Error()
		healthy = false
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
		common.Log.WithFields(logrus.Fields{
			"rpc":    rpcInfo.Error,
			"wallet": walletInfo.Error,
		}).Warn("健康检查未通过")
	}

	resp := struct {
		Status string          `json:"status"`
		RPC    componentHealth `json:"rpc"`
		Wallet componentHealth `json:"wallet"`
	}{
		Status: status,
		RPC:    rpcInfo,
		Wallet: walletInfo,
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
