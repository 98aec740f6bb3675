package httpadapter

import (
	"errors"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

var (
	errInvalidJSON      = errors.New("invalid json")
	errInvalidMultipart = errors.New("invalid multipart form")
)

type domainBotRequest struct {
	Name                string `json:"name"`
	InitialPrompt       string `json:"initial_prompt"`
	HyDEEnabled         bool   `json:"hyde_enabled"`
	RerankEnabled       bool   `json:"rerank_enabled"`
	DocLevelRankEnabled bool   `json:"document_level_ranking"`
	ConfigID            string `json:"config_id"`
}

func (b domainBotRequest) toDomain() *domain.Bot {
	return &domain.Bot{
		Name:                b.Name,
		InitialPrompt:       b.InitialPrompt,
		HyDEEnabled:         b.HyDEEnabled,
		RerankEnabled:       b.RerankEnabled,
		DocLevelRankEnabled: b.DocLevelRankEnabled,
		ConfigID:            b.ConfigID,
	}
}
