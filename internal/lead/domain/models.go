package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Stage string

const (
	StageContacted    Stage = "contato_feito"
	StageWarming      Stage = "aquecendo"
	StageProposalSent Stage = "proposta_enviada"
	StageClosedWon    Stage = "venda_concluida"
)

// Stages lists the pipeline in funnel order.
var Stages = []Stage{StageContacted, StageWarming, StageProposalSent, StageClosedWon}

func (s Stage) Valid() bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

type Source string

const (
	SourceInstagram   Source = "instagram"
	SourceProspecting Source = "prospeccao"
	SourcePaidTraffic Source = "trafego_pago"
	SourceReferral    Source = "indicacao"
	SourceOther       Source = "outro"
)

type Lead struct {
	ID             snowflake.ID                `gorm:"primaryKey" json:"id"`
	UserID         string                      `gorm:"not null;index" json:"user_id"`
	Name           string                      `gorm:"not null" json:"name"`
	Email          *string                     `json:"email,omitempty"`
	Phone          *string                     `json:"phone,omitempty"`
	Source         Source                      `gorm:"not null;default:outro" json:"source"`
	Stage          Stage                       `gorm:"not null;default:contato_feito;index" json:"stage"`
	EstimatedValue *decimal.Decimal            `gorm:"type:numeric(14,2)" json:"estimated_value,omitempty"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	Notes          *string                     `json:"notes,omitempty"`
	CreatedAt      time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }
