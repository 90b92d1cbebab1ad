package dbschema

import (
	"gorm.io/datatypes"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/proposal"
	"jan-server/services/proposal-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Proposal{})
}

// Proposal is a persisted generated artifact.
type Proposal struct {
	BaseModel
	PublicID       string                                      `gorm:"type:varchar(64);not null;uniqueIndex:ux_proposals_public_id"`
	AccountID      uint                                        `gorm:"not null;index:ix_proposals_account_created,priority:1"`
	Mode           string                                      `gorm:"type:varchar(32);not null"`
	Content        string                                      `gorm:"type:text;not null"`
	Industry       string                                      `gorm:"type:varchar(255);not null;default:''"`
	Goal           string                                      `gorm:"type:varchar(255);not null;default:''"`
	Tone           string                                      `gorm:"type:varchar(64);not null;default:''"`
	Status         string                                      `gorm:"type:varchar(20);not null;default:'pending';index"`
	Reason         *string                                     `gorm:"type:text"`
	RequestContext datatypes.JSONType[proposal.RequestContext] `gorm:"column:request_context"`
}

// NewSchemaProposal converts a domain proposal into a schema instance.
func NewSchemaProposal(p *proposal.Proposal) *Proposal {
	if p == nil {
		return nil
	}

	return &Proposal{
		BaseModel: BaseModel{
			ID:        p.ID,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
		PublicID:       p.PublicID,
		AccountID:      p.AccountID,
		Mode:           string(p.Mode),
		Content:        p.Content,
		Industry:       p.Industry,
		Goal:           p.Goal,
		Tone:           p.Tone,
		Status:         string(p.Status),
		Reason:         p.Reason,
		RequestContext: datatypes.NewJSONType(p.Context),
	}
}

// EtoD converts a schema proposal back to the domain representation.
func (p *Proposal) EtoD() *proposal.Proposal {
	if p == nil {
		return nil
	}

	return &proposal.Proposal{
		ID:        p.ID,
		PublicID:  p.PublicID,
		AccountID: p.AccountID,
		Mode:      account.Mode(p.Mode),
		Content:   p.Content,
		Industry:  p.Industry,
		Goal:      p.Goal,
		Tone:      p.Tone,
		Status:    proposal.Status(p.Status),
		Reason:    p.Reason,
		Context:   p.RequestContext.Data(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
