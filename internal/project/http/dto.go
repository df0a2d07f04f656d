package projecthttp

import (
	"github.com/scontainr/quotecenter/internal/project"
)

type createProjectRequest struct {
	Name string `json:"name"`
}

type metaPatchRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	Contact      *string `json:"contact" validate:"omitempty,max=200"`
	Location     *string `json:"location" validate:"omitempty,max=200"`
	LegalName    *string `json:"legal_name" validate:"omitempty,max=200"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=50"`
}

func (req metaPatchRequest) apply(m *project.Meta) {
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Contact != nil {
		m.Contact = *req.Contact
	}
	if req.Location != nil {
		m.Location = *req.Location
	}
	if req.LegalName != nil {
		m.LegalName = *req.LegalName
	}
	if req.ContactEmail != nil {
		m.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		m.ContactPhone = *req.ContactPhone
	}
}

type movementRequest struct {
	ID            string   `json:"id"`
	Date          string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Kind          string   `json:"kind" validate:"required,oneof=charge credit"`
	Status        string   `json:"status" validate:"required,oneof=pending paid"`
	IncludesTax   bool     `json:"includes_tax"`
	ManualTax     *float64 `json:"manual_tax" validate:"omitempty,min=0"`
	Category      string   `json:"category" validate:"required,max=50"`
	Description   string   `json:"description" validate:"max=500"`
	Amount        float64  `json:"amount" validate:"min=0"`
	Currency      string   `json:"currency" validate:"required,oneof=USD MXN"`
	PaymentFXRate float64  `json:"payment_fx_rate" validate:"min=0"`
	Reference     string   `json:"reference" validate:"max=200"`
}

func (req movementRequest) toMovement() project.Movement {
	return project.Movement{
		ID:            req.ID,
		Date:          req.Date,
		Kind:          project.MovementKind(req.Kind),
		Status:        project.MovementStatus(req.Status),
		IncludesTax:   req.IncludesTax,
		ManualTax:     req.ManualTax,
		Category:      project.Category(req.Category),
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      project.Currency(req.Currency),
		PaymentFXRate: req.PaymentFXRate,
		Reference:     req.Reference,
	}
}

type installmentCountRequest struct {
	Count int `json:"count" validate:"required,min=1,max=6"`
}

type snapshotListResponse struct {
	Snapshots   []snapshotSummary `json:"snapshots"`
	AutoBackups []snapshotSummary `json:"auto_backups"`
	BackupAgeMS int64             `json:"backup_age_ms,omitempty"`
}

type snapshotSummary struct {
	TS       int64 `json:"ts"`
	Projects int   `json:"projects"`
}

type importResponse struct {
	Imported int `json:"imported"`
}
