package dbschema

import (
	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Account{}, AccountUsage{})
}

// Account is the persisted ledger record of one identity.
type Account struct {
	BaseModel
	Subject            string         `gorm:"type:varchar(255);not null;uniqueIndex:ux_accounts_subject"`
	Email              *string        `gorm:"type:varchar(320)"`
	Plan               string         `gorm:"type:varchar(20);not null;default:'free'"`
	SubscriptionActive bool           `gorm:"not null;default:false"`
	Usages             []AccountUsage `gorm:"foreignKey:AccountID"`
}

// AccountUsage is the consumption counter of one account in one mode.
type AccountUsage struct {
	BaseModel
	AccountID uint   `gorm:"not null;uniqueIndex:ux_account_usages_account_mode"`
	Mode      string `gorm:"type:varchar(32);not null;uniqueIndex:ux_account_usages_account_mode"`
	Used      int    `gorm:"not null;default:0"`
}

// NewSchemaAccount converts a domain account into a schema instance. Counters are
// owned by AccountUsage rows and are not copied.
func NewSchemaAccount(a *account.Account) *Account {
	if a == nil {
		return nil
	}

	var email *string
	if a.Email != "" {
		e := a.Email
		email = &e
	}
	plan := string(a.Plan)
	if plan == "" {
		plan = string(account.PlanFree)
	}
	return &Account{
		BaseModel: BaseModel{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		},
		Subject:            a.Subject,
		Email:              email,
		Plan:               plan,
		SubscriptionActive: a.SubscriptionActive,
	}
}

// EtoD converts a schema account and its loaded usages to the domain representation.
func (a *Account) EtoD() *account.Account {
	if a == nil {
		return nil
	}

	usage := make(map[account.Mode]int, len(a.Usages))
	for _, u := range a.Usages {
		usage[account.Mode(u.Mode)] = u.Used
	}
	var email string
	if a.Email != nil {
		email = *a.Email
	}
	return &account.Account{
		ID:                 a.ID,
		Subject:            a.Subject,
		Email:              email,
		Plan:               account.Plan(a.Plan),
		SubscriptionActive: a.SubscriptionActive,
		Usage:              usage,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
