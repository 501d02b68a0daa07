package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeRevenue Type = "faturamento"
	TypeCustom  Type = "personalizado"
)

func (t Type) Valid() bool {
	return t == TypeRevenue || t == TypeCustom
}

// RevenueGoalTitle is the title given to goals created by EnsureRevenueGoal.
const RevenueGoalTitle = "Faturamento"

// Goal is a monthly target. Only one revenue goal may exist per user and month.
type Goal struct {
	ID           snowflake.ID     `gorm:"primaryKey" json:"id"`
	UserID       string           `gorm:"not null;uniqueIndex:ux_goals_revenue_period,where:type = 'faturamento'" json:"user_id"`
	Title        string           `gorm:"not null" json:"title"`
	TargetValue  decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"target_value"`
	CurrentValue *decimal.Decimal `gorm:"type:numeric(14,2)" json:"current_value,omitempty"`
	Type         Type             `gorm:"not null;default:personalizado;uniqueIndex:ux_goals_revenue_period" json:"type"`
	Month        int              `gorm:"not null;uniqueIndex:ux_goals_revenue_period" json:"month"`
	Year         int              `gorm:"not null;uniqueIndex:ux_goals_revenue_period" json:"year"`
	CreatedAt    time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"not null" json:"updated_at"`
}

func (Goal) TableName() string { return "goals" }

// Current returns the recorded progress value, zero when unset.
func (g Goal) Current() decimal.Decimal {
	if g.CurrentValue == nil {
		return decimal.Zero
	}
	return *g.CurrentValue
}

// Progress is current/target as a whole percentage, rounded half away from
// zero. A non-positive target yields 0.
func Progress(current, target decimal.Decimal) int64 {
	if !target.IsPositive() {
		return 0
	}
	return current.Mul(decimal.NewFromInt(100)).Div(target).Round(0).IntPart()
}

// GoalProgress pairs a goal with its progress against a measured value.
type GoalProgress struct {
	Goal     Goal            `json:"goal"`
	Achieved decimal.Decimal `json:"achieved"`
	Percent  int64           `json:"percent"`
}
